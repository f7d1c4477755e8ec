package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gosuri/uitable"
)

type benchLatencyStats struct {
	Min    float64 `json:"minMs"`
	Mean   float64 `json:"meanMs"`
	Median float64 `json:"medianMs"`
	P95    float64 `json:"p95Ms"`
	Max    float64 `json:"maxMs"`
}

type benchAllocationStats struct {
	Total               uint64  `json:"totalAllocations"`
	PerEvent            float64 `json:"allocationsPerEvent"`
	BytesTotal          uint64  `json:"bytesTotal"`
	BytesPerEvent       float64 `json:"bytesPerEvent"`
	HeapAllocDelta      int64   `json:"heapAllocDeltaBytes"`
	HeapAllocPerEvent   float64 `json:"heapAllocDeltaPerEvent"`
	HeapObjectsDelta    int64   `json:"heapObjectsDelta"`
	HeapObjectsPerEvent float64 `json:"heapObjectsPerEvent"`
}

// benchRequestStats counts the display requests the window manager issued.
type benchRequestStats struct {
	Total        int     `json:"total"`
	PerIteration float64 `json:"perIteration"`
	PerEvent     float64 `json:"perEvent"`
}

type benchSummary struct {
	Fixture            string               `json:"fixture"`
	Iterations         int                  `json:"iterations"`
	WarmupIterations   int                  `json:"warmupIterations"`
	EventsPerIteration int                  `json:"eventsPerIteration"`
	TotalEvents        int                  `json:"totalEvents"`
	Managed            uint64               `json:"managedPerIteration"`
	Requests           benchRequestStats    `json:"requests"`
	Latency            benchLatencyStats    `json:"latency"`
	IterationDuration  benchLatencyStats    `json:"iterationDuration"`
	Allocations        benchAllocationStats `json:"allocations"`
	TotalDurationMs    float64              `json:"totalDurationMs"`
	EventsPerSecond    float64              `json:"eventsPerSecond"`
}

type benchIteration struct {
	Index      int     `json:"index"`
	DurationMs float64 `json:"durationMs"`
	Requests   int     `json:"requests"`
	Events     int     `json:"events"`
}

type benchReport struct {
	Summary     benchSummary     `json:"summary"`
	DurationsMs []float64        `json:"durationsMs"`
	Iterations  []benchIteration `json:"iterations,omitempty"`
}

type benchEventTrace struct {
	Iteration  int     `json:"iteration"`
	EventIndex int     `json:"eventIndex"`
	Event      string  `json:"event"`
	DurationMs float64 `json:"durationMs"`
	Requests   int     `json:"requests"`
}

func buildReport(fixture benchFixture, warmup int, results []iterationResult, start, end runtime.MemStats) benchReport {
	var (
		durations []time.Duration
		perIter   []time.Duration
		requests  int
		managed   uint64
	)
	iterations := make([]benchIteration, 0, len(results))
	for i, res := range results {
		durations = append(durations, res.events...)
		perIter = append(perIter, res.duration)
		requests += res.requests
		managed = res.managed
		iterations = append(iterations, benchIteration{
			Index:      i + 1,
			DurationMs: toMillis(res.duration),
			Requests:   res.requests,
			Events:     len(res.events),
		})
	}
	totalEvents := len(durations)
	latency, totalEventDuration := buildLatencyStats(durations)
	iterationStats, _ := buildLatencyStats(perIter)

	allocs := end.Mallocs - start.Mallocs
	bytesAllocated := end.TotalAlloc - start.TotalAlloc
	heapAllocDelta := int64(end.HeapAlloc) - int64(start.HeapAlloc)
	heapObjectsDelta := int64(end.HeapObjects) - int64(start.HeapObjects)

	durationsMs := make([]float64, len(durations))
	for i, d := range durations {
		durationsMs[i] = toMillis(d)
	}

	summary := benchSummary{
		Fixture:            fixture.Name,
		Iterations:         len(results),
		WarmupIterations:   warmup,
		EventsPerIteration: len(fixture.Events),
		TotalEvents:        totalEvents,
		Managed:            managed,
		Requests: benchRequestStats{
			Total:        requests,
			PerIteration: safeDivide(float64(requests), len(results)),
			PerEvent:     safeDivide(float64(requests), totalEvents),
		},
		Latency:           latency,
		IterationDuration: iterationStats,
		Allocations: benchAllocationStats{
			Total:               allocs,
			PerEvent:            safeDivide(float64(allocs), totalEvents),
			BytesTotal:          bytesAllocated,
			BytesPerEvent:       safeDivide(float64(bytesAllocated), totalEvents),
			HeapAllocDelta:      heapAllocDelta,
			HeapAllocPerEvent:   safeDivide(float64(heapAllocDelta), totalEvents),
			HeapObjectsDelta:    heapObjectsDelta,
			HeapObjectsPerEvent: safeDivide(float64(heapObjectsDelta), totalEvents),
		},
		TotalDurationMs: toMillis(totalEventDuration),
		EventsPerSecond: eventsPerSecond(totalEventDuration, totalEvents),
	}
	return benchReport{Summary: summary, DurationsMs: durationsMs, Iterations: iterations}
}

func buildLatencyStats(durations []time.Duration) (benchLatencyStats, time.Duration) {
	stats := benchLatencyStats{}
	if len(durations) == 0 {
		return stats, 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	stats.Min = toMillis(sorted[0])
	stats.Mean = toMillis(total / time.Duration(len(durations)))
	stats.Median = toMillis(percentile(sorted, 0.50))
	stats.P95 = toMillis(percentile(sorted, 0.95))
	stats.Max = toMillis(sorted[len(sorted)-1])
	return stats, total
}

func safeDivide(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(p*float64(len(sorted)-1) + 0.5)
	return sorted[min(max(idx, 0), len(sorted)-1)]
}

func eventsPerSecond(total time.Duration, events int) float64 {
	if total <= 0 || events == 0 {
		return 0
	}
	return float64(events) / total.Seconds()
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// writeJSON encodes v to path, or to stdout for "" and "-".
func writeJSON(v any, path string) error {
	var w io.Writer = os.Stdout
	switch path = strings.TrimSpace(path); path {
	case "", "-":
	default:
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHumanSummary(summary benchSummary, w io.Writer) error {
	table := uitable.New()
	table.Separator = "  "
	latencyRow := func(s benchLatencyStats) string {
		return fmt.Sprintf("min %.2f | mean %.2f | median %.2f | p95 %.2f | max %.2f", s.Min, s.Mean, s.Median, s.P95, s.Max)
	}
	allocs := summary.Allocations
	table.AddRow("Fixture:", summary.Fixture)
	table.AddRow("Iterations:", summary.Iterations)
	table.AddRow("Warmup iterations:", summary.WarmupIterations)
	table.AddRow("Events/iteration:", summary.EventsPerIteration)
	table.AddRow("Total events:", summary.TotalEvents)
	table.AddRow("Managed windows:", summary.Managed)
	table.AddRow("Display requests:", fmt.Sprintf("%d (%.2f / iter, %.2f / event)",
		summary.Requests.Total, summary.Requests.PerIteration, summary.Requests.PerEvent))
	table.AddRow("Latency (ms):", latencyRow(summary.Latency))
	table.AddRow("Iteration duration (ms):", latencyRow(summary.IterationDuration))
	table.AddRow("Allocations:", fmt.Sprintf("%d total (%.2f / event)", allocs.Total, allocs.PerEvent))
	table.AddRow("Bytes allocated:", fmt.Sprintf("%s (%.2f / event)", formatBytesUnsigned(allocs.BytesTotal), allocs.BytesPerEvent))
	table.AddRow("Heap delta:", fmt.Sprintf("%s change, %d objects (%.2f / event)",
		formatBytesSigned(allocs.HeapAllocDelta), allocs.HeapObjectsDelta, allocs.HeapObjectsPerEvent))
	table.AddRow("Events/sec:", fmt.Sprintf("%.2f", summary.EventsPerSecond))
	_, err := fmt.Fprintf(w, "%s\n\n", table)
	return err
}

func formatBytesUnsigned(bytes uint64) string {
	const miB = 1024 * 1024
	if bytes == 0 {
		return "0 B (0.00 MiB)"
	}
	return fmt.Sprintf("%d B (%.2f MiB)", bytes, float64(bytes)/float64(miB))
}

func formatBytesSigned(delta int64) string {
	if delta == 0 {
		return "0 B (0.00 MiB)"
	}
	sign := ""
	if delta < 0 {
		sign = "-"
		delta = -delta
	}
	return sign + formatBytesUnsigned(uint64(delta))
}
