package rules

import (
	"strings"

	"github.com/tilewm/tilewm/internal/layout"
)

// Broken is substituted for window strings the client never set.
const Broken = "broken"

// Result is the outcome of classifying a window. Tags is zero when no
// matching rule assigned tags, and callers fall back to the monitor's active
// tagset. Monitor and BorderPx are -1 when no rule sets them.
type Result struct {
	Tags      uint32          `json:"tags"`
	Floating  bool            `json:"floating"`
	ForceTile bool            `json:"forceTile"`
	Monitor   int             `json:"monitor"`
	HasFactor bool            `json:"hasFactor"`
	Factor    layout.Factor   `json:"factor"`
	BorderPx  int             `json:"borderpx"`
	Position  layout.Position `json:"position"`
	Warp      bool            `json:"warp"`
	Matched   []int           `json:"matched,omitempty"`
}

// Default is the classification of a window no rule matches.
func Default() Result {
	return Result{ForceTile: true, Monitor: -1, BorderPx: -1, Warp: true}
}

// Classify matches the window strings against the table in declaration order.
func (t *Table) Classify(class, instance, title string) Result {
	res := Default()
	if t == nil {
		return res
	}
	class, instance = orBroken(class), orBroken(instance)
	for i := range t.rules {
		r := &t.rules[i]
		if !r.Matches(class, instance, title) {
			continue
		}
		res.Matched = append(res.Matched, i)
		res.Floating = r.Floating
		res.ForceTile = r.ForceTile
		res.Tags |= r.Tags
		res.Warp = r.Warp
		if r.HasFactor {
			res.HasFactor = true
			res.Factor = r.Factor
		}
		if r.BorderPx >= 0 {
			res.BorderPx = r.BorderPx
		}
		if r.Position != layout.PosNone {
			res.Position = r.Position
		}
		if r.Monitor >= 0 {
			res.Monitor = r.Monitor
		}
		if t.strategy == FirstMatch {
			break
		}
	}
	return res
}

func (r *Rule) match(class, instance, title string, record bool) (bool, []FieldTrace) {
	var fields []FieldTrace
	ok := true
	check := func(field, pattern, value string, matched bool) {
		if !matched {
			ok = false
		}
		if record {
			fields = append(fields, FieldTrace{Field: field, Pattern: pattern, Value: value, Matched: matched})
		}
	}
	if r.Class != "" {
		check("class", r.Class, class, strings.Contains(class, r.Class))
	}
	if ok || record {
		if r.Instance != "" {
			check("instance", r.Instance, instance, strings.Contains(instance, r.Instance))
		}
	}
	if ok || record {
		if r.Title != nil {
			check("title", r.Title.String(), title, r.Title.MatchString(title))
		}
	}
	return ok, fields
}

func orBroken(s string) string {
	if s == "" {
		return Broken
	}
	return s
}
