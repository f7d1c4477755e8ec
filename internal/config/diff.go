package config

import (
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// DiffSerialized compares two configuration documents line by line. Comment
// lines and trailing whitespace are dropped first so that only meaningful
// edits show up in the rejected-reload log.
func DiffSerialized(previous, current []byte) string {
	return cmp.Diff(documentLines(previous), documentLines(current))
}

func documentLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ChangedSections lists the top-level keys whose values differ between two
// parsed configurations, in document order.
func ChangedSections(previous, current *Config) []string {
	if previous == nil || current == nil {
		return nil
	}
	pv := reflect.ValueOf(*previous)
	cv := reflect.ValueOf(*current)
	typ := pv.Type()
	var changed []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if cmp.Equal(pv.Field(i).Interface(), cv.Field(i).Interface()) {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "" {
			name = field.Name
		}
		changed = append(changed, name)
	}
	return changed
}
