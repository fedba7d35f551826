// Package debug has helpers producing human readable dumps of internal
// structures for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	tw.w.WriteString(strings.Repeat("  ", max(depth, 0)))
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Flags writes label followed by names of set flags in the given order,
// pairs are name and value. Nothing is written when no flag is set.
func (tw TreeWriter) Flags(depth int, label string, pairs ...any) {
	var names []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if on, ok := pairs[i+1].(bool); ok && on {
			names = append(names, fmt.Sprint(pairs[i]))
		}
	}
	if len(names) == 0 {
		return
	}
	tw.Line(depth, "%s: [%s]", label, strings.Join(names, " "))
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
