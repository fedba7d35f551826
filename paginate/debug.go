package paginate

import (
	"strings"

	"bookview/typeset"
	"bookview/utils/debug"
)

// Dump returns readable tree of pages for debug reports.
func Dump(pages []*Page) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Pages: %d", len(pages))
	for _, pg := range pages {
		tw.Line(1, "Page %d left[%d] lines[%d] height[%.2f]", pg.Number, pg.PagesLeft, len(pg.Lines), pg.Height())
		for _, l := range pg.Lines {
			tw.Line(2, "Line [%.2fx%.2f] items[%d]", l.Width, l.Height, len(l.Items))
			tw.Flags(3, "line", "margin", l.Margin, "last", l.Last, "justified", l.Justified)
			if text := LineText(l); text != "" {
				tw.TextBlock(3, "Text", text)
			}
		}
	}
	return tw.String()
}

// LineText returns text content of the line as it is displayed.
func LineText(l *typeset.Line) string {
	var sb strings.Builder
	for _, it := range l.Items {
		if t, ok := it.Item.(*typeset.Text); ok {
			sb.WriteString(t.Content)
			if it.HyphenEnabled {
				sb.WriteByte('-')
			}
		}
	}
	return sb.String()
}
