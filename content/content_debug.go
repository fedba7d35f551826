package content

import (
	"sort"

	"github.com/maruel/natural"

	"bookview/utils/debug"
)

// String returns a readable summary of the prepared document.
// It exists solely for manual inspection during debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Document %s", d.ID)
	tw.TextBlock(1, "Source", d.SrcName)
	tw.TextBlock(1, "Title", d.Title)
	tw.Line(1, "Language: %s", d.Lang)
	if d.Canonical != "" {
		tw.TextBlock(1, "Canonical", d.Canonical)
	}
	if d.Hyphen != nil {
		tw.Line(1, "Hyphenation: %s", d.Hyphen.Language())
	}

	if d.Styles != nil {
		rules := d.Styles.Rules()
		tw.Line(1, "Author rules: %d", len(rules))
		sheets := append([]string(nil), d.Stylesheets...)
		sort.Sort(natural.StringSlice(sheets))
		for _, s := range sheets {
			tw.TextBlock(2, "Stylesheet", s)
		}
		for _, r := range rules {
			tw.Line(2, "%s (%d properties)", r.Selector.Raw, len(r.Properties))
		}
	}
	return tw.String()
}
