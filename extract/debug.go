package extract

import (
	"bookview/typeset"
	"bookview/utils/debug"
)

// Dump returns readable tree of extracted paragraphs for debug reports.
func Dump(pars []*typeset.Paragraph) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Paragraphs: %d", len(pars))
	for i, p := range pars {
		ps := p.Style
		tw.Line(1, "Paragraph[%d] align[%s] items[%d]", i, ps.Align, len(p.Content))
		tw.Flags(2, "style", "quote", ps.Quote, "join", ps.Join, "join-next", ps.JoinNext,
			"indent", ps.Indent, "double", ps.Double, "separator", ps.Separator)
		for _, item := range p.Content {
			switch it := item.(type) {
			case *typeset.Text:
				tw.TextBlock(2, "Text", it.Content)
				cs := it.Style
				tw.Flags(3, "char", "bold", cs.Bold, "italic", cs.Italic, "small-caps", cs.SmallCaps,
					"code", cs.Code, "hyphen", it.Hyphen, "underline", cs.Decoration.Underline,
					"strike", cs.Decoration.Strike, "spoiler", cs.Decoration.Spoiler)
				if cs.Size != 1 && cs.Size != 0 {
					tw.Line(3, "size: %.2f", cs.Size)
				}
				if cs.Decoration.Color != nil {
					tw.Line(3, "color: %s", cs.Decoration.Color)
				}
				if cs.Decoration.Href != "" {
					tw.TextBlock(3, "href", cs.Decoration.Href)
				}
			case *typeset.Image:
				tw.Line(2, "Image %q [%gx%g]", it.Source, it.Width, it.Height)
			case *typeset.Spacer:
				tw.Line(2, "Spacer [%gx%g]", it.Width, it.Height)
			default:
				tw.Line(2, "Unknown %T", it)
			}
		}
	}
	return tw.String()
}
