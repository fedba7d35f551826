// Package paginate packs broken lines into pages and maps pages onto a
// visual tree.
package paginate

import (
	"bookview/typeset"
)

// EndMarker is the content of the synthetic line closing the text.
const EndMarker = " ◼"

// Page is a contiguous run of lines fitting page height budget.
type Page struct {
	Lines     []*typeset.Line
	Number    int // 1 based
	PagesLeft int
}

// Height returns cumulative height of page lines.
func (p *Page) Height() float64 {
	var h float64
	for _, l := range p.Lines {
		h += l.Height
	}
	return h
}

type packer struct {
	budget float64
	pages  []*Page
	cur    *Page
	height float64
}

func (pk *packer) add(l *typeset.Line) {
	// never leave empty page behind, oversized line gets page of its own
	if len(pk.cur.Lines) > 0 && pk.height+l.Height > pk.budget {
		pk.next()
	}
	pk.put(l)
}

func (pk *packer) next() {
	pk.cur = &Page{}
	pk.pages = append(pk.pages, pk.cur)
	pk.height = 0
}

func (pk *packer) put(l *typeset.Line) {
	pk.cur.Lines = append(pk.cur.Lines, l)
	pk.height += l.Height
}

// Paginate breaks paragraphs into lines of given width and packs them first
// fit into pages of given height. The last page ends with end of text marker
// line, which stays on the open page unless that page is already over
// budget. Lines produced by the breaker are placed into pages as is.
func Paginate(pars []*typeset.Paragraph, breaker typeset.Breaker, width, budget float64) []*Page {
	pk := &packer{budget: budget, cur: &Page{}}
	pk.pages = append(pk.pages, pk.cur)

	for _, p := range pars {
		for _, l := range breaker.Break(p, width) {
			pk.add(l)
		}
	}
	if pk.height > pk.budget {
		pk.next()
	}
	for _, l := range breaker.Break(EndParagraph(), width) {
		pk.put(l)
	}

	for i, pg := range pk.pages {
		pg.Number = i + 1
		pg.PagesLeft = len(pk.pages) - i - 1
	}
	return pk.pages
}

// EndParagraph returns right aligned paragraph holding end of text marker.
func EndParagraph() *typeset.Paragraph {
	return &typeset.Paragraph{
		Style: typeset.ParStyle{Align: typeset.AlignRight},
		Content: []typeset.Inline{
			&typeset.Text{Content: EndMarker, Style: typeset.DefaultCharStyle()},
		},
	}
}

// Lines returns all lines of pages in order.
func Lines(pages []*Page) []*typeset.Line {
	var out []*typeset.Line
	for _, p := range pages {
		out = append(out, p.Lines...)
	}
	return out
}
