package reader

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bookview/book"
	"bookview/paginate"
	"bookview/typeset"
)

var (
	pageStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	coverStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("99")).Padding(1, 4)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	turnStyle   = lipgloss.NewStyle().Faint(true)
)

// openness below which book is drawn closed
const closedBelow = 0.5

// Render draws reader screen of width x height cells. Zero size leaves output
// unplaced.
func (r *Reader) Render(width, height int) string {
	var body string
	if v := r.view; v == nil || v.Openness() < closedBelow || len(v.Pages()) == 0 {
		body = r.renderClosed()
	} else {
		body = r.renderOpen(v)
	}
	if r.status != "" {
		body = lipgloss.JoinVertical(lipgloss.Center, body, statusStyle.Render(r.status))
	}
	if width <= 0 || height <= 0 {
		return body
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (r *Reader) title() string {
	if r.content != nil && r.content.Title != "" {
		return r.content.Title
	}
	return r.src.Name()
}

func (r *Reader) renderClosed() string {
	cover := coverStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(r.title()),
		"",
		r.src.Name(),
		fmt.Sprintf("Chapter %d of %d", r.chapter+1, r.src.Len()),
	))
	help := helpStyle.Render(fmt.Sprintf("%q open book • q quit", r.cfg.Options.OpenKey))
	return lipgloss.JoinVertical(lipgloss.Center, cover, "", help)
}

// shown returns indices of pages terminal shows at position and whether
// pages are being turned.
func shown(v *book.View) ([]int, bool) {
	pos, _ := v.Position()
	pages := v.Pages()
	var first int
	if v.Layout().TwoPages {
		first = int(math.Round(pos/2)) * 2
	} else {
		first = int(math.Round(pos))
	}
	first = max(0, min(first, len(pages)-1))

	list := []int{first}
	if v.Layout().TwoPages && first+1 < len(pages) {
		list = append(list, first+1)
	}
	return list, math.Abs(pos-float64(first)) > 0.25
}

func (r *Reader) renderOpen(v *book.View) string {
	var (
		lay   = v.Layout()
		cols  = max(int(lay.PageWidth/cellWidth), 1)
		rows  = max(int(lay.PageHeight/cellHeight), 1)
		pages = v.Pages()
		style = pageStyle.Width(cols + 2).Height(rows).MaxHeight(rows + 2)
	)
	list, turning := shown(v)

	boxes := make([]string, 0, len(list))
	for _, i := range list {
		box := style.Render(pageText(pages[i], lay.PageWidth, cols, rows))
		if turning || v.Openness() < 1-0.1 {
			box = turnStyle.Render(box)
		}
		boxes = append(boxes, box)
	}

	last := pages[list[len(list)-1]]
	footer := helpStyle.Render(fmt.Sprintf("%d / %d • %d left in chapter %d of %d",
		last.Number, len(pages), last.PagesLeft, r.chapter+1, r.src.Len()))

	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(r.title()),
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...),
		footer,
	)
}

// pageText lays out page lines in cells.
func pageText(pg *paginate.Page, width float64, cols, rows int) string {
	out := make([]string, 0, rows)
	for _, l := range pg.Lines {
		out = append(out, lineText(l, width, cols))
		for range rowsOf(l) - 1 {
			out = append(out, "")
		}
	}
	if len(out) > rows {
		out = out[:rows]
	}
	return strings.Join(out, "\n")
}

func rowsOf(l *typeset.Line) int {
	return max(int(math.Round(l.Height/cellHeight)), 1)
}

// lineText renders line in cells. Free cells of justifiable lines are spread
// over their spaces, other lines are aligned as a whole.
func lineText(src *typeset.Line, width float64, cols int) string {
	l := paginate.TrimEdges(src)

	var (
		parts  = make([]string, len(l.Items))
		spaces []int
		used   int
	)
	for i, it := range l.Items {
		switch item := it.Item.(type) {
		case *typeset.Text:
			parts[i] = item.Content
			if it.HyphenEnabled {
				parts[i] += "-"
			}
			if item.ExceptStart {
				spaces = append(spaces, i)
			}
		case *typeset.Image:
			parts[i] = imageLabel(item.Source, max(int(it.Width/cellWidth), 1))
		case *typeset.Spacer:
			parts[i] = strings.Repeat(" ", int(math.Round(it.Width/cellWidth)))
		}
		used += lipgloss.Width(parts[i])
	}

	free := max(cols-used, 0)
	if len(spaces) > 0 && free > 0 && paginate.Justifiable(l, width) {
		each, extra := free/len(spaces), free%len(spaces)
		for n, i := range spaces {
			add := each
			if n < extra {
				add++
			}
			parts[i] += strings.Repeat(" ", add)
		}
		return strings.Join(parts, "")
	}

	text := strings.Join(parts, "")
	if l.Source == nil {
		return text
	}
	switch l.Source.Style.Align {
	case typeset.AlignCenter:
		return strings.Repeat(" ", free/2) + text
	case typeset.AlignRight:
		return strings.Repeat(" ", free) + text
	}
	return text
}

// imageLabel returns placeholder of image cells wide.
func imageLabel(src string, cells int) string {
	name := path.Base(src)
	if strings.HasPrefix(src, "data:") {
		name = "image"
	}
	label := "[" + name + "]"
	if r := []rune(label); len(r) > cells {
		if cells <= 2 {
			return strings.Repeat("▧", cells)
		}
		label = string(r[:cells-2]) + "…]"
	}
	return label
}
