package paginate

import (
	"bookview/typeset"
)

const (
	// Lines narrower than this part of content width are left ragged.
	justifyThreshold = 0.8
	// Space wider than maxSpace is replaced with fallbackSpace leaving line
	// short of full width.
	maxSpace      = 10
	fallbackSpace = 6
)

// TrimEdges returns copy of the line without whitespace items at its start
// and its end. Source line is not modified.
func TrimEdges(l *typeset.Line) *typeset.Line {
	nl := l.Clone()
	items := nl.Items
	for len(items) > 0 && isSpace(items[0].Item) {
		items = items[1:]
	}
	for len(items) > 0 && isSpace(items[len(items)-1].Item) {
		items = items[:len(items)-1]
	}
	nl.Items = items
	nl.Measure()
	return nl
}

// Justifiable reports whether line should be stretched to content width.
func Justifiable(l *typeset.Line, width float64) bool {
	if l.Source == nil || l.Margin || l.Last {
		return false
	}
	return l.Source.Style.Justifiable() && l.Width > width*justifyThreshold
}

// Justify distributes free space of the line between its whitespace items
// assigning running X offsets to all items. It returns width of single space
// and false when line is not justifiable or has no spaces. Line is modified
// in place, callers justify trimmed copies.
func Justify(l *typeset.Line, width float64) (float64, bool) {
	if !Justifiable(l, width) {
		return 0, false
	}

	var (
		filled float64
		spaces int
	)
	for _, it := range l.Items {
		if isSpace(it.Item) {
			spaces++
		} else {
			filled += it.Width
		}
	}
	if spaces == 0 {
		return 0, false
	}

	space := (width - filled) / float64(spaces)
	if space > maxSpace {
		space = fallbackSpace
	}

	var x float64
	for i := range l.Items {
		l.Items[i].X = x
		if isSpace(l.Items[i].Item) {
			l.Items[i].Width = space
		}
		x += l.Items[i].Width
	}
	l.Width = x
	l.Justified = true
	return space, true
}

func isSpace(item typeset.Inline) bool {
	t, ok := item.(*typeset.Text)
	return ok && t.ExceptStart
}
