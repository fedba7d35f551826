package typeset

// Breaker splits a paragraph into lines of given width.
type Breaker interface {
	Break(p *Paragraph, width float64) []*Line
}

const hyphenGlyph = "-"

// Greedy is first-fit line breaker. Lines may break after whitespace, after
// a syllable which allows hyphenation, after a dash and around images and
// spacers. A line which has no break opportunity is allowed to overflow.
type Greedy struct {
	Metrics Metrics
	// Indent is width of the first line indentation for indented paragraphs.
	Indent float64
}

// NewGreedy returns breaker with indentation of 1.5 base line heights.
func NewGreedy(m Metrics) *Greedy {
	return &Greedy{Metrics: m, Indent: m.LineHeight(DefaultCharStyle()) * 1.5}
}

type lineBuilder struct {
	items []Placed
	width float64
	// number of leading items which may be emitted as a line, 0 when there is no break opportunity
	lastBreak int
}

func (lb *lineBuilder) add(p Placed, breakAfter bool) {
	lb.items = append(lb.items, p)
	lb.width += p.Width
	if breakAfter {
		lb.lastBreak = len(lb.items)
	}
}

func (g *Greedy) Break(p *Paragraph, width float64) []*Line {
	var (
		lines []*Line
		lb    = &lineBuilder{}
	)

	emit := func(n int) {
		items := lb.items[:n]
		rest := append([]Placed(nil), lb.items[n:]...)
		lines = append(lines, g.newLine(p, items))
		lb = &lineBuilder{}
		for _, it := range rest {
			lb.add(it, breaksAfter(it.Item))
		}
	}

	if p.Style.Indent && g.Indent > 0 {
		sp := &Spacer{Width: g.Indent}
		lb.add(Placed{Item: sp, Width: sp.Width}, false)
	}

	for _, item := range p.Content {
		placed := g.place(item, width)

		need := placed.Width
		if t, ok := item.(*Text); ok && t.Hyphen {
			need += g.Metrics.Advance(hyphenGlyph, t.Style)
		}

		whitespace := false
		if t, ok := item.(*Text); ok && t.ExceptStart {
			whitespace = true
		}

		if _, ok := item.(*Text); !ok && len(lb.items) > 0 {
			lb.lastBreak = len(lb.items)
		}

		if len(lb.items) > 0 && !whitespace && lb.width+need > width {
			switch {
			case lb.lastBreak > 0:
				emit(lb.lastBreak)
			default:
				emit(len(lb.items))
			}
			// carried over items may still not leave enough room
			if len(lb.items) > 0 && lb.width+need > width && lb.lastBreak > 0 {
				emit(lb.lastBreak)
			}
		}

		lb.add(placed, breaksAfter(item))
	}

	if len(lb.items) > 0 || len(lines) == 0 {
		lines = append(lines, g.newLine(p, lb.items))
	}
	lines[len(lines)-1].Last = true

	if p.Style.Double {
		lines = append(lines, &Line{
			Height: g.Metrics.LineHeight(DefaultCharStyle()),
			Source: p,
			Margin: true,
		})
	}
	return lines
}

func breaksAfter(item Inline) bool {
	switch it := item.(type) {
	case *Text:
		return it.ExceptStart || it.Hyphen || it.IsDash()
	case *Image, *Spacer:
		return true
	}
	return false
}

// place measures an item.
func (g *Greedy) place(item Inline, width float64) Placed {
	p := Placed{Item: item}
	switch it := item.(type) {
	case *Text:
		p.Width = g.Metrics.Advance(it.Content, it.Style)
		p.Height = g.Metrics.LineHeight(it.Style)
	case *Image:
		if it.Sized() {
			p.Width, p.Height = it.Width, it.Height
			if p.Width > width && width > 0 {
				p.Height *= width / p.Width
				p.Width = width
			}
		} else {
			// placeholder until the image is measured
			p.Height = g.Metrics.LineHeight(it.Style)
		}
	case *Spacer:
		p.Width, p.Height = it.Width, it.Height
	}
	return p
}

func (g *Greedy) newLine(p *Paragraph, items []Placed) *Line {
	l := &Line{
		Items:  append([]Placed(nil), items...),
		Source: p,
	}
	if n := len(l.Items); n > 0 {
		if t, ok := l.Items[n-1].Item.(*Text); ok && t.Hyphen {
			l.Items[n-1].HyphenEnabled = true
			l.Items[n-1].Width += g.Metrics.Advance(hyphenGlyph, t.Style)
		}
	}
	for _, it := range l.Items {
		l.Height = max(l.Height, it.Height)
	}
	if l.Height == 0 {
		l.Height = g.Metrics.LineHeight(DefaultCharStyle())
	}
	l.Measure()
	return l
}
