package typeset

// Inline is one of *Text, *Image or *Spacer.
type Inline interface {
	inline()
}

// Text is a run of characters sharing one style. Words are split into
// syllables, each syllable being separate Text with Hyphen set on all but the
// last one.
type Text struct {
	Content     string
	Style       CharStyle
	ExceptStart bool // whitespace, dropped when it ends up at a line edge
	Hyphen      bool // line may break after this item showing a hyphen
}

// Image is an embedded picture. Zero Width or Height means size is not known
// yet and has to be measured.
type Image struct {
	Source string
	Width  float64
	Height float64
	Style  CharStyle

	measureRequested bool
}

// Spacer is an invisible box of fixed size.
type Spacer struct {
	Width  float64
	Height float64
}

func (*Text) inline()   {}
func (*Image) inline()  {}
func (*Spacer) inline() {}

// IsDash reports whether text is a lone dash token line may break after.
func (t *Text) IsDash() bool {
	switch t.Content {
	case "-", "–", "—":
		return true
	}
	return false
}

// Sized reports whether image dimensions are known.
func (img *Image) Sized() bool {
	return img.Width > 0 && img.Height > 0
}

// RequestMeasure returns true only on the first call for the image.
func (img *Image) RequestMeasure() bool {
	if img.measureRequested {
		return false
	}
	img.measureRequested = true
	return true
}

// Paragraph is a unit of content sharing paragraph style.
type Paragraph struct {
	Style   ParStyle
	Content []Inline
}

// Placed is an inline item positioned on a line.
type Placed struct {
	Item   Inline
	Width  float64
	Height float64
	X      float64
	// HyphenEnabled is set on the last syllable of a line when the word
	// continues on the next line.
	HyphenEnabled bool
}

// Line is a single row of placed items. Lines are atomic for pagination.
type Line struct {
	Width     float64
	Height    float64
	Items     []Placed
	Source    *Paragraph
	Margin    bool // empty line separating paragraphs
	Last      bool // last content line of its paragraph
	Justified bool
}

// Clone returns copy of the line with its own items slice.
func (l *Line) Clone() *Line {
	nl := *l
	nl.Items = append([]Placed(nil), l.Items...)
	return &nl
}

// Measure recomputes line width and running X offsets from item widths.
func (l *Line) Measure() {
	var x float64
	for i := range l.Items {
		l.Items[i].X = x
		x += l.Items[i].Width
	}
	l.Width = x
}
