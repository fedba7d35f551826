// Package typeset holds the typesettable content model: styled inline items
// grouped into paragraphs, and the lines a Breaker produces from them.
package typeset

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Paragraph alignment. Values are stable and used by renderers directly.
// ENUM(left, justify, center, right)
type Align int

// Color is declared text color with its opacity.
type Color struct {
	colorful.Color
	Alpha float64
}

func (c Color) String() string {
	return fmt.Sprintf("%s/%.2f", c.Hex(), c.Alpha)
}

// Decoration is the part of character style which does not affect metrics.
type Decoration struct {
	Color     *Color
	Underline bool
	Strike    bool
	Href      string
	Spoiler   bool
}

// CharStyle describes character level formatting of inline items.
type CharStyle struct {
	Bold       bool
	Italic     bool
	SmallCaps  bool
	Code       bool
	Size       float64 // multiplier of base font size
	Decoration Decoration
}

// DefaultCharStyle returns style of the root frame.
func DefaultCharStyle() CharStyle {
	return CharStyle{Size: 1}
}

// Scale returns effective size multiplier, treating unset size as 1.
func (cs CharStyle) Scale() float64 {
	if cs.Size <= 0 {
		return 1
	}
	return cs.Size
}

// ParStyle describes paragraph level formatting.
type ParStyle struct {
	Align     Align
	Quote     bool
	Join      bool // visually joined to the previous quote paragraph
	JoinNext  bool // visually joined to the next quote paragraph
	Indent    bool
	Double    bool // followed by an empty line instead of indenting the next one
	Separator bool
}

// Justifiable reports whether lines of the paragraph may be stretched to full width.
func (ps ParStyle) Justifiable() bool {
	return ps.Align == AlignLeft || ps.Align == AlignJustify
}

// StyleContext is a pair of style stacks used while walking source content.
type StyleContext struct {
	Chars Stack[CharStyle]
	Pars  Stack[ParStyle]
}

// NewStyleContext returns context with default root frames.
func NewStyleContext() StyleContext {
	return StyleContext{
		Chars: NewStack(DefaultCharStyle()),
		Pars:  NewStack(ParStyle{}),
	}
}
