package typeset

import (
	"fmt"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Metrics measures styled text.
type Metrics interface {
	Advance(text string, style CharStyle) float64
	LineHeight(style CharStyle) float64
}

// small capitals are rendered as capitals of reduced size
const smallCapsScale = 0.8

type variant int

const (
	variantRegular variant = iota
	variantBold
	variantItalic
	variantBoldItalic
	variantMono
)

type faceKey struct {
	v    variant
	size float64
}

// FontMetrics measures text with Go fonts at given base sizes.
// NOTE: not to be used concurrently.
type FontMetrics struct {
	FontSize     float64
	CodeFontSize float64
	// LineSpacing is multiplier applied to font height.
	LineSpacing float64

	fonts map[variant]*truetype.Font
	faces map[faceKey]font.Face
}

// NewFontMetrics parses embedded fonts.
func NewFontMetrics(fontSize, codeFontSize float64) (*FontMetrics, error) {
	sources := map[variant][]byte{
		variantRegular:    goregular.TTF,
		variantBold:       gobold.TTF,
		variantItalic:     goitalic.TTF,
		variantBoldItalic: gobolditalic.TTF,
		variantMono:       gomono.TTF,
	}
	m := &FontMetrics{
		FontSize:     fontSize,
		CodeFontSize: codeFontSize,
		LineSpacing:  1.4,
		fonts:        make(map[variant]*truetype.Font, len(sources)),
		faces:        make(map[faceKey]font.Face),
	}
	for v, data := range sources {
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse font (%d): %w", v, err)
		}
		m.fonts[v] = f
	}
	return m, nil
}

// Face returns font face for the style, faces are cached.
func (m *FontMetrics) Face(style CharStyle) font.Face {
	key := faceKey{v: variantRegular, size: m.size(style)}
	switch {
	case style.Code:
		key.v = variantMono
	case style.Bold && style.Italic:
		key.v = variantBoldItalic
	case style.Bold:
		key.v = variantBold
	case style.Italic:
		key.v = variantItalic
	}
	if style.SmallCaps {
		key.size *= smallCapsScale
	}
	if face, ok := m.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(m.fonts[key.v], &truetype.Options{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	m.faces[key] = face
	return face
}

func (m *FontMetrics) size(style CharStyle) float64 {
	if style.Code {
		return m.CodeFontSize * style.Scale()
	}
	return m.FontSize * style.Scale()
}

func (m *FontMetrics) Advance(text string, style CharStyle) float64 {
	if style.SmallCaps {
		text = strings.ToUpper(text)
	}
	return fromFixed(font.MeasureString(m.Face(style), text))
}

func (m *FontMetrics) LineHeight(style CharStyle) float64 {
	// small capitals do not change line height
	style.SmallCaps = false
	return fromFixed(m.Face(style).Metrics().Height) * m.LineSpacing
}

// Close releases cached faces.
func (m *FontMetrics) Close() error {
	for k, f := range m.faces {
		f.Close()
		delete(m.faces, k)
	}
	return nil
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
