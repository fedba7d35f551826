package css

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrNoColor is returned for values which do not denote a concrete color
// ("inherit", "currentcolor", empty string etc.).
var ErrNoColor = errors.New("not a color")

// ParseColor parses CSS color value into color and its opacity.
func ParseColor(s string) (colorful.Color, float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return colorful.Color{}, 0, ErrNoColor
	case s == "transparent":
		return colorful.Color{}, 0, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasSuffix(s, ")"):
		return parseFunction(s)
	}
	if c, ok := colornames.Map[s]; ok {
		col, _ := colorful.MakeColor(c)
		return col, 1, nil
	}
	return colorful.Color{}, 0, fmt.Errorf("%q is %w", s, ErrNoColor)
}

func parseHex(s string) (colorful.Color, float64, error) {
	hex := s[1:]
	alpha := 1.0
	switch len(hex) {
	case 4:
		a, err := strconv.ParseUint(hex[3:]+hex[3:], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("bad alpha in %q: %w", s, err)
		}
		alpha, hex = float64(a)/255, hex[:3]
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("bad alpha in %q: %w", s, err)
		}
		alpha, hex = float64(a)/255, hex[:6]
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, 0, fmt.Errorf("bad color %q: %w", s, err)
	}
	return c, alpha, nil
}

func parseFunction(s string) (colorful.Color, float64, error) {
	name, args, ok := strings.Cut(strings.TrimSuffix(s, ")"), "(")
	if !ok {
		return colorful.Color{}, 0, fmt.Errorf("%q is %w", s, ErrNoColor)
	}
	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
	if len(fields) != 3 && len(fields) != 4 {
		return colorful.Color{}, 0, fmt.Errorf("bad number of components in %q", s)
	}

	alpha := 1.0
	if len(fields) == 4 {
		a, err := component(fields[3], 1)
		if err != nil {
			return colorful.Color{}, 0, err
		}
		alpha = a
	}

	switch strings.TrimSpace(name) {
	case "rgb", "rgba":
		var rgb [3]float64
		for i := range rgb {
			v, err := component(fields[i], 255)
			if err != nil {
				return colorful.Color{}, 0, err
			}
			rgb[i] = v
		}
		return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}.Clamped(), alpha, nil
	case "hsl", "hsla":
		h, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "deg"), 64)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("bad hue in %q: %w", s, err)
		}
		sat, err := component(fields[1], 100)
		if err != nil {
			return colorful.Color{}, 0, err
		}
		light, err := component(fields[2], 100)
		if err != nil {
			return colorful.Color{}, 0, err
		}
		return colorful.Hsl(h, sat, light).Clamped(), alpha, nil
	}
	return colorful.Color{}, 0, fmt.Errorf("unsupported color function %q", name)
}

// component parses number or percentage into [0..1], plain numbers are
// divided by scale.
func component(s string, scale float64) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("bad color component %q: %w", s, err)
		}
		return clamp01(v / 100), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad color component %q: %w", s, err)
	}
	return clamp01(v / scale), nil
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
