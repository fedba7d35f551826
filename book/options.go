package book

import (
	"math"

	"bookview/config"
	"bookview/paginate"
)

// Options are recognized view settings.
type Options struct {
	FontFamily     string
	FontSize       float64
	CodeFontFamily string
	CodeFontSize   float64
	// OpenKey toggles the view open and closed.
	OpenKey string
	// DoubleParagraphs separates paragraphs with an empty line instead of
	// indenting their first lines.
	DoubleParagraphs bool
	// Light selects color inversion for light page background.
	Light bool
}

// DefaultOptions returns options used when view was not configured.
func DefaultOptions() Options {
	return Options{
		FontFamily:     "Baskerville, Palatino, Linux Libertine O, serif",
		FontSize:       13,
		CodeFontFamily: "Menlo, Hack, Fira Mono, monospace",
		CodeFontSize:   11,
		OpenKey:        ";",
		Light:          true,
	}
}

func (o Options) mapping() paginate.Options {
	return paginate.Options{
		FontFamily:     o.FontFamily,
		FontSize:       o.FontSize,
		CodeFontFamily: o.CodeFontFamily,
		CodeFontSize:   o.CodeFontSize,
		Light:          o.Light,
	}
}

// SpringParams describe spring behavior.
type SpringParams struct {
	DampingRatio float64
	Period       float64 // seconds
}

// Settings are layout and animation parameters of the view.
type Settings struct {
	// BaseWidth is preferred page content width.
	BaseWidth float64
	// Breakpoint is viewport width above which two pages are shown.
	Breakpoint float64
	// Page height is PageHeightFraction of viewport height but no more
	// than PageHeightCap.
	PageHeightCap      float64
	PageHeightFraction float64
	Open               SpringParams
	Position           SpringParams
}

// DefaultSettings returns default layout and animation parameters.
func DefaultSettings() Settings {
	return Settings{
		BaseWidth:          400,
		Breakpoint:         900,
		PageHeightCap:      500,
		PageHeightFraction: 0.64,
		Open:               SpringParams{DampingRatio: 0.85, Period: 0.4},
		Position:           SpringParams{DampingRatio: 1, Period: 0.4},
	}
}

// FromConfig returns view options and settings from configuration.
func FromConfig(cfg *config.Config) (Options, Settings) {
	opts := Options{
		FontFamily:       cfg.View.FontFamily,
		FontSize:         cfg.View.FontSize,
		CodeFontFamily:   cfg.View.CodeFontFamily,
		CodeFontSize:     cfg.View.CodeFontSize,
		OpenKey:          cfg.View.OpenKey,
		DoubleParagraphs: cfg.View.DoubleParagraphs,
		Light:            cfg.View.Light,
	}
	settings := Settings{
		BaseWidth:          cfg.View.BaseWidth,
		Breakpoint:         cfg.Layout.Breakpoint,
		PageHeightCap:      cfg.Layout.PageHeightCap,
		PageHeightFraction: cfg.Layout.PageHeightFraction,
		Open:               SpringParams(cfg.Animation.Open),
		Position:           SpringParams(cfg.Animation.Position),
	}
	return opts, settings
}

// Viewport is size of the surface view is shown on.
type Viewport struct {
	Width  float64
	Height float64
}

// ViewportFromConfig returns configured default viewport.
func ViewportFromConfig(cfg *config.Config) Viewport {
	return Viewport{Width: float64(cfg.Layout.Viewport.Width), Height: float64(cfg.Layout.Viewport.Height)}
}

// Layout is derived page arrangement.
type Layout struct {
	TwoPages   bool
	PageWidth  float64
	PageHeight float64
}

// RenderContext is typesetting context of rendered content.
type RenderContext struct {
	// Width is page content width.
	Width float64
}

// ContextWidth returns page content width for viewport: base width limited to
// 1/2.5 of viewport width but never below 70% of base width.
func (s Settings) ContextWidth(vp Viewport) float64 {
	return math.Max(math.Min(s.BaseWidth, vp.Width/2.5), s.BaseWidth*0.7)
}

func (s Settings) layout(vp Viewport, ctx RenderContext) Layout {
	return Layout{
		TwoPages:   vp.Width > s.Breakpoint,
		PageWidth:  ctx.Width,
		PageHeight: math.Min(s.PageHeightCap, vp.Height*s.PageHeightFraction),
	}
}
