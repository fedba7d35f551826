package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	"golang.org/x/image/math/fixed"

	"bookview/book"
	"bookview/content"
	"bookview/paginate"
	"bookview/typeset"
	"bookview/utils/images"
)

// density layout units are specified at
const unitDPI = 96

var (
	lightPage = color.RGBA{0xff, 0xff, 0xff, 0xff}
	lightText = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	darkPage  = color.RGBA{0x22, 0x22, 0x22, 0xff}
	darkText  = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	missing   = color.RGBA{0x99, 0x99, 0x99, 0xff}
)

// rasterizer draws laid out pages. Layout is done in units, drawing in device
// pixels with fonts scaled accordingly.
type rasterizer struct {
	metrics *typeset.FontMetrics
	res     content.Resources
	scale   float64
	light   bool
	bg, fg  color.Color
	log     *zap.Logger
}

func newRasterizer(opts book.Options, res content.Resources, dpi int, log *zap.Logger) (*rasterizer, error) {
	scale := 1.0
	if dpi > 0 {
		scale = float64(dpi) / unitDPI
	}
	m, err := typeset.NewFontMetrics(opts.FontSize*scale, opts.CodeFontSize*scale)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare fonts: %w", err)
	}
	r := &rasterizer{metrics: m, res: res, scale: scale, light: opts.Light, log: log}
	if opts.Light {
		r.bg, r.fg = lightPage, lightText
	} else {
		r.bg, r.fg = darkPage, darkText
	}
	return r, nil
}

func (r *rasterizer) Close() error {
	return r.metrics.Close()
}

// page draws page lines top to bottom on page sized canvas.
func (r *rasterizer) page(pg *paginate.Page, width, height float64) image.Image {
	dc := gg.NewContext(int(math.Ceil(width*r.scale)), int(math.Ceil(height*r.scale)))
	dc.SetColor(r.bg)
	dc.Clear()

	var top float64
	for _, l := range pg.Lines {
		r.line(dc, l, width, top)
		top += l.Height
	}
	return dc.Image()
}

func (r *rasterizer) line(dc *gg.Context, src *typeset.Line, width, top float64) {
	l := paginate.TrimEdges(src)
	var offset float64
	if _, ok := paginate.Justify(l, width); !ok && l.Source != nil {
		switch l.Source.Style.Align {
		case typeset.AlignCenter:
			offset = (width - l.Width) / 2
		case typeset.AlignRight:
			offset = width - l.Width
		}
	}
	for _, it := range l.Items {
		switch item := it.Item.(type) {
		case *typeset.Text:
			r.text(dc, item, it, offset+it.X, top, l.Height)
		case *typeset.Image:
			r.image(dc, item, it, offset+it.X, top, l.Height)
		}
	}
}

func (r *rasterizer) text(dc *gg.Context, t *typeset.Text, it typeset.Placed, x, top, height float64) {
	var (
		face    = r.metrics.Face(t.Style)
		fm      = face.Metrics()
		ascent  = fromFixed(fm.Ascent)
		descent = fromFixed(fm.Descent)
		sx      = x * r.scale
		w       = it.Width * r.scale
		base    = top*r.scale + (height*r.scale+ascent-descent)/2
		dec     = t.Style.Decoration
		col     = r.fg
	)
	if dec.Color != nil {
		col = adjust(dec.Color, r.light)
	}
	dc.SetColor(col)

	if dec.Spoiler {
		dc.DrawRectangle(sx, base-ascent, w, ascent+descent)
		dc.Fill()
		return
	}

	text := t.Content
	if t.Style.SmallCaps {
		text = strings.ToUpper(text)
	}
	if it.HyphenEnabled {
		text += "-"
	}
	dc.SetFontFace(face)
	dc.DrawString(text, sx, base)

	dc.SetLineWidth(max(1, r.scale))
	if dec.Underline || dec.Href != "" {
		dc.DrawLine(sx, base+descent/2, sx+w, base+descent/2)
		dc.Stroke()
	}
	if dec.Strike {
		dc.DrawLine(sx, base-ascent/3, sx+w, base-ascent/3)
		dc.Stroke()
	}
}

// image draws picture scaled to its placed size, sitting on line bottom.
// Pictures which cannot be loaded are drawn as empty frames.
func (r *rasterizer) image(dc *gg.Context, img *typeset.Image, it typeset.Placed, x, top, height float64) {
	var (
		w  = int(math.Round(it.Width * r.scale))
		h  = int(math.Round(it.Height * r.scale))
		sx = int(math.Round(x * r.scale))
		sy = int(math.Round((top + height - it.Height) * r.scale))
	)
	if w <= 0 || h <= 0 {
		return
	}

	pic, err := r.load(img.Source)
	if err != nil {
		r.log.Debug("Unable to draw image", zap.String("src", img.Source), zap.Error(err))
		dc.SetColor(missing)
		dc.SetLineWidth(max(1, r.scale))
		dc.DrawRectangle(float64(sx), float64(sy), float64(w), float64(h))
		dc.Stroke()
		return
	}
	dc.DrawImage(imaging.Resize(pic, w, h, imaging.Lanczos), sx, sy)
}

func (r *rasterizer) load(src string) (image.Image, error) {
	if r.res == nil {
		return nil, content.ErrNoResource
	}
	data, err := content.Load(r.res, src)
	if err != nil {
		return nil, err
	}
	return images.Decode(data)
}

// adjust returns declared text color made readable on page background.
func adjust(c *typeset.Color, light bool) color.Color {
	h, s, l := c.Hsl()
	if paginate.Inverted(c.Color, light) {
		l = 1 - l
	}
	cr, cg, cb := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: uint8(math.Round(max(0, min(c.Alpha, 1)) * 255))}
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
