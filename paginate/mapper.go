package paginate

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"bookview/typeset"
	"bookview/visual"
)

// Default weight of bold text.
const BoldWeight = 700

// ImageLoader measures natural size of images. Done may be called at any
// later time.
type ImageLoader interface {
	Load(src string, done func(width, height float64, err error))
}

// Options are visual settings of mapped pages.
type Options struct {
	FontFamily     string
	FontSize       float64
	CodeFontFamily string
	CodeFontSize   float64
	Light          bool
}

// Geometry is page box size.
type Geometry struct {
	Width  float64
	Height float64
}

// Mapper creates visual nodes for pages.
type Mapper struct {
	tree   visual.Tree
	opts   Options
	loader ImageLoader
	log    *zap.Logger

	// OnMeasured is called once for every image which natural size became
	// known after it was mapped.
	OnMeasured func(img *typeset.Image)

	// quote joining state
	prevLine    visual.Node
	prevClasses []string
	prevPar     *typeset.Paragraph
}

// NewMapper returns mapper creating nodes in tree. Loader may be nil, images
// without known size are left unmeasured then.
func NewMapper(tree visual.Tree, opts Options, loader ImageLoader, log *zap.Logger) *Mapper {
	return &Mapper{
		tree:   tree,
		opts:   opts,
		loader: loader,
		log:    log.Named("paginate"),
	}
}

// Map returns detached page node for every page.
func (m *Mapper) Map(pages []*Page, geom Geometry) []visual.Node {
	m.prevLine, m.prevClasses, m.prevPar = nil, nil, nil

	nodes := make([]visual.Node, 0, len(pages))
	for _, pg := range pages {
		nodes = append(nodes, m.page(pg, geom))
	}
	m.log.Debug("Pages mapped", zap.Int("pages", len(pages)))
	return nodes
}

func (m *Mapper) set(n visual.Node, name, value string) {
	m.tree.SetProperty(n, name, value)
}

func (m *Mapper) style(n visual.Node, name, value string) {
	m.tree.SetProperty(n, visual.Style(name), value)
}

func (m *Mapper) attach(parent, child visual.Node) {
	if err := m.tree.Attach(parent, child); err != nil {
		m.log.Warn("Unable to attach node", zap.Error(err))
	}
}

func (m *Mapper) page(pg *Page, geom Geometry) visual.Node {
	node := m.tree.CreateNode("div")
	m.set(node, visual.PropClass, "bv-page")
	m.style(node, "font-family", m.opts.FontFamily)
	m.style(node, "font-size", px(m.opts.FontSize))
	m.style(node, "width", px(geom.Width))
	m.style(node, "height", px(geom.Height))
	m.set(node, "data-page-number", strconv.Itoa(pg.Number))
	m.set(node, "data-pages-left", strconv.Itoa(pg.PagesLeft))

	for _, l := range pg.Lines {
		m.attach(node, m.line(l, geom.Width))
	}
	return node
}

func (m *Mapper) line(src *typeset.Line, width float64) visual.Node {
	l := TrimEdges(src)
	justified := false
	if _, ok := Justify(l, width); ok {
		justified = true
	}

	var (
		node    = m.tree.CreateNode("div")
		classes = []string{"bv-line"}
		par     = l.Source
	)
	if par == nil {
		par = &typeset.Paragraph{}
	}

	switch {
	case justified:
		classes = append(classes, "bv-align-justify")
	case par.Style.Align == typeset.AlignCenter:
		classes = append(classes, "bv-align-center")
	case par.Style.Align == typeset.AlignRight:
		classes = append(classes, "bv-align-right")
	default:
		classes = append(classes, "bv-align-left")
	}

	if par.Style.Quote && !l.Margin {
		classes = append(classes, "bv-quote")
		if par == m.prevPar || par.Style.Join {
			if m.prevLine != nil && !slices.Contains(m.prevClasses, "bv-join-below") {
				m.prevClasses = append(m.prevClasses, "bv-join-below")
				m.set(m.prevLine, visual.PropClass, strings.Join(m.prevClasses, " "))
			}
			classes = append(classes, "bv-join-above")
		}
	}
	if par.Style.Separator {
		classes = append(classes, "bv-separator")
	}
	if l.Margin {
		classes = append(classes, "bv-margin")
	}

	m.prevLine, m.prevClasses = node, classes
	m.prevPar = nil
	if !l.Margin {
		m.prevPar = l.Source
	}

	m.set(node, visual.PropClass, strings.Join(classes, " "))
	m.style(node, "height", px(l.Height))
	m.style(node, "line-height", px(l.Height))
	if justified {
		m.style(node, "position", "relative")
	}

	for _, it := range l.Items {
		if child := m.item(it, justified); child != nil {
			m.attach(node, child)
		}
	}
	return node
}

func (m *Mapper) item(it typeset.Placed, justified bool) visual.Node {
	switch item := it.Item.(type) {
	case *typeset.Text:
		return m.text(item, it, justified)
	case *typeset.Spacer:
		node := m.tree.CreateNode("span")
		m.set(node, visual.PropClass, "bv-spacer")
		m.style(node, "display", "inline-block")
		m.style(node, "width", px(item.Width))
		m.style(node, "height", px(item.Height))
		return node
	case *typeset.Image:
		return m.image(item, it)
	default:
		m.log.Warn("Unhandled item type, skipping", zap.String("type", fmt.Sprintf("%T", it.Item)))
		return nil
	}
}

func (m *Mapper) text(t *typeset.Text, it typeset.Placed, justified bool) visual.Node {
	cs := t.Style

	tag := "span"
	if cs.Decoration.Href != "" {
		tag = "a"
	}
	node := m.tree.CreateNode(tag)
	classes := []string{"bv-text"}
	if cs.Decoration.Spoiler {
		classes = append(classes, "bv-spoiler")
	}
	m.set(node, visual.PropClass, strings.Join(classes, " "))
	if cs.Decoration.Href != "" {
		m.set(node, "href", cs.Decoration.Href)
	}

	if cs.Italic {
		m.style(node, "font-style", "italic")
	}
	if cs.Bold {
		m.style(node, "font-weight", strconv.Itoa(BoldWeight))
	}
	if cs.SmallCaps {
		m.style(node, "font-variant-caps", "small-caps")
	}
	if s := cs.Scale(); s != 1 {
		m.style(node, "font-size", num(s)+"em")
	}
	if cs.Code {
		m.style(node, "font-family", m.opts.CodeFontFamily)
		m.style(node, "font-size", px(m.opts.CodeFontSize))
	}
	switch {
	case cs.Decoration.Underline && cs.Decoration.Strike:
		m.style(node, "text-decoration-line", "underline line-through")
	case cs.Decoration.Underline:
		m.style(node, "text-decoration-line", "underline")
	case cs.Decoration.Strike:
		m.style(node, "text-decoration-line", "line-through")
	}
	if c := cs.Decoration.Color; c != nil {
		m.style(node, "color", Adjust(c, m.opts.Light))
	}

	content := t.Content
	if it.HyphenEnabled {
		content += "-"
	}
	m.set(node, visual.PropText, content)

	if justified {
		m.style(node, "position", "absolute")
		m.style(node, "left", px(it.X))
		m.style(node, "bottom", "0")
		m.style(node, "white-space", "pre")
	}
	return node
}

func (m *Mapper) image(img *typeset.Image, it typeset.Placed) visual.Node {
	node := m.tree.CreateNode("img")
	m.set(node, "src", img.Source)
	m.style(node, "max-width", "100%")
	if img.Sized() {
		m.style(node, "width", px(it.Width))
		m.style(node, "height", px(it.Height))
		return node
	}
	if m.loader == nil || !img.RequestMeasure() {
		return node
	}

	fired := false
	m.loader.Load(img.Source, func(width, height float64, err error) {
		if fired {
			return
		}
		fired = true
		if err != nil {
			m.log.Debug("Unable to load image", zap.String("src", img.Source), zap.Error(err))
			return
		}
		if width <= 0 || height <= 0 {
			m.log.Debug("Image has no size", zap.String("src", img.Source))
			return
		}
		img.Width, img.Height = width, height
		if m.OnMeasured != nil {
			m.OnMeasured(img)
		}
	})
	return node
}

// Adjust returns CSS color keeping text readable on the page background:
// in dark mode dark colors are inverted, in light mode light ones are.
func Adjust(c *typeset.Color, light bool) string {
	h, s, l := c.Hsl()
	if Inverted(c.Color, light) {
		l = 1 - l
	}
	return fmt.Sprintf("hsla(%d, %d%%, %d%%, %.2f)",
		int(math.Round(h)), int(math.Round(s*100)), int(math.Round(l*100)), c.Alpha)
}

// Inverted reports whether Adjust changes lightness of the color.
func Inverted(c colorful.Color, light bool) bool {
	_, _, l := c.Hsl()
	return (!light && l < 0.4) || (light && l > 0.8)
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}
