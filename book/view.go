// Package book implements paginated animated reading view: it renders content
// into pages, mounts visible pages onto a visual tree and drives open/close
// and page turn animation from keyboard navigation.
package book

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"bookview/content"
	"bookview/extract"
	"bookview/paginate"
	"bookview/spring"
	"bookview/typeset"
	"bookview/utils/images"
	"bookview/visual"
)

// ErrNotContent is returned by Render for input which is not a content tree.
var ErrNotContent = extract.ErrNotContent

// ErrClosed is returned when using view after Close.
var ErrClosed = errors.New("view is closed")

// Host is everything view needs from its surroundings.
type Host struct {
	// Tree is the surface view draws on, overlay is attached under Root.
	Tree visual.Tree
	Root visual.Node
	// Loop steps view springs.
	Loop *spring.Loop
	// Session keeps book mode across views, may be nil.
	Session Session
	// Images measures images, may be nil. When nil images are measured from
	// resources of rendered document.
	Images paginate.ImageLoader
	// Breaker breaks paragraphs into lines, may be nil. When nil lines are
	// measured with Go fonts of configured sizes.
	Breaker typeset.Breaker
	// Dispatcher runs asynchronous notifications, may be nil.
	Dispatcher *Dispatcher
	Viewport   Viewport
}

// overlay is the node structure of the view.
type overlay struct {
	container  visual.Node
	background visual.Node
	header     visual.Node
	title      visual.Node
	pages      visual.Node
	footer     visual.Node
}

// View is book reading surface. All methods must be called from the single
// goroutine owning the view.
type View struct {
	tree       visual.Tree
	root       visual.Node
	session    Session
	dispatcher *Dispatcher
	log        *zap.Logger

	opts     Options
	settings Settings

	// breaking
	breaker typeset.Breaker
	ownBrk  bool
	metrics *typeset.FontMetrics
	images  paginate.ImageLoader
	ownImg  bool

	ui overlay

	open     bool
	openness *spring.Spring
	position *spring.Spring
	stop     []func()

	viewport        Viewport
	pendingRelayout bool

	pars    []*typeset.Paragraph
	ctx     RenderContext
	layout  Layout
	pages   []*paginate.Page
	nodes   []visual.Node
	mounted []int
	current int

	laying    bool
	remeasure bool

	handlers map[Event][]*handler
	closed   bool
}

// New creates closed view attached to host tree. When session has book mode
// flag set view opens immediately.
func New(host Host, opts Options, settings Settings, log *zap.Logger) (*View, error) {
	if host.Tree == nil || host.Loop == nil {
		return nil, errors.New("view requires visual tree and animation loop")
	}
	if host.Dispatcher == nil {
		host.Dispatcher = &Dispatcher{}
	}

	v := &View{
		tree:       host.Tree,
		root:       host.Root,
		session:    host.Session,
		dispatcher: host.Dispatcher,
		log:        log.Named("book"),
		opts:       opts,
		settings:   settings,
		breaker:    host.Breaker,
		images:     host.Images,
		viewport:   host.Viewport,
		handlers:   make(map[Event][]*handler),
	}
	if v.breaker == nil {
		if err := v.prepareBreaker(); err != nil {
			return nil, err
		}
	}

	v.openness = host.Loop.New(settings.Open.DampingRatio, settings.Open.Period)
	v.position = host.Loop.New(settings.Position.DampingRatio, settings.Position.Period)
	v.stop = append(v.stop, v.openness.OnUpdate(v.tick), v.position.OnUpdate(v.tick))

	v.buildOverlay()
	v.resume()
	return v, nil
}

// prepareBreaker creates font metrics of current options and cached greedy
// breaker over them.
func (v *View) prepareBreaker() error {
	m, err := typeset.NewFontMetrics(v.opts.FontSize, v.opts.CodeFontSize)
	if err != nil {
		return fmt.Errorf("unable to prepare font metrics: %w", err)
	}
	if v.metrics != nil {
		if err := v.metrics.Close(); err != nil {
			v.log.Debug("Unable to close font metrics", zap.Error(err))
		}
	}
	v.metrics = m
	v.breaker, v.ownBrk = typeset.NewCache(typeset.NewGreedy(m)), true
	return nil
}

func (v *View) set(n visual.Node, name, value string) {
	v.tree.SetProperty(n, name, value)
}

func (v *View) style(n visual.Node, name, value string) {
	v.tree.SetProperty(n, visual.Style(name), value)
}

func (v *View) attach(parent, child visual.Node) {
	if err := v.tree.Attach(parent, child); err != nil {
		v.log.Warn("Unable to attach node", zap.Error(err))
	}
}

func (v *View) detach(parent, child visual.Node) {
	if err := v.tree.Detach(parent, child); err != nil {
		v.log.Warn("Unable to detach node", zap.Error(err))
	}
}

// buildOverlay creates
//
//	#bv-book-view
//	|- .bv-background
//	|- .bv-header
//	|  |- .bv-content-title
//	|- .bv-pages
//	|- .bv-footer
func (v *View) buildOverlay() {
	node := func(tag, class string) visual.Node {
		n := v.tree.CreateNode(tag)
		v.set(n, visual.PropClass, class)
		return n
	}
	ui := overlay{
		container:  v.tree.CreateNode("div"),
		background: node("div", "bv-background"),
		header:     node("header", "bv-header"),
		title:      node("div", "bv-content-title"),
		pages:      node("div", "bv-pages"),
		footer:     node("footer", "bv-footer"),
	}
	v.set(ui.container, "id", "bv-book-view")
	v.style(ui.container, "display", "none")

	v.attach(ui.container, ui.background)
	v.attach(ui.container, ui.header)
	v.attach(ui.header, ui.title)
	v.attach(ui.container, ui.pages)
	v.attach(ui.container, ui.footer)
	if v.root != nil {
		v.attach(v.root, ui.container)
	}
	v.ui = ui
	v.applyLight()
}

func (v *View) applyLight() {
	if v.opts.Light {
		v.set(v.ui.container, visual.PropClass, "light")
	} else {
		v.set(v.ui.container, visual.PropClass, "")
	}
}

// Render extracts content of node and shows it paginated. Node must be an
// element or a document, doc supplies styles, hyphenation and resources of
// the content and may be nil.
func (v *View) Render(node *html.Node, doc *content.Document) error {
	if v.closed {
		return ErrClosed
	}
	if node == nil || (node.Type != html.ElementNode && node.Type != html.DocumentNode) {
		return fmt.Errorf("unable to render: %w", ErrNotContent)
	}

	var (
		hyph extract.Hyphenator
		ex   *extract.Extractor
	)
	if doc != nil && doc.Hyphen != nil {
		hyph = doc.Hyphen
	}
	if doc != nil {
		ex = extract.New(doc.Styles, hyph, extract.Options{DoubleParagraphs: v.opts.DoubleParagraphs}, v.log)
		if v.images == nil || v.ownImg {
			if doc.Resources != nil {
				v.images, v.ownImg = images.NewLoader(doc.Resources, v.dispatcher.Post, v.log), true
			}
		}
	} else {
		ex = extract.New(nil, nil, extract.Options{DoubleParagraphs: v.opts.DoubleParagraphs}, v.log)
	}

	pars, err := ex.Extract(node)
	if err != nil {
		return fmt.Errorf("unable to render: %w", err)
	}
	v.RenderParagraphs(pars, RenderContext{Width: v.settings.ContextWidth(v.viewport)})
	return nil
}

// RenderParagraphs paginates paragraphs with given context replacing
// currently shown content.
func (v *View) RenderParagraphs(pars []*typeset.Paragraph, ctx RenderContext) {
	if v.closed {
		return
	}
	v.pars, v.ctx = pars, ctx
	v.relayout()
}

// SetConfig replaces view options. Visible content is laid out again.
func (v *View) SetConfig(opts Options) error {
	if v.closed {
		return ErrClosed
	}
	fontsChanged := opts.FontSize != v.opts.FontSize || opts.CodeFontSize != v.opts.CodeFontSize
	v.opts = opts
	if fontsChanged && v.ownBrk {
		if err := v.prepareBreaker(); err != nil {
			return err
		}
	}
	v.applyLight()
	if v.pars != nil {
		v.relayout()
	}
	return nil
}

// SetTitle sets displayed content title.
func (v *View) SetTitle(text string) {
	v.set(v.ui.title, visual.PropText, text)
}

// Close detaches view from its host tree and releases resources. Book mode
// flag is left as is so next view may resume.
func (v *View) Close() (err error) {
	if v.closed {
		return nil
	}
	v.closed = true
	for _, stop := range v.stop {
		stop()
	}
	v.openness.Stop()
	v.position.Stop()
	if v.root != nil {
		if e := v.tree.Detach(v.root, v.ui.container); e != nil {
			err = multierr.Append(err, e)
		}
	}
	if v.metrics != nil {
		err = multierr.Append(err, v.metrics.Close())
	}
	return err
}

// forgetter is a caching breaker.
type forgetter interface {
	Forget(keep []*typeset.Paragraph)
}

// relayout computes layout, paginates content, maps pages and refreshes
// animation targets. Images measured while mapping cause another pass.
func (v *View) relayout() {
	if v.closed {
		return
	}
	if v.laying {
		v.remeasure = true
		return
	}
	v.laying = true
	defer func() { v.laying = false }()

	for {
		v.remeasure = false
		v.layoutPages()
		if !v.remeasure {
			break
		}
	}
	v.updatePages()
}

func (v *View) layoutPages() {
	v.layout = v.settings.layout(v.viewport, v.ctx)
	v.style(v.ui.pages, "height", fmt.Sprintf("%gpx", v.layout.PageHeight))

	// lines of replaced content and of previous end marker are not needed
	if c, ok := v.breaker.(forgetter); ok {
		c.Forget(v.pars)
	}
	v.pages = paginate.Paginate(v.pars, v.breaker, v.ctx.Width, v.layout.PageHeight)
	if v.current >= len(v.pages) {
		v.current = max(len(v.pages)-1, 0)
	}

	for _, i := range v.mounted {
		v.detach(v.ui.pages, v.nodes[i])
	}
	v.mounted = nil

	mapper := paginate.NewMapper(v.tree, v.opts.mapping(), v.images, v.log)
	mapper.OnMeasured = func(*typeset.Image) { v.relayout() }
	v.nodes = mapper.Map(v.pages, paginate.Geometry{Width: v.ctx.Width, Height: v.layout.PageHeight})

	v.log.Debug("Content laid out",
		zap.Int("paragraphs", len(v.pars)),
		zap.Int("pages", len(v.pages)),
		zap.Bool("two-pages", v.layout.TwoPages),
		zap.Float64("page-height", v.layout.PageHeight))
}

// updatePages retargets springs after state change.
func (v *View) updatePages() {
	if v.open {
		v.openness.Target = 1
	} else {
		v.openness.Target = 0
	}
	v.openness.Start()

	if v.layout.TwoPages {
		v.current = v.current / 2 * 2
	}
	v.position.Target = float64(v.current)
	v.position.Start()

	v.applyLight()
	v.tick()
}

// Open reports whether view is open or opening.
func (v *View) Open() bool { return v.open }

// Openness returns current openness, 0 closed and 1 open.
func (v *View) Openness() float64 { return v.openness.Value }

// Position returns current page position and its target.
func (v *View) Position() (value, target float64) {
	return v.position.Value, v.position.Target
}

// Current returns index of the current page.
func (v *View) Current() int { return v.current }

// Layout returns current layout.
func (v *View) Layout() Layout { return v.layout }

// Pages returns current pages.
func (v *View) Pages() []*paginate.Page { return v.pages }

// Paragraphs returns content of the last render.
func (v *View) Paragraphs() []*typeset.Paragraph { return v.pars }

// PageNodes returns visual nodes of current pages.
func (v *View) PageNodes() []visual.Node { return v.nodes }

// Container returns root node of the view overlay.
func (v *View) Container() visual.Node { return v.ui.container }

// Dispatcher returns dispatcher running view notifications.
func (v *View) Dispatcher() *Dispatcher { return v.dispatcher }
