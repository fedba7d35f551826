// Package reader shows chapters of a source in terminal book view.
package reader

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"bookview/book"
	"bookview/hosts"
	"bookview/spring"
	"bookview/typeset"
	"bookview/utils/images"
	"bookview/visual"
)

// Terminal cell size in view units.
const (
	cellWidth  = 8
	cellHeight = 16
)

// cellMetrics measures text in terminal cells. Every style occupies the same
// cell so scale is ignored.
type cellMetrics struct{}

func (cellMetrics) Advance(text string, _ typeset.CharStyle) float64 {
	return float64(lipgloss.Width(text) * cellWidth)
}

func (cellMetrics) LineHeight(typeset.CharStyle) float64 {
	return cellHeight
}

// Config is reader setup.
type Config struct {
	Options   book.Options
	Settings  book.Settings
	FrameRate int
	// Viewport is used until terminal reports its size.
	Viewport book.Viewport
}

// Reader owns book view of the current chapter and switches chapters when
// view asks for it.
type Reader struct {
	ctx      context.Context
	src      hosts.Source
	registry *hosts.Registry
	session  book.Session
	cfg      Config
	log      *zap.Logger

	tree     *visual.Document
	loop     *spring.Loop
	disp     *book.Dispatcher
	breaker  typeset.Breaker
	viewport book.Viewport

	view    *book.View
	loader  *images.Loader
	content *hosts.Content
	chapter int
	pending int
	status  string
}

// New returns reader of the source. Chapter is not shown until Show is
// called.
func New(ctx context.Context, src hosts.Source, registry *hosts.Registry, session book.Session, cfg Config, log *zap.Logger) *Reader {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	return &Reader{
		ctx:      ctx,
		src:      src,
		registry: registry,
		session:  session,
		cfg:      cfg,
		log:      log.Named("reader"),
		tree:     visual.NewDocument("body"),
		loop:     spring.NewLoop(),
		disp:     &book.Dispatcher{},
		breaker:  typeset.NewCache(typeset.NewGreedy(cellMetrics{})),
		viewport: cfg.Viewport,
		chapter:  -1,
		pending:  -1,
	}
}

// Show replaces current view with a new one showing chapter i. Book mode of
// the session carries over so the new view opens when old one was open.
func (r *Reader) Show(i int) error {
	if i < 0 || i >= r.src.Len() {
		return fmt.Errorf("chapter %d out of range [0, %d)", i, r.src.Len())
	}
	doc, err := r.src.Open(r.ctx, i)
	if err != nil {
		return fmt.Errorf("unable to open chapter %d: %w", i, err)
	}

	if err := r.closeView(); err != nil {
		r.log.Warn("Unable to close view", zap.Error(err))
	}

	r.loader = images.NewLoader(doc.Resources, r.disp.Post, r.log)
	v, err := book.New(book.Host{
		Tree:       r.tree,
		Root:       r.tree.Root,
		Loop:       r.loop,
		Session:    r.session,
		Images:     r.loader,
		Breaker:    r.breaker,
		Dispatcher: r.disp,
		Viewport:   r.viewport,
	}, r.cfg.Options, r.cfg.Settings, r.log)
	if err != nil {
		return err
	}
	r.view, r.chapter, r.status = v, i, ""
	v.On(book.EventNextChapter, r.nextChapter)
	v.On(book.EventPrevChapter, r.prevChapter)

	c, err := r.registry.Show(v, doc)
	if err != nil {
		return err
	}
	r.content = c
	if c == nil {
		r.status = "Nothing to read in this chapter"
	}
	r.log.Debug("Chapter shown", zap.Int("chapter", i), zap.String("source", doc.SrcName))
	return nil
}

func (r *Reader) closeView() error {
	if r.view == nil {
		return nil
	}
	err := r.view.Close()
	r.view = nil
	if r.loader != nil {
		r.loader.Wait()
		r.loader = nil
	}
	return err
}

// Close closes current view.
func (r *Reader) Close() error {
	return r.closeView()
}

// link returns chapter target declared by the page or neighbouring chapter.
func (r *Reader) link(ref string, step int) int {
	if ref != "" {
		if i, ok := r.src.Resolve(r.chapter, ref); ok {
			return i
		}
	}
	return r.chapter + step
}

func (r *Reader) nextChapter() {
	var ref string
	if r.content != nil {
		ref = r.content.Next
	}
	r.request(r.link(ref, 1), "Last chapter")
}

func (r *Reader) prevChapter() {
	var ref string
	if r.content != nil {
		ref = r.content.Prev
	}
	r.request(r.link(ref, -1), "First chapter")
}

// request schedules chapter switch to happen after view finishes handling
// current key.
func (r *Reader) request(i int, edge string) {
	if i < 0 || i >= r.src.Len() {
		r.status = edge
		return
	}
	r.pending = i
}

// flush performs scheduled chapter switch.
func (r *Reader) flush() error {
	if r.pending < 0 {
		return nil
	}
	i := r.pending
	r.pending = -1
	return r.Show(i)
}

// HandleKey passes key to the view and switches chapter if view asked for
// it. Key names are the ones book view understands.
func (r *Reader) HandleKey(key string) (bool, error) {
	if r.view == nil {
		return false, nil
	}
	r.status = ""
	handled := r.view.HandleKey(key)
	return handled, r.flush()
}

// Resize sets terminal size in cells.
func (r *Reader) Resize(cols, rows int) {
	r.viewport = book.Viewport{Width: float64(cols * cellWidth), Height: float64(rows * cellHeight)}
	if r.view != nil {
		r.view.SetViewport(r.viewport)
	}
}

// Frame advances animation by dt seconds and runs notifications posted by
// background image measurements.
func (r *Reader) Frame(dt float64) error {
	r.loop.Frame(dt)
	r.disp.Drain()
	return r.flush()
}

// View returns current book view, nil before first chapter is shown.
func (r *Reader) View() *book.View {
	return r.view
}

// Chapter returns index of shown chapter.
func (r *Reader) Chapter() int {
	return r.chapter
}

// Run shows chapter start and runs terminal program until user quits.
func (r *Reader) Run(start int) error {
	if err := r.Show(start); err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			r.log.Warn("Unable to close view", zap.Error(err))
		}
	}()

	p := tea.NewProgram(newModel(r), tea.WithAltScreen(), tea.WithContext(r.ctx))
	m, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("reader failed: %w", err)
	}
	if fm, ok := m.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (r *Reader) frameInterval() time.Duration {
	return time.Second / time.Duration(r.cfg.FrameRate)
}
