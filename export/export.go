// Package export writes fully opened book view pages of a source to files.
package export

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"image"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"bookview/book"
	"bookview/config"
	"bookview/content"
	"bookview/extract"
	"bookview/hosts"
	"bookview/paginate"
	"bookview/spring"
	"bookview/state"
	"bookview/utils/images"
	"bookview/visual"
)

//go:embed pages.css
var stylesheet string

const (
	settleStep   = 1.0 / 60
	settleFrames = 10000
)

// Exporter renders chapters with book view opened and settled and writes
// their pages in configured format.
type Exporter struct {
	env      *state.LocalEnv
	cfg      *config.ExportConfig
	registry *hosts.Registry
	format   config.ExportFmt
	opts     book.Options
	settings book.Settings
	viewport book.Viewport
	log      *zap.Logger
}

// New returns exporter configured from environment. Format overrides
// configured one when valid.
func New(env *state.LocalEnv, registry *hosts.Registry, format config.ExportFmt) *Exporter {
	opts, settings := book.FromConfig(env.Cfg)
	if !format.IsValid() {
		format = env.Cfg.Export.Format
	}
	return &Exporter{
		env:      env,
		cfg:      &env.Cfg.Export,
		registry: registry,
		format:   format,
		opts:     opts,
		settings: settings,
		viewport: book.ViewportFromConfig(env.Cfg),
		log:      env.Logger("export"),
	}
}

// Export writes every chapter of the source into dst directory and returns
// names of produced files. Chapters without readable content are skipped.
func (e *Exporter) Export(ctx context.Context, src hosts.Source, dst string) ([]string, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create destination directory: %w", err)
	}

	var files []string
	for i := range src.Len() {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		out, err := e.chapter(ctx, src, i, dst)
		if err != nil {
			return files, fmt.Errorf("chapter %d: %w", i+1, err)
		}
		files = append(files, out...)
	}
	e.log.Info("Export done", zap.String("source", src.Name()), zap.Int("files", len(files)), zap.Stringer("format", e.format))
	return files, nil
}

func (e *Exporter) chapter(ctx context.Context, src hosts.Source, i int, dst string) (files []string, err error) {
	doc, err := src.Open(ctx, i)
	if err != nil {
		return nil, err
	}

	tree := visual.NewDocument("body")
	loop := spring.NewLoop()
	v, err := book.New(book.Host{
		Tree:     tree,
		Root:     tree.Root,
		Loop:     loop,
		Images:   images.NewLoader(doc.Resources, nil, e.log),
		Viewport: e.viewport,
	}, e.opts, e.settings, e.log)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, v.Close())
	}()

	c, err := e.registry.Show(v, doc)
	if err != nil {
		return nil, err
	}
	if c == nil {
		e.log.Warn("Chapter has no readable content, skipping", zap.String("source", doc.SrcName))
		return nil, nil
	}

	v.Toggle()
	if n := loop.Settle(settleStep, settleFrames); !loop.Idle() {
		e.log.Warn("Animation did not settle", zap.Int("frames", n))
	}
	v.Dispatcher().Drain()

	pages := v.Pages()
	if e.env.Rpt != nil {
		e.env.Rpt.StoreData(fmt.Sprintf("paragraphs-%03d.txt", i+1), []byte(extract.Dump(v.Paragraphs())))
		e.env.Rpt.StoreData(fmt.Sprintf("pages-%03d.txt", i+1), []byte(paginate.Dump(pages)))
	}

	stem := e.outputStem(dst, Values{
		Title:      c.Title,
		Source:     src.Name(),
		SourceFile: strings.TrimSuffix(filepath.Base(doc.SrcName), filepath.Ext(doc.SrcName)),
		Host:       hosts.Host(doc),
		Language:   doc.Lang.String(),
		Chapter:    i + 1,
		Chapters:   src.Len(),
		Pages:      len(pages),
		Format:     e.format.String(),
	})
	if err := os.MkdirAll(filepath.Dir(stem), 0o755); err != nil {
		return nil, fmt.Errorf("unable to create output directory: %w", err)
	}

	e.log.Debug("Exporting chapter", zap.Int("chapter", i+1), zap.Int("pages", len(pages)), zap.String("to", stem))
	switch {
	case e.format.Raster():
		return e.writeRaster(v, doc, stem)
	case e.format == config.ExportFmtText:
		name := stem + e.format.Ext()
		return []string{name}, e.writeText(v, name)
	default:
		name := stem + e.format.Ext()
		return []string{name}, e.writeHTML(v, c.Title, name)
	}
}

// pageElements returns all pages of the view, mounted or not, without
// animation state.
func pageElements(v *book.View) []*visual.Element {
	nodes := v.PageNodes()
	out := make([]*visual.Element, 0, len(nodes))
	for _, n := range nodes {
		el, ok := n.(*visual.Element)
		if !ok {
			continue
		}
		flat := *el
		flat.Styles = maps.Clone(el.Styles)
		delete(flat.Styles, "transform")
		delete(flat.Styles, "opacity")
		flat.Attrs = maps.Clone(el.Attrs)
		delete(flat.Attrs, "data-position")
		out = append(out, &flat)
	}
	return out
}

func (e *Exporter) writeHTML(v *book.View, title, name string) error {
	body := &visual.Element{
		Tag:      "div",
		Attrs:    map[string]string{"class": "bv-export"},
		Styles:   map[string]string{},
		Children: pageElements(v),
	}
	if !e.opts.Light {
		body.Attrs["class"] += " bv-dark"
	}

	var buf bytes.Buffer
	if err := visual.WriteDocument(&buf, title, stylesheet, body); err != nil {
		return err
	}
	return os.WriteFile(name, buf.Bytes(), 0o644)
}

func (e *Exporter) writeText(v *book.View, name string) error {
	var buf bytes.Buffer
	for i, el := range pageElements(v) {
		if i > 0 {
			buf.WriteString("\f\n")
		}
		if err := visual.WriteText(&buf, el, "bv-line"); err != nil {
			return err
		}
	}
	return os.WriteFile(name, buf.Bytes(), 0o644)
}

func (e *Exporter) writeRaster(v *book.View, doc *content.Document, stem string) (files []string, err error) {
	r, err := newRasterizer(e.opts, doc.Resources, e.cfg.Dpi, e.log)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, r.Close())
	}()

	lay := v.Layout()
	for _, pg := range v.Pages() {
		img := r.page(pg, lay.PageWidth, lay.PageHeight)
		data, err := e.encode(img)
		if err != nil {
			return files, fmt.Errorf("unable to encode page %d: %w", pg.Number, err)
		}
		name := pageName(stem, pg.Number, e.format)
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}

func (e *Exporter) encode(img image.Image) ([]byte, error) {
	if e.cfg.Grayscale {
		img = images.Flatten(img)
	}
	if e.format == config.ExportFmtJpeg {
		return images.EncodeJPEG(img, e.cfg.JpegQuality, e.cfg.Dpi)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
