// Package content prepares source documents for extraction: parses HTML,
// collects stylesheets and determines document language.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/language"

	"bookview/content/text"
	"bookview/css"
	"bookview/misc"
	"bookview/state"
)

// Document is parsed source content with everything needed to extract
// paragraphs from it.
type Document struct {
	ID        uuid.UUID
	SrcName   string
	Root      *html.Node
	Title     string
	Lang      language.Tag
	Canonical string // canonical location of the document, if declared

	Styles      *css.Resolver
	Stylesheets []string // names of loaded external stylesheets
	Resources   Resources
	Hyphen      *text.Hyphenator
	WorkDir     string
}

// Prepare reads and parses HTML source. Resources are used to load linked
// stylesheets and later images, they may be nil.
func Prepare(ctx context.Context, r io.Reader, srcName string, res Resources, log *zap.Logger) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", srcName, err)
	}
	cr, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return nil, fmt.Errorf("unable to detect charset of %s: %w", srcName, err)
	}
	root, err := html.Parse(cr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", srcName, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate document UUID: %w", err)
	}

	doc := &Document{
		ID:        id,
		SrcName:   srcName,
		Root:      root,
		Resources: res,
		Styles:    css.NewResolver(log),
	}

	if env.Rpt != nil {
		tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
		if err != nil {
			return nil, fmt.Errorf("unable to create temporary directory: %w", err)
		}
		env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), id), tmpDir)
		doc.WorkDir = tmpDir

		// Save source for debugging
		if err := os.WriteFile(filepath.Join(tmpDir, filepath.Base(srcName)), data, 0644); err != nil {
			return nil, fmt.Errorf("unable to write input doc for debugging: %w", err)
		}
	}

	doc.Title = documentTitle(root)
	doc.Canonical = canonicalLocation(root)
	doc.loadStylesheets(log)

	fallback := language.English
	if env.Cfg != nil && env.Cfg.Hyphenation.Language != "" {
		if tag, err := language.Parse(env.Cfg.Hyphenation.Language); err == nil {
			fallback = tag
		}
	}
	doc.Lang = documentLanguage(root, fallback, log)

	if env.Cfg != nil && env.Cfg.Hyphenation.Enable {
		doc.Hyphen = text.NewHyphenator(doc.Lang, env.Cfg.Hyphenation.PatternsPath, log)
	}

	if doc.WorkDir != "" {
		if err := os.WriteFile(filepath.Join(doc.WorkDir, "document.txt"), []byte(doc.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to write document dump for debugging: %w", err)
		}
		sheet := &css.Stylesheet{Rules: doc.Styles.Rules()}
		if err := os.WriteFile(filepath.Join(doc.WorkDir, "styles.css"), []byte(sheet.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to write author styles for debugging: %w", err)
		}
	}
	return doc, nil
}

// Body returns body element of the document or root when there is none.
func (d *Document) Body() *html.Node {
	if body := htmlquery.FindOne(d.Root, "//body"); body != nil {
		return body
	}
	return d.Root
}

func (d *Document) loadStylesheets(log *zap.Logger) {
	for _, n := range htmlquery.Find(d.Root, "//style | //link[@href]") {
		if n.Data == "style" {
			d.Styles.AddStylesheet(d.Styles.Parser().Parse([]byte(htmlquery.InnerText(n)), "inline <style>"))
			continue
		}
		if !hasToken(htmlquery.SelectAttr(n, "rel"), "stylesheet") {
			continue
		}
		href := htmlquery.SelectAttr(n, "href")
		data, err := Load(d.Resources, href)
		if err != nil {
			log.Debug("Unable to load stylesheet, ignoring", zap.String("href", href), zap.Error(err))
			continue
		}
		d.Styles.AddStylesheet(d.Styles.Parser().Parse(data, href))
		d.Stylesheets = append(d.Stylesheets, href)
	}
}

func documentTitle(root *html.Node) string {
	if n := htmlquery.FindOne(root, "//head/title"); n != nil {
		if title := normalizeSpace(htmlquery.InnerText(n)); title != "" {
			return title
		}
	}
	if n := htmlquery.FindOne(root, `//meta[@property="og:title"]`); n != nil {
		return normalizeSpace(htmlquery.SelectAttr(n, "content"))
	}
	return ""
}

func canonicalLocation(root *html.Node) string {
	for _, n := range htmlquery.Find(root, "//link[@href]") {
		if hasToken(htmlquery.SelectAttr(n, "rel"), "canonical") {
			return htmlquery.SelectAttr(n, "href")
		}
	}
	if n := htmlquery.FindOne(root, `//meta[@property="og:url"]`); n != nil {
		return htmlquery.SelectAttr(n, "content")
	}
	return ""
}

func documentLanguage(root *html.Node, fallback language.Tag, log *zap.Logger) language.Tag {
	var declared string
	if n := htmlquery.FindOne(root, "//html"); n != nil {
		declared = htmlquery.SelectAttr(n, "lang")
		if declared == "" {
			for _, a := range n.Attr {
				if a.Key == "xml:lang" || (a.Key == "lang" && a.Namespace != "") {
					declared = a.Val
				}
			}
		}
	}
	if declared == "" {
		return fallback
	}
	tag, err := language.Parse(declared)
	if err != nil {
		log.Warn("Unable to parse document language, using default", zap.String("lang", declared), zap.Stringer("default", fallback), zap.Error(err))
		return fallback
	}
	return tag
}

func hasToken(list, token string) bool {
	for f := range strings.FieldsSeq(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
