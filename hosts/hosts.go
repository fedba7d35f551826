// Package hosts locates readable content in documents of known origins and
// opens sources of consecutive chapters.
package hosts

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"bookview/book"
	"bookview/content"
)

// Content is readable part of a document.
type Content struct {
	Node  *html.Node
	Title string
	// Chapter links declared by the page, empty when absent.
	Prev, Next string
}

// Setup locates content in the document. Nil content without error means
// document has nothing to read.
type Setup func(doc *content.Document, log *zap.Logger) (*Content, error)

// Registry maps host names to setup routines.
type Registry struct {
	setups   map[string]Setup
	fallback Setup
	log      *zap.Logger
}

// NewRegistry returns registry knowing all supported hosts. Documents of
// unknown hosts are handled by the generic setup.
func NewRegistry(log *zap.Logger) *Registry {
	r := &Registry{setups: make(map[string]Setup), fallback: Generic, log: log.Named("hosts")}
	r.Register(AO3Host, AO3)
	return r
}

// Register sets up documents of host with s.
func (r *Registry) Register(host string, s Setup) {
	r.setups[normalizeHost(host)] = s
}

// Lookup returns name and setup of the document host. Unknown hosts get
// empty name and generic setup.
func (r *Registry) Lookup(doc *content.Document) (string, Setup) {
	host := Host(doc)
	if s, ok := r.setups[host]; ok {
		return host, s
	}
	return "", r.fallback
}

// Show locates content of the document and renders it in the view. When
// there is no content nothing is rendered and nil content is returned.
func (r *Registry) Show(v *book.View, doc *content.Document) (*Content, error) {
	host, setup := r.Lookup(doc)
	log := r.log.With(zap.String("source", doc.SrcName))
	if host != "" {
		log = log.With(zap.String("host", host))
	}

	c, err := setup(doc, log)
	if err != nil {
		return nil, fmt.Errorf("unable to locate content of %s: %w", doc.SrcName, err)
	}
	if c == nil || c.Node == nil {
		log.Info("No readable content found")
		return nil, nil
	}
	if c.Title == "" {
		c.Title = doc.Title
	}
	if err := v.Render(c.Node, doc); err != nil {
		return nil, fmt.Errorf("unable to render %s: %w", doc.SrcName, err)
	}
	v.SetTitle(c.Title)
	log.Debug("Content shown", zap.String("title", c.Title), zap.String("prev", c.Prev), zap.String("next", c.Next))
	return c, nil
}

// Host returns host name of the document canonical location without "www."
// prefix, or empty string when document does not declare one.
func Host(doc *content.Document) string {
	if doc == nil || doc.Canonical == "" {
		return ""
	}
	u, err := url.Parse(doc.Canonical)
	if err != nil {
		return ""
	}
	return normalizeHost(u.Hostname())
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
