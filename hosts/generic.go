package hosts

import (
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"

	"bookview/content"
)

var genericContent = []*xpath.Expr{
	xpath.MustCompile(`//main`),
	xpath.MustCompile(`//article`),
	xpath.MustCompile(`//*[@role="main"]`),
	xpath.MustCompile(`//body`),
}

// Generic shows main part of any document, falling back to its body.
func Generic(doc *content.Document, log *zap.Logger) (*Content, error) {
	for _, expr := range genericContent {
		if n := htmlquery.QuerySelector(doc.Root, expr); n != nil {
			return &Content{Node: n, Title: doc.Title}, nil
		}
	}
	log.Debug("Document has no body")
	return nil, nil
}
