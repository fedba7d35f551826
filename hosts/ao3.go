package hosts

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"

	"bookview/content"
)

// AO3Host is host name of Archive of Our Own.
const AO3Host = "archiveofourown.org"

var (
	// content containers in order of preference
	ao3Content = []*xpath.Expr{
		xpath.MustCompile(`//*[` + hasClass("userstuff") + ` and ` + hasClass("module") + `]`),
		xpath.MustCompile(`//*[@id="chapters"]`),
		xpath.MustCompile(`//*[@id="workskin"]`),
	}
	ao3Title = xpath.MustCompile(`//h3[` + hasClass("title") + `]`)
	ao3Prev  = xpath.MustCompile(`//li[` + hasClass("chapter") + ` and ` + hasClass("previous") + `]/a`)
	ao3Next  = xpath.MustCompile(`//li[` + hasClass("chapter") + ` and ` + hasClass("next") + `]/a`)
)

// hasClass returns xpath predicate matching elements with class name.
func hasClass(name string) string {
	return `contains(concat(" ", normalize-space(@class), " "), " ` + name + ` ")`
}

// AO3 locates work text, chapter title and chapter links of Archive of Our
// Own pages.
func AO3(doc *content.Document, log *zap.Logger) (*Content, error) {
	c := &Content{}
	for _, expr := range ao3Content {
		if c.Node = htmlquery.QuerySelector(doc.Root, expr); c.Node != nil {
			break
		}
	}
	if c.Node == nil {
		log.Error("Could not find contents")
		return nil, nil
	}
	if n := htmlquery.QuerySelector(doc.Root, ao3Title); n != nil {
		c.Title = strings.Join(strings.Fields(htmlquery.InnerText(n)), " ")
	}
	if n := htmlquery.QuerySelector(doc.Root, ao3Prev); n != nil {
		c.Prev = htmlquery.SelectAttr(n, "href")
	}
	if n := htmlquery.QuerySelector(doc.Root, ao3Next); n != nil {
		c.Next = htmlquery.SelectAttr(n, "href")
	}
	return c, nil
}
