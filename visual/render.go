package visual

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Classes of nodes which do not produce text output.
var silentClasses = []string{"bv-background", "bv-spacer"}

// WriteHTML renders element subtree as HTML fragment.
func WriteHTML(w io.Writer, el *Element) error {
	if el == nil {
		return nil
	}
	if err := html.Render(w, toHTML(el)); err != nil {
		return fmt.Errorf("unable to render html: %w", err)
	}
	return nil
}

// WriteDocument renders element as body of complete HTML document.
func WriteDocument(w io.Writer, title, stylesheet string, el *Element) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := htmlElement("html")
	doc.AppendChild(root)

	head := htmlElement("head")
	root.AppendChild(head)
	meta := htmlElement("meta")
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	t := htmlElement("title")
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	head.AppendChild(t)
	if stylesheet != "" {
		s := htmlElement("style")
		s.AppendChild(&html.Node{Type: html.RawNode, Data: stylesheet})
		head.AppendChild(s)
	}

	body := htmlElement("body")
	root.AppendChild(body)
	if el != nil {
		body.AppendChild(toHTML(el))
	}
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("unable to render html: %w", err)
	}
	return nil
}

func htmlElement(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func toHTML(el *Element) *html.Node {
	n := htmlElement(el.Tag)
	for _, k := range slices.Sorted(maps.Keys(el.Attrs)) {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: el.Attrs[k]})
	}
	if len(el.Styles) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: styleString(el.Styles)})
	}
	if el.Text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: el.Text})
	}
	for _, c := range el.Children {
		n.AppendChild(toHTML(c))
	}
	return n
}

func styleString(styles map[string]string) string {
	var sb strings.Builder
	for i, k := range slices.Sorted(maps.Keys(styles)) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s: %s;", k, styles[k])
	}
	return sb.String()
}

// WriteText writes text content of element subtree. Every element having
// one of the line classes ends with a new line.
func WriteText(w io.Writer, el *Element, lineClasses ...string) error {
	var sb strings.Builder
	var walk func(*Element)
	walk = func(e *Element) {
		for _, c := range silentClasses {
			if e.HasClass(c) {
				return
			}
		}
		sb.WriteString(e.Text)
		for _, c := range e.Children {
			walk(c)
		}
		for _, c := range lineClasses {
			if e.HasClass(c) {
				sb.WriteByte('\n')
				break
			}
		}
	}
	if el != nil {
		walk(el)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
