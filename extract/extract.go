// Package extract converts HTML content tree into typesettable paragraphs.
package extract

import (
	"errors"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"bookview/css"
	"bookview/typeset"
)

// ErrNotContent is returned when extraction root is not an element or document.
var ErrNotContent = errors.New("not a content node")

// Height of the spacer following horizontal rule.
const separatorHeight = 32

// Hyphenator splits single word into syllables.
type Hyphenator interface {
	Syllables(word string) []string
}

// Options are extraction settings coming from view configuration.
type Options struct {
	// DoubleParagraphs separates paragraphs with an empty line instead of
	// indenting their first line.
	DoubleParagraphs bool
}

// Extractor walks content tree keeping style context. Single extractor may
// be reused for several trees, it is not safe for concurrent use.
type Extractor struct {
	styles *css.Resolver
	hyph   Hyphenator
	opts   Options
	log    *zap.Logger

	ctx     typeset.StyleContext
	pars    []*typeset.Paragraph
	current *typeset.Paragraph
}

// New creates extractor. Nil hyphenator leaves words whole.
func New(styles *css.Resolver, hyph Hyphenator, opts Options, log *zap.Logger) *Extractor {
	if styles == nil {
		styles = css.NewResolver(log)
	}
	return &Extractor{
		styles: styles,
		hyph:   hyph,
		opts:   opts,
		log:    log.Named("extract"),
	}
}

// Extract returns paragraphs of the tree rooted at n in document order.
func (e *Extractor) Extract(root *html.Node) ([]*typeset.Paragraph, error) {
	if root == nil || (root.Type != html.ElementNode && root.Type != html.DocumentNode) {
		return nil, ErrNotContent
	}

	e.ctx = typeset.NewStyleContext()
	e.pars, e.current = nil, nil

	e.walk(root)

	pars := e.pars
	e.pars, e.current = nil, nil
	e.log.Debug("Content extracted", zap.Int("paragraphs", len(pars)))
	return pars, nil
}

func (e *Extractor) walk(n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		e.children(n, false)
	case html.ElementNode:
		e.element(n)
	case html.TextNode:
		e.text(n.Data)
	}
}

func (e *Extractor) children(n *html.Node, quote bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if quote {
			join, joinNext := previousElement(c) != nil, nextElement(c) != nil
			e.ctx.Pars = e.ctx.Pars.Update(func(ps typeset.ParStyle) typeset.ParStyle {
				ps.Join, ps.JoinNext = join, joinNext
				return ps
			})
		}
		e.walk(c)
	}
}

func (e *Extractor) element(n *html.Node) {
	style := e.styles.Compute(n)
	if style.Hidden() {
		return
	}

	savedChars := e.ctx.Chars
	e.ctx.Chars = e.ctx.Chars.Push(e.charStyle(n, style, savedChars.Top()))
	defer func() { e.ctx.Chars = savedChars }()

	switch n.DataAtom {
	case atom.Img:
		e.image(n)
		return
	case atom.Hr:
		e.separator()
		return
	case atom.Br:
		e.closeParagraph()
		return
	}

	if style.Inline() && !paragraphLike(n.DataAtom) {
		e.children(n, false)
		return
	}

	savedPars := e.ctx.Pars
	e.ctx.Pars = e.ctx.Pars.Push(e.parStyle(n, style, savedPars.Top()))
	e.closeParagraph()
	e.children(n, isQuote(n.DataAtom))
	e.ctx.Pars = savedPars
	// inline content following the block starts its own paragraph
	e.closeParagraph()
}

func (e *Extractor) charStyle(n *html.Node, style *css.Style, parent typeset.CharStyle) typeset.CharStyle {
	cs := parent
	cs.Bold = style.Bold()
	cs.Italic = style.Italic
	cs.SmallCaps = style.SmallCaps
	if style.Underline {
		cs.Decoration.Underline = true
	}
	if style.Strike {
		cs.Decoration.Strike = true
	}
	if style.Color != "" {
		if c, alpha, err := css.ParseColor(style.Color); err == nil {
			cs.Decoration.Color = &typeset.Color{Color: c, Alpha: alpha}
		} else {
			e.log.Debug("Ignoring color", zap.String("value", style.Color), zap.Error(err))
		}
	}
	if style.SizeDeclared || isHeading(n.DataAtom) {
		cs.Size = style.FontSize / css.BaseFontSize
	}

	switch n.DataAtom {
	case atom.Code, atom.Pre, atom.Kbd, atom.Samp, atom.Tt:
		cs.Code = true
	case atom.A:
		if href := attr(n, "href"); href != "" {
			cs.Decoration.Href = href
		}
	}
	if slices.Contains(css.Classes(n), "spoiler") {
		cs.Decoration.Spoiler = true
	}
	return cs
}

func (e *Extractor) parStyle(n *html.Node, style *css.Style, parent typeset.ParStyle) typeset.ParStyle {
	ps := parent
	ps.Separator = false
	if isQuote(n.DataAtom) {
		ps.Quote = true
	}

	// undeclared alignment keeps inherited alignment and spacing
	switch style.TextAlign {
	case "", "inherit":
	case "center":
		ps.Align = typeset.AlignCenter
		ps.Indent, ps.Double = false, false
	case "right", "end":
		ps.Align = typeset.AlignRight
		ps.Indent, ps.Double = false, false
	default:
		ps.Align = typeset.AlignLeft
		e.spacing(&ps)
	}
	if n.DataAtom == atom.P {
		e.spacing(&ps)
	}
	return ps
}

func (e *Extractor) spacing(ps *typeset.ParStyle) {
	ps.Double = e.opts.DoubleParagraphs
	ps.Indent = !e.opts.DoubleParagraphs
}

// closeParagraph makes next inline item start new paragraph.
func (e *Extractor) closeParagraph() {
	e.current = nil
}

// paragraph returns open paragraph, opening new one with current paragraph
// style when necessary.
func (e *Extractor) paragraph() *typeset.Paragraph {
	if e.current == nil {
		e.current = &typeset.Paragraph{Style: e.ctx.Pars.Top()}
		e.pars = append(e.pars, e.current)
	}
	return e.current
}

func (e *Extractor) append(item typeset.Inline) {
	p := e.paragraph()
	p.Content = append(p.Content, item)
}

func (e *Extractor) text(data string) {
	style := e.ctx.Chars.Top()
	for _, tok := range segment(data) {
		switch {
		case tok == " ":
			// whitespace never opens paragraph and is collapsed
			if e.current == nil || endsWithSpace(e.current) {
				continue
			}
			e.append(&typeset.Text{Content: " ", Style: style, ExceptStart: true})
		case tok == softHyphen:
			if e.current != nil && len(e.current.Content) > 0 {
				if t, ok := e.current.Content[len(e.current.Content)-1].(*typeset.Text); ok && !t.ExceptStart {
					t.Hyphen = true
				}
			}
		case isDash(tok):
			e.append(&typeset.Text{Content: tok, Style: style})
		default:
			syllables := []string{tok}
			if e.hyph != nil {
				if s := e.hyph.Syllables(tok); len(s) > 0 {
					syllables = s
				}
			}
			for i, s := range syllables {
				if s == "" {
					continue
				}
				e.append(&typeset.Text{Content: s, Style: style, Hyphen: i < len(syllables)-1})
			}
		}
	}
}

func (e *Extractor) image(n *html.Node) {
	src := attr(n, "src")
	if src == "" {
		e.log.Debug("Image without source, skipping")
		return
	}
	e.append(&typeset.Image{
		Source: src,
		Width:  css.ParseLength(attr(n, "width")),
		Height: css.ParseLength(attr(n, "height")),
		Style:  e.ctx.Chars.Top(),
	})
}

// separator closes current paragraph and emits centered spacer paragraph.
func (e *Extractor) separator() {
	ps := e.ctx.Pars.Top()
	ps.Align = typeset.AlignCenter
	ps.Separator = true
	ps.Indent, ps.Double = false, false
	e.pars = append(e.pars, &typeset.Paragraph{
		Style:   ps,
		Content: []typeset.Inline{&typeset.Spacer{Height: separatorHeight}},
	})
	e.closeParagraph()
}

const softHyphen = "\u00AD"

func isDash(tok string) bool {
	switch tok {
	case "-", "–", "—":
		return true
	}
	return false
}

// segment splits text into words, dashes, soft hyphens and single spaces
// standing for any run of whitespace.
func segment(s string) []string {
	var (
		out   []string
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			out = append(out, s[start:end])
		}
		start = -1
	}
	inSpace := false
	for i, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush(i)
			if !inSpace {
				out = append(out, " ")
				inSpace = true
			}
			continue
		case r == '-' || r == '–' || r == '—' || r == '\u00AD':
			flush(i)
			out = append(out, string(r))
		default:
			if start < 0 {
				start = i
			}
		}
		inSpace = false
	}
	flush(len(s))
	return out
}

func endsWithSpace(p *typeset.Paragraph) bool {
	if len(p.Content) == 0 {
		return true
	}
	t, ok := p.Content[len(p.Content)-1].(*typeset.Text)
	return ok && t.ExceptStart
}

func paragraphLike(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Hr, atom.Blockquote, atom.Q:
		return true
	}
	return isHeading(a)
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func isQuote(a atom.Atom) bool {
	return a == atom.Blockquote || a == atom.Q
}

func previousElement(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
