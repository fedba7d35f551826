package css

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Base font size in px of the root element.
const BaseFontSize = 16

// default presentation of HTML elements, applied before any author rule
const userAgentCSS = `
html, body, p, div, h1, h2, h3, h4, h5, h6, blockquote, ul, ol, dl, dt, dd, pre, hr,
section, article, header, footer, nav, main, aside, figure, figcaption, address, center,
form, fieldset, details, summary, caption { display: block; }
table { display: table; }
li { display: list-item; }
tr { display: table-row; }
td, th { display: table-cell; }
head, script, style, title, meta, link, template, noscript { display: none; }
b, strong, th, h1, h2, h3, h4, h5, h6 { font-weight: bold; }
i, em, cite, var, dfn, address { font-style: italic; }
u, ins, a { text-decoration: underline; }
s, strike, del { text-decoration: line-through; }
h1 { font-size: 2em; }
h2 { font-size: 1.5em; }
h3 { font-size: 1.17em; }
h5 { font-size: 0.83em; }
h6 { font-size: 0.67em; }
small { font-size: smaller; }
big { font-size: larger; }
center { text-align: center; }
`

// Style is the subset of computed element style content extraction needs.
// Font related properties are inherited, the rest describes the element
// itself only.
type Style struct {
	Display      string
	FontWeight   int
	Italic       bool
	SmallCaps    bool
	FontSize     float64 // px
	SizeDeclared bool
	Underline    bool
	Strike       bool
	TextAlign    string
	Color        string
}

// Inline reports whether element is laid out inline.
func (s *Style) Inline() bool {
	return strings.Contains(s.Display, "inline")
}

// Hidden reports whether element is not rendered at all.
func (s *Style) Hidden() bool {
	return s.Display == "none"
}

// Bold reports whether weight is above regular.
func (s *Style) Bold() bool {
	return s.FontWeight > 450
}

func rootStyle() *Style {
	return &Style{Display: "block", FontWeight: 400, FontSize: BaseFontSize}
}

// Resolver computes element styles from user agent defaults, author
// stylesheets and inline style attributes.
// NOTE: not to be used concurrently.
type Resolver struct {
	log    *zap.Logger
	parser *Parser
	ua     []Rule
	rules  []Rule
	cache  map[*html.Node]*Style
}

// NewResolver creates resolver with user agent rules only.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		log:    log.Named("css"),
		parser: NewParser(log),
		cache:  make(map[*html.Node]*Style),
	}
	r.ua = sortRules(r.parser.Parse([]byte(userAgentCSS)).Rules)
	return r
}

// Parser returns parser used by the resolver.
func (r *Resolver) Parser() *Parser {
	return r.parser
}

// AddStylesheet appends author rules, later sheets win on equal specificity.
func (r *Resolver) AddStylesheet(sheet *Stylesheet) {
	if sheet == nil {
		return
	}
	for _, w := range sheet.Warnings {
		r.log.Debug("Stylesheet warning", zap.String("warning", w))
	}
	r.rules = sortRules(append(r.rules, sheet.Rules...))
	clear(r.cache)
}

// Rules returns author rules in cascade order.
func (r *Resolver) Rules() []Rule {
	return r.rules
}

func sortRules(rules []Rule) []Rule {
	slices.SortStableFunc(rules, func(a, b Rule) int {
		return a.Selector.Specificity() - b.Selector.Specificity()
	})
	return rules
}

// Declared returns cascaded declarations of the element (no inheritance).
func (r *Resolver) Declared(n *html.Node) map[string]Value {
	props := make(map[string]Value)
	if n == nil || n.Type != html.ElementNode {
		return props
	}
	for _, set := range [][]Rule{r.ua, r.rules} {
		for _, rule := range set {
			if Matches(&rule.Selector, n) {
				maps.Copy(props, rule.Properties)
			}
		}
	}
	if style := attr(n, "style"); style != "" {
		maps.Copy(props, r.parser.ParseInline(style))
	}
	return props
}

// Compute returns computed style of the element, results are cached until
// next stylesheet is added.
func (r *Resolver) Compute(n *html.Node) *Style {
	if n == nil || n.Type != html.ElementNode {
		return rootStyle()
	}
	if s, ok := r.cache[n]; ok {
		return s
	}

	parent := rootStyle()
	if n.Parent != nil && n.Parent.Type == html.ElementNode {
		parent = r.Compute(n.Parent)
	}

	s := &Style{
		Display:    "inline",
		FontWeight: parent.FontWeight,
		Italic:     parent.Italic,
		SmallCaps:  parent.SmallCaps,
		FontSize:   parent.FontSize,
	}
	props := r.Declared(n)
	for _, name := range slices.Sorted(maps.Keys(props)) {
		r.apply(s, parent, name, props[name])
	}
	r.cache[n] = s
	return s
}

func (r *Resolver) apply(s, parent *Style, name string, v Value) {
	kw := v.Keyword
	switch name {
	case "display":
		if kw != "" {
			s.Display = kw
		}
	case "font-weight":
		switch {
		case kw == "bold" || kw == "bolder":
			s.FontWeight = 700
		case kw == "normal" || kw == "lighter":
			s.FontWeight = 400
		case v.IsNumeric():
			s.FontWeight = int(v.Value)
		}
	case "font-style":
		switch kw {
		case "italic", "oblique":
			s.Italic = true
		case "normal":
			s.Italic = false
		}
	case "font-variant", "font-variant-caps":
		switch {
		case strings.Contains(kw, "small-caps"):
			s.SmallCaps = true
		case kw == "normal" || kw == "none":
			s.SmallCaps = false
		}
	case "text-decoration", "text-decoration-line":
		for word := range strings.FieldsSeq(kw) {
			switch word {
			case "underline":
				s.Underline = true
			case "line-through":
				s.Strike = true
			case "none":
				s.Underline, s.Strike = false, false
			}
		}
	case "font-size":
		if size, ok := fontSize(v, parent.FontSize); ok {
			s.FontSize = size
			s.SizeDeclared = true
		} else {
			r.log.Debug("Ignoring font size", zap.String("value", v.Raw))
		}
	case "text-align":
		s.TextAlign = kw
	case "color":
		s.Color = v.Raw
	}
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// fontSize converts declared size to px.
func fontSize(v Value, parent float64) (float64, bool) {
	if v.IsKeyword() {
		switch v.Keyword {
		case "smaller":
			return parent / 1.2, true
		case "larger":
			return parent * 1.2, true
		}
		size, ok := fontSizeKeywords[v.Keyword]
		return size, ok
	}
	if !v.IsNumeric() || v.Value < 0 {
		return 0, false
	}
	switch v.Unit {
	case "em":
		return parent * v.Value, true
	case "%":
		return parent * v.Value / 100, true
	case "px", "":
		return v.Value, true
	case "rem":
		return BaseFontSize * v.Value, true
	case "pt":
		return v.Value * 4 / 3, true
	}
	return 0, false
}

// Matches reports whether element matches selector, ancestors are checked
// as descendant combinators.
func Matches(sel *Selector, n *html.Node) bool {
	if !matchCompound(sel, n) {
		return false
	}
	if sel.Ancestor == nil {
		return true
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && Matches(sel.Ancestor, p) {
			return true
		}
	}
	return false
}

func matchCompound(sel *Selector, n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sel.Element != "" && sel.Element != "*" && sel.Element != n.Data {
		return false
	}
	if sel.ID != "" && attr(n, "id") != sel.ID {
		return false
	}
	if len(sel.Classes) > 0 {
		have := Classes(n)
		for _, c := range sel.Classes {
			if !slices.Contains(have, c) {
				return false
			}
		}
	}
	return true
}

// Classes returns class list of the element.
func Classes(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// ParseLength parses attribute-style length ("120", "120px"), returns 0 for
// anything else.
func ParseLength(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
