package css

import (
	"bytes"
	"maps"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets and inline style attributes.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			if atRule == "@media" && screenMedia(parser.Values()) {
				rules := p.parseRuleList(parser, sheet)
				p.log.Debug("Applying @media block", zap.Int("rules", len(rules)))
				sheet.Rules = append(sheet.Rules, rules...)
				continue
			}
			p.skipAtRuleBlock(parser)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			sheet.Rules = append(sheet.Rules, p.parseRuleset(parser, data, sheet)...)
		}
	}
}

// ParseInline parses declarations of a style attribute.
func (p *Parser) ParseInline(style string) map[string]Value {
	props := make(map[string]Value)
	if strings.TrimSpace(style) == "" {
		return props
	}
	parser := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return props
		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				props[strings.ToLower(string(data))] = parsePropertyValue(values)
			}
		}
	}
}

// screenMedia reports whether @media query applies to screen rendering.
func screenMedia(tokens []css.Token) bool {
	var idents []string
	for _, t := range tokens {
		if t.TokenType == css.IdentToken {
			idents = append(idents, strings.ToLower(string(t.Data)))
		}
	}
	if len(idents) == 0 {
		// feature-only queries like (min-width: ...) are accepted
		return true
	}
	negated := false
	if idents[0] == "not" {
		negated = true
		idents = idents[1:]
	}
	if idents[0] == "only" && len(idents) > 1 {
		idents = idents[1:]
	}
	match := idents[0] == "screen" || idents[0] == "all"
	return match != negated
}

func (p *Parser) parseRuleset(parser *css.Parser, data []byte, sheet *Stylesheet) []Rule {
	selectors := p.parseSelectors(data, parser.Values())
	props := p.parseDeclarations(parser)

	var rules []Rule
	for _, selStr := range selectors {
		sel := p.parseSelector(selStr, sheet)
		if !sel.IsSimple() {
			continue
		}
		propsCopy := make(map[string]Value, len(props))
		maps.Copy(propsCopy, props)
		rules = append(rules, Rule{Selector: sel, Properties: propsCopy})
	}
	return rules
}

// parseRuleList parses rules inside an @media block.
func (p *Parser) parseRuleList(parser *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules
		case css.BeginAtRuleGrammar:
			p.skipAtRuleBlock(parser)
		case css.BeginRulesetGrammar:
			rules = append(rules, p.parseRuleset(parser, data, sheet)...)
		}
	}
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser) map[string]Value {
	props := make(map[string]Value)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return props
		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				props[strings.ToLower(string(data))] = parsePropertyValue(values)
			}
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value, "!important" is dropped.
func parsePropertyValue(tokens []css.Token) Value {
	tokens = trimImportant(tokens)
	if len(tokens) == 0 {
		return Value{}
	}

	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))
	val := Value{Raw: raw}

	var significant []css.Token
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			significant = append(significant, t)
		}
	}

	if len(significant) == 1 {
		t := significant[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		default:
			val.Keyword = raw
		}
		return val
	}

	// functions (rgb(), url(), etc.) and multi-value properties
	val.Keyword = raw
	return val
}

func trimImportant(tokens []css.Token) []css.Token {
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end >= 2 && tokens[end-1].TokenType == css.IdentToken &&
		strings.EqualFold(string(tokens[end-1].Data), "important") &&
		tokens[end-2].TokenType == css.DelimToken && string(tokens[end-2].Data) == "!" {
		return tokens[:end-2]
	}
	return tokens[:end]
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

// parseSelector parses a single selector string into a Selector.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	if strings.ContainsAny(selStr, "+~>") {
		sheet.Warnings = append(sheet.Warnings, "unsupported combinator selector: "+selStr)
		p.log.Debug("Skipping combinator selector", zap.String("selector", selStr))
		return sel
	}
	if strings.Contains(selStr, "[") {
		sheet.Warnings = append(sheet.Warnings, "unsupported attribute selector: "+selStr)
		p.log.Debug("Skipping attribute selector", zap.String("selector", selStr))
		return sel
	}

	parts := strings.Fields(selStr)
	var cur *Selector
	for _, part := range parts {
		compound, ok := p.parseCompound(part, sheet)
		if !ok {
			return sel
		}
		compound.Ancestor = cur
		cur = &compound
	}
	if cur == nil {
		return sel
	}
	cur.Raw = selStr
	return *cur
}

// parseCompound parses selector like "p", ".note", "#title" or "div.note.wide".
func (p *Parser) parseCompound(part string, sheet *Stylesheet) (Selector, bool) {
	sel := Selector{Raw: part}
	if strings.Contains(part, ":") {
		sheet.Warnings = append(sheet.Warnings, "unsupported pseudo selector: "+part)
		p.log.Debug("Skipping pseudo selector", zap.String("selector", part))
		return sel, false
	}

	rest := part
	cut := strings.IndexAny(rest, ".#")
	if cut < 0 {
		sel.Element = strings.ToLower(rest)
		return sel, true
	}
	sel.Element = strings.ToLower(rest[:cut])
	rest = rest[cut:]
	for len(rest) > 0 {
		kind := rest[0]
		rest = rest[1:]
		next := strings.IndexAny(rest, ".#")
		name := rest
		if next >= 0 {
			name, rest = rest[:next], rest[next:]
		} else {
			rest = ""
		}
		if name == "" {
			return sel, false
		}
		if kind == '#' {
			sel.ID = name
		} else {
			sel.Classes = append(sel.Classes, name)
		}
	}
	return sel, true
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
