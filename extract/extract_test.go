package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"bookview/css"
	"bookview/typeset"
)

type mapHyphenator map[string][]string

func (m mapHyphenator) Syllables(word string) []string {
	if s, ok := m[word]; ok {
		return s
	}
	return []string{word}
}

func extract(t *testing.T, src string, hyph Hyphenator, opts Options) []*typeset.Paragraph {
	t.Helper()
	log := zaptest.NewLogger(t)
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unable to parse: %v", err)
	}
	styles := css.NewResolver(log)
	for _, n := range htmlquery.Find(doc, "//style") {
		styles.AddStylesheet(styles.Parser().Parse([]byte(htmlquery.InnerText(n))))
	}
	pars, err := New(styles, hyph, opts, log).Extract(htmlquery.FindOne(doc, "//body"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return pars
}

func texts(p *typeset.Paragraph) []string {
	var out []string
	for _, item := range p.Content {
		switch it := item.(type) {
		case *typeset.Text:
			out = append(out, it.Content)
		case *typeset.Image:
			out = append(out, "<img "+it.Source+">")
		case *typeset.Spacer:
			out = append(out, "<spacer>")
		}
	}
	return out
}

func joined(p *typeset.Paragraph) string {
	return strings.Join(texts(p), "|")
}

func findText(t *testing.T, pars []*typeset.Paragraph, content string) *typeset.Text {
	t.Helper()
	for _, p := range pars {
		for _, item := range p.Content {
			if txt, ok := item.(*typeset.Text); ok && txt.Content == content {
				return txt
			}
		}
	}
	t.Fatalf("text %q not found", content)
	return nil
}

func TestExtract_SimpleParagraph(t *testing.T) {
	pars := extract(t, `<p>Hello   world.</p>`, nil, Options{})
	if len(pars) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(pars))
	}
	if got := joined(pars[0]); got != "Hello| |world." {
		t.Errorf("content = %q", got)
	}
	if !pars[0].Content[1].(*typeset.Text).ExceptStart {
		t.Error("whitespace must be marked ExceptStart")
	}
	ps := pars[0].Style
	if ps.Align != typeset.AlignLeft || !ps.Indent || ps.Double {
		t.Errorf("paragraph style = %+v, want left indented", ps)
	}
}

func TestExtract_WhitespaceDoesNotOpenParagraph(t *testing.T) {
	pars := extract(t, "<div>\n   <p>x</p>\n  <p> y </p>\n</div>", nil, Options{})
	if len(pars) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(pars))
	}
	if got := joined(pars[1]); got != "y| " {
		t.Errorf("second paragraph = %q", got)
	}
}

func TestExtract_StyleInheritance(t *testing.T) {
	pars := extract(t, `<p>a <b>bold <i>both</i></b> plain</p>`, nil, Options{})
	if len(pars) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(pars))
	}
	if got := joined(pars[0]); got != "a| |bold| |both| |plain" {
		t.Fatalf("content = %q", got)
	}
	if s := findText(t, pars, "a").Style; s.Bold || s.Italic {
		t.Errorf("a: %+v", s)
	}
	if s := findText(t, pars, "bold").Style; !s.Bold || s.Italic {
		t.Errorf("bold: %+v", s)
	}
	if s := findText(t, pars, "both").Style; !s.Bold || !s.Italic {
		t.Errorf("both: %+v", s)
	}
	// popping the frame restores parent style for siblings
	if s := findText(t, pars, "plain").Style; s.Bold || s.Italic {
		t.Errorf("plain: %+v", s)
	}
}

func TestExtract_Decorations(t *testing.T) {
	src := `<style>.hot { color: #ff0000; text-decoration: line-through; } .big { font-size: 24px }</style>
<p><a href="next.html">link <span class="hot">red</span></a> <span style="color: nonsense">same</span>
<code>x=1</code> <span class="spoiler">hidden</span> <span class="big">large</span> <span style="font-variant: small-caps">caps</span></p>`
	pars := extract(t, src, nil, Options{})

	link := findText(t, pars, "link").Style
	if link.Decoration.Href != "next.html" || !link.Decoration.Underline {
		t.Errorf("link decoration = %+v", link.Decoration)
	}
	red := findText(t, pars, "red").Style
	if red.Decoration.Color == nil || red.Decoration.Color.Hex() != "#ff0000" {
		t.Errorf("red color = %v", red.Decoration.Color)
	}
	if !red.Decoration.Strike || !red.Decoration.Underline || red.Decoration.Href != "next.html" {
		t.Errorf("decorations must accumulate, got %+v", red.Decoration)
	}
	if c := findText(t, pars, "same").Style.Decoration.Color; c != nil {
		t.Errorf("unparsable color must be ignored, got %v", c)
	}
	if !findText(t, pars, "x=1").Style.Code {
		t.Error("code flag not set")
	}
	if !findText(t, pars, "hidden").Style.Decoration.Spoiler {
		t.Error("spoiler flag not set")
	}
	if s := findText(t, pars, "large").Style.Size; s != 1.5 {
		t.Errorf("declared size = %v, want 1.5", s)
	}
	if !findText(t, pars, "caps").Style.SmallCaps {
		t.Error("small caps not set")
	}
}

func TestExtract_Headings(t *testing.T) {
	pars := extract(t, `<h1>Title</h1><h4>Sub</h4>`, nil, Options{})
	if len(pars) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(pars))
	}
	title := findText(t, pars, "Title").Style
	if title.Size != 2 || !title.Bold {
		t.Errorf("h1 style = %+v", title)
	}
	if sub := findText(t, pars, "Sub").Style; sub.Size != 1 {
		t.Errorf("h4 size = %v, want 1", sub.Size)
	}
}

func TestExtract_Separator(t *testing.T) {
	pars := extract(t, `<p>before</p><hr><p>after</p>`, nil, Options{})
	if len(pars) != 3 {
		t.Fatalf("got %d paragraphs, want 3", len(pars))
	}
	sep := pars[1]
	if !sep.Style.Separator || sep.Style.Align != typeset.AlignCenter || sep.Style.Indent {
		t.Errorf("separator style = %+v", sep.Style)
	}
	if len(sep.Content) != 1 {
		t.Fatalf("separator content = %v", texts(sep))
	}
	if sp, ok := sep.Content[0].(*typeset.Spacer); !ok || sp.Height != 32 {
		t.Errorf("separator spacer = %+v", sep.Content[0])
	}
	if pars[2].Style.Separator {
		t.Error("paragraph after separator must not be separator")
	}
}

func TestExtract_Quotes(t *testing.T) {
	pars := extract(t, `<blockquote><p>one</p><p>two</p><p>three</p></blockquote><p>out</p>`, nil, Options{})
	if len(pars) != 4 {
		t.Fatalf("got %d paragraphs, want 4", len(pars))
	}
	want := []struct{ join, joinNext bool }{{false, true}, {true, true}, {true, false}}
	for i, w := range want {
		ps := pars[i].Style
		if !ps.Quote || ps.Join != w.join || ps.JoinNext != w.joinNext {
			t.Errorf("quote paragraph %d style = %+v, want join=%v joinNext=%v", i, ps, w.join, w.joinNext)
		}
	}
	if ps := pars[3].Style; ps.Quote || ps.Join || ps.JoinNext {
		t.Errorf("paragraph after quote = %+v", ps)
	}
}

func TestExtract_Alignment(t *testing.T) {
	src := `<p style="text-align: center">c</p><div style="text-align: right">r<p>inner</p></div><p style="text-align: justify">j</p>`
	pars := extract(t, src, nil, Options{DoubleParagraphs: true})
	if len(pars) != 4 {
		t.Fatalf("got %d paragraphs, want 4", len(pars))
	}
	tests := []struct {
		align          typeset.Align
		indent, double bool
	}{
		{typeset.AlignCenter, false, true},
		{typeset.AlignRight, false, false},
		{typeset.AlignRight, false, true},
		{typeset.AlignLeft, false, true},
	}
	for i, tt := range tests {
		ps := pars[i].Style
		if ps.Align != tt.align || ps.Indent != tt.indent || ps.Double != tt.double {
			t.Errorf("paragraph %d (%s) style = %+v, want %+v", i, joined(pars[i]), ps, tt)
		}
	}
}

func TestExtract_UndeclaredAlignmentKeepsSpacing(t *testing.T) {
	src := `<h1>Title</h1><div>plain div text</div><blockquote>quoted</blockquote>` +
		`<div style="text-align: left">declared<h2>inside</h2></div>`
	for _, double := range []bool{false, true} {
		pars := extract(t, src, nil, Options{DoubleParagraphs: double})
		if len(pars) != 5 {
			t.Fatalf("got %d paragraphs, want 5", len(pars))
		}
		for i := range 3 {
			if ps := pars[i].Style; ps.Align != typeset.AlignLeft || ps.Indent || ps.Double {
				t.Errorf("double=%v: paragraph %d (%s) style = %+v, want no spacing", double, i, joined(pars[i]), ps)
			}
		}
		// declared left alignment enables spacing, children inherit it
		for i := 3; i < 5; i++ {
			if ps := pars[i].Style; ps.Indent == double || ps.Double != double {
				t.Errorf("double=%v: paragraph %d (%s) style = %+v", double, i, joined(pars[i]), ps)
			}
		}
	}
}

func TestExtract_Hyphenation(t *testing.T) {
	hyph := mapHyphenator{"hyphenation": {"hy", "phen", "ation"}}
	pars := extract(t, "<p>hyphenation well-known co\u00ADop</p>", hyph, Options{})
	if got := joined(pars[0]); got != "hy|phen|ation| |well|-|known| |co|op" {
		t.Fatalf("content = %q", got)
	}
	wantHyphen := map[string]bool{"hy": true, "phen": true, "ation": false, "well": false, "known": false, "co": true, "op": false}
	for word, want := range wantHyphen {
		if got := findText(t, pars, word).Hyphen; got != want {
			t.Errorf("%s: Hyphen = %v, want %v", word, got, want)
		}
	}
}

func TestExtract_BlockBoundaries(t *testing.T) {
	pars := extract(t, `<div>a<p>b</p>c<br>d <span>e</span></div>`, nil, Options{})
	var got []string
	for _, p := range pars {
		got = append(got, joined(p))
	}
	if strings.Join(got, " / ") != "a / b / c / d| |e" {
		t.Errorf("paragraphs = %q", got)
	}
}

func TestExtract_HiddenContent(t *testing.T) {
	src := `<p>shown<script>var x = 1;</script><span style="display: none">secret</span></p><style>p { color: red }</style>`
	pars := extract(t, src, nil, Options{})
	if len(pars) != 1 || joined(pars[0]) != "shown" {
		t.Errorf("paragraphs = %v", pars)
	}
}

func TestExtract_Images(t *testing.T) {
	pars := extract(t, `<p>see <img src="a.png" width="10" height="20px"> and <img alt="no source"></p>`, nil, Options{})
	if got := joined(pars[0]); got != "see| |<img a.png>| |and| " {
		t.Fatalf("content = %q", got)
	}
	img := pars[0].Content[2].(*typeset.Image)
	if img.Width != 10 || img.Height != 20 || !img.Sized() {
		t.Errorf("image = %+v", img)
	}
}

func TestExtract_NotContent(t *testing.T) {
	e := New(nil, nil, Options{}, zaptest.NewLogger(t))
	if _, err := e.Extract(nil); !errors.Is(err, ErrNotContent) {
		t.Errorf("Extract(nil) error = %v", err)
	}
	if _, err := e.Extract(&html.Node{Type: html.TextNode, Data: "x"}); !errors.Is(err, ErrNotContent) {
		t.Errorf("Extract(text) error = %v", err)
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"word", []string{"word"}},
		{"  a \t\n b ", []string{" ", "a", " ", "b", " "}},
		{"x—y", []string{"x", "—", "y"}},
		{"--", []string{"-", "-"}},
	}
	for _, tt := range tests {
		got := segment(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("segment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDump(t *testing.T) {
	pars := extract(t, `<p><b>Bold</b> <a href="x">link</a></p><hr>`, nil, Options{})
	out := Dump(pars)
	for _, want := range []string{"Paragraphs: 2", `Text: "Bold"`, "char: [bold]", `href: "x"`, "Spacer [0x32]", "style: [separator]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() does not contain %q:\n%s", want, out)
		}
	}
}
