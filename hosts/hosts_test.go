package hosts

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"bookview/book"
	"bookview/config"
	"bookview/content"
	"bookview/spring"
	"bookview/state"
	"bookview/typeset"
	"bookview/visual"
)

func setupTestContext(t *testing.T) context.Context {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx
}

func parse(t *testing.T, src string) *content.Document {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return &content.Document{SrcName: "test.html", Root: root}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

const ao3Page = `<html><head>
<link rel="canonical" href="https://archiveofourown.org/works/1/chapters/2">
<title>Work - Chapter 2</title></head><body>
<ul class="work navigation">
  <li class="chapter previous"><a href="/works/1/chapters/1">Previous Chapter</a></li>
  <li class="chapter next"><a href="/works/1/chapters/3">Next Chapter</a></li>
</ul>
<div id="workskin"><div id="chapters"><div class="chapter">
  <div class="chapter preface group"><h3 class="title">
    <a href="/works/1/chapters/2">Chapter 2</a>: The   Middle
  </h3></div>
  <div class="userstuff module" role="article"><p>Once upon a time.</p></div>
</div></div></div>
</body></html>`

func TestHost(t *testing.T) {
	tests := []struct {
		canonical string
		want      string
	}{
		{"https://archiveofourown.org/works/1", "archiveofourown.org"},
		{"https://www.ArchiveOfOurOwn.org/works/1", "archiveofourown.org"},
		{"/relative/path", ""},
		{"", ""},
		{"http://[::1", ""},
	}
	for _, tt := range tests {
		if got := Host(&content.Document{Canonical: tt.canonical}); got != tt.want {
			t.Errorf("Host(%q) = %q, want %q", tt.canonical, got, tt.want)
		}
	}
	if Host(nil) != "" {
		t.Error("Host(nil) must be empty")
	}
}

func TestAO3(t *testing.T) {
	log := zaptest.NewLogger(t)

	c, err := AO3(parse(t, ao3Page), log)
	if err != nil || c == nil {
		t.Fatalf("AO3() = %v, %v", c, err)
	}
	if got := attr(c.Node, "class"); got != "userstuff module" {
		t.Errorf("content class = %q", got)
	}
	if c.Title != "Chapter 2: The Middle" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Prev != "/works/1/chapters/1" || c.Next != "/works/1/chapters/3" {
		t.Errorf("links = %q / %q", c.Prev, c.Next)
	}

	c, err = AO3(parse(t, `<div id="workskin"><div id="chapters"><p>x</p></div></div>`), log)
	if err != nil || c == nil {
		t.Fatalf("AO3() = %v, %v", c, err)
	}
	if attr(c.Node, "id") != "chapters" || c.Prev != "" || c.Next != "" {
		t.Errorf("fallback content = %q, links %q/%q", attr(c.Node, "id"), c.Prev, c.Next)
	}

	c, err = AO3(parse(t, `<p>nothing here</p>`), log)
	if err != nil || c != nil {
		t.Errorf("AO3() without content = %v, %v", c, err)
	}
}

func TestGeneric(t *testing.T) {
	log := zaptest.NewLogger(t)
	c, err := Generic(parse(t, `<nav>menu</nav><main id="m"><p>text</p></main>`), log)
	if err != nil || c == nil || attr(c.Node, "id") != "m" {
		t.Fatalf("Generic() = %v, %v", c, err)
	}
	c, err = Generic(parse(t, `<p>text</p>`), log)
	if err != nil || c == nil || c.Node.Data != "body" {
		t.Fatalf("Generic() body fallback = %v, %v", c, err)
	}
}

type monoMetrics struct{}

func (monoMetrics) Advance(text string, style typeset.CharStyle) float64 {
	return float64(utf8.RuneCountInString(text)) * style.Scale()
}

func (monoMetrics) LineHeight(style typeset.CharStyle) float64 {
	return 10 * style.Scale()
}

func newView(t *testing.T) *book.View {
	t.Helper()
	tree := visual.NewDocument("body")
	v, err := book.New(book.Host{
		Tree:     tree,
		Root:     tree.Root,
		Loop:     spring.NewLoop(),
		Breaker:  typeset.NewGreedy(monoMetrics{}),
		Viewport: book.Viewport{Width: 800, Height: 600},
	}, book.DefaultOptions(), book.DefaultSettings(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestRegistry_Show(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))

	doc := parse(t, ao3Page)
	doc.Canonical = "https://archiveofourown.org/works/1/chapters/2"
	if host, _ := r.Lookup(doc); host != AO3Host {
		t.Errorf("Lookup() host = %q", host)
	}

	v := newView(t)
	c, err := r.Show(v, doc)
	if err != nil || c == nil {
		t.Fatalf("Show() = %v, %v", c, err)
	}
	if len(v.Pages()) != 1 {
		t.Errorf("got %d pages, want 1", len(v.Pages()))
	}
	title := v.Container().(*visual.Element).First("bv-content-title")
	if title == nil || title.Text != "Chapter 2: The Middle" {
		t.Errorf("title element = %+v", title)
	}

	// unknown host falls back to generic setup
	other := parse(t, `<article><p>plain</p></article>`)
	if host, _ := r.Lookup(other); host != "" {
		t.Errorf("Lookup() host = %q, want empty", host)
	}

	empty := parse(t, `<p>no chapters</p>`)
	empty.Canonical = "https://archiveofourown.org/works/2"
	v2 := newView(t)
	c, err = r.Show(v2, empty)
	if err != nil || c != nil {
		t.Errorf("Show() without content = %v, %v", c, err)
	}
	if len(v2.Pages()) != 0 {
		t.Errorf("nothing must be rendered, got %d pages", len(v2.Pages()))
	}
}

func chapter(title string) string {
	return `<html><head><title>` + title + `</title></head><body><p>` + title + ` text</p></body></html>`
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeZip(t *testing.T, name string, order []string, files map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, n := range order {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, files[n]); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return p
}

func checkChapters(t *testing.T, ctx context.Context, s Source, titles ...string) {
	t.Helper()
	if s.Len() != len(titles) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(titles))
	}
	for i, want := range titles {
		doc, err := s.Open(ctx, i)
		if err != nil {
			t.Fatalf("Open(%d) error = %v", i, err)
		}
		if doc.Title != want {
			t.Errorf("chapter %d title = %q, want %q", i, doc.Title, want)
		}
	}
	if _, err := s.Open(ctx, len(titles)); err == nil {
		t.Error("Open() out of range must fail")
	}
}

func TestOpenSource_Dir(t *testing.T) {
	ctx := setupTestContext(t)
	log := zaptest.NewLogger(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"ch10.html": chapter("Ten"),
		"ch2.html":  chapter("Two"),
		"ch1.html":  chapter("One"),
		"notes.txt": "not a chapter",
	})

	s, err := OpenSource(dir, log)
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer s.Close()
	checkChapters(t, ctx, s, "One", "Two", "Ten")

	tests := []struct {
		from int
		ref  string
		want int
		ok   bool
	}{
		{0, "ch2.html", 1, true},
		{0, "./ch10.html#part", 2, true},
		{2, "/ch1.html", 0, true},
		{0, "ch1.html#top", 0, false},
		{0, "https://example.com/ch2.html", 0, false},
		{0, "missing.html", 0, false},
		{7, "ch2.html", 0, false},
	}
	for _, tt := range tests {
		i, ok := s.Resolve(tt.from, tt.ref)
		if ok != tt.ok || (ok && i != tt.want) {
			t.Errorf("Resolve(%d, %q) = %d, %v", tt.from, tt.ref, i, ok)
		}
	}

	single, err := OpenSource(filepath.Join(dir, "ch2.html"), log)
	if err != nil {
		t.Fatalf("OpenSource(file) error = %v", err)
	}
	checkChapters(t, ctx, single, "Two")
}

func TestOpenSource_Archive(t *testing.T) {
	ctx := setupTestContext(t)
	files := map[string]string{
		"book/c2.xhtml":   chapter("Second"),
		"book/c1.xhtml":   chapter("First"),
		"book/style.css":  "p { color: red }",
		"book/readme.txt": "readme",
	}
	p := writeZip(t, "book.zip", []string{"book/c2.xhtml", "book/c1.xhtml", "book/style.css", "book/readme.txt"}, files)

	s, err := OpenSource(p, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer s.Close()
	if s.Name() != "book.zip" {
		t.Errorf("Name() = %q", s.Name())
	}
	checkChapters(t, ctx, s, "First", "Second")
	if i, ok := s.Resolve(0, "c2.xhtml"); !ok || i != 1 {
		t.Errorf("Resolve() = %d, %v", i, ok)
	}
}

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Test Book</dc:title></metadata>
  <manifest>
    <item id="c1" href="text/c1.xhtml" media-type="application/xhtml+xml"/>
    <item id="notes" href="text/notes.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/c2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="notes" linear="no"/>
    <itemref idref="c2"/>
  </spine>
</package>`

const testContainer = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func TestOpenSource_EPUB(t *testing.T) {
	ctx := setupTestContext(t)
	order := []string{"mimetype", "META-INF/container.xml", "OEBPS/content.opf",
		"OEBPS/text/c1.xhtml", "OEBPS/text/notes.xhtml", "OEBPS/text/c2.xhtml"}
	p := writeZip(t, "book.epub", order, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      testOPF,
		"OEBPS/text/c1.xhtml":    chapter("Opening"),
		"OEBPS/text/notes.xhtml": chapter("Notes"),
		"OEBPS/text/c2.xhtml":    chapter("Closing"),
	})

	s, err := OpenSource(p, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	defer s.Close()
	if s.Name() != "Test Book" {
		t.Errorf("Name() = %q", s.Name())
	}
	checkChapters(t, ctx, s, "Opening", "Closing")
	if i, ok := s.Resolve(0, "c2.xhtml"); !ok || i != 1 {
		t.Errorf("Resolve() = %d, %v", i, ok)
	}
}

func TestOpenSource_Unsupported(t *testing.T) {
	log := zaptest.NewLogger(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"notes.txt": "plain text"})

	if _, err := OpenSource(filepath.Join(dir, "notes.txt"), log); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("OpenSource(txt) error = %v", err)
	}
	empty := t.TempDir()
	if _, err := OpenSource(empty, log); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("OpenSource(empty dir) error = %v", err)
	}
	if _, err := OpenSource(filepath.Join(dir, "missing.html"), log); err == nil {
		t.Error("OpenSource(missing) must fail")
	}
}
