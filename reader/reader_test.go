package reader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"bookview/book"
	"bookview/config"
	"bookview/hosts"
	"bookview/session"
	"bookview/state"
	"bookview/typeset"
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

func writeChapters(t *testing.T, chapters ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, body := range chapters {
		name := filepath.Join(dir, "chapter"+string(rune('1'+i))+".html")
		page := "<html><head><title>Chapter " + string(rune('1'+i)) + "</title></head><body><p>" + body + "</p></body></html>"
		if err := os.WriteFile(name, []byte(page), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type fixture struct {
	r    *Reader
	src  hosts.Source
	sess *session.Memory
}

func newFixture(t *testing.T, chapters ...string) *fixture {
	t.Helper()
	ctx := setupTestContext(t)
	log := zaptest.NewLogger(t)

	src, err := hosts.OpenSource(writeChapters(t, chapters...), log)
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	t.Cleanup(func() { src.Close() })

	f := &fixture{src: src, sess: session.NewMemory()}
	f.r = New(ctx, src, hosts.NewRegistry(log), f.sess, Config{
		Options:   book.DefaultOptions(),
		Settings:  book.DefaultSettings(),
		FrameRate: 60,
		Viewport:  book.Viewport{Width: 800, Height: 640},
	}, log)
	t.Cleanup(func() { f.r.Close() })
	return f
}

func (f *fixture) settle(t *testing.T) {
	t.Helper()
	for range 600 {
		if err := f.r.Frame(1.0 / 60); err != nil {
			t.Fatalf("Frame failed: %v", err)
		}
	}
}

func (f *fixture) key(t *testing.T, key string) {
	t.Helper()
	if _, err := f.r.HandleKey(key); err != nil {
		t.Fatalf("HandleKey(%q) failed: %v", key, err)
	}
}

func TestCellMetrics(t *testing.T) {
	var m cellMetrics
	if got := m.Advance("abc", typeset.DefaultCharStyle()); got != 3*cellWidth {
		t.Errorf("Advance(abc) = %v, want %v", got, 3*cellWidth)
	}
	if got := m.Advance("世", typeset.DefaultCharStyle()); got != 2*cellWidth {
		t.Errorf("Advance of wide rune = %v, want %v", got, 2*cellWidth)
	}
	big := typeset.DefaultCharStyle()
	big.Size = 2
	if got := m.LineHeight(big); got != cellHeight {
		t.Errorf("LineHeight = %v, want %v", got, cellHeight)
	}
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, "ArrowRight"},
		{tea.KeyMsg{Type: tea.KeyLeft}, "ArrowLeft"},
		{tea.KeyMsg{Type: tea.KeyEnter}, "Enter"},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, " "},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{';'}}, ";"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}, "h"},
	}
	for _, tt := range tests {
		if got := keyName(tt.msg); got != tt.want {
			t.Errorf("keyName(%v) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func words(align typeset.Align, items ...string) *typeset.Paragraph {
	p := &typeset.Paragraph{Style: typeset.ParStyle{Align: align}}
	for _, s := range items {
		p.Content = append(p.Content, &typeset.Text{Content: s, ExceptStart: s == " "})
	}
	return p
}

func TestLineText(t *testing.T) {
	brk := typeset.NewGreedy(cellMetrics{})

	t.Run("justified", func(t *testing.T) {
		lines := brk.Break(words(typeset.AlignLeft, "aaa", " ", "bb", " ", "ccc", " ", "dd"), 88)
		if len(lines) != 2 {
			t.Fatalf("Expected 2 lines, got %d", len(lines))
		}
		if got := lineText(lines[0], 88, 11); got != "aaa  bb ccc" {
			t.Errorf("First line = %q", got)
		}
		if got := lineText(lines[1], 88, 11); got != "dd" {
			t.Errorf("Last line = %q", got)
		}
	})

	t.Run("centered", func(t *testing.T) {
		lines := brk.Break(words(typeset.AlignCenter, "abc"), 80)
		if got := lineText(lines[0], 80, 10); got != "   abc" {
			t.Errorf("Centered line = %q", got)
		}
	})

	t.Run("right", func(t *testing.T) {
		lines := brk.Break(words(typeset.AlignRight, "abc"), 80)
		if got := lineText(lines[0], 80, 10); got != "       abc" {
			t.Errorf("Right aligned line = %q", got)
		}
	})

	t.Run("hyphen", func(t *testing.T) {
		p := &typeset.Paragraph{Content: []typeset.Inline{
			&typeset.Text{Content: "syl", Hyphen: true},
			&typeset.Text{Content: "lable"},
		}}
		lines := brk.Break(p, 48)
		if len(lines) != 2 {
			t.Fatalf("Expected 2 lines, got %d", len(lines))
		}
		if got := lineText(lines[0], 48, 6); got != "syl-" {
			t.Errorf("Hyphenated line = %q", got)
		}
	})
}

func TestImageLabel(t *testing.T) {
	tests := []struct {
		src   string
		cells int
		want  string
	}{
		{"img/cover.png", 20, "[cover.png]"},
		{"data:image/png;base64,AAAA", 20, "[image]"},
		{"img/cover.png", 6, "[cov…]"},
		{"img/cover.png", 2, "▧▧"},
	}
	for _, tt := range tests {
		if got := imageLabel(tt.src, tt.cells); got != tt.want {
			t.Errorf("imageLabel(%q, %d) = %q, want %q", tt.src, tt.cells, got, tt.want)
		}
	}
}

func TestReader_Show(t *testing.T) {
	f := newFixture(t, "First chapter text.", "Second chapter text.")

	if err := f.r.Show(2); err == nil {
		t.Error("Expected error for chapter out of range")
	}
	if err := f.r.Show(0); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if f.r.View() == nil || f.r.View().Open() {
		t.Fatal("Expected closed view")
	}

	screen := f.r.Render(0, 0)
	for _, want := range []string{"Chapter 1", "Chapter 1 of 2"} {
		if !strings.Contains(screen, want) {
			t.Errorf("Closed screen misses %q:\n%s", want, screen)
		}
	}

	f.key(t, book.DefaultOptions().OpenKey)
	f.settle(t)
	screen = f.r.Render(120, 50)
	if !strings.Contains(screen, "First chapter text.") {
		t.Errorf("Open screen misses chapter text:\n%s", screen)
	}
}

func TestReader_ChapterNavigation(t *testing.T) {
	f := newFixture(t, "One.", "Two.", "Three.")
	if err := f.r.Show(0); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	f.key(t, book.DefaultOptions().OpenKey)
	f.settle(t)

	f.key(t, "ArrowRight")
	if f.r.Chapter() != 1 {
		t.Fatalf("Expected chapter 1, got %d", f.r.Chapter())
	}
	if !f.r.View().Open() {
		t.Error("Next chapter should open in book mode")
	}
	f.settle(t)
	if screen := f.r.Render(0, 0); !strings.Contains(screen, "Two.") {
		t.Errorf("Screen misses second chapter:\n%s", screen)
	}

	f.key(t, "ArrowLeft")
	f.key(t, "ArrowLeft")
	if f.r.Chapter() != 0 {
		t.Fatalf("Expected chapter 0, got %d", f.r.Chapter())
	}
	if f.r.status != "First chapter" {
		t.Errorf("Status = %q, want first chapter notice", f.r.status)
	}

	f.key(t, "ArrowLeft")
	f.settle(t)
	if on, _ := f.sess.BookMode(); !on {
		t.Error("Book mode should be remembered at chapter edge")
	}

	// closing clears remembered book mode
	f.key(t, book.DefaultOptions().OpenKey)
	if on, _ := f.sess.BookMode(); on {
		t.Error("Book mode should be cleared by closing")
	}
}

func TestReader_Resize(t *testing.T) {
	f := newFixture(t, "Some text.")
	if err := f.r.Show(0); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	f.key(t, book.DefaultOptions().OpenKey)
	f.settle(t)

	f.r.Resize(100, 40)
	if f.r.View().Layout().TwoPages {
		t.Error("800 units wide terminal should show single page")
	}
	f.r.Resize(150, 40)
	if !f.r.View().Layout().TwoPages {
		t.Error("1200 units wide terminal should show two pages")
	}
}

func TestModel_Update(t *testing.T) {
	f := newFixture(t, "Text.")
	if err := f.r.Show(0); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	m := newModel(f.r)

	if m.Init() == nil {
		t.Error("Init should start frame ticks")
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(model)
	if m.width != 100 || m.height != 40 {
		t.Errorf("Size = %dx%d, want 100x40", m.width, m.height)
	}

	next, cmd := m.Update(frameMsg{})
	m = next.(model)
	if cmd == nil {
		t.Error("Frame should schedule next frame")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(book.DefaultOptions().OpenKey)})
	m = next.(model)
	if !f.r.View().Open() {
		t.Error("Open key should open book")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
