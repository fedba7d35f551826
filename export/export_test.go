package export

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"bookview/config"
	"bookview/hosts"
	"bookview/paginate"
	"bookview/state"
)

func setupEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx, env
}

func openSource(t *testing.T, pages map[string]string) hosts.Source {
	t.Helper()
	dir := t.TempDir()
	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	src, err := hosts.OpenSource(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

const chapterPage = `<html><head><title>Opening</title></head>
<body><p>It was a bright cold day in April.</p><p>The clocks were striking thirteen.</p></body></html>`

func exportSource(t *testing.T, format config.ExportFmt, pages map[string]string) []string {
	t.Helper()
	ctx, env := setupEnv(t)
	dst := t.TempDir()
	files, err := New(env, hosts.NewRegistry(env.Log), format).Export(ctx, openSource(t, pages), dst)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	for _, f := range files {
		if !strings.HasPrefix(f, dst) {
			t.Errorf("File %s written outside of %s", f, dst)
		}
	}
	return files
}

func TestExport_HTML(t *testing.T) {
	files := exportSource(t, config.ExportFmtHtml, map[string]string{"one.html": chapterPage})
	if len(files) != 1 || filepath.Base(files[0]) != "opening.html" {
		t.Fatalf("Unexpected files: %v", files)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"<title>Opening</title>", "bv-page", ">bright<", ">cold<", ".bv-export"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML misses %q", want)
		}
	}
	for _, unwanted := range []string{"translateX", "rotateY", "data-position"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("HTML should not carry animation state %q", unwanted)
		}
	}
}

func TestExport_Text(t *testing.T) {
	files := exportSource(t, config.ExportFmtText, map[string]string{
		"1.html": chapterPage,
		"2.html": `<html><head><title>Opening</title></head><body><p>Second.</p></body></html>`,
	})
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %v", files)
	}
	if filepath.Base(files[0]) != "opening-01.txt" || filepath.Base(files[1]) != "opening-02.txt" {
		t.Errorf("Chapters should be numbered: %v", files)
	}
	data, err := os.ReadFile(files[1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Second.") || !strings.Contains(string(data), strings.TrimSpace(paginate.EndMarker)) {
		t.Errorf("Unexpected text:\n%s", data)
	}
}

func TestExport_Raster(t *testing.T) {
	tests := []struct {
		format config.ExportFmt
		ext    string
	}{
		{config.ExportFmtPng, ".png"},
		{config.ExportFmtJpeg, ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			files := exportSource(t, tt.format, map[string]string{"one.html": chapterPage})
			if len(files) == 0 {
				t.Fatal("No pages written")
			}
			if filepath.Base(files[0]) != "opening-001"+tt.ext {
				t.Errorf("Unexpected page name %s", files[0])
			}
			data, err := os.ReadFile(files[0])
			if err != nil {
				t.Fatal(err)
			}
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Page is not an image: %v", err)
			}
			// 400x500 units at 300 dpi
			if cfg.Width != 1250 || cfg.Height != 1563 {
				t.Errorf("Page size = %dx%d, want 1250x1563", cfg.Width, cfg.Height)
			}
			if tt.format == config.ExportFmtJpeg && !bytes.Contains(data[:32], []byte("JFIF")) {
				t.Error("JPEG page should carry JFIF segment")
			}
		})
	}
}

func TestExport_NoContent(t *testing.T) {
	files := exportSource(t, config.ExportFmtHtml, map[string]string{
		"a.html": `<html><head><link rel="canonical" href="https://archiveofourown.org/works/1"></head><body><p>No work here.</p></body></html>`,
	})
	if len(files) != 0 {
		t.Errorf("Chapter without content should be skipped, got %v", files)
	}
}

func TestOutputStem(t *testing.T) {
	tests := []struct {
		name     string
		template string
		translit bool
		values   Values
		want     string
	}{
		{"default", "", false, Values{SourceFile: "chapter1", Chapters: 1}, "chapter1"},
		{"template", "{{ .Title | lower }}", true, Values{Title: "My Title", Chapters: 1}, "my-title"},
		{"subdir", "{{ .Source }}/{{ .Title }}", true, Values{Title: "My Title", Source: "My Book", Chapter: 2, Chapters: 3}, filepath.Join("my-book", "my-title-02")},
		{"keep", "{{ .Title }}", false, Values{Title: "My Title", Chapters: 1}, "My Title"},
		{"broken", "{{ .Title", false, Values{Title: "My Title", SourceFile: "src", Chapters: 1}, "src"},
		{"empty", "{{ .Host }}", false, Values{SourceFile: "src", Chapters: 1}, "src"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Exporter{
				cfg: &config.ExportConfig{OutputNameTemplate: tt.template, FileNameTransliterate: tt.translit},
				log: zaptest.NewLogger(t),
			}
			if got := e.outputStem("out", tt.values); got != filepath.Join("out", tt.want) {
				t.Errorf("outputStem() = %q, want %q", got, filepath.Join("out", tt.want))
			}
		})
	}
}

func TestPageName(t *testing.T) {
	if got := pageName("out/x", 7, config.ExportFmtJpeg); got != "out/x-007.jpg" {
		t.Errorf("pageName() = %q", got)
	}
}
