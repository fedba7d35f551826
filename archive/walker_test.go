package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeZip(t *testing.T, names ...string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)
	for _, name := range names {
		if filepath.Ext(name) == "" && name[len(name)-1] == '/' {
			hdr := &zip.FileHeader{Name: name}
			hdr.SetMode(os.ModeDir | 0755)
			if _, err := w.CreateHeader(hdr); err != nil {
				t.Fatalf("Failed to create directory %s: %v", name, err)
			}
			continue
		}
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	zipFile.Close()
	return zipPath
}

func TestArchive_Walk(t *testing.T) {
	a, err := Open(writeZip(t, "docs/", "docs/readme.txt", "docs/guide.txt", "src/main.go", "config.yml"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	tests := []struct {
		prefix string
		want   int
	}{
		{"docs/", 2},
		{"src/", 1},
		{"nonexistent/", 0},
		{"", 4},
	}
	for _, tt := range tests {
		var visited []string
		if err := a.Walk(tt.prefix, func(f *zip.File) error {
			visited = append(visited, f.Name)
			return nil
		}); err != nil {
			t.Errorf("Walk(%q) error = %v", tt.prefix, err)
		}
		if len(visited) != tt.want {
			t.Errorf("Walk(%q) visited %v, want %d files", tt.prefix, visited, tt.want)
		}
	}

	expectedErr := errors.New("test error")
	if err := a.Walk("docs/", func(*zip.File) error { return expectedErr }); err != expectedErr {
		t.Errorf("Walk() error = %v, want %v", err, expectedErr)
	}
}

func TestArchive_Chapters(t *testing.T) {
	a, err := Open(writeZip(t, "ch10.html", "ch2.html", "style.css", "ch1.xhtml", "img/cover.png"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if got, want := a.Chapters(), []string{"ch1.xhtml", "ch2.html", "ch10.html"}; !slices.Equal(got, want) {
		t.Errorf("Chapters() = %v, want %v", got, want)
	}
	data, err := a.ReadFile("/style.css")
	if err != nil || string(data) != "content of style.css" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}
	if _, err := a.ReadFile("missing.css"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadFile(missing) error = %v", err)
	}
}

func TestOpen_Invalid(t *testing.T) {
	if _, err := Open("/nonexistent/file.zip"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
	invalid := filepath.Join(t.TempDir(), "invalid.zip")
	if err := os.WriteFile(invalid, []byte("not a zip file"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(invalid); err == nil {
		t.Error("Expected error for invalid zip file")
	}
	if _, err := Open(writeZip(t, "../escape.html")); err == nil {
		t.Error("Expected error for unsafe entry")
	}
}
