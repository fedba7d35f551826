package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"bookview/config"
)

// Values is a struct that holds variables we make available for template
// expansion.
type Values struct {
	Context    string
	Title      string
	Source     string
	SourceFile string
	Host       string
	Language   string
	Chapter    int // 1 based
	Chapters   int
	Pages      int
	Format     string
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// outputStem returns path of exported chapter without extension. Template
// may produce subdirectories. Chapters of multi chapter sources are told
// apart by number suffix.
func (e *Exporter) outputStem(dst string, values Values) string {
	name := values.SourceFile
	if tmpl := e.cfg.OutputNameTemplate; tmpl != "" {
		expanded, err := expandTemplate(config.OutputNameTemplateFieldName, tmpl, values)
		switch {
		case err != nil:
			e.log.Warn("Unable to prepare output filename", zap.Error(err))
		case expanded != "":
			name = filepath.FromSlash(expanded)
		}
	}

	segments := splitPath(name)
	if len(segments) == 0 {
		segments = []string{values.SourceFile}
	}
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, dst)
	for _, s := range segments {
		parts = append(parts, e.cleanSegment(s))
	}
	stem := filepath.Join(parts...)
	if values.Chapters > 1 {
		stem += fmt.Sprintf("-%02d", values.Chapter)
	}
	return stem
}

func splitPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func (e *Exporter) cleanSegment(segment string) string {
	if e.cfg.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}

// pageName returns file name of a single exported page.
func pageName(stem string, number int, format config.ExportFmt) string {
	return fmt.Sprintf("%s-%03d%s", stem, number, format.Ext())
}
