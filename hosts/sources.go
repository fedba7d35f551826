package hosts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"github.com/simp-lee/epub"
	"go.uber.org/zap"

	"bookview/archive"
	"bookview/content"
)

// ErrUnsupportedSource is returned for inputs which are not HTML documents,
// directories, zip archives or EPUB books.
var ErrUnsupportedSource = errors.New("unsupported source")

// Source is an ordered collection of chapters.
type Source interface {
	// Name is human readable name of the source.
	Name() string
	// Len returns number of chapters.
	Len() int
	// Open prepares chapter i.
	Open(ctx context.Context, i int) (*content.Document, error)
	// Resolve returns index of chapter referenced by link found in chapter
	// from.
	Resolve(from int, ref string) (int, bool)
	Close() error
}

// OpenSource opens file or directory at name.
func OpenSource(name string, log *zap.Logger) (Source, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("unable to access source: %w", err)
	}
	log = log.Named("source")
	if fi.IsDir() {
		return openDir(name, log)
	}

	kind, err := filetype.MatchFile(name)
	if err != nil {
		return nil, fmt.Errorf("unable to detect type of %s: %w", name, err)
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case kind.Extension == "epub" || ext == ".epub":
		return openEPUB(name, log)
	case kind.Extension == "zip" || ext == ".zip":
		return openArchive(name, log)
	case isHTML(ext):
		return &dirSource{
			name:  filepath.Base(name),
			files: []string{filepath.Base(name)},
			res:   content.FromFS(os.DirFS(filepath.Dir(name))),
			log:   log,
		}, nil
	}
	return nil, fmt.Errorf("%s (%s): %w", name, kind.MIME.Value, ErrUnsupportedSource)
}

func isHTML(ext string) bool {
	switch ext {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func naturalCmp(x, y string) int {
	switch {
	case natural.Less(x, y):
		return -1
	case natural.Less(y, x):
		return 1
	}
	return 0
}

// resolve finds link target among files. Links leaving the source and
// links to the chapter itself do not resolve.
func resolve(files []string, from int, ref string) (int, bool) {
	if from < 0 || from >= len(files) {
		return 0, false
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return 0, false
	}
	target := u.Path
	if !strings.HasPrefix(target, "/") {
		target = path.Join(path.Dir(files[from]), target)
	}
	target = strings.TrimPrefix(path.Clean(target), "/")
	i := slices.Index(files, target)
	return i, i >= 0 && i != from
}

func prepare(ctx context.Context, data []byte, name string, res content.Resources, log *zap.Logger) (*content.Document, error) {
	doc, err := content.Prepare(ctx, bytes.NewReader(data), name, content.Relative(res, name), log)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("chapter %d out of range [0, %d)", i, n)
	}
	return nil
}

// dirSource reads HTML files of a directory in natural order.
type dirSource struct {
	name  string
	files []string
	res   content.Resources
	log   *zap.Logger
}

func openDir(dir string, log *zap.Logger) (*dirSource, error) {
	fsys := os.DirFS(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory: %w", err)
	}
	s := &dirSource{name: filepath.Base(dir), res: content.FromFS(fsys), log: log}
	for _, e := range entries {
		if !e.IsDir() && isHTML(strings.ToLower(filepath.Ext(e.Name()))) {
			s.files = append(s.files, e.Name())
		}
	}
	if len(s.files) == 0 {
		return nil, fmt.Errorf("%s has no HTML files: %w", dir, ErrUnsupportedSource)
	}
	slices.SortFunc(s.files, naturalCmp)
	return s, nil
}

func (s *dirSource) Name() string { return s.name }
func (s *dirSource) Len() int     { return len(s.files) }
func (s *dirSource) Close() error { return nil }

func (s *dirSource) Open(ctx context.Context, i int) (*content.Document, error) {
	if err := checkIndex(i, len(s.files)); err != nil {
		return nil, err
	}
	data, err := s.res.ReadFile(s.files[i])
	if err != nil {
		return nil, fmt.Errorf("unable to read chapter: %w", err)
	}
	return prepare(ctx, data, s.files[i], s.res, s.log)
}

func (s *dirSource) Resolve(from int, ref string) (int, bool) {
	return resolve(s.files, from, ref)
}

// archiveSource reads HTML files of zip archive in natural order.
type archiveSource struct {
	a     *archive.Archive
	files []string
	log   *zap.Logger
}

func openArchive(name string, log *zap.Logger) (*archiveSource, error) {
	a, err := archive.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive: %w", err)
	}
	files := a.Chapters()
	if len(files) == 0 {
		a.Close()
		return nil, fmt.Errorf("%s has no HTML files: %w", name, ErrUnsupportedSource)
	}
	return &archiveSource{a: a, files: files, log: log}, nil
}

func (s *archiveSource) Name() string { return filepath.Base(s.a.Name()) }
func (s *archiveSource) Len() int     { return len(s.files) }
func (s *archiveSource) Close() error { return s.a.Close() }

func (s *archiveSource) Open(ctx context.Context, i int) (*content.Document, error) {
	if err := checkIndex(i, len(s.files)); err != nil {
		return nil, err
	}
	data, err := s.a.ReadFile(s.files[i])
	if err != nil {
		return nil, fmt.Errorf("unable to read chapter: %w", err)
	}
	return prepare(ctx, data, s.files[i], s.a, s.log)
}

func (s *archiveSource) Resolve(from int, ref string) (int, bool) {
	return resolve(s.files, from, ref)
}

// epubSource reads linear content chapters of EPUB book in spine order.
type epubSource struct {
	name     string
	book     *epub.Book
	chapters []epub.Chapter
	files    []string
	log      *zap.Logger
}

func openEPUB(name string, log *zap.Logger) (*epubSource, error) {
	b, err := epub.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open epub: %w", err)
	}
	for _, w := range b.Warnings() {
		log.Debug("EPUB warning", zap.String("warning", w))
	}
	s := &epubSource{name: filepath.Base(name), book: b, log: log}
	if md := b.Metadata(); len(md.Titles) > 0 && md.Titles[0] != "" {
		s.name = md.Titles[0]
	}
	for _, ch := range b.ContentChapters() {
		if !ch.Linear {
			continue
		}
		s.chapters = append(s.chapters, ch)
		s.files = append(s.files, ch.Href)
	}
	if len(s.chapters) == 0 {
		b.Close()
		return nil, fmt.Errorf("%s has no content chapters: %w", name, ErrUnsupportedSource)
	}
	return s, nil
}

func (s *epubSource) Name() string { return s.name }
func (s *epubSource) Len() int     { return len(s.chapters) }
func (s *epubSource) Close() error { return s.book.Close() }

func (s *epubSource) Open(ctx context.Context, i int) (*content.Document, error) {
	if err := checkIndex(i, len(s.chapters)); err != nil {
		return nil, err
	}
	ch := s.chapters[i]
	data, err := ch.RawContent()
	if err != nil {
		return nil, fmt.Errorf("unable to read chapter %q: %w", ch.Href, err)
	}
	doc, err := prepare(ctx, data, ch.Href, s.book, s.log)
	if err != nil {
		return nil, err
	}
	if doc.Title == "" {
		doc.Title = ch.Title
	}
	return doc, nil
}

func (s *epubSource) Resolve(from int, ref string) (int, bool) {
	return resolve(s.files, from, ref)
}
