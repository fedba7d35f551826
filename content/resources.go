package content

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

var (
	// ErrNoResource is returned when referenced resource cannot be found.
	ErrNoResource = errors.New("resource not found")
	// ErrRemoteResource is returned for references outside of the document source.
	ErrRemoteResource = errors.New("remote resources are not supported")
)

// Resources gives access to files referenced by the document: stylesheets
// and images. Names are slash separated paths relative to the resources root.
type Resources interface {
	ReadFile(name string) ([]byte, error)
}

type fsResources struct {
	fsys fs.FS
}

// FromFS returns resources backed by file system.
func FromFS(fsys fs.FS) Resources {
	return fsResources{fsys: fsys}
}

func (r fsResources) ReadFile(name string) ([]byte, error) {
	data, err := fs.ReadFile(r.fsys, strings.TrimPrefix(path.Clean(name), "/"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNoResource)
	}
	return data, err
}

type relative struct {
	res  Resources
	base string
}

// Relative returns resources resolving names against directory of base.
func Relative(res Resources, base string) Resources {
	if res == nil {
		return nil
	}
	return relative{res: res, base: path.Dir(base)}
}

func (r relative) ReadFile(name string) ([]byte, error) {
	if strings.HasPrefix(name, "/") {
		return r.res.ReadFile(name)
	}
	return r.res.ReadFile(path.Join(r.base, name))
}

// Load reads resource referenced from the document. Data URIs are decoded
// in place, fragments and queries are dropped from relative references.
func Load(res Resources, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNoResource
	}
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("bad reference %q: %w", ref, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return nil, fmt.Errorf("%s: %w", ref, ErrRemoteResource)
	}
	if res == nil {
		return nil, fmt.Errorf("%s: %w", ref, ErrNoResource)
	}
	return res.ReadFile(u.Path)
}

func decodeDataURI(ref string) ([]byte, error) {
	meta, data, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		out, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("malformed data URI: %w", err)
		}
		return out, nil
	}
	out, err := url.PathUnescape(data)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI: %w", err)
	}
	return []byte(out), nil
}
