// Package session keeps book mode flag between views of consecutive
// chapters and between program runs.
package session

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps book mode flag of a session.
type Store interface {
	BookMode() (bool, error)
	SetBookMode(on bool) error
	Close() error
}

// Open returns store and identifier of the session reading source. Flag is
// kept in database at path or, when path is empty, in memory.
func Open(path, source string, log *zap.Logger) (Store, string, error) {
	id := NewID(source)
	if path == "" {
		return NewMemory(), id, nil
	}
	s, err := OpenSQLite(path, id, log)
	if err != nil {
		return nil, "", err
	}
	return s, id, nil
}

// namespace of identifiers derived from source names
var namespace = uuid.MustParse("5c0f3c0e-6f2b-4d8e-9a43-0b2f3b7a9d11")

// NewID returns session identifier. Identifiers of the same non empty source
// are equal, so reopening the same book resumes its session. Empty source
// gets unique identifier.
func NewID(source string) string {
	if source == "" {
		if id, err := uuid.NewV7(); err == nil {
			return id.String()
		}
		return uuid.NewString()
	}
	return uuid.NewSHA1(namespace, []byte(source)).String()
}

// Memory keeps flag for the lifetime of the process.
type Memory struct {
	mu sync.Mutex
	on bool
}

// NewMemory returns session with book mode off.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) BookMode() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on, nil
}

func (m *Memory) SetBookMode(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.on = on
	return nil
}

func (m *Memory) Close() error {
	return nil
}
