package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `CREATE TABLE IF NOT EXISTS book_mode (
	session TEXT PRIMARY KEY,
	enabled INTEGER NOT NULL,
	updated INTEGER NOT NULL
)`

// SQLite keeps flag of a single session in database file.
type SQLite struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	id   string
	log  *zap.Logger
}

// OpenSQLite opens (creating when necessary) database at path and returns
// store for session id.
func OpenSQLite(path, id string, log *zap.Logger) (*SQLite, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open session database '%s': %w", path, err)
	}
	if err := sqlitex.Execute(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare session database '%s': %w", path, err)
	}
	log.Debug("Session database opened", zap.String("path", path), zap.String("session", id))
	return &SQLite{conn: conn, id: id, log: log}, nil
}

func (s *SQLite) BookMode() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var on bool
	err := sqlitex.Execute(s.conn, `SELECT enabled FROM book_mode WHERE session = ?`,
		&sqlitex.ExecOptions{
			Args: []any{s.id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				on = stmt.ColumnInt64(0) != 0
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("unable to read book mode: %w", err)
	}
	return on, nil
}

func (s *SQLite) SetBookMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if on {
		err = sqlitex.Execute(s.conn,
			`INSERT INTO book_mode (session, enabled, updated) VALUES (?, 1, ?)
			ON CONFLICT(session) DO UPDATE SET enabled = excluded.enabled, updated = excluded.updated`,
			&sqlitex.ExecOptions{Args: []any{s.id, time.Now().Unix()}})
	} else {
		err = sqlitex.Execute(s.conn, `DELETE FROM book_mode WHERE session = ?`,
			&sqlitex.ExecOptions{Args: []any{s.id}})
	}
	if err != nil {
		return fmt.Errorf("unable to store book mode: %w", err)
	}
	s.log.Debug("Book mode stored", zap.String("session", s.id), zap.Bool("on", on))
	return nil
}

// Close closes database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
