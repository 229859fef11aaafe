package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// SQLiteStore keeps uploads as blobs in a single SQLite file, for deployments
// without a writable upload directory.
type SQLiteStore struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open file db: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS files (
		handle        TEXT PRIMARY KEY,
		original_name TEXT NOT NULL,
		size          INTEGER NOT NULL,
		data          BLOB NOT NULL,
		created_at    TIMESTAMP NOT NULL
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init file db: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Store(ctx context.Context, data []byte, originalName string) (forms.FileDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := cleanName(originalName)
	t := s.now()
	for attempt := 0; attempt < 100; attempt++ {
		handle := handleFor(t, name)
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO files (handle, original_name, size, data, created_at) VALUES (?, ?, ?, ?, ?)`,
			handle, name, len(data), data, t.UTC())
		if err != nil && isUniqueViolation(err) {
			t = t.Add(time.Millisecond)
			continue
		}
		if err != nil {
			return forms.FileDescriptor{}, fmt.Errorf("insert %s: %w", handle, err)
		}
		log.WithFields(log.Fields{"handle": handle, "bytes": len(data)}).Debug("stored upload in sqlite")
		return forms.FileDescriptor{FileName: handle, OriginalName: name, Path: handle}, nil
	}
	return forms.FileDescriptor{}, fmt.Errorf("no free handle for %s", name)
}

func (s *SQLiteStore) Retrieve(ctx context.Context, handle string) ([]byte, error) {
	if err := checkHandle(handle); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM files WHERE handle = ?`, handle).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", handle, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
