package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/justsurfingit/applicant-tracker/internal/forms"
)

// DiskStore writes uploads into a directory.
type DiskStore struct {
	Dir string
	now func() time.Time
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, now: time.Now}, nil
}

// Store writes data under a fresh handle. A clash within the same
// millisecond moves the timestamp forward until the name is free.
func (s *DiskStore) Store(ctx context.Context, data []byte, originalName string) (forms.FileDescriptor, error) {
	name := cleanName(originalName)
	t := s.now()
	for attempt := 0; attempt < 100; attempt++ {
		if err := ctx.Err(); err != nil {
			return forms.FileDescriptor{}, err
		}
		handle := handleFor(t, name)
		path := filepath.Join(s.Dir, handle)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			t = t.Add(time.Millisecond)
			continue
		}
		if err != nil {
			return forms.FileDescriptor{}, fmt.Errorf("create %s: %w", handle, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return forms.FileDescriptor{}, fmt.Errorf("write %s: %w", handle, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return forms.FileDescriptor{}, fmt.Errorf("close %s: %w", handle, err)
		}

		log.WithFields(log.Fields{"handle": handle, "bytes": len(data)}).Debug("stored upload on disk")
		return forms.FileDescriptor{FileName: handle, OriginalName: name, Path: path}, nil
	}
	return forms.FileDescriptor{}, fmt.Errorf("no free handle for %s", name)
}

func (s *DiskStore) Retrieve(ctx context.Context, handle string) ([]byte, error) {
	if err := checkHandle(handle); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, handle))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", handle, ErrNotFound)
	}
	return data, err
}
