// Package storage keeps uploaded application files. Handles look like
// "<epoch-ms>_<original name>", the same convention older uploads used, so
// the review screen can always recover a display name from a bare handle.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("file not found")
	ErrInvalidHandle = errors.New("invalid file handle")
)

// cleanName reduces a browser supplied name to a safe final path element.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "upload"
	}
	return name
}

func handleFor(t time.Time, name string) string {
	return fmt.Sprintf("%d_%s", t.UnixMilli(), name)
}

// checkHandle rejects anything that could escape the store.
func checkHandle(handle string) error {
	if handle == "" || handle == "." || handle == ".." ||
		strings.ContainsAny(handle, `/\`) || strings.Contains(handle, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return nil
}
