// Package history provides the durable command log behind `aura history`.
package history

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/doeshing/aura-go/internal/ports"
)

// Store is a HistoryRepository that can also export, report its location and close.
type Store interface {
	ports.HistoryRepository
	Export(ctx context.Context, w io.Writer) error
	Path() string
	Close() error
}

// Open returns a SQLite store at path, or a jsonl store beside it when SQLite
// cannot be opened. The second return value carries the SQLite error, if any.
func Open(path string) (Store, error) {
	store, err := NewSQLiteStore(path)
	if err == nil {
		return store, nil
	}
	return NewFileStore(fallbackPath(path)), err
}

func fallbackPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".jsonl"
}
