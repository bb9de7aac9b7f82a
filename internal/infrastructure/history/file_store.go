package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// FileStore appends history entries to a jsonl file. It backs history when
// SQLite cannot be opened.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Save appends one entry.
func (f *FileStore) Save(_ context.Context, entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Recent returns the newest entries first.
func (f *FileStore) Recent(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	return f.filter("", limit)
}

// Search returns entries whose input or output contains query.
func (f *FileStore) Search(_ context.Context, query string, limit int) ([]domain.HistoryEntry, error) {
	return f.filter(query, limit)
}

func (f *FileStore) filter(search string, limit int) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	entries, err := f.readAll()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(search)
	var out []domain.HistoryEntry
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if needle != "" && !strings.Contains(strings.ToLower(e.Input), needle) && !strings.Contains(strings.ToLower(e.Output), needle) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// CategoryStats counts entries per handler category.
func (f *FileStore) CategoryStats(context.Context) ([]domain.CategoryCount, error) {
	f.mu.Lock()
	entries, err := f.readAll()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range entries {
		key := string(e.Category)
		if key == "" {
			key = "unmatched"
		}
		counts[key]++
	}
	stats := make([]domain.CategoryCount, 0, len(counts))
	for category, n := range counts {
		stats = append(stats, domain.CategoryCount{Category: category, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	return stats, nil
}

// Clear removes the history file.
func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Prune rewrites the file without entries older than retainDays.
func (f *FileStore) Prune(_ context.Context, retainDays int) (int, error) {
	if retainDays <= 0 {
		return 0, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.readAll()
	if err != nil || len(entries) == 0 {
		return 0, err
	}
	cutoff := f.now().AddDate(0, 0, -retainDays)
	var kept bytes.Buffer
	removed := 0
	for _, e := range entries {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		data, err := json.Marshal(e)
		if err != nil {
			return 0, err
		}
		kept.Write(append(data, '\n'))
	}
	if removed == 0 {
		return 0, nil
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, kept.Bytes(), domain.SecureFilePermissions); err != nil {
		return 0, err
	}
	return removed, os.Rename(tmp, f.path)
}

// Export writes every entry, oldest first, as JSON lines.
func (f *FileStore) Export(_ context.Context, w io.Writer) error {
	f.mu.Lock()
	entries, err := f.readAll()
	f.mu.Unlock()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Close is a no-op kept for symmetry with SQLiteStore.
func (f *FileStore) Close() error { return nil }

// readAll loads entries in append order, skipping malformed lines.
func (f *FileStore) readAll() ([]domain.HistoryEntry, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	var entries []domain.HistoryEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, scanner.Err()
}

var _ ports.HistoryRepository = (*FileStore)(nil)
