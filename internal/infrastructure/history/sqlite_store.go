package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// timestampLayout is fixed width so lexical order in SQL matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db, path: path, now: time.Now}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS commands (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		input TEXT NOT NULL,
		output TEXT,
		mode TEXT,
		handler TEXT,
		category TEXT,
		intent TEXT,
		status TEXT
	);`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_commands_timestamp ON commands(timestamp);`)
	return err
}

// Save inserts a new entry.
func (s *SQLiteStore) Save(ctx context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO commands
		(id, timestamp, input, output, mode, handler, category, intent, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(timestampLayout),
		entry.Input,
		entry.Output,
		string(entry.Mode),
		entry.Handler,
		string(entry.Category),
		entry.Intent,
		string(entry.Status),
	)
	return err
}

// Recent returns the newest entries first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return s.query(ctx, "", limit)
}

// Search returns entries whose input or output contains query, newest first.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]domain.HistoryEntry, error) {
	return s.query(ctx, query, limit)
}

func (s *SQLiteStore) query(ctx context.Context, search string, limit int) ([]domain.HistoryEntry, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT id, timestamp, input, output, mode, handler, category, intent, status FROM commands")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE input LIKE ? OR output LIKE ?")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	builder.WriteString(" ORDER BY timestamp DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var (
			entry                      domain.HistoryEntry
			ts, mode, category, status string
			output, handler, intent    sql.NullString
		)
		if err := rows.Scan(&entry.ID, &ts, &entry.Input, &output, &mode, &handler, &category, &intent, &status); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timestampLayout, ts); err == nil {
			entry.Timestamp = t
		}
		entry.Output = output.String
		entry.Handler = handler.String
		entry.Intent = intent.String
		entry.Mode = domain.InputMode(mode)
		entry.Category = domain.Category(category)
		entry.Status = domain.Status(status)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CategoryStats counts entries per handler category, most used first.
func (s *SQLiteStore) CategoryStats(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(NULLIF(category, ''), 'unmatched') AS c, COUNT(*) AS n
		FROM commands GROUP BY c ORDER BY n DESC, c ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []domain.CategoryCount
	for rows.Next() {
		var row domain.CategoryCount
		if err := rows.Scan(&row.Category, &row.Count); err != nil {
			return nil, err
		}
		stats = append(stats, row)
	}
	return stats, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM commands")
	return err
}

// Prune deletes entries older than retainDays and reports how many went.
func (s *SQLiteStore) Prune(ctx context.Context, retainDays int) (int, error) {
	if retainDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retainDays).Format(timestampLayout)
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, "DELETE FROM commands WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Export writes every entry, oldest first, as JSON lines.
func (s *SQLiteStore) Export(ctx context.Context, w io.Writer) error {
	entries, err := s.query(ctx, "", 0)
	if err != nil {
		return err
	}
	return writeJSONLines(w, entries)
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func writeJSONLines(w io.Writer, newestFirst []domain.HistoryEntry) error {
	enc := json.NewEncoder(w)
	for i := len(newestFirst) - 1; i >= 0; i-- {
		if err := enc.Encode(newestFirst[i]); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
