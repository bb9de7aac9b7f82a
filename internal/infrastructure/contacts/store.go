// Package contacts keeps the address book in a YAML file and reloads it on change.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

type contactFile struct {
	Contacts []domain.Contact `yaml:"contacts"`
}

// Store is a ContactDirectory backed by a YAML file.
type Store struct {
	path   string
	logger ports.Logger

	mu     sync.RWMutex
	byKey  map[string]domain.Contact
	sorted []domain.Contact

	watchMu  sync.Mutex
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	debounce time.Duration
}

// NewStore loads path. A missing file is created from seed when seed is non-empty.
func NewStore(path string, seed []byte, logger ports.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger, debounce: domain.DefaultWatchDebounce}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && len(seed) > 0 {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, seed, domain.SecureFilePermissions); err != nil {
			return nil, fmt.Errorf("seed contacts: %w", err)
		}
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the file. On error the previous contacts stay in place.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.replace(nil)
			return nil
		}
		return err
	}
	var parsed contactFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.replace(parsed.Contacts)
	return nil
}

func (s *Store) replace(list []domain.Contact) {
	byKey := make(map[string]domain.Contact, len(list))
	for _, c := range list {
		key := domain.ContactKey(c.Name)
		if key == "" {
			continue
		}
		byKey[key] = c
	}
	sorted := make([]domain.Contact, 0, len(byKey))
	for _, c := range byKey {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return domain.ContactKey(sorted[i].Name) < domain.ContactKey(sorted[j].Name)
	})
	s.mu.Lock()
	s.byKey = byKey
	s.sorted = sorted
	s.mu.Unlock()
}

// Find looks a contact up by case-insensitive name. Without an exact match the
// first contact, in name order, whose name contains or is contained in name wins.
func (s *Store) Find(name string) (domain.Contact, error) {
	key := domain.ContactKey(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.byKey[key]; ok {
		return c, nil
	}
	if key != "" {
		for _, c := range s.sorted {
			ckey := domain.ContactKey(c.Name)
			if strings.Contains(ckey, key) || strings.Contains(key, ckey) {
				return c, nil
			}
		}
	}
	return domain.Contact{}, fmt.Errorf("%w: %s", domain.ErrContactNotFound, name)
}

// All returns every contact sorted by name.
func (s *Store) All() []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Contact, len(s.sorted))
	copy(out, s.sorted)
	return out
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Watch reloads the store whenever the file changes until ctx ends or Stop is called.
func (s *Store) Watch(ctx context.Context) error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return err
	}
	s.watcher = w
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(ctx, w, s.stopCh, s.doneCh)
	return nil
}

// Stop ends a running Watch and waits for its goroutine.
func (s *Store) Stop() {
	s.watchMu.Lock()
	w, stop, done := s.watcher, s.stopCh, s.doneCh
	s.watcher = nil
	s.watchMu.Unlock()
	if w == nil {
		return
	}
	close(stop)
	<-done
	_ = w.Close()
}

func (s *Store) run(ctx context.Context, w *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	target := filepath.Clean(s.path)
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			timerCh = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.warn("contacts watcher error", err)
		case <-timerCh:
			timerCh = nil
			if err := s.Reload(); err != nil {
				s.warn("contacts reload failed", err)
				continue
			}
			if s.logger != nil {
				s.logger.Info("contacts reloaded", map[string]interface{}{"path": s.path, "count": len(s.All())})
			}
		}
	}
}

func (s *Store) warn(msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, map[string]interface{}{"path": s.path, "error": err.Error()})
}

var _ ports.ContactDirectory = (*Store)(nil)
