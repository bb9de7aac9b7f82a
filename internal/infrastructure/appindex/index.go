// Package appindex discovers installed applications and resolves spoken names to them.
package appindex

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/pkg/filesystem"
	"github.com/doeshing/aura-go/internal/ports"
)

// minCoverage is the share of a key's characters a fuzzy pattern must supply.
const minCoverage = 0.6

// Index is an AppLocator persisted as a JSON cache file.
type Index struct {
	cachePath string
	dirs      []string
	logger    ports.Logger
	lookPath  func(string) (string, error)

	mu      sync.RWMutex
	entries map[string]domain.AppEntry
	loaded  bool
}

// NewIndex returns an index caching to cachePath and scanning dirs
// (the platform defaults when dirs is empty).
func NewIndex(cachePath string, dirs []string, logger ports.Logger) *Index {
	if len(dirs) == 0 {
		dirs = DefaultDirs(runtime.GOOS)
	}
	return &Index{
		cachePath: cachePath,
		dirs:      dirs,
		logger:    logger,
		lookPath:  exec.LookPath,
	}
}

// DefaultDirs lists where applications live on goos.
func DefaultDirs(goos string) []string {
	home := filesystem.UserHomeDir()
	switch goos {
	case "darwin":
		return []string{"/Applications", "/System/Applications", filepath.Join(home, "Applications")}
	case "windows":
		var dirs []string
		for _, env := range []string{"APPDATA", "ProgramData"} {
			if base := os.Getenv(env); base != "" {
				dirs = append(dirs, filepath.Join(base, "Microsoft", "Windows", "Start Menu", "Programs"))
			}
		}
		return dirs
	default:
		return []string{
			"/usr/share/applications",
			"/usr/local/share/applications",
			filepath.Join(home, ".local", "share", "applications"),
			"/var/lib/flatpak/exports/share/applications",
			"/var/lib/snapd/desktop/applications",
		}
	}
}

// Locate resolves name by exact key, then fuzzy match, then PATH lookup.
// The index is built on first use when no cache exists.
func (x *Index) Locate(name string) (domain.AppEntry, bool) {
	key := normalize(name)
	if key == "" {
		return domain.AppEntry{}, false
	}
	x.ensureLoaded()

	x.mu.RLock()
	entry, ok := x.entries[key]
	keys := make([]string, 0, len(x.entries))
	for k := range x.entries {
		keys = append(keys, k)
	}
	x.mu.RUnlock()
	if ok {
		return entry, true
	}

	sort.Strings(keys)
	if best, ok := bestFuzzy(key, keys); ok {
		x.mu.RLock()
		entry = x.entries[best]
		x.mu.RUnlock()
		return entry, true
	}

	if path, err := x.lookPath(strings.ReplaceAll(key, " ", "")); err == nil {
		return domain.AppEntry{Key: key, Display: name, Kind: domain.AppKindExecutable, Path: path}, true
	}
	return domain.AppEntry{}, false
}

// bestFuzzy returns the highest scoring key that the pattern covers well enough
// or whose first word is the pattern.
func bestFuzzy(pattern string, keys []string) (string, bool) {
	for _, m := range fuzzy.Find(pattern, keys) {
		if float64(len(pattern)) >= minCoverage*float64(len(m.Str)) || strings.HasPrefix(m.Str, pattern+" ") {
			return m.Str, true
		}
	}
	return "", false
}

// Entries returns every indexed application sorted by key.
func (x *Index) Entries() []domain.AppEntry {
	x.ensureLoaded()
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]domain.AppEntry, 0, len(x.entries))
	for _, e := range x.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Reindex rescans the application directories and rewrites the cache.
func (x *Index) Reindex(ctx context.Context) (int, error) {
	entries := make(map[string]domain.AppEntry)
	for _, dir := range x.dirs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := scanDir(ctx, dir, entries); err != nil && !errors.Is(err, fs.ErrNotExist) {
			x.warn("app scan failed", dir, err)
		}
	}
	x.mu.Lock()
	x.entries = entries
	x.loaded = true
	x.mu.Unlock()
	if err := x.save(entries); err != nil {
		return len(entries), err
	}
	return len(entries), nil
}

func (x *Index) ensureLoaded() {
	x.mu.RLock()
	loaded := x.loaded
	x.mu.RUnlock()
	if loaded {
		return
	}
	if entries, err := x.load(); err == nil {
		x.mu.Lock()
		x.entries = entries
		x.loaded = true
		x.mu.Unlock()
		return
	}
	if _, err := x.Reindex(context.Background()); err != nil {
		x.warn("app index build failed", x.cachePath, err)
	}
}

func (x *Index) load() (map[string]domain.AppEntry, error) {
	data, err := os.ReadFile(x.cachePath)
	if err != nil {
		return nil, err
	}
	var list []domain.AppEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	entries := make(map[string]domain.AppEntry, len(list))
	for _, e := range list {
		entries[e.Key] = e
	}
	return entries, nil
}

func (x *Index) save(entries map[string]domain.AppEntry) error {
	if x.cachePath == "" {
		return nil
	}
	list := make([]domain.AppEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(x.cachePath), domain.DirectoryPermissions); err != nil {
		return err
	}
	return os.WriteFile(x.cachePath, data, domain.SecureFilePermissions)
}

// CachePath returns the JSON cache location.
func (x *Index) CachePath() string {
	return x.cachePath
}

func (x *Index) warn(msg, path string, err error) {
	if x.logger == nil {
		return
	}
	x.logger.Warn(msg, map[string]interface{}{"path": path, "error": err.Error()})
}

func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

var _ ports.AppLocator = (*Index)(nil)
