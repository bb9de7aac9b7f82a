package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/aura-go/internal/domain"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c := NewFileCache(filepath.Join(t.TempDir(), "knowledge"), time.Hour, 10)

	if _, ok, err := c.Get("missing"); ok || err != nil {
		t.Fatalf("Get on empty cache = %v, %v", ok, err)
	}
	if err := c.Set(domain.CacheEntry{Key: "k1", Topic: "golang", Answer: "Go is a language."}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get("k1")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Answer != "Go is a language." || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", got)
	}

	if err := c.Set(domain.CacheEntry{}); err != nil {
		t.Fatalf("empty key should be ignored: %v", err)
	}
	entries, err := c.Entries()
	if err != nil || len(entries) != 1 {
		t.Fatalf("Entries = %+v, %v", entries, err)
	}
	if size, err := c.Size(); err != nil || size == 0 {
		t.Fatalf("Size = %d, %v", size, err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if entries, _ := c.Entries(); len(entries) != 0 {
		t.Fatalf("entries after clear: %+v", entries)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := NewFileCache(t.TempDir(), time.Hour, 0)
	c.now = func() time.Time { return now }

	if err := c.Set(domain.CacheEntry{Key: "k", Answer: "a"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(59 * time.Minute)
	if _, ok, _ := c.Get("k"); !ok {
		t.Fatal("entry should still be fresh")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if _, err := os.Stat(c.pathFor("k")); !os.IsNotExist(err) {
		t.Fatalf("expired entry not removed: %v", err)
	}
}

func TestFileCacheEvictsOldest(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir, 0, 2)
	base := time.Now().Add(-time.Hour)

	for i, key := range []string{"a", "b"} {
		if err := c.Set(domain.CacheEntry{Key: key}); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
		stamp := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(c.pathFor(key), stamp, stamp); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}
	if err := c.Set(domain.CacheEntry{Key: "c"}); err != nil {
		t.Fatalf("Set c: %v", err)
	}

	if _, ok, _ := c.Get("a"); ok {
		t.Fatal("oldest entry should be evicted")
	}
	for _, key := range []string{"b", "c"} {
		if _, ok, _ := c.Get(key); !ok {
			t.Fatalf("%s should remain", key)
		}
	}
}

func TestFileCacheCorruptEntryIsDropped(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir, time.Hour, 10)
	if err := os.WriteFile(c.pathFor("bad"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get("bad"); ok || err == nil {
		t.Fatalf("Get corrupt = %v, %v", ok, err)
	}
	if _, err := os.Stat(c.pathFor("bad")); !os.IsNotExist(err) {
		t.Fatal("corrupt entry should be removed")
	}
}
