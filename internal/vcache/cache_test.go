package vcache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PodcastCurator/internal/domain"
)

func sampleEntry(title string) domain.CacheEntry {
	return domain.CacheEntry{
		Key:      "k-" + title,
		Title:    title,
		Author:   "Jane Doe",
		Passed:   true,
		Method:   "automated_analysis",
		CachedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	cache := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := Load(path, nil)
	if cache.Len() != 0 {
		t.Fatalf("corrupt file must degrade to empty, got %d entries", cache.Len())
	}

	// The degraded cache must still be flushable over the corrupt file.
	if err := cache.Put("a", sampleEntry("A")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Flush(); err != nil {
		t.Fatalf("flush over corrupt file: %v", err)
	}
}

func TestFlushAndReloadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "cache.json")
	cache := Load(path, nil)

	if err := cache.Put("a", sampleEntry("A")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("b", sampleEntry("B")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reloaded := Load(path, nil)
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}
	entry, ok := reloaded.Get("b")
	if !ok || entry.Title != "B" {
		t.Fatalf("entry b lost in round trip: %+v (ok=%v)", entry, ok)
	}

	// No stray temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file survived flush: %v", err)
	}
}

func TestPutRefusesOverwrite(t *testing.T) {
	t.Parallel()

	cache := Load(filepath.Join(t.TempDir(), "cache.json"), nil)
	if err := cache.Put("a", sampleEntry("A")); err != nil {
		t.Fatal(err)
	}

	err := cache.Put("a", sampleEntry("A2"))
	if err == nil || !strings.Contains(err.Error(), "already present") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	entry, _ := cache.Get("a")
	if entry.Title != "A" {
		t.Fatalf("original entry clobbered: %+v", entry)
	}

	cache.Replace("a", sampleEntry("A2"))
	entry, _ = cache.Get("a")
	if entry.Title != "A2" {
		t.Fatalf("replace did not take effect: %+v", entry)
	}
}

func TestPutRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	cache := Load(filepath.Join(t.TempDir(), "cache.json"), nil)
	if err := cache.Put("", sampleEntry("A")); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestFlushFailureSurfaces(t *testing.T) {
	t.Parallel()

	// Parent "dir" is a regular file, so the flush cannot create the
	// cache directory.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := Load(filepath.Join(blocker, "cache.json"), nil)
	if err := cache.Put("a", sampleEntry("A")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Flush(); err == nil {
		t.Fatal("expected flush failure to surface")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	cache := Load(filepath.Join(t.TempDir(), "cache.json"), nil)
	if err := cache.Put("a", sampleEntry("A")); err != nil {
		t.Fatal(err)
	}

	snapshot := cache.Entries()
	delete(snapshot, "a")
	if !cache.Has("a") {
		t.Fatal("mutating the snapshot must not touch the cache")
	}
}

func TestKeyContentAddressed(t *testing.T) {
	t.Parallel()

	a := domain.Candidate{Title: "Solo Reflections", Author: "Jane Doe", FeedURL: "https://example.org/a.xml"}
	b := a
	b.FeedURL = "https://example.org/b.xml"

	if Key(a) != Key(a) {
		t.Fatal("key must be stable for identical content")
	}
	if Key(a) == Key(b) {
		t.Fatal("distinct feeds must not share a key")
	}
	if len(Key(a)) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", Key(a))
	}
}
