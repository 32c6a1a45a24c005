package cache

import (
	"path/filepath"
	"testing"
)

func TestNeedsRenderOnFirstSeen(t *testing.T) {
	c := New()
	if !c.NeedsRender("posts/a.md", Fingerprint(1)) {
		t.Fatal("expected NeedsRender to be true for an unseen source")
	}
}

func TestNeedsRenderSkipsUnchanged(t *testing.T) {
	c := New()
	fp := ComputeFingerprint([]byte("hello"), []byte("cfg"))
	c.Record("posts/a.md", fp, Fingerprint128{}, "posts/a/index.html", nil)

	if c.NeedsRender("posts/a.md", fp) {
		t.Fatal("expected NeedsRender to be false when fingerprint is unchanged")
	}
	changed := ComputeFingerprint([]byte("hello world"), []byte("cfg"))
	if !c.NeedsRender("posts/a.md", changed) {
		t.Fatal("expected NeedsRender to be true when content changed")
	}
}

func TestRecordFailureForcesRetry(t *testing.T) {
	c := New()
	fp := ComputeFingerprint([]byte("hello"), []byte("cfg"))
	c.Record("posts/a.md", fp, Fingerprint128{}, "out.html", nil)
	c.RecordFailure("posts/a.md")

	if !c.NeedsRender("posts/a.md", fp) {
		t.Fatal("expected a failed entry to always need re-render")
	}
}

func TestInvalidateDependents(t *testing.T) {
	c := New()
	fp := ComputeFingerprint([]byte("x"), nil)
	c.Record("posts/a.md", fp, Fingerprint128{}, "a.html", []string{"layouts/post.html"})
	c.Record("posts/b.md", fp, Fingerprint128{}, "b.html", []string{"layouts/post.html"})

	c.InvalidateDependents("layouts/post.html")

	if !c.NeedsRender("posts/a.md", fp) || !c.NeedsRender("posts/b.md", fp) {
		t.Fatal("expected both dependents to be invalidated")
	}
}

func TestPruneRemovesDeletedSources(t *testing.T) {
	c := New()
	fp := ComputeFingerprint([]byte("x"), nil)
	c.Record("posts/a.md", fp, Fingerprint128{}, "a.html", nil)
	c.Record("posts/b.md", fp, Fingerprint128{}, "b.html", nil)

	c.Prune(map[string]struct{}{"posts/a.md": {}})

	if _, ok := c.Entries["posts/b.md"]; ok {
		t.Fatal("expected posts/b.md to be pruned")
	}
	if _, ok := c.Entries["posts/a.md"]; !ok {
		t.Fatal("expected posts/a.md to survive pruning")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New()
	fp := ComputeFingerprint([]byte("x"), nil)
	c.Record("posts/a.md", fp, Fingerprint128{1, 2, 3}, "a.html", []string{"layouts/post.html"})

	if err := Save(dir, c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok := Load(dir)
	if !ok {
		t.Fatal("expected Load to report a valid cache was found")
	}
	entry, ok := loaded.Entries["posts/a.md"]
	if !ok {
		t.Fatal("expected posts/a.md entry to survive round trip")
	}
	if entry.Fingerprint != fp {
		t.Fatalf("fingerprint mismatch after round trip: got %v want %v", entry.Fingerprint, fp)
	}
	if dependents := loaded.Deps.Dependents("layouts/post.html"); len(dependents) != 1 {
		t.Fatalf("expected 1 dependent, got %d", len(dependents))
	}
}

func TestLoadMissingFileReturnsFreshCache(t *testing.T) {
	dir := t.TempDir()
	c, found := Load(filepath.Join(dir, "does-not-exist"))
	if found {
		t.Fatal("expected found=false for a missing cache file")
	}
	if len(c.Entries) != 0 {
		t.Fatal("expected a fresh empty cache")
	}
}

func TestDetectStructuralChange(t *testing.T) {
	prev := StructuralFields{Title: "A", Weight: 1, Section: "blog"}
	curr := prev
	if DetectStructuralChange(prev, curr) {
		t.Fatal("expected no structural change for identical snapshots")
	}
	curr.Title = "B"
	if !DetectStructuralChange(prev, curr) {
		t.Fatal("expected a structural change when title differs")
	}
}
