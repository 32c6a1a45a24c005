package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// fileName is the cache's filename under the site's state directory (.forge/).
const fileName = "cache.json"

// onDiskEntry is the JSON-serializable form of Entry.
type onDiskEntry struct {
	SourcePath        string           `json:"source_path"`
	Fingerprint       uint64           `json:"fingerprint"`
	OutputFingerprint string           `json:"output_fingerprint"`
	OutputPath        string           `json:"output_path"`
	RenderedAt        string           `json:"rendered_at"`
	Status            int              `json:"status"`
	Dependencies      []string         `json:"dependencies,omitempty"`
	Structural        StructuralFields `json:"structural"`
	Rendered          RenderedSnapshot `json:"rendered"`
}

// onDiskGraph is the JSON-serializable form of DepGraph.
type onDiskGraph map[string][]string

// onDiskCache is the full persisted document, with a header recording the
// format version and a checksum over the body so a truncated or corrupted
// write is detected rather than silently misinterpreted.
type onDiskCache struct {
	Version              int                    `json:"version"`
	Checksum             string                 `json:"checksum"`
	Entries              map[string]onDiskEntry `json:"entries"`
	Deps                 onDiskGraph            `json:"deps"`
	TemplateFingerprints map[string]uint64      `json:"template_fingerprints,omitempty"`
}

// Load reads the cache from <stateDir>/cache.json. A missing file, a format
// version mismatch, or a checksum mismatch all result in New() being
// returned instead of an error: per spec.md §4.4, cache corruption triggers
// a full rebuild rather than a fatal error, with the caller responsible for
// logging the fallback.
func Load(stateDir string) (*BuildCache, bool) {
	path := filepath.Join(stateDir, fileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return New(), false
	}

	var doc onDiskCache
	if err := json.Unmarshal(raw, &doc); err != nil {
		return New(), false
	}
	if doc.Version != formatVersion {
		return New(), false
	}
	if checksum(doc.Entries, doc.Deps) != doc.Checksum {
		return New(), false
	}

	c := New()
	c.Version = doc.Version
	for path, e := range doc.Entries {
		var outFp Fingerprint128
		if decoded, err := hex.DecodeString(e.OutputFingerprint); err == nil && len(decoded) == len(outFp) {
			copy(outFp[:], decoded)
		}
		renderedAt, _ := time.Parse("2006-01-02T15:04:05Z07:00", e.RenderedAt)
		c.Entries[path] = &Entry{
			SourcePath:        e.SourcePath,
			Fingerprint:       Fingerprint(e.Fingerprint),
			OutputFingerprint: outFp,
			OutputPath:        e.OutputPath,
			RenderedAt:        renderedAt,
			Status:            EntryStatus(e.Status),
			Dependencies:      e.Dependencies,
			Structural:        e.Structural,
			Rendered:          e.Rendered,
		}
	}
	for dep, pages := range doc.Deps {
		for _, page := range pages {
			c.Deps.Add(dep, page)
		}
	}
	for name, fp := range doc.TemplateFingerprints {
		c.TemplateFingerprints[name] = Fingerprint(fp)
	}
	return c, true
}

// Save atomically persists the cache to <stateDir>/cache.json via a
// temp-file-then-rename, so a crash mid-write never leaves a half-written
// cache file behind.
func Save(stateDir string, c *BuildCache) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	entries := make(map[string]onDiskEntry, len(c.Entries))
	for path, e := range c.Entries {
		entries[path] = onDiskEntry{
			SourcePath:        e.SourcePath,
			Fingerprint:       uint64(e.Fingerprint),
			OutputFingerprint: hex.EncodeToString(e.OutputFingerprint[:]),
			OutputPath:        e.OutputPath,
			RenderedAt:        e.RenderedAt.Format("2006-01-02T15:04:05Z07:00"),
			Status:            int(e.Status),
			Dependencies:      e.Dependencies,
			Structural:        e.Structural,
			Rendered:          e.Rendered,
		}
	}
	deps := make(onDiskGraph, len(c.Deps.edges))
	for dep, set := range c.Deps.edges {
		pages := make([]string, 0, len(set))
		for page := range set {
			pages = append(pages, page)
		}
		deps[dep] = pages
	}
	templateFPs := make(map[string]uint64, len(c.TemplateFingerprints))
	for name, fp := range c.TemplateFingerprints {
		templateFPs[name] = uint64(fp)
	}

	doc := onDiskCache{
		Version:              formatVersion,
		Entries:              entries,
		Deps:                 deps,
		TemplateFingerprints: templateFPs,
		Checksum:             checksum(entries, deps),
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling build cache: %w", err)
	}

	finalPath := filepath.Join(stateDir, fileName)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing build cache: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("committing build cache: %w", err)
	}
	return nil
}

// checksum computes a stable digest over the entries+deps maps by hashing
// their canonical JSON encoding (map keys are sorted by encoding/json).
func checksum(entries map[string]onDiskEntry, deps onDiskGraph) string {
	raw, _ := json.Marshal(struct {
		Entries map[string]onDiskEntry `json:"entries"`
		Deps    onDiskGraph            `json:"deps"`
	}{entries, deps})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
