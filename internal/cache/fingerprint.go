// Package cache implements the incremental build cache: per-source content
// fingerprints, a source-level dependency graph, and the fingerprint.json
// persistence format under .forge/.
package cache

import (
	"crypto/sha256"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a source fingerprint: hash(content) XOR hash(configSubset).
// xxhash is used here rather than a cryptographic hash because this value is
// recomputed for every source file on every build and only needs to detect
// accidental change, not resist adversarial collision (see DESIGN.md).
type Fingerprint uint64

// ComputeFingerprint XORs the content hash with a hash of the config subset
// that can affect this source's render (e.g. markdown/highlight settings).
// XOR keeps either input changing the result without needing to concatenate
// and rehash on every call.
func ComputeFingerprint(content []byte, configSubset []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(content) ^ xxhash.Sum64(configSubset))
}

// Fingerprint128 is a 128-bit digest used for output-unchanged detection
// (internal/build's "don't rewrite identical output" check). It is derived
// from SHA-256 truncated to 128 bits per spec.md's pinned algorithm for this
// specific check — distinct from the xxhash source fingerprints above.
type Fingerprint128 [16]byte

// ComputeFingerprint128 truncates a SHA-256 digest of data to its first 16
// bytes. Used to decide whether a rendered page's output actually changed,
// so an unchanged page keeps its on-disk mtime across a build.
func ComputeFingerprint128(data []byte) Fingerprint128 {
	sum := sha256.Sum256(data)
	var fp Fingerprint128
	copy(fp[:], sum[:16])
	return fp
}
