package domain

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// FingerprintPrefix tags fingerprints with the algorithm that produced them.
const FingerprintPrefix = "xxh64:"

// Fingerprint is a deterministic, content-derived identity for a file or a set of files.
// Two equal fingerprints denote identical content. The zero value means "absent".
type Fingerprint string

// NewFingerprint formats a raw xxhash digest.
func NewFingerprint(sum uint64) Fingerprint {
	return Fingerprint(fmt.Sprintf("%s%016x", FingerprintPrefix, sum))
}

// FingerprintBytes fingerprints in-memory content.
func FingerprintBytes(b []byte) Fingerprint {
	return NewFingerprint(xxhash.Sum64(b))
}

// IsZero reports whether the fingerprint is absent.
func (f Fingerprint) IsZero() bool {
	return f == ""
}

// String returns the fingerprint text.
func (f Fingerprint) String() string {
	return string(f)
}

// FingerprintSet maps source paths to their fingerprints.
type FingerprintSet map[string]Fingerprint

// Diff is the result of comparing the current fingerprints against a previous set.
// Each slice is sorted by path.
type Diff struct {
	New     []string
	Changed []string
	Deleted []string
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.New) == 0 && len(d.Changed) == 0 && len(d.Deleted) == 0
}

// Touched returns the changed and deleted paths, sorted.
func (d Diff) Touched() []string {
	out := make([]string, 0, len(d.Changed)+len(d.Deleted))
	out = append(out, d.Changed...)
	out = append(out, d.Deleted...)
	slices.Sort(out)
	return out
}

// Diff compares s (current) against prev.
// A nil prev makes every current path new.
func (s FingerprintSet) Diff(prev FingerprintSet) Diff {
	var d Diff
	for path, fp := range s {
		old, ok := prev[path]
		switch {
		case !ok:
			d.New = append(d.New, path)
		case old != fp:
			d.Changed = append(d.Changed, path)
		}
	}
	for path := range prev {
		if _, ok := s[path]; !ok {
			d.Deleted = append(d.Deleted, path)
		}
	}
	slices.Sort(d.New)
	slices.Sort(d.Changed)
	slices.Sort(d.Deleted)
	return d
}

// Clone returns a copy of the set.
func (s FingerprintSet) Clone() FingerprintSet {
	out := make(FingerprintSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Combine fingerprints an ordered list of (name, fingerprint) pairs.
// It is used to derive the fingerprint of a root's dependency set.
func Combine(paths []string, set FingerprintSet) Fingerprint {
	d := xxhash.New()
	for _, p := range paths {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(set[p].String())
		_, _ = d.Write([]byte{0})
	}
	return NewFingerprint(d.Sum64())
}
