// Package du holds the disk-usage data model: scan result entries with
// canonicalized paths, the per-directory result set, and the external scan
// collaborator that produces them.
package du

import (
	"path/filepath"
	"sort"

	apperrors "idu/internal/errors"
)

// SortMode selects the ordering applied to a result set.
type SortMode int

const (
	// ByName orders entries lexicographically by canonical path
	ByName SortMode = iota
	// BySize orders entries by size, ties broken by path
	BySize
)

func (m SortMode) String() string {
	if m == BySize {
		return "size"
	}
	return "name"
}

// Toggle returns the other sort mode.
func (m SortMode) Toggle() SortMode {
	if m == ByName {
		return BySize
	}
	return ByName
}

// DisplayMode selects how paths are rendered.
type DisplayMode int

const (
	// Relative renders paths relative to the base directory
	Relative DisplayMode = iota
	// Absolute renders canonical absolute paths
	Absolute
)

func (m DisplayMode) String() string {
	if m == Absolute {
		return "absolute"
	}
	return "relative"
}

// Toggle returns the other display mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == Relative {
		return Absolute
	}
	return Relative
}

// Entry is one line of a scan result. The path is always canonical, so
// entries compare and cache stably no matter how the user typed the path.
type Entry struct {
	Path string
	Size int64
}

// NewEntry builds an Entry, canonicalizing the path immediately.
func NewEntry(path string, size int64) (Entry, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Path: canonical, Size: size}, nil
}

// Canonicalize resolves a path to its absolute, symlink-resolved form. This
// is the universal key for comparison and caching.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", apperrors.NewPathError("cannot resolve path", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", apperrors.NewPathError("cannot resolve path", path, err)
	}
	return resolved, nil
}

// ResultSet is the ordered outcome of one scan of one directory. It is
// replaced wholesale on re-scan, never patched.
type ResultSet struct {
	Dir     string // canonical scanned directory
	Entries []Entry
}

// NewResultSet wraps the entries produced by scanning dir.
func NewResultSet(dir string, entries []Entry) *ResultSet {
	return &ResultSet{Dir: dir, Entries: entries}
}

// Sort orders the entries in place according to mode.
func (rs *ResultSet) Sort(mode SortMode) {
	if mode == BySize {
		sort.SliceStable(rs.Entries, func(i, j int) bool {
			if rs.Entries[i].Size != rs.Entries[j].Size {
				return rs.Entries[i].Size < rs.Entries[j].Size
			}
			return rs.Entries[i].Path < rs.Entries[j].Path
		})
		return
	}
	sort.SliceStable(rs.Entries, func(i, j int) bool {
		return rs.Entries[i].Path < rs.Entries[j].Path
	})
}

// ChildrenOf returns the entries for dir itself and its immediate children,
// preserving the result set's current order. Scans may report deeper
// subdirectories; this is the filter that turns a full scan into the
// current-directory view.
func (rs *ResultSet) ChildrenOf(dir string) []Entry {
	var out []Entry
	for _, e := range rs.Entries {
		if e.Path == dir || filepath.Dir(e.Path) == dir {
			out = append(out, e)
		}
	}
	return out
}
