// Package session owns the navigation state of an interactive disk-usage
// browse: the current and base directories, the per-directory scan cache,
// and the view settings applied when rendering. A Session is single-threaded
// by design; the dispatcher that drives it is its only caller.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"

	"idu/internal/du"
)

// duBlockSize converts du's default 1024-byte block counts to bytes for
// human-readable rendering. Raw mode shows du's numbers untouched.
const duBlockSize = 1024

// Session is the mutable navigation state. The cache maps canonical
// directory paths to their most recent scan; it only grows, except that a
// forced refresh replaces (never clears) a single key.
type Session struct {
	currentDir  string
	baseDir     string
	cache       map[string]*du.ResultSet
	stale       map[string]struct{}
	sortMode    du.SortMode
	displayMode du.DisplayMode
	humanSizes  bool

	filter    glob.Glob
	filterPat string

	scan du.ScanFunc
}

// New creates a Session rooted at dir with base as the reference point for
// relative rendering. Both paths are canonicalized up front; nothing is
// scanned until the first Update.
func New(dir, base string, scan du.ScanFunc) (*Session, error) {
	canonicalDir, err := du.Canonicalize(dir)
	if err != nil {
		return nil, err
	}
	canonicalBase, err := du.Canonicalize(base)
	if err != nil {
		return nil, err
	}
	return &Session{
		currentDir: canonicalDir,
		baseDir:    canonicalBase,
		cache:      make(map[string]*du.ResultSet),
		stale:      make(map[string]struct{}),
		scan:       scan,
	}, nil
}

// CurrentDir returns the navigation cursor.
func (s *Session) CurrentDir() string { return s.currentDir }

// BaseDir returns the reference point for relative rendering.
func (s *Session) BaseDir() string { return s.baseDir }

// SortMode returns the active ordering.
func (s *Session) SortMode() du.SortMode { return s.sortMode }

// DisplayMode returns the active path rendering mode.
func (s *Session) DisplayMode() du.DisplayMode { return s.displayMode }

// HumanSizes reports whether sizes render as human-readable strings.
func (s *Session) HumanSizes() bool { return s.humanSizes }

// SetSortMode sets the initial ordering, re-sorting anything already cached
// for the current directory.
func (s *Session) SetSortMode(mode du.SortMode) {
	s.sortMode = mode
	if rs, ok := s.cache[s.currentDir]; ok {
		rs.Sort(s.sortMode)
	}
}

// SetDisplayMode sets the path rendering mode.
func (s *Session) SetDisplayMode(mode du.DisplayMode) { s.displayMode = mode }

// SetHumanSizes sets human-readable size rendering.
func (s *Session) SetHumanSizes(human bool) { s.humanSizes = human }

// Update navigates to dir, scanning it if needed. An empty dir means the
// current directory. Unless refresh is set, a directory already cached (and
// not marked stale) is reused without invoking the scan collaborator. On any
// failure, including cancellation, the session is left exactly as it was.
func (s *Session) Update(ctx context.Context, dir string, refresh bool) error {
	if dir == "" {
		dir = s.currentDir
	}
	canonical, err := du.Canonicalize(dir)
	if err != nil {
		return err
	}

	if !refresh {
		_, hit := s.cache[canonical]
		_, isStale := s.stale[canonical]
		if hit && !isStale {
			s.moveTo(canonical)
			return nil
		}
	}

	entries, err := s.scan(ctx, canonical)
	if err != nil {
		return err
	}

	rs := du.NewResultSet(canonical, entries)
	rs.Sort(s.sortMode)
	s.cache[canonical] = rs
	delete(s.stale, canonical)
	s.moveTo(canonical)
	return nil
}

// moveTo commits the navigation cursor, dropping the view filter when the
// directory actually changes.
func (s *Session) moveTo(dir string) {
	if dir != s.currentDir {
		s.filter = nil
		s.filterPat = ""
	}
	s.currentDir = dir
}

// NavigateUp moves to the parent of the current directory.
func (s *Session) NavigateUp(ctx context.Context) error {
	return s.Update(ctx, filepath.Dir(s.currentDir), false)
}

// SetBase changes the reference point for relative rendering. It never
// scans and never moves the navigation cursor.
func (s *Session) SetBase(dir string) error {
	canonical, err := du.Canonicalize(dir)
	if err != nil {
		return err
	}
	s.baseDir = canonical
	return nil
}

// ToggleSort flips the ordering and re-sorts the current directory's cached
// entries in place. Sorting is a view concern; nothing is re-fetched.
func (s *Session) ToggleSort() {
	s.sortMode = s.sortMode.Toggle()
	if rs, ok := s.cache[s.currentDir]; ok {
		rs.Sort(s.sortMode)
	}
}

// ToggleDisplay flips between relative and absolute path rendering.
func (s *Session) ToggleDisplay() {
	s.displayMode = s.displayMode.Toggle()
}

// ToggleHumanSizes flips between raw du numbers and human-readable sizes.
func (s *Session) ToggleHumanSizes() {
	s.humanSizes = !s.humanSizes
}

// SetFilter restricts the visible children to those whose displayed name
// matches the glob pattern. The filter is a view concern: it never touches
// the cache and is dropped when navigation moves to another directory.
func (s *Session) SetFilter(pattern string) error {
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("bad filter pattern %q: %w", pattern, err)
	}
	s.filter = g
	s.filterPat = pattern
	return nil
}

// ClearFilter removes any active filter.
func (s *Session) ClearFilter() {
	s.filter = nil
	s.filterPat = ""
}

// Filter returns the active filter pattern, or "".
func (s *Session) Filter() string { return s.filterPat }

// MarkStale flags every cached directory whose scan is invalidated by a
// change at path: the directory containing the change and all its cached
// ancestors, since du sizes aggregate recursively. Stale entries stay in
// the cache (the cursor must always have one) but are re-scanned on the
// next visit.
func (s *Session) MarkStale(path string) {
	sep := string(filepath.Separator)
	for dir := range s.cache {
		if dir == path || strings.HasPrefix(path, strings.TrimSuffix(dir, sep)+sep) {
			s.stale[dir] = struct{}{}
		}
	}
}

// Cached reports whether dir's listing is cached, for tests and the watcher.
func (s *Session) Cached(dir string) bool {
	_, ok := s.cache[dir]
	return ok
}

// VisibleEntries returns the current directory's own entry plus its
// immediate children, in the active sort order and filtered by any glob.
// Index 0 may therefore be the directory itself; it is selectable, and
// selecting it is a guaranteed cache hit that just re-renders. Indices are
// positional and ephemeral: a sort toggle or refresh renumbers them.
func (s *Session) VisibleEntries() []du.Entry {
	rs, ok := s.cache[s.currentDir]
	if !ok {
		return nil
	}
	entries := rs.ChildrenOf(s.currentDir)
	if s.filter == nil {
		return entries
	}
	var out []du.Entry
	for _, e := range entries {
		// The self entry always survives filtering.
		if e.Path == s.currentDir || s.filter.Match(filepath.Base(e.Path)) {
			out = append(out, e)
		}
	}
	return out
}

// EntryAt returns the visible entry at index i, if any.
func (s *Session) EntryAt(i int) (du.Entry, bool) {
	entries := s.VisibleEntries()
	if i < 0 || i >= len(entries) {
		return du.Entry{}, false
	}
	return entries[i], true
}

// Render produces the listing: a header line (base directory in relative
// mode, current directory in absolute mode) followed by one
// "<index>\t<size>\t<path>" line per visible entry.
func (s *Session) Render() string {
	var b strings.Builder
	if s.displayMode == du.Relative {
		b.WriteString(s.baseDir)
	} else {
		b.WriteString(s.currentDir)
	}
	for i, e := range s.VisibleEntries() {
		fmt.Fprintf(&b, "\n%d\t%10s\t%s", i, s.FormatSize(e.Size), s.FormatPath(e.Path))
	}
	return b.String()
}

// FormatSize renders a size per the session's human-sizes setting.
func (s *Session) FormatSize(size int64) string {
	if s.humanSizes {
		return humanize.IBytes(uint64(size) * duBlockSize)
	}
	return fmt.Sprintf("%d", size)
}

// FormatPath renders a path per the session's display mode.
func (s *Session) FormatPath(path string) string {
	if s.displayMode == du.Absolute {
		return path
	}
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil {
		return path
	}
	return rel
}
