package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idu/internal/du"
	apperrors "idu/internal/errors"
)

// fakeScanner is a scripted scan collaborator that records every invocation.
type fakeScanner struct {
	calls   []string
	results map[string][]du.Entry
	err     error
}

func (f *fakeScanner) scan(_ context.Context, dir string) ([]du.Entry, error) {
	f.calls = append(f.calls, dir)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[dir], nil
}

func (f *fakeScanner) callsFor(dir string) int {
	n := 0
	for _, c := range f.calls {
		if c == dir {
			n++
		}
	}
	return n
}

// fixture builds a canonical temp tree T/{foo,bar} and a scanner scripted
// with du-like results for T and T/foo.
func fixture(t *testing.T) (string, string, string, *fakeScanner) {
	t.Helper()
	tmp, err := du.Canonicalize(t.TempDir())
	require.NoError(t, err)
	foo := filepath.Join(tmp, "foo")
	bar := filepath.Join(tmp, "bar")
	require.NoError(t, os.Mkdir(foo, 0o755))
	require.NoError(t, os.Mkdir(bar, 0o755))

	f := &fakeScanner{results: map[string][]du.Entry{
		tmp: {
			{Path: tmp, Size: 16},
			{Path: foo, Size: 8},
			{Path: bar, Size: 4},
		},
		foo: {
			{Path: foo, Size: 8},
		},
	}}
	return tmp, foo, bar, f
}

func newSession(t *testing.T, dir string, f *fakeScanner) *Session {
	t.Helper()
	s, err := New(dir, dir, f.scan)
	require.NoError(t, err)
	return s
}

func TestCacheHitInvariant(t *testing.T) {
	tmp, foo, _, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	before := s.VisibleEntries()
	require.NoError(t, s.Update(ctx, foo, false))
	require.NoError(t, s.Update(ctx, tmp, false))

	assert.Equal(t, 1, f.callsFor(tmp), "cached directory must not be re-scanned")
	assert.Equal(t, before, s.VisibleEntries(), "cached entries must be identical")
}

func TestRefreshInvariant(t *testing.T) {
	tmp, _, _, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	require.NoError(t, s.Update(ctx, tmp, true))

	assert.Equal(t, 2, f.callsFor(tmp), "refresh must always invoke the scan")
}

func TestFailureIsolation(t *testing.T) {
	tmp, foo, _, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	rendered := s.Render()

	f.err = apperrors.NewScanError("du failed", foo, apperrors.New("permission denied"))
	err := s.Update(ctx, foo, true)
	require.Error(t, err)

	assert.Equal(t, tmp, s.CurrentDir())
	assert.False(t, s.Cached(foo))
	assert.Equal(t, rendered, s.Render(), "failed update must not change rendered output")
}

func TestCancelledScanLeavesStateUntouched(t *testing.T) {
	tmp, foo, _, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	rendered := s.Render()

	f.err = apperrors.Cancel(context.Canceled)
	err := s.Update(ctx, foo, false)
	require.True(t, apperrors.IsCancelled(err))
	assert.Equal(t, tmp, s.CurrentDir())
	assert.Equal(t, rendered, s.Render())
}

func TestUnresolvablePathLeavesStateUntouched(t *testing.T) {
	tmp, _, _, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	err := s.Update(ctx, filepath.Join(tmp, "does-not-exist"), false)
	require.Error(t, err)
	assert.Equal(t, apperrors.InvalidPath, apperrors.KindOf(err))
	assert.Equal(t, tmp, s.CurrentDir())
	assert.Equal(t, 1, len(f.calls), "no scan for an unresolvable path")
}

func TestBaseCurrentIndependence(t *testing.T) {
	tmp, foo, _, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	scans := len(f.calls)

	require.NoError(t, s.SetBase(foo))
	assert.Equal(t, foo, s.BaseDir())
	assert.Equal(t, tmp, s.CurrentDir(), "SetBase must not move the cursor")
	assert.Equal(t, scans, len(f.calls), "SetBase must not scan")

	require.NoError(t, s.Update(ctx, foo, false))
	require.NoError(t, s.NavigateUp(ctx))
	assert.Equal(t, tmp, s.CurrentDir())
	assert.Equal(t, foo, s.BaseDir(), "navigation must not move the base")
}

func TestNavigateUpScansParentOnce(t *testing.T) {
	tmp, foo, _, f := fixture(t)
	s := newSession(t, foo, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	require.NoError(t, s.NavigateUp(ctx))

	assert.Equal(t, tmp, s.CurrentDir())
	assert.Equal(t, []string{foo, tmp}, f.calls)
}

func TestSortToggle(t *testing.T) {
	tmp, foo, bar, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "", false))

	// Name order: bar, foo after the self entry (which sorts first).
	byName := s.VisibleEntries()
	require.Len(t, byName, 3)
	assert.Equal(t, []string{tmp, bar, foo}, paths(byName))

	s.ToggleSort()
	assert.Equal(t, du.BySize, s.SortMode())
	assert.Equal(t, []string{bar, foo, tmp}, paths(s.VisibleEntries()))
	assert.Equal(t, 1, len(f.calls), "sorting must not re-fetch")

	// Sort idempotence: toggling twice restores the original order.
	s.ToggleSort()
	assert.Equal(t, byName, s.VisibleEntries())
}

func paths(entries []du.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestRenderEmptyDirectory(t *testing.T) {
	tmp, err := du.Canonicalize(t.TempDir())
	require.NoError(t, err)
	f := &fakeScanner{results: map[string][]du.Entry{
		tmp: {{Path: tmp, Size: 0}},
	}}
	s := newSession(t, tmp, f)
	require.NoError(t, s.Update(context.Background(), "", false))

	assert.Equal(t, fmt.Sprintf("%s\n0\t%10s\t.", tmp, "0"), s.Render())
}

func TestVisibleEntriesAndSelection(t *testing.T) {
	tmp, foo, bar, f := fixture(t)
	s := newSession(t, tmp, f)
	require.NoError(t, s.Update(context.Background(), "", false))

	entries := s.VisibleEntries()
	require.Len(t, entries, 3)

	// Index 0 is the self entry and stays selectable.
	self, ok := s.EntryAt(0)
	require.True(t, ok)
	assert.Equal(t, tmp, self.Path)

	child, ok := s.EntryAt(1)
	require.True(t, ok)
	assert.Equal(t, bar, child.Path)

	child, ok = s.EntryAt(2)
	require.True(t, ok)
	assert.Equal(t, foo, child.Path)

	_, ok = s.EntryAt(3)
	assert.False(t, ok)
	_, ok = s.EntryAt(-1)
	assert.False(t, ok)
}

func TestDeepEntriesAreFilteredFromView(t *testing.T) {
	tmp, foo, bar, f := fixture(t)
	f.results[tmp] = append(f.results[tmp], du.Entry{Path: filepath.Join(foo, "deep"), Size: 2})
	s := newSession(t, tmp, f)
	require.NoError(t, s.Update(context.Background(), "", false))

	assert.Equal(t, []string{tmp, bar, foo}, paths(s.VisibleEntries()))
}

func TestRenderModes(t *testing.T) {
	tmp, foo, bar, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "", false))

	t.Run("relative", func(t *testing.T) {
		want := fmt.Sprintf("%s\n0\t%10s\t.\n1\t%10s\tbar\n2\t%10s\tfoo", tmp, "16", "4", "8")
		assert.Equal(t, want, s.Render())
	})

	t.Run("absolute", func(t *testing.T) {
		s.ToggleDisplay()
		defer s.ToggleDisplay()
		want := fmt.Sprintf("%s\n0\t%10s\t%s\n1\t%10s\t%s\n2\t%10s\t%s", tmp, "16", tmp, "4", bar, "8", foo)
		assert.Equal(t, want, s.Render())
	})

	t.Run("relative_header_follows_base", func(t *testing.T) {
		require.NoError(t, s.Update(ctx, foo, false))
		assert.Equal(t, tmp, s.BaseDir())
		lines := s.Render()
		assert.Equal(t, tmp, lines[:len(tmp)], "relative header is the base directory")
		require.NoError(t, s.Update(ctx, tmp, false))
	})

	t.Run("human_sizes", func(t *testing.T) {
		s.ToggleHumanSizes()
		defer s.ToggleHumanSizes()
		assert.Contains(t, s.Render(), "16 KiB")
	})
}

func TestFilter(t *testing.T) {
	tmp, foo, bar, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "", false))

	require.NoError(t, s.SetFilter("b*"))
	assert.Equal(t, "b*", s.Filter())
	assert.Equal(t, []string{tmp, bar}, paths(s.VisibleEntries()), "self entry survives filtering")
	assert.Equal(t, 1, len(f.calls), "filtering must not scan")

	s.ClearFilter()
	assert.Equal(t, []string{tmp, bar, foo}, paths(s.VisibleEntries()))

	// A filter is dropped when navigation leaves the directory.
	require.NoError(t, s.SetFilter("b*"))
	require.NoError(t, s.Update(ctx, foo, false))
	assert.Empty(t, s.Filter())

	assert.Error(t, s.SetFilter("[")) // unbalanced pattern
}

func TestMarkStale(t *testing.T) {
	tmp, foo, _, f := fixture(t)
	s := newSession(t, tmp, f)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, "", false))
	require.NoError(t, s.Update(ctx, foo, false))
	require.NoError(t, s.Update(ctx, tmp, false))
	require.Equal(t, 1, f.callsFor(tmp))

	// A change inside foo invalidates foo and its cached ancestors.
	s.MarkStale(filepath.Join(foo, "newfile"))
	assert.True(t, s.Cached(tmp), "stale entries stay cached until revisited")

	require.NoError(t, s.Update(ctx, foo, false))
	require.NoError(t, s.Update(ctx, tmp, false))
	assert.Equal(t, 2, f.callsFor(foo))
	assert.Equal(t, 2, f.callsFor(tmp))

	// Once refreshed, the entries are cache hits again.
	require.NoError(t, s.Update(ctx, foo, false))
	assert.Equal(t, 2, f.callsFor(foo))
}
