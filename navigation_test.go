package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationStringRoundTrip(t *testing.T) {
	for _, loc := range []Location{
		{Page: "/gallery"},
		{Page: "/"},
		{Page: "/gallery", Entry: LocationEntry{RootID: "work", Path: "proj-1"}},
		{Page: "/team", Entry: LocationEntry{RootID: "team", Path: "people/ada lovelace"}},
		{Page: "/team", Entry: LocationEntry{RootID: "team"}},
	} {
		t.Run(loc.String(), func(t *testing.T) {
			got, err := ParseLocation(loc.String())
			require.NoError(t, err)
			assert.Equal(t, loc, got)
		})
	}
}

func TestLocationStringDefaultsPage(t *testing.T) {
	assert.Equal(t, "/", Location{}.String())
	loc, err := ParseLocation("")
	require.NoError(t, err)
	assert.Equal(t, "/", loc.Page)
	assert.True(t, loc.Entry.IsZero())
}

func TestParseLocationErrors(t *testing.T) {
	for _, s := range []string{"/gallery?m=/proj-1", "%zz"} {
		_, err := ParseLocation(s)
		assert.ErrorIs(t, err, ErrInvalidLocation, s)
	}
}

func TestLocationWithEntry(t *testing.T) {
	base := Location{Page: "/gallery"}
	e := LocationEntry{RootID: "work", Path: "proj-2"}

	open := base.WithEntry(e)
	assert.Equal(t, e, open.Entry)
	assert.True(t, base.Entry.IsZero(), "WithEntry returns a copy")
	assert.Equal(t, base, open.WithoutEntry())
	assert.Equal(t, "work/proj-2", e.String())
	assert.Empty(t, LocationEntry{}.String())
}

func TestHistoryPushBackForward(t *testing.T) {
	a := Location{Page: "/a"}
	b := Location{Page: "/b"}
	c := Location{Page: "/c"}
	h := NewHistory(a)

	var seen []Location
	var kinds []NavKind
	h.OnLocationChange(func(loc Location, kind NavKind) {
		seen = append(seen, loc)
		kinds = append(kinds, kind)
	})

	h.PushLocation(b)
	h.PushLocation(c)
	assert.Equal(t, c, h.CurrentLocation())
	assert.Equal(t, 3, h.Len())
	assert.Empty(t, seen, "push does not notify")

	h.Back()
	h.Back()
	h.Back()
	assert.Equal(t, a, h.CurrentLocation())
	assert.False(t, h.CanGoBack())
	assert.True(t, h.CanGoForward())

	h.Forward()
	assert.Equal(t, b, h.CurrentLocation())
	assert.Equal(t, []Location{b, a, b}, seen)
	assert.Equal(t, []NavKind{NavTraverse, NavTraverse, NavTraverse}, kinds)
}

func TestHistoryPushDiscardsForward(t *testing.T) {
	h := NewHistory(Location{Page: "/a"})
	h.PushLocation(Location{Page: "/b"})
	h.Back()
	h.PushLocation(Location{Page: "/c"})

	assert.Equal(t, 2, h.Len())
	assert.False(t, h.CanGoForward())
	h.Forward()
	assert.Equal(t, "/c", h.CurrentLocation().Page)
}

func TestHistoryReplace(t *testing.T) {
	h := NewHistory(Location{Page: "/a"})
	notified := false
	h.OnLocationChange(func(Location, NavKind) { notified = true })

	h.ReplaceLocation(Location{Page: "/z"})

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "/z", h.CurrentLocation().Page)
	assert.False(t, notified)
}

func TestHistoryLoad(t *testing.T) {
	h := NewHistory(Location{Page: "/a"})
	h.PushLocation(Location{Page: "/b"})
	var got Location
	var gotKind NavKind
	h.OnLocationChange(func(loc Location, kind NavKind) { got, gotKind = loc, kind })

	target := Location{Page: "/a", Entry: LocationEntry{RootID: "work", Path: "x"}}
	h.Load(target)

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, target, got)
	assert.Equal(t, NavLoad, gotKind)
	assert.Equal(t, "load", gotKind.String())
	assert.False(t, h.CanGoBack())
}

func TestHistoryIsEntryActive(t *testing.T) {
	e := LocationEntry{RootID: "work", Path: "x"}
	h := NewHistory(Location{Page: "/a"})
	assert.False(t, h.IsEntryActive(e))
	assert.False(t, h.IsEntryActive(LocationEntry{}), "the zero entry is never active")

	h.PushLocation(Location{Page: "/a", Entry: e})
	assert.True(t, h.IsEntryActive(e))
	assert.False(t, h.IsEntryActive(LocationEntry{RootID: "work", Path: "y"}))
}

func TestHistoryListenerRemove(t *testing.T) {
	h := NewHistory(Location{Page: "/a"})
	h.PushLocation(Location{Page: "/b"})
	count := 0
	remove := h.OnLocationChange(func(Location, NavKind) { count++ })

	h.Back()
	remove()
	h.Forward()

	assert.Equal(t, 1, count)
}
