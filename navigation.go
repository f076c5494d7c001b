package morph

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidLocation is returned by ParseLocation for malformed input.
var ErrInvalidLocation = errors.New("morph: invalid location")

// locationQueryKey is the query parameter carrying an encoded entry.
const locationQueryKey = "m"

// LocationEntry marks a transition root as open at a location.
type LocationEntry struct {
	RootID string
	Path   string
}

// IsZero reports whether the entry names no root.
func (e LocationEntry) IsZero() bool {
	return e.RootID == ""
}

func (e LocationEntry) String() string {
	if e.IsZero() {
		return ""
	}
	return e.RootID + "/" + e.Path
}

// Location is a navigable address: a page plus at most one open root.
type Location struct {
	Page  string
	Entry LocationEntry
}

// WithEntry returns a copy of l carrying e.
func (l Location) WithEntry(e LocationEntry) Location {
	l.Entry = e
	return l
}

// WithoutEntry returns a copy of l with no entry.
func (l Location) WithoutEntry() Location {
	l.Entry = LocationEntry{}
	return l
}

// String encodes l as "/page" or "/page?m=root/path".
func (l Location) String() string {
	page := l.Page
	if page == "" {
		page = "/"
	}
	if l.Entry.IsZero() {
		return page
	}
	q := url.Values{}
	q.Set(locationQueryKey, l.Entry.String())
	return page + "?" + q.Encode()
}

// ParseLocation decodes the text form produced by Location.String.
func ParseLocation(s string) (Location, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q: %w", ErrInvalidLocation, s, err)
	}
	loc := Location{Page: u.Path}
	if loc.Page == "" {
		loc.Page = "/"
	}
	raw := u.Query().Get(locationQueryKey)
	if raw == "" {
		return loc, nil
	}
	rootID, path, _ := strings.Cut(raw, "/")
	if rootID == "" {
		return Location{}, fmt.Errorf("%w: %q: empty root id", ErrInvalidLocation, s)
	}
	loc.Entry = LocationEntry{RootID: rootID, Path: path}
	return loc, nil
}

// Navigator is the host application's navigation stack, reduced to what the
// route synchronizer needs.
type Navigator interface {
	// CurrentLocation returns the location at the top of the stack.
	CurrentLocation() Location
	// PushLocation adds a new location on top of the current one.
	PushLocation(loc Location)
	// ReplaceLocation swaps the current location in place.
	ReplaceLocation(loc Location)
	// Back moves to the previous location, if any.
	Back()
	// OnLocationChange registers fn for traversals (back, forward) and loads.
	// Push and replace do not notify. The returned func unregisters fn.
	OnLocationChange(fn func(Location, NavKind)) (remove func())
	// IsEntryActive reports whether e is the entry of the current location.
	IsEntryActive(e LocationEntry) bool
}

// NavKind tells a history traversal apart from a direct load.
type NavKind uint8

const (
	// NavTraverse is a back or forward move within the stack.
	NavTraverse NavKind = iota
	// NavLoad is a typed address or reload that replaces the stack.
	NavLoad
)

func (k NavKind) String() string {
	if k == NavLoad {
		return "load"
	}
	return "traverse"
}

// History is an in-memory Navigator with browser-style semantics: pushing
// discards forward entries, and only traversals notify listeners.
type History struct {
	stack     []Location
	index     int
	listeners []locationListener
	nextID    uint32
}

type locationListener struct {
	id uint32
	fn func(Location, NavKind)
}

// NewHistory creates a history positioned at start.
func NewHistory(start Location) *History {
	return &History{stack: []Location{start}}
}

// CurrentLocation returns the location at the cursor.
func (h *History) CurrentLocation() Location {
	return h.stack[h.index]
}

// PushLocation discards forward entries and appends loc.
func (h *History) PushLocation(loc Location) {
	h.stack = append(h.stack[:h.index+1], loc)
	h.index++
}

// ReplaceLocation overwrites the location at the cursor.
func (h *History) ReplaceLocation(loc Location) {
	h.stack[h.index] = loc
}

// Back moves the cursor one entry back and notifies listeners. No-op at the
// first entry.
func (h *History) Back() {
	if h.index == 0 {
		return
	}
	h.index--
	h.notify(NavTraverse)
}

// Forward moves the cursor one entry forward and notifies listeners. No-op at
// the last entry.
func (h *History) Forward() {
	if h.index >= len(h.stack)-1 {
		return
	}
	h.index++
	h.notify(NavTraverse)
}

// Load replaces the whole stack with loc, as a typed address or reload
// would, and notifies listeners.
func (h *History) Load(loc Location) {
	h.stack = []Location{loc}
	h.index = 0
	h.notify(NavLoad)
}

// Len returns the number of entries in the stack.
func (h *History) Len() int {
	return len(h.stack)
}

// CanGoBack reports whether Back would move.
func (h *History) CanGoBack() bool {
	return h.index > 0
}

// CanGoForward reports whether Forward would move.
func (h *History) CanGoForward() bool {
	return h.index < len(h.stack)-1
}

// OnLocationChange registers fn for traversals and loads.
func (h *History) OnLocationChange(fn func(Location, NavKind)) func() {
	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, locationListener{id: id, fn: fn})
	return func() {
		h.listeners = removeByID(h.listeners, id, func(l locationListener) uint32 { return l.id })
	}
}

// IsEntryActive reports whether e is the current location's entry.
func (h *History) IsEntryActive(e LocationEntry) bool {
	return !e.IsZero() && h.CurrentLocation().Entry == e
}

func (h *History) notify(kind NavKind) {
	loc := h.CurrentLocation()
	for _, l := range append([]locationListener(nil), h.listeners...) {
		l.fn(loc, kind)
	}
}
