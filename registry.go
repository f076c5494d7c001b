package morph

import "go.uber.org/zap"

// Side says which half of a shared-element pair an item belongs to.
type Side uint8

const (
	SideTrigger Side = iota // the collapsed element in the page flow
	SideContent             // the expanded element inside a portal
)

func (s Side) String() string {
	switch s {
	case SideTrigger:
		return "trigger"
	case SideContent:
		return "content"
	default:
		return "unknown"
	}
}

// GeometryProvider produces the current world geometry of a mounted element.
// It is queried on demand, so it must reflect scroll and layout changes made
// after registration. ok is false when the element cannot be measured.
type GeometryProvider interface {
	Geometry() (r Rect, ok bool)
}

// GeometryFunc adapts a function to GeometryProvider.
type GeometryFunc func() (Rect, bool)

// Geometry calls f.
func (f GeometryFunc) Geometry() (Rect, bool) { return f() }

// NodeGeometry returns a provider reading n's world bounds. A disposed or
// detached node cannot be measured.
func NodeGeometry(n *Node) GeometryProvider {
	return GeometryFunc(func() (Rect, bool) {
		if n.IsDisposed() || !n.IsAttached() {
			return Rect{}, false
		}
		return n.WorldBounds(), true
	})
}

type registryKey struct {
	id   string
	side Side
}

type registryEntry struct {
	token    uint32
	provider GeometryProvider
}

// Registry maps (identity, side) to the provider of the element currently
// presenting that identity. One registry serves a whole page; it is handed to
// roots through their Host rather than held globally.
type Registry struct {
	entries   map[registryKey]registryEntry
	nextToken uint32
	logger    *zap.Logger
}

// Registration is returned by Register. Remove drops the entry only if it
// is still the one this registration created.
type Registration struct {
	key   registryKey
	token uint32
	reg   *Registry
}

// NewRegistry creates an empty registry. A nil logger is replaced by a
// no-op logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[registryKey]registryEntry),
		logger:  logger,
	}
}

// Register stores p as the live geometry source for (id, side), replacing any
// previous provider for that key.
func (r *Registry) Register(id string, side Side, p GeometryProvider) Registration {
	key := registryKey{id: id, side: side}
	if _, exists := r.entries[key]; exists {
		r.logger.Warn("geometry registration replaced",
			zap.String("item", id), zap.Stringer("side", side))
	}
	r.nextToken++
	r.entries[key] = registryEntry{token: r.nextToken, provider: p}
	return Registration{key: key, token: r.nextToken, reg: r}
}

// Unregister removes whatever is registered for (id, side).
func (r *Registry) Unregister(id string, side Side) {
	delete(r.entries, registryKey{id: id, side: side})
}

// Remove unregisters this registration if it has not been replaced since.
func (g Registration) Remove() {
	if g.reg == nil {
		return
	}
	if e, ok := g.reg.entries[g.key]; ok && e.token == g.token {
		delete(g.reg.entries, g.key)
	}
}

// Active reports whether the registration is still the current one.
func (g Registration) Active() bool {
	if g.reg == nil {
		return false
	}
	e, ok := g.reg.entries[g.key]
	return ok && e.token == g.token
}

// Snapshot returns the current geometry for (id, side). ok is false when no
// element is registered or the provider cannot measure; callers fall back to
// a default anchor instead of failing.
func (r *Registry) Snapshot(id string, side Side) (Rect, bool) {
	e, ok := r.entries[registryKey{id: id, side: side}]
	if !ok {
		return Rect{}, false
	}
	return e.provider.Geometry()
}

// Has reports whether anything is registered for (id, side).
func (r *Registry) Has(id string, side Side) bool {
	_, ok := r.entries[registryKey{id: id, side: side}]
	return ok
}

// Len returns the number of registered entries across both sides.
func (r *Registry) Len() int {
	return len(r.entries)
}
