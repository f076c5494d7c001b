package morph

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// TransitionEvent is the flattened form of a Transition handed to an
// EventSink, together with the location current at the time.
type TransitionEvent struct {
	RootID      string
	From, To    State
	Identity    string
	Path        string
	Cause       Cause
	Mode        MorphMode
	Interrupted bool
	Location    string
}

// EventSink receives every transition of every root mounted on a host.
type EventSink interface {
	EmitTransition(ev TransitionEvent)
}

// EventSinkFunc adapts a plain function to EventSink.
type EventSinkFunc func(TransitionEvent)

// EmitTransition calls f(ev).
func (f EventSinkFunc) EmitTransition(ev TransitionEvent) { f(ev) }

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger shared by the host, its scene and every root.
func WithLogger(l *zap.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithViewport sets the logical screen size used for the default anchor and
// for backgrounds.
func WithViewport(width, height int) HostOption {
	return func(h *Host) {
		if width > 0 && height > 0 {
			h.width, h.height = float64(width), float64(height)
		}
	}
}

// WithEventSink forwards every transition to sink.
func WithEventSink(sink EventSink) HostOption {
	return func(h *Host) { h.sink = sink }
}

// Host is the page session: one scene, one navigator, one geometry registry
// and the roots mounted on them. Primitives receive it explicitly.
//
// At most one root is open at a time. When a root leaves StateClosed, every
// other root still opening or open is closed with CausePreempted.
type Host struct {
	scene    *Scene
	nav      Navigator
	registry *Registry
	logger   *zap.Logger
	sink     EventSink
	runner   *ScriptRunner

	width, height float64

	roots map[string]*Root
	order []*Root
}

// NewHost creates a host over scene and nav.
func NewHost(scene *Scene, nav Navigator, opts ...HostOption) *Host {
	h := &Host{
		scene:  scene,
		nav:    nav,
		logger: zap.NewNop(),
		width:  640,
		height: 480,
		roots:  make(map[string]*Root),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registry = NewRegistry(h.logger.Named("registry"))
	scene.SetLogger(h.logger.Named("scene"))
	return h
}

// Scene returns the host's scene.
func (h *Host) Scene() *Scene { return h.scene }

// Navigator returns the host's navigator.
func (h *Host) Navigator() Navigator { return h.nav }

// Registry returns the page-wide geometry registry.
func (h *Host) Registry() *Registry { return h.registry }

// Logger returns the host logger.
func (h *Host) Logger() *zap.Logger { return h.logger }

// Viewport returns the logical screen size.
func (h *Host) Viewport() (width, height float64) { return h.width, h.height }

// DefaultGeometry is the anchor used when an end point has no registered
// geometry: a zero-size rect at the viewport center.
func (h *Host) DefaultGeometry() Rect {
	c := Rect{Width: h.width, Height: h.height}.Center()
	return Rect{X: c.X, Y: c.Y}
}

// Root returns the mounted root with id, or nil.
func (h *Host) Root(id string) *Root {
	return h.roots[id]
}

// Roots returns the mounted roots in mount order.
func (h *Host) Roots() []*Root {
	return append([]*Root(nil), h.order...)
}

// SetScript attaches a script runner. The runner steps at the start of every
// Update, before input is processed. Nil detaches.
func (h *Host) SetScript(r *ScriptRunner) {
	h.runner = r
}

// Update steps the script, processes scene input and advances every root's
// animator by dt seconds.
func (h *Host) Update(dt float32) {
	if h.runner != nil {
		h.runner.step(h)
	}
	h.scene.Update(dt)
	for _, r := range append([]*Root(nil), h.order...) {
		r.animator.Update(dt)
	}
}

// Draw paints the scene onto screen.
func (h *Host) Draw(screen *ebiten.Image) {
	h.scene.Draw(screen)
}

func (h *Host) addRoot(r *Root) {
	if _, dup := h.roots[r.id]; dup {
		panic(fmt.Sprintf("morph: root %q is already mounted", r.id))
	}
	h.roots[r.id] = r
	h.order = append(h.order, r)
	r.hostHandle = r.machine.OnTransition(h.onTransition)
	h.logger.Debug("root mounted", zap.String("root", r.id))
}

func (h *Host) removeRoot(r *Root) {
	if h.roots[r.id] != r {
		return
	}
	r.hostHandle.Remove()
	delete(h.roots, r.id)
	for i, o := range h.order {
		if o == r {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.logger.Debug("root unmounted", zap.String("root", r.id))
}

func (h *Host) onTransition(tr Transition) {
	if h.sink != nil {
		ev := TransitionEvent{
			RootID:   tr.RootID,
			From:     tr.From,
			To:       tr.To,
			Identity: tr.Identity,
			Path:     tr.Path,
			Cause:    tr.Cause,
			Location: h.nav.CurrentLocation().String(),
		}
		if tr.Episode != nil {
			ev.Mode = tr.Episode.Mode()
			ev.Interrupted = tr.Episode.Interrupted()
		}
		h.sink.EmitTransition(ev)
	}

	if tr.From != StateClosed || tr.To == StateClosed {
		return
	}
	for _, other := range append([]*Root(nil), h.order...) {
		if other.id == tr.RootID {
			continue
		}
		switch other.machine.State() {
		case StateOpening, StateOpen:
			h.logger.Debug("preempting open root",
				zap.String("root", other.id), zap.String("by", tr.RootID))
			other.machine.close(CausePreempted)
		}
	}
}
