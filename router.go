package morph

import "go.uber.org/zap"

// Router keeps one root's machine and the navigator in agreement. Opening
// the root writes a LocationEntry; leaving that entry (back, forward, load)
// closes the root; reaching StateClosed removes the entry if it is still
// current and nobody navigated onto it while the root was closing. A load
// naming this root opens it without animation.
type Router struct {
	machine *Machine
	nav     Navigator
	resolve func(path string) string
	logger  *zap.Logger

	pushed   bool
	attached bool
	// arrived is set when the location moved while the root was closing;
	// at StateClosed the router follows it instead of removing the entry.
	arrived   bool
	arrivedBy NavKind
	handle    TransitionHandle
	removeNav func()
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the router's logger.
func WithRouterLogger(l *zap.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIdentityResolver maps a location path to the item identity opened for
// it. The default uses the path itself.
func WithIdentityResolver(fn func(path string) string) RouterOption {
	return func(r *Router) {
		if fn != nil {
			r.resolve = fn
		}
	}
}

// NewRouter creates a detached router for m.
func NewRouter(m *Machine, nav Navigator, opts ...RouterOption) *Router {
	r := &Router{
		machine: m,
		nav:     nav,
		resolve: func(path string) string { return path },
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("root", m.RootID()))
	return r
}

// Attach subscribes to the machine and the navigator, then reconciles with
// the current location. A location already naming this root cold-opens it.
func (r *Router) Attach() {
	if r.attached {
		return
	}
	r.attached = true
	r.handle = r.machine.OnTransition(r.onTransition)
	r.removeNav = r.nav.OnLocationChange(r.onLocationChange)

	if r.machine.State() == StateClosed {
		r.follow(r.nav.CurrentLocation(), NavLoad)
	}
}

// Detach stops listening. The location is left untouched.
func (r *Router) Detach() {
	if !r.attached {
		return
	}
	r.attached = false
	r.handle.Remove()
	if r.removeNav != nil {
		r.removeNav()
		r.removeNav = nil
	}
	r.pushed = false
	r.arrived = false
}

// Entry returns the entry this root owns while not closed, or the zero entry.
func (r *Router) Entry() LocationEntry {
	if r.machine.State() == StateClosed {
		return LocationEntry{}
	}
	return LocationEntry{RootID: r.machine.RootID(), Path: r.machine.Path()}
}

func (r *Router) onTransition(tr Transition) {
	if tr.Cause == CauseReset {
		r.pushed = false
		r.arrived = false
		return
	}
	entry := LocationEntry{RootID: tr.RootID, Path: tr.Path}

	switch {
	case tr.To == StateOpening || tr.To == StateOpen:
		r.arrived = false
		if tr.From != StateClosed {
			return
		}
		switch tr.Cause {
		case CauseUser:
			r.writeEntry(entry)
		case CauseNavigation:
			r.pushed = true
		default:
			r.pushed = false
		}
	case tr.To == StateClosed:
		kind := NavTraverse
		if r.arrived {
			kind = r.arrivedBy
			r.arrived = false
			r.pushed = false
			r.logger.Debug("location moved while closing", zap.Stringer("kind", kind))
		} else {
			r.removeEntry(entry)
		}
		// The location may have moved to another path of this root while
		// the close ran; follow it now that the machine can open again.
		r.follow(r.nav.CurrentLocation(), kind)
	}
}

// writeEntry pushes entry, or replaces the current entry if one is already
// active so entries never stack.
func (r *Router) writeEntry(entry LocationEntry) {
	cur := r.nav.CurrentLocation()
	if !cur.Entry.IsZero() {
		r.logger.Debug("replace location entry",
			zap.Stringer("previous", cur.Entry), zap.Stringer("entry", entry))
		r.nav.ReplaceLocation(cur.WithEntry(entry))
		r.pushed = false
		return
	}
	r.logger.Debug("push location entry", zap.Stringer("entry", entry))
	r.nav.PushLocation(cur.WithEntry(entry))
	r.pushed = true
}

// removeEntry drops entry from the current location if it is still there.
// A pushed entry is popped; otherwise (cold open, or a back that did not
// land anywhere) it is replaced away.
func (r *Router) removeEntry(entry LocationEntry) {
	defer func() { r.pushed = false }()
	if !r.nav.IsEntryActive(entry) {
		return
	}
	if r.pushed {
		r.logger.Debug("pop location entry", zap.Stringer("entry", entry))
		r.nav.Back()
	}
	if r.nav.IsEntryActive(entry) {
		r.logger.Debug("strip location entry", zap.Stringer("entry", entry))
		r.nav.ReplaceLocation(r.nav.CurrentLocation().WithoutEntry())
	}
}

func (r *Router) onLocationChange(loc Location, kind NavKind) {
	if !r.attached {
		return
	}
	// Whatever this root pushed is no longer the current entry's history.
	if r.machine.State() != StateClosed {
		r.pushed = false
	}
	r.follow(loc, kind)
	if r.machine.State() == StateClosing {
		r.arrived = true
		r.arrivedBy = kind
	}
}

// follow drives the machine toward what loc says about this root. A load
// opens without animation, as Attach does.
func (r *Router) follow(loc Location, kind NavKind) {
	mine := loc.Entry.RootID == r.machine.RootID()
	switch r.machine.State() {
	case StateClosed:
		if !mine {
			return
		}
		path := loc.Entry.Path
		if kind == NavLoad {
			r.logger.Debug("cold open", zap.String("path", path))
			r.machine.open(r.resolve(path), path, true, CauseColdOpen)
			return
		}
		r.machine.open(r.resolve(path), path, false, CauseNavigation)
	case StateOpening, StateOpen:
		if !mine || loc.Entry.Path != r.machine.Path() {
			r.machine.close(CauseNavigation)
		}
	}
}
