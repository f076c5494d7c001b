package morph

import "go.uber.org/zap"

// State is the lifecycle state of one transition root.
type State uint8

const (
	StateClosed  State = iota // initial; nothing mounted in the portal
	StateOpening              // forward morph in progress
	StateOpen                 // content fully expanded
	StateClosing              // reverse morph in progress
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "invalid"
	}
}

// Cause records what triggered a transition.
type Cause uint8

const (
	CauseUser       Cause = iota // explicit open/close call or interaction
	CauseNavigation              // host location changed (back, forward)
	CauseColdOpen                // page loaded at a location naming the root
	CausePreempted               // another root opened
	CauseAnimation               // the animator reported completion
	CauseReset                   // the root was torn down
)

func (c Cause) String() string {
	switch c {
	case CauseUser:
		return "user"
	case CauseNavigation:
		return "navigation"
	case CauseColdOpen:
		return "cold-open"
	case CausePreempted:
		return "preempted"
	case CauseAnimation:
		return "animation"
	case CauseReset:
		return "reset"
	default:
		return "unknown"
	}
}

// MorphMode says how the animator should interpolate an episode.
type MorphMode uint8

const (
	MorphGeometry MorphMode = iota // interpolate position and size
	MorphFade                      // no content geometry to pair with; opacity only
)

// Episode is one OPENING or CLOSING run. Its end points are fixed when the
// transition starts; later movement of the source element is not tracked.
type Episode struct {
	kind        State
	identity    string
	anchor      Rect
	source      Rect
	sourceFound bool
	interrupted bool

	readTarget  func() (Rect, bool)
	target      Rect
	targetFound bool
	targetRead  bool

	done  chan struct{}
	ended bool
}

// Kind is StateOpening or StateClosing.
func (e *Episode) Kind() State { return e.kind }

// Identity is the item identity being morphed.
func (e *Episode) Identity() string { return e.identity }

// Interrupted reports whether this closing episode cut an opening short. The
// source is then the interpolated geometry at the moment of interruption.
func (e *Episode) Interrupted() bool { return e.interrupted }

// Source returns the geometry the episode starts from. When nothing was
// registered, the default anchor is returned with ok false.
func (e *Episode) Source() (r Rect, ok bool) {
	if !e.sourceFound {
		return e.anchor, false
	}
	return e.source, true
}

// Target returns the geometry the episode ends at. It is read from the
// registry once, on the first call, so an opening episode can see content
// mounted by its own transition listeners.
func (e *Episode) Target() (r Rect, ok bool) {
	if !e.targetRead {
		e.targetRead = true
		if e.readTarget != nil {
			e.target, e.targetFound = e.readTarget()
		}
	}
	if !e.targetFound {
		return e.anchor, false
	}
	return e.target, true
}

// Mode is MorphFade when the content side has no geometry (the trigger and
// content items use different identities), MorphGeometry otherwise.
func (e *Episode) Mode() MorphMode {
	var contentFound bool
	if e.kind == StateOpening {
		_, contentFound = e.Target()
	} else {
		contentFound = e.sourceFound
	}
	if !contentFound {
		return MorphFade
	}
	return MorphGeometry
}

// Done is closed when the episode ends, whether by completion, interruption
// or reset.
func (e *Episode) Done() <-chan struct{} { return e.done }

func (e *Episode) end() {
	if e.ended {
		return
	}
	e.ended = true
	close(e.done)
}

// Transition describes one state change, delivered to listeners after the
// machine has moved to To.
type Transition struct {
	RootID   string
	From, To State
	Identity string
	Path     string
	Cause    Cause
	Episode  *Episode // set when To is StateOpening or StateClosing
}

type transitionListener struct {
	id uint32
	fn func(Transition)
}

// TransitionHandle removes a listener registered with OnTransition.
type TransitionHandle struct {
	id uint32
	m  *Machine
}

// Remove unregisters the listener. Calling Remove more than once is harmless.
func (h TransitionHandle) Remove() {
	if h.m == nil {
		return
	}
	h.m.listeners = removeByID(h.m.listeners, h.id, func(l transitionListener) uint32 { return l.id })
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithMachineLogger sets the machine's logger.
func WithMachineLogger(l *zap.Logger) MachineOption {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithAnchor sets the geometry used when the registry has nothing for an
// end point.
func WithAnchor(fn func() Rect) MachineOption {
	return func(m *Machine) {
		if fn != nil {
			m.anchor = fn
		}
	}
}

// Machine is the open/close state machine of one transition root. It is
// mutated only by its own signal methods and only from the update loop.
//
// Signals that arrive while listeners are being notified are queued and run
// after the current notification finishes, so listeners never observe a
// root changing state underneath them.
type Machine struct {
	rootID   string
	state    State
	identity string
	path     string
	episode  *Episode
	registry *Registry
	anchor   func() Rect
	logger   *zap.Logger

	listeners      []transitionListener
	nextListenerID uint32
	dispatching    bool
	deferred       []func()
}

// NewMachine creates a machine in StateClosed for rootID, reading geometry
// from reg.
func NewMachine(rootID string, reg *Registry, opts ...MachineOption) *Machine {
	m := &Machine{
		rootID:   rootID,
		registry: reg,
		anchor:   func() Rect { return Rect{} },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("root", rootID))
	return m
}

// RootID returns the root this machine belongs to.
func (m *Machine) RootID() string { return m.rootID }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Identity returns the active item identity, or "" when closed.
func (m *Machine) Identity() string { return m.identity }

// Path returns the active path, or "" when closed.
func (m *Machine) Path() string { return m.path }

// Episode returns the running episode, or nil in StateOpen and StateClosed.
func (m *Machine) Episode() *Episode { return m.episode }

// OnTransition registers fn for every state change.
func (m *Machine) OnTransition(fn func(Transition)) TransitionHandle {
	m.nextListenerID++
	m.listeners = append(m.listeners, transitionListener{id: m.nextListenerID, fn: fn})
	return TransitionHandle{id: m.nextListenerID, m: m}
}

// Open starts morphing identity into the content for path. It applies only
// in StateClosed; otherwise the call is dropped. skipAnimation moves straight
// to StateOpen.
func (m *Machine) Open(identity, path string, skipAnimation bool) {
	m.open(identity, path, skipAnimation, CauseUser)
}

// Close starts the reverse morph from StateOpening or StateOpen. It is
// dropped in any other state.
func (m *Machine) Close() {
	m.close(CauseUser)
}

// AnimationComplete ends the running episode. The animator calls it exactly
// once per episode; calls in StateOpen or StateClosed are ignored.
func (m *Machine) AnimationComplete() {
	m.run(func() {
		switch m.state {
		case StateOpening:
			m.transition(StateOpen, CauseAnimation, nil)
		case StateClosing:
			m.transition(StateClosed, CauseAnimation, nil)
		default:
			m.logger.Debug("animation complete ignored", zap.Stringer("state", m.state))
		}
	})
}

// Reset forces StateClosed without a closing episode. Listeners see the
// change with CauseReset and must not perform close side effects.
func (m *Machine) Reset() {
	m.run(func() {
		if m.state == StateClosed {
			return
		}
		m.transition(StateClosed, CauseReset, nil)
	})
}

func (m *Machine) open(identity, path string, skipAnimation bool, cause Cause) {
	m.run(func() {
		if m.state != StateClosed {
			m.logger.Debug("open rejected",
				zap.Stringer("state", m.state),
				zap.String("item", identity),
				zap.String("path", path))
			return
		}
		m.identity = identity
		m.path = path
		if skipAnimation {
			m.transition(StateOpen, cause, nil)
			return
		}
		ep := m.newEpisode(StateOpening, identity, SideTrigger, SideContent)
		m.transition(StateOpening, cause, ep)
	})
}

func (m *Machine) close(cause Cause) {
	m.run(func() {
		switch m.state {
		case StateOpening, StateOpen:
			interrupted := m.state == StateOpening
			ep := m.newEpisode(StateClosing, m.identity, SideContent, SideTrigger)
			ep.interrupted = interrupted
			m.transition(StateClosing, cause, ep)
		default:
			m.logger.Debug("close rejected", zap.Stringer("state", m.state))
		}
	})
}

// newEpisode snapshots the source side now and defers the target read.
func (m *Machine) newEpisode(kind State, identity string, from, to Side) *Episode {
	ep := &Episode{
		kind:     kind,
		identity: identity,
		anchor:   m.anchor(),
		done:     make(chan struct{}),
	}
	if m.registry != nil {
		ep.source, ep.sourceFound = m.registry.Snapshot(identity, from)
		reg := m.registry
		ep.readTarget = func() (Rect, bool) { return reg.Snapshot(identity, to) }
	}
	if !ep.sourceFound {
		m.logger.Debug("source geometry missing, using anchor",
			zap.String("item", identity), zap.Stringer("side", from))
	}
	return ep
}

// transition moves to the new state and notifies listeners.
func (m *Machine) transition(to State, cause Cause, ep *Episode) {
	tr := Transition{
		RootID:   m.rootID,
		From:     m.state,
		To:       to,
		Identity: m.identity,
		Path:     m.path,
		Cause:    cause,
		Episode:  ep,
	}
	if m.episode != nil {
		m.episode.end()
	}
	m.state = to
	m.episode = ep
	if to == StateClosed {
		m.identity = ""
		m.path = ""
	}
	m.logger.Debug("transition",
		zap.Stringer("from", tr.From),
		zap.Stringer("to", tr.To),
		zap.Stringer("cause", cause),
		zap.String("item", tr.Identity),
		zap.String("path", tr.Path))

	m.notify(tr)
}

func (m *Machine) notify(tr Transition) {
	m.dispatching = true
	defer func() { m.dispatching = false }()
	for _, l := range append([]transitionListener(nil), m.listeners...) {
		l.fn(tr)
	}
}

// run executes fn now, or queues it when called from inside a listener.
func (m *Machine) run(fn func()) {
	if m.dispatching {
		m.deferred = append(m.deferred, fn)
		return
	}
	fn()
	for len(m.deferred) > 0 {
		next := m.deferred[0]
		m.deferred = m.deferred[1:]
		next()
	}
}
