package morph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// ErrInvalidScript is returned by LoadScript for malformed scripts.
var ErrInvalidScript = errors.New("morph: invalid script")

// scriptStep is one action of a walkthrough script.
type scriptStep struct {
	Action   string      `json:"action"`
	X        float64     `json:"x,omitempty"`
	Y        float64     `json:"y,omitempty"`
	Key      *ebiten.Key `json:"key,omitempty"`
	Frames   int         `json:"frames,omitempty"`
	Location string      `json:"location,omitempty"`
	Root     string      `json:"root,omitempty"`
	State    string      `json:"state,omitempty"`

	loc Location
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// Traverser is the part of History a script needs for back, forward and
// load steps.
type Traverser interface {
	Back()
	Forward()
	Load(loc Location)
}

// ScriptRunner plays a walkthrough against a Host, one step per frame:
//
//	{"steps": [
//	  {"action": "click", "x": 40, "y": 40},
//	  {"action": "wait", "frames": 30},
//	  {"action": "expect", "root": "work", "state": "open"},
//	  {"action": "key", "key": "Escape"},
//	  {"action": "back"},
//	  {"action": "load", "location": "/?m=work/proj-2"}
//	]}
//
// Injected input drains before the next step runs. Failed expectations are
// collected, not fatal.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	failures  []error
	logger    *zap.Logger
}

// LoadScript parses a JSON walkthrough script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidScript)
	}
	for i := range sc.Steps {
		st := &sc.Steps[i]
		switch st.Action {
		case "click", "wait", "back", "forward":
		case "key":
			if st.Key == nil {
				return nil, fmt.Errorf("%w: step %d: key action without key", ErrInvalidScript, i)
			}
		case "load":
			loc, err := ParseLocation(st.Location)
			if err != nil {
				return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidScript, i, err)
			}
			st.loc = loc
		case "expect":
			if st.Root == "" {
				return nil, fmt.Errorf("%w: step %d: expect without root", ErrInvalidScript, i)
			}
			if _, ok := parseState(st.State); !ok {
				return nil, fmt.Errorf("%w: step %d: unknown state %q", ErrInvalidScript, i, st.State)
			}
		default:
			return nil, fmt.Errorf("%w: step %d: unknown action %q", ErrInvalidScript, i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps, logger: zap.NewNop()}, nil
}

// SetLogger sets the runner's logger.
func (r *ScriptRunner) SetLogger(l *zap.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool { return r.done }

// Failures returns the expectations that did not hold.
func (r *ScriptRunner) Failures() []error { return r.failures }

// Err joins all failures, or returns nil.
func (r *ScriptRunner) Err() error { return errors.Join(r.failures...) }

// step advances the runner by one frame. Called from Host.Update.
func (r *ScriptRunner) step(h *Host) {
	if r.done {
		return
	}
	s := h.scene
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	r.logger.Debug("script step", zap.Int("step", r.cursor-1), zap.String("action", st.Action))

	switch st.Action {
	case "click":
		s.InjectClick(st.X, st.Y)
	case "key":
		s.InjectKey(*st.Key)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case "back", "forward", "load":
		tr, ok := h.nav.(Traverser)
		if !ok {
			r.fail(fmt.Errorf("step %d: navigator cannot %s", r.cursor-1, st.Action))
			break
		}
		switch st.Action {
		case "back":
			tr.Back()
		case "forward":
			tr.Forward()
		default:
			tr.Load(st.loc)
		}
	case "expect":
		want, _ := parseState(st.State)
		root := h.Root(st.Root)
		switch {
		case root == nil:
			r.fail(fmt.Errorf("step %d: root %q not mounted", r.cursor-1, st.Root))
		case root.State() != want:
			r.fail(fmt.Errorf("step %d: root %q is %s, want %s", r.cursor-1, st.Root, root.State(), want))
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}

func (r *ScriptRunner) fail(err error) {
	r.logger.Warn("script expectation failed", zap.Error(err))
	r.failures = append(r.failures, err)
}

func parseState(s string) (State, bool) {
	for _, st := range []State{StateClosed, StateOpening, StateOpen, StateClosing} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}
