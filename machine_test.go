package morph

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAnchor = Rect{X: 320, Y: 240}

func newTestMachine(reg *Registry) *Machine {
	return NewMachine("R", reg, WithAnchor(func() Rect { return testAnchor }))
}

// recordTransitions collects every transition m emits.
func recordTransitions(m *Machine) *[]Transition {
	var got []Transition
	m.OnTransition(func(tr Transition) { got = append(got, tr) })
	return &got
}

func TestMachineInitialState(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	assert.Equal(t, StateClosed, m.State())
	assert.Empty(t, m.Identity())
	assert.Empty(t, m.Path())
	assert.Nil(t, m.Episode())
	assert.Equal(t, "R", m.RootID())
}

func TestMachineRoundTrip(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	trs := recordTransitions(m)

	m.Open("proj-1", "gallery", false)
	assert.Equal(t, StateOpening, m.State())
	assert.Equal(t, "proj-1", m.Identity())
	assert.Equal(t, "gallery", m.Path())

	m.AnimationComplete()
	assert.Equal(t, StateOpen, m.State())
	m.Close()
	assert.Equal(t, StateClosing, m.State())
	m.AnimationComplete()

	assert.Equal(t, StateClosed, m.State())
	assert.Empty(t, m.Identity())
	assert.Empty(t, m.Path())
	assert.Nil(t, m.Episode())

	require.Len(t, *trs, 4)
	last := (*trs)[3]
	assert.Equal(t, StateClosing, last.From)
	assert.Equal(t, StateClosed, last.To)
	assert.Equal(t, "proj-1", last.Identity, "the closing transition still names what closed")
	assert.Equal(t, CauseAnimation, last.Cause)
}

func TestMachineOpenIgnoredWhenNotClosed(t *testing.T) {
	for _, setup := range []struct {
		name  string
		state State
		run   func(m *Machine)
	}{
		{"opening", StateOpening, func(m *Machine) { m.Open("a", "p", false) }},
		{"open", StateOpen, func(m *Machine) { m.Open("a", "p", true) }},
		{"closing", StateClosing, func(m *Machine) { m.Open("a", "p", true); m.Close() }},
	} {
		t.Run(setup.name, func(t *testing.T) {
			m := newTestMachine(NewRegistry(nil))
			setup.run(m)
			require.Equal(t, setup.state, m.State())
			trs := recordTransitions(m)

			m.Open("b", "q", false)
			m.Open("b", "q", true)

			assert.Equal(t, setup.state, m.State())
			assert.Equal(t, "a", m.Identity())
			assert.Equal(t, "p", m.Path())
			assert.Empty(t, *trs)
		})
	}
}

func TestMachineCloseIgnoredWhenClosedOrClosing(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	trs := recordTransitions(m)
	m.Close()
	assert.Equal(t, StateClosed, m.State())

	m.Open("a", "p", true)
	m.Close()
	ep := m.Episode()
	m.Close()
	assert.Equal(t, StateClosing, m.State())
	assert.Same(t, ep, m.Episode(), "a second close must not start a new episode")
	assert.Len(t, *trs, 2)
}

func TestMachineAnimationCompleteIdempotent(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	m.AnimationComplete()
	assert.Equal(t, StateClosed, m.State())

	m.Open("a", "p", false)
	m.AnimationComplete()
	m.AnimationComplete()
	assert.Equal(t, StateOpen, m.State())
	assert.Equal(t, "a", m.Identity())

	m.Close()
	m.AnimationComplete()
	m.AnimationComplete()
	assert.Equal(t, StateClosed, m.State())
}

func TestMachineSkipAnimation(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	trs := recordTransitions(m)

	m.Open("x", "x", true)

	assert.Equal(t, StateOpen, m.State())
	require.Len(t, *trs, 1)
	assert.Equal(t, StateClosed, (*trs)[0].From)
	assert.Equal(t, StateOpen, (*trs)[0].To)
	assert.Nil(t, (*trs)[0].Episode)
}

func TestMachineInterruptedOpenSnapshotsCurrentGeometry(t *testing.T) {
	reg := NewRegistry(nil)
	trigger := Rect{X: 10, Y: 10, Width: 50, Height: 50}
	content := Rect{X: 100, Y: 100, Width: 400, Height: 300}
	reg.Register("proj-1", SideTrigger, fixedGeometry(trigger))
	reg.Register("proj-1", SideContent, GeometryFunc(func() (Rect, bool) { return content, true }))

	m := newTestMachine(reg)
	m.Open("proj-1", "gallery", false)
	opening := m.Episode()
	require.NotNil(t, opening)
	src, ok := opening.Source()
	require.True(t, ok)
	assert.Equal(t, trigger, src)

	// The content element is mid-morph when the close arrives.
	content = Rect{X: 55, Y: 55, Width: 200, Height: 150}
	m.Close()

	assert.Equal(t, StateClosing, m.State())
	closing := m.Episode()
	require.NotNil(t, closing)
	assert.True(t, closing.Interrupted())
	src, ok = closing.Source()
	require.True(t, ok)
	assert.Equal(t, content, src, "closing starts where the content is now")
	dst, ok := closing.Target()
	require.True(t, ok)
	assert.Equal(t, trigger, dst)

	select {
	case <-opening.Done():
	default:
		t.Fatal("interrupted opening episode should be done")
	}

	m.AnimationComplete()
	assert.Equal(t, StateClosed, m.State())
}

func TestMachineMissingTriggerUsesAnchor(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("a", SideContent, fixedGeometry(Rect{X: 1, Width: 2, Height: 2}))
	m := newTestMachine(reg)

	m.Open("a", "p", false)

	src, ok := m.Episode().Source()
	assert.False(t, ok)
	assert.Equal(t, testAnchor, src)
	assert.Equal(t, MorphGeometry, m.Episode().Mode())
}

func TestMachineMissingContentFades(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("thumb", SideTrigger, fixedGeometry(Rect{Width: 5, Height: 5}))
	reg.Register("other", SideContent, fixedGeometry(Rect{Width: 50, Height: 50}))
	m := newTestMachine(reg)

	m.Open("thumb", "p", false)
	assert.Equal(t, MorphFade, m.Episode().Mode())
	m.AnimationComplete()
	m.Close()
	assert.Equal(t, MorphFade, m.Episode().Mode())
}

func TestEpisodeTargetReadOnce(t *testing.T) {
	reg := NewRegistry(nil)
	m := newTestMachine(reg)

	var ep *Episode
	m.OnTransition(func(tr Transition) {
		if tr.To == StateOpening {
			// Mounted by a listener, after the episode was created.
			reg.Register("a", SideContent, fixedGeometry(Rect{X: 7}))
			ep = tr.Episode
		}
	})
	m.Open("a", "p", false)

	got, ok := ep.Target()
	require.True(t, ok)
	assert.Equal(t, 7.0, got.X)

	reg.Unregister("a", SideContent)
	got, ok = ep.Target()
	assert.True(t, ok, "target is fixed after the first read")
	assert.Equal(t, 7.0, got.X)
}

func TestMachineReset(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	m.Open("a", "p", false)
	ep := m.Episode()
	trs := recordTransitions(m)

	m.Reset()

	assert.Equal(t, StateClosed, m.State())
	assert.Empty(t, m.Identity())
	require.Len(t, *trs, 1)
	assert.Equal(t, CauseReset, (*trs)[0].Cause)
	select {
	case <-ep.Done():
	default:
		t.Fatal("reset should end the running episode")
	}

	m.Reset()
	assert.Len(t, *trs, 1, "reset while closed is silent")
}

func TestMachineReentrantCallsAreDeferred(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))

	var seen []State
	m.OnTransition(func(tr Transition) {
		seen = append(seen, tr.To)
		if tr.To == StateOpen {
			// Runs only after every listener has seen StateOpen.
			m.Close()
			assert.Equal(t, StateOpen, m.State())
		}
	})
	var second []State
	m.OnTransition(func(tr Transition) { second = append(second, tr.To) })

	m.Open("a", "p", true)

	assert.Equal(t, StateClosing, m.State())
	assert.Equal(t, []State{StateOpen, StateClosing}, seen)
	assert.Equal(t, []State{StateOpen, StateClosing}, second)
}

func TestMachineListenerPanicDoesNotWedge(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	h := m.OnTransition(func(Transition) { panic("boom") })

	assert.Panics(t, func() { m.Open("a", "p", true) })
	h.Remove()

	m.Close()
	assert.Equal(t, StateClosing, m.State(), "signals must run after a listener panicked")
}

func TestTransitionHandleRemove(t *testing.T) {
	m := newTestMachine(NewRegistry(nil))
	count := 0
	h := m.OnTransition(func(Transition) { count++ })
	m.Open("a", "p", true)
	h.Remove()
	h.Remove()
	m.Close()
	assert.Equal(t, 1, count)
}

// TestMachineRandomSequences drives the machine with random signals and
// checks it against a reference model after every step.
func TestMachineRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		m := newTestMachine(NewRegistry(nil))
		want := StateClosed
		wantID := ""
		for step := 0; step < 50; step++ {
			switch rng.IntN(5) {
			case 0:
				id := []string{"a", "b"}[rng.IntN(2)]
				m.Open(id, id, false)
				if want == StateClosed {
					want, wantID = StateOpening, id
				}
			case 1:
				id := []string{"a", "b"}[rng.IntN(2)]
				m.Open(id, id, true)
				if want == StateClosed {
					want, wantID = StateOpen, id
				}
			case 2:
				m.Close()
				if want == StateOpening || want == StateOpen {
					want = StateClosing
				}
			case 3:
				m.AnimationComplete()
				switch want {
				case StateOpening:
					want = StateOpen
				case StateClosing:
					want, wantID = StateClosed, ""
				}
			case 4:
				if rng.IntN(4) == 0 {
					m.Reset()
					want, wantID = StateClosed, ""
				}
			}
			require.Equal(t, want, m.State(), "run %d step %d", run, step)
			require.Equal(t, wantID, m.Identity(), "run %d step %d", run, step)
			require.NotEqual(t, "invalid", m.State().String())
			if m.State() == StateOpening || m.State() == StateClosing {
				require.NotNil(t, m.Episode())
			} else {
				require.Nil(t, m.Episode())
			}
		}
	}
}

func TestStateAndCauseStrings(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "opening", StateOpening.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closing", StateClosing.String())
	assert.Equal(t, "invalid", State(9).String())
	assert.Equal(t, "cold-open", CauseColdOpen.String())
	assert.Equal(t, "preempted", CausePreempted.String())
}
