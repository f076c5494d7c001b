package morph

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// RectTween animates a Rect and a progress value together. Create one with
// NewRectTween and call Update(dt) each frame; Rect and Progress hold the
// interpolated values and Done is set once every component has arrived.
type RectTween struct {
	tweens [5]*gween.Tween
	to     Rect
	toP    float64

	Rect     Rect
	Progress float64
	Done     bool
}

// NewRectTween creates a tween from one rect to another over duration
// seconds, moving progress from fromP to toP with the same easing.
func NewRectTween(from, to Rect, fromP, toP float64, duration float32, fn ease.TweenFunc) *RectTween {
	if fn == nil {
		fn = ease.Linear
	}
	t := &RectTween{to: to, toP: toP, Rect: from, Progress: fromP}
	t.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	t.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	t.tweens[2] = gween.New(float32(from.Width), float32(to.Width), duration, fn)
	t.tweens[3] = gween.New(float32(from.Height), float32(to.Height), duration, fn)
	t.tweens[4] = gween.New(float32(fromP), float32(toP), duration, fn)
	return t
}

// Update advances the tween by dt seconds.
func (t *RectTween) Update(dt float32) {
	if t.Done {
		return
	}
	var vals [5]float32
	allDone := true
	for i, tw := range t.tweens {
		v, finished := tw.Update(dt)
		vals[i] = v
		if !finished {
			allDone = false
		}
	}
	if allDone {
		// Land exactly; float32 steps can stop a hair short.
		t.Rect = t.to
		t.Progress = t.toP
		t.Done = true
		return
	}
	t.Rect = Rect{X: float64(vals[0]), Y: float64(vals[1]), Width: float64(vals[2]), Height: float64(vals[3])}
	t.Progress = float64(vals[4])
}

// Animator is the rendering side of one root. It turns each opening or
// closing episode into a RectTween, writes the interpolated rect onto the
// content item being morphed and reports completion back to the machine
// exactly once per episode.
//
// Progress runs from 0 (closed) to 1 (open) and is handed to the progress
// func every frame, which the primitives use for backdrop and fade alpha.
type Animator struct {
	machine *Machine
	cfg     TransitionConfig
	easing  ease.TweenFunc
	logger  *zap.Logger

	lookup     func(identity string) *Node
	onProgress func(progress float64, mode MorphMode)

	tween    *RectTween
	episode  *Episode
	node     *Node
	mode     MorphMode
	progress float64
	handle   TransitionHandle
	attached bool
}

// AnimatorOption configures an Animator.
type AnimatorOption func(*Animator)

// WithAnimatorLogger sets the animator's logger.
func WithAnimatorLogger(l *zap.Logger) AnimatorOption {
	return func(a *Animator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMorphTarget sets how the animator finds the node presenting an
// identity on the content side. Without it only progress is animated.
func WithMorphTarget(fn func(identity string) *Node) AnimatorOption {
	return func(a *Animator) { a.lookup = fn }
}

// WithProgressFunc registers fn to receive progress after every change.
func WithProgressFunc(fn func(progress float64, mode MorphMode)) AnimatorOption {
	return func(a *Animator) { a.onProgress = fn }
}

// NewAnimator creates an animator for m. An unknown easing name falls back
// to Linear with a warning.
func NewAnimator(m *Machine, cfg TransitionConfig, opts ...AnimatorOption) *Animator {
	a := &Animator{
		machine: m,
		cfg:     cfg.merge(DefaultTransitionConfig()),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	fn, err := EaseFunc(a.cfg.Ease)
	if err != nil {
		a.logger.Warn("falling back to linear easing", zap.Error(err))
		fn = ease.Linear
	}
	a.easing = fn
	return a
}

// Attach subscribes the animator to its machine. Roots call Observe from
// their own listener instead, so the portal is mounted before the target
// geometry is read.
func (a *Animator) Attach() {
	if a.attached {
		return
	}
	a.attached = true
	a.handle = a.machine.OnTransition(a.Observe)
}

// Detach undoes Attach and drops any running tween.
func (a *Animator) Detach() {
	if !a.attached {
		return
	}
	a.attached = false
	a.handle.Remove()
	a.cancel()
}

// Config returns the effective transition settings.
func (a *Animator) Config() TransitionConfig { return a.cfg }

// Progress returns the current open fraction.
func (a *Animator) Progress() float64 { return a.progress }

// Running reports whether an episode is being animated.
func (a *Animator) Running() bool { return a.tween != nil }

// Observe reacts to one machine transition.
func (a *Animator) Observe(tr Transition) {
	switch tr.To {
	case StateOpening, StateClosing:
		a.start(tr)
	case StateOpen:
		a.cancel()
		a.setProgress(1)
	case StateClosed:
		a.cancel()
		a.setProgress(0)
	}
}

func (a *Animator) start(tr Transition) {
	ep := tr.Episode
	if ep == nil {
		return
	}
	// Source first: for an interrupted opening it reads the override this
	// animator is still holding on the content item.
	src, _ := ep.Source()
	dst, _ := ep.Target()
	mode := ep.Mode()

	a.release()
	a.episode = ep
	a.mode = mode
	if mode == MorphGeometry && a.lookup != nil {
		a.node = a.lookup(tr.Identity)
	}

	toP, dur := 1.0, a.cfg.OpenDuration
	if tr.To == StateClosing {
		toP, dur = 0, a.cfg.CloseDuration
	}
	a.tween = NewRectTween(src, dst, a.progress, toP, dur, a.easing)
	if a.node != nil {
		a.node.SetBoundsOverride(src)
	}
	a.logger.Debug("episode started",
		zap.Stringer("kind", tr.To),
		zap.String("item", tr.Identity),
		zap.Bool("fade", mode == MorphFade),
		zap.Bool("interrupted", ep.Interrupted()),
		zap.Float32("duration", dur))
	a.setProgress(a.progress)
}

// Update advances the running tween by dt seconds. When it arrives the
// machine is told, unless the episode has already been superseded.
func (a *Animator) Update(dt float32) {
	if a.tween == nil {
		return
	}
	a.tween.Update(dt)
	if a.node != nil {
		a.node.SetBoundsOverride(a.tween.Rect)
	}
	a.setProgress(a.tween.Progress)
	if !a.tween.Done {
		return
	}
	ep := a.episode
	a.tween = nil
	a.episode = nil
	if a.machine.Episode() == ep {
		a.machine.AnimationComplete()
	}
}

// cancel stops the running tween without completing it.
func (a *Animator) cancel() {
	a.tween = nil
	a.episode = nil
	a.release()
}

// release hands the morphed node back to its layout.
func (a *Animator) release() {
	if a.node != nil {
		a.node.ClearBoundsOverride()
		a.node = nil
	}
}

func (a *Animator) setProgress(p float64) {
	a.progress = clamp01(p)
	if a.onProgress != nil {
		a.onProgress(a.progress, a.mode)
	}
}
