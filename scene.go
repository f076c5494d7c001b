package morph

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Scene is the top-level object that owns the page tree, the overlay layer
// portals mount into, and input state.
type Scene struct {
	root    *Node
	overlay *Node
	debug   bool
	logger  *zap.Logger

	// ClearColor fills the screen before drawing. Zero alpha skips the fill.
	ClearColor Color

	// Input state
	handlers    handlerRegistry
	pointer     pointerState
	hitBuf      []*Node
	injectQueue []syntheticEvent
	keyBuf      []ebiten.Key
}

// NewScene creates a new scene with a pre-created root container and an
// overlay container drawn above it.
func NewScene() *Scene {
	s := &Scene{logger: zap.NewNop()}
	s.root = NewContainer("root")
	s.root.Interactable = true
	s.overlay = NewContainer("overlay")
	s.overlay.Interactable = true
	s.root.scene = s
	s.overlay.scene = s
	return s
}

// Root returns the scene's page container.
func (s *Scene) Root() *Node {
	return s.root
}

// Overlay returns the container drawn and hit-tested above the page. Portals
// mount their content here.
func (s *Scene) Overlay() *Node {
	return s.overlay
}

// SetLogger replaces the scene's logger. Nil restores the no-op logger.
func (s *Scene) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.logger = l
}

// Update refreshes world transforms and processes input. dt is accepted for
// symmetry with Host.Update; the scene itself has no timed state.
func (s *Scene) Update(dt float32) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	s.refreshTransforms()
	s.processInput()
	if s.debug {
		s.logger.Debug("scene update",
			zap.Float32("dt", dt),
			zap.Duration("elapsed", time.Since(t0)),
			zap.Int("hit_candidates", len(s.hitBuf)))
	}
}

func (s *Scene) refreshTransforms() {
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	updateWorldTransform(s.overlay, identityTransform, 1.0, false)
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics and per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply.
var globalDebug bool
