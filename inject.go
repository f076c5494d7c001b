package morph

import "github.com/hajimehoshi/ebiten/v2"

type syntheticKind uint8

const (
	syntheticPress syntheticKind = iota
	syntheticRelease
	syntheticKey
)

// syntheticEvent represents a single injected input event. Screen and world
// coordinates coincide: the scene has no camera.
type syntheticEvent struct {
	kind   syntheticKind
	x, y   float64
	button MouseButton
	key    ebiten.Key
}

// InjectPress queues a pointer press event at the given coordinates
// (left button). The event is consumed on the next frame's processInput call.
func (s *Scene) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		kind: syntheticPress, x: x, y: y, button: MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release event at the given coordinates.
func (s *Scene) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{
		kind: syntheticRelease, x: x, y: y, button: MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two frames.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectKey queues a key press. Consumes one frame.
func (s *Scene) InjectKey(key ebiten.Key) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: syntheticKey, key: key})
}

// PendingInput reports how many injected events are still queued.
func (s *Scene) PendingInput() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the regular dispatch path. Returns true if an event was consumed
// (real input should be skipped).
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	switch evt.kind {
	case syntheticKey:
		s.fireKey(evt.key, 0)
	case syntheticPress:
		s.processPointer(evt.x, evt.y, true, evt.button, 0)
	case syntheticRelease:
		s.processPointer(evt.x, evt.y, false, evt.button, 0)
	}
	return true
}
