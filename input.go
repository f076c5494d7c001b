package morph

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// KeyContext carries key press data.
type KeyContext struct {
	Key       ebiten.Key
	Modifiers KeyModifiers
}

// --- Pointer state ---

type pointerState struct {
	down    bool
	lastX   float64
	lastY   float64
	hitNode *Node
	button  MouseButton // button captured at press time
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type clickHandler struct {
	id uint32
	fn func(ClickContext)
}

type keyHandler struct {
	id  uint32
	key ebiten.Key
	fn  func(KeyContext)
}

type handlerRegistry struct {
	pointerDown []pointerHandler
	pointerUp   []pointerHandler
	click       []clickHandler
	key         []keyHandler
	nextID      uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// Calling Remove more than once is harmless.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		h.reg.pointerDown = removeByID(h.reg.pointerDown, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventPointerUp:
		h.reg.pointerUp = removeByID(h.reg.pointerUp, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventClick:
		h.reg.click = removeByID(h.reg.click, h.id, func(c clickHandler) uint32 { return c.id })
	case EventKey:
		h.reg.key = removeByID(h.reg.key, h.id, func(k keyHandler) uint32 { return k.id })
	}
}

// removeByID deletes the entry with the given id, zeroing the vacated tail
// slot so the backing array does not retain the callback.
func removeByID[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Scene-level event registration ---

// OnPointerDown registers a scene-level callback for pointer down events.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerDown = append(s.handlers.pointerDown, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerDown}
}

// OnPointerUp registers a scene-level callback for pointer up events.
func (s *Scene) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerUp = append(s.handlers.pointerUp, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerUp}
}

// OnClick registers a scene-level callback for click events.
func (s *Scene) OnClick(fn func(ClickContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.click = append(s.handlers.click, clickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventClick}
}

// OnKey registers a callback fired when key is pressed.
func (s *Scene) OnKey(key ebiten.Key, fn func(KeyContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.key = append(s.handlers.key, keyHandler{id: id, key: key, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventKey}
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set; otherwise the node's layout size. Nodes with no
// shape and no size are not hit-testable.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	if n.Width == 0 && n.Height == 0 {
		return false
	}
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// collectInteractable walks the tree in painter order (DFS, ZIndex-sorted),
// appending interactable nodes to buf. Skips Visible=false or
// Interactable=false subtrees.
func collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || !n.Interactable {
		return buf
	}
	if n.HitShape != nil || n.Width != 0 || n.Height != 0 {
		buf = append(buf, n)
	}
	for _, child := range paintOrder(n) {
		buf = collectInteractable(child, buf)
	}
	return buf
}

// hitTest finds the topmost interactable node at (worldX, worldY). The
// overlay is above the page, so it is collected last.
func (s *Scene) hitTest(worldX, worldY float64) *Node {
	s.refreshTransforms()
	s.hitBuf = collectInteractable(s.root, s.hitBuf[:0])
	s.hitBuf = collectInteractable(s.overlay, s.hitBuf)

	// Iterate backward (reverse painter order): topmost visual node first.
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		if n.hasOverride {
			if n.override.Contains(worldX, worldY) {
				return n
			}
			continue
		}
		lx, ly := n.WorldToLocal(worldX, worldY)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Scene.Update to handle keys and the mouse.
// A queued synthetic event replaces real input for the frame.
func (s *Scene) processInput() {
	if s.processInjectedInput() {
		return
	}

	mods := readModifiers()
	s.keyBuf = inpututil.AppendJustPressedKeys(s.keyBuf[:0])
	for _, k := range s.keyBuf {
		s.fireKey(k, mods)
	}

	mx, my := ebiten.CursorPosition()
	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}
	s.processPointer(float64(mx), float64(my), pressed, button, mods)
}

// processPointer runs the press/release/click state machine for the mouse.
func (s *Scene) processPointer(wx, wy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointer

	switch {
	case pressed && !ps.down:
		target := s.hitTest(wx, wy)
		ps.down = true
		ps.button = button
		ps.hitNode = target
		s.firePointerDown(target, wx, wy, button, mods)
	case !pressed && ps.down:
		target := s.hitTest(wx, wy)
		if ps.hitNode != nil && ps.hitNode == target {
			s.fireClick(target, wx, wy, ps.button, mods)
		}
		s.firePointerUp(target, wx, wy, ps.button, mods)
		ps.down = false
		ps.hitNode = nil
	}
	ps.lastX = wx
	ps.lastY = wy
}

// --- Event dispatch ---

func pointerContext(node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) PointerContext {
	ctx := PointerContext{
		Node: node, GlobalX: wx, GlobalY: wy,
		Button: button, Modifiers: mods,
	}
	if node != nil {
		ctx.LocalX, ctx.LocalY = node.WorldToLocal(wx, wy)
		ctx.UserData = node.UserData
	}
	return ctx
}

func (s *Scene) firePointerDown(node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	ctx := pointerContext(node, wx, wy, button, mods)
	// Scene-level handlers first.
	for _, h := range append([]pointerHandler(nil), s.handlers.pointerDown...) {
		h.fn(ctx)
	}
	// Per-node callback.
	if node != nil && node.OnPointerDown != nil {
		node.OnPointerDown(ctx)
	}
}

func (s *Scene) firePointerUp(node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	ctx := pointerContext(node, wx, wy, button, mods)
	for _, h := range append([]pointerHandler(nil), s.handlers.pointerUp...) {
		h.fn(ctx)
	}
	if node != nil && node.OnPointerUp != nil {
		node.OnPointerUp(ctx)
	}
}

func (s *Scene) fireClick(node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	p := pointerContext(node, wx, wy, button, mods)
	ctx := ClickContext{
		Node: node, UserData: p.UserData,
		GlobalX: wx, GlobalY: wy, LocalX: p.LocalX, LocalY: p.LocalY,
		Button: button, Modifiers: mods,
	}
	for _, h := range append([]clickHandler(nil), s.handlers.click...) {
		h.fn(ctx)
	}
	if node != nil && node.OnClick != nil {
		node.OnClick(ctx)
	}
}

func (s *Scene) fireKey(key ebiten.Key, mods KeyModifiers) {
	ctx := KeyContext{Key: key, Modifiers: mods}
	// Handlers may remove themselves (a portal closing on Escape).
	for _, h := range append([]keyHandler(nil), s.handlers.key...) {
		if h.key == key {
			h.fn(ctx)
		}
	}
}
