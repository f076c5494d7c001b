package morph

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestHitRectContains(t *testing.T) {
	r := HitRect{X: 10, Y: 10, Width: 20, Height: 20}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 15, 15, true},
		{"top-left edge", 10, 10, true},
		{"bottom-right edge", 30, 30, true},
		{"left", 9, 15, false},
		{"below", 15, 31, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestNodeContainsLocal_DefaultSize(t *testing.T) {
	n := NewContainer("n")
	n.SetSize(40, 30)
	if !nodeContainsLocal(n, 20, 15) {
		t.Error("center should hit")
	}
	if nodeContainsLocal(n, 41, 15) {
		t.Error("outside should miss")
	}
}

func TestNodeContainsLocal_ContainerNoShape(t *testing.T) {
	if nodeContainsLocal(NewContainer("c"), 0, 0) {
		t.Error("unsized container without hit shape should never hit")
	}
}

func interactiveRect(name string, x, y, w, h float64) *Node {
	n := NewRect(name, w, h, Color{A: 1})
	n.SetPosition(x, y)
	n.Interactable = true
	return n
}

func TestHitTest_TopmostNode(t *testing.T) {
	s := NewScene()
	bottom := interactiveRect("bottom", 0, 0, 100, 100)
	top := interactiveRect("top", 0, 0, 100, 100)
	s.Root().AddChild(bottom)
	s.Root().AddChild(top)

	if got := s.hitTest(50, 50); got != top {
		t.Errorf("hitTest = %v, want top", got.Name)
	}
}

func TestHitTest_OverlayAbovePage(t *testing.T) {
	s := NewScene()
	page := interactiveRect("page", 0, 0, 100, 100)
	over := interactiveRect("over", 0, 0, 100, 100)
	s.Root().AddChild(page)
	s.Overlay().AddChild(over)

	if got := s.hitTest(50, 50); got != over {
		t.Errorf("hitTest = %v, want overlay node", got.Name)
	}
}

func TestHitTest_SkipsInvisible(t *testing.T) {
	s := NewScene()
	bottom := interactiveRect("bottom", 0, 0, 100, 100)
	top := interactiveRect("top", 0, 0, 100, 100)
	top.Visible = false
	s.Root().AddChild(bottom)
	s.Root().AddChild(top)

	if got := s.hitTest(50, 50); got != bottom {
		t.Error("invisible node should be skipped")
	}
}

func TestHitTest_SkipsNonInteractableSubtree(t *testing.T) {
	s := NewScene()
	group := NewContainer("group")
	child := interactiveRect("child", 0, 0, 100, 100)
	group.AddChild(child)
	s.Root().AddChild(group)

	if got := s.hitTest(50, 50); got != nil {
		t.Errorf("hitTest = %v, want nil", got.Name)
	}
	group.Interactable = true
	if got := s.hitTest(50, 50); got != child {
		t.Error("child should be hit once its parent is interactable")
	}
}

func TestHitTest_RespectsZIndex(t *testing.T) {
	s := NewScene()
	a := interactiveRect("a", 0, 0, 100, 100)
	b := interactiveRect("b", 0, 0, 100, 100)
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	a.SetZIndex(10)

	if got := s.hitTest(50, 50); got != a {
		t.Errorf("hitTest = %v, want a", got.Name)
	}
}

func TestHitTest_UsesBoundsOverride(t *testing.T) {
	s := NewScene()
	n := interactiveRect("n", 0, 0, 10, 10)
	s.Root().AddChild(n)
	n.SetBoundsOverride(Rect{X: 200, Y: 200, Width: 50, Height: 50})

	if got := s.hitTest(5, 5); got != nil {
		t.Error("layout rect should be ignored while overridden")
	}
	if got := s.hitTest(220, 220); got != n {
		t.Error("override rect should hit")
	}
}

func TestHitTest_TransformedNode(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.Interactable = true
	parent.SetPosition(100, 100)
	parent.ScaleX, parent.ScaleY = 2, 2
	child := interactiveRect("child", 0, 0, 10, 10)
	parent.AddChild(child)
	s.Root().AddChild(parent)

	if got := s.hitTest(115, 115); got != child {
		t.Error("scaled child should cover (115, 115)")
	}
	if got := s.hitTest(125, 125); got != nil {
		t.Error("(125, 125) is past the scaled child")
	}
}

func TestClickDetection(t *testing.T) {
	s := NewScene()
	n := interactiveRect("btn", 0, 0, 50, 50)
	s.Root().AddChild(n)

	clicks := 0
	n.OnClick = func(ctx ClickContext) {
		clicks++
		if ctx.Node != n {
			t.Error("ClickContext.Node should be the button")
		}
	}
	s.processPointer(10, 10, true, MouseButtonLeft, 0)
	s.processPointer(10, 10, false, MouseButtonLeft, 0)

	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
}

func TestClickNotFiredOnDifferentNode(t *testing.T) {
	s := NewScene()
	a := interactiveRect("a", 0, 0, 50, 50)
	b := interactiveRect("b", 100, 0, 50, 50)
	s.Root().AddChild(a)
	s.Root().AddChild(b)

	clicked := false
	a.OnClick = func(ClickContext) { clicked = true }
	b.OnClick = func(ClickContext) { clicked = true }

	s.processPointer(10, 10, true, MouseButtonLeft, 0)
	s.processPointer(110, 10, false, MouseButtonLeft, 0)

	if clicked {
		t.Error("release on another node must not click")
	}
}

func TestCallbackOrder_SceneThenNode(t *testing.T) {
	s := NewScene()
	n := interactiveRect("n", 0, 0, 50, 50)
	s.Root().AddChild(n)

	var order []string
	s.OnPointerDown(func(PointerContext) { order = append(order, "scene") })
	n.OnPointerDown = func(PointerContext) { order = append(order, "node") }

	s.processPointer(10, 10, true, MouseButtonLeft, 0)

	if len(order) != 2 || order[0] != "scene" || order[1] != "node" {
		t.Errorf("order = %v, want [scene node]", order)
	}
}

func TestContextCoordinates(t *testing.T) {
	s := NewScene()
	n := interactiveRect("n", 100, 50, 50, 50)
	s.Root().AddChild(n)

	var got PointerContext
	n.OnPointerDown = func(ctx PointerContext) { got = ctx }
	s.processPointer(110, 70, true, MouseButtonLeft, 0)

	assertNear(t, "GlobalX", got.GlobalX, 110)
	assertNear(t, "LocalX", got.LocalX, 10)
	assertNear(t, "LocalY", got.LocalY, 20)
}

func TestCallbackHandle_Remove(t *testing.T) {
	s := NewScene()
	n := interactiveRect("n", 0, 0, 50, 50)
	s.Root().AddChild(n)

	count := 0
	h := s.OnClick(func(ClickContext) { count++ })
	s.processPointer(10, 10, true, MouseButtonLeft, 0)
	s.processPointer(10, 10, false, MouseButtonLeft, 0)
	h.Remove()
	h.Remove() // harmless
	s.processPointer(10, 10, true, MouseButtonLeft, 0)
	s.processPointer(10, 10, false, MouseButtonLeft, 0)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestKeyHandlers(t *testing.T) {
	s := NewScene()
	var esc, enter int
	h := s.OnKey(ebiten.KeyEscape, func(KeyContext) { esc++ })
	s.OnKey(ebiten.KeyEnter, func(KeyContext) { enter++ })

	s.fireKey(ebiten.KeyEscape, 0)
	s.fireKey(ebiten.KeyEscape, 0)
	s.fireKey(ebiten.KeyEnter, 0)
	h.Remove()
	s.fireKey(ebiten.KeyEscape, 0)

	if esc != 2 || enter != 1 {
		t.Errorf("esc = %d, enter = %d; want 2, 1", esc, enter)
	}
}

func TestKeyHandlerCanRemoveItself(t *testing.T) {
	s := NewScene()
	var fired []string
	var h CallbackHandle
	h = s.OnKey(ebiten.KeyEscape, func(KeyContext) {
		fired = append(fired, "first")
		h.Remove()
	})
	s.OnKey(ebiten.KeyEscape, func(KeyContext) { fired = append(fired, "second") })

	s.fireKey(ebiten.KeyEscape, 0)
	s.fireKey(ebiten.KeyEscape, 0)

	if len(fired) != 3 {
		t.Errorf("fired = %v, want [first second second]", fired)
	}
}
