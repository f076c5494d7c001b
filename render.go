package morph

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
)

// Draw paints the page tree and then the overlay onto screen. Each visible
// node with a sized, non-transparent Color is drawn as a filled rectangle
// at its world bounds (or its bounds override while morphing).
func (s *Scene) Draw(screen *ebiten.Image) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA(1))
	}
	s.refreshTransforms()

	b := screen.Bounds()
	clip := Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())}

	var drawn int
	drawn += drawNode(screen, clip, s.root)
	drawn += drawNode(screen, clip, s.overlay)

	if s.debug {
		s.logger.Debug("scene draw",
			zap.Int("rects", drawn),
			zap.Duration("elapsed", time.Since(t0)))
	}
}

// drawNode walks n depth-first in paint order and returns how many
// rectangles it submitted. Rectangles outside clip are skipped; their
// children are still visited since they may lie elsewhere.
func drawNode(screen *ebiten.Image, clip Rect, n *Node) int {
	if !n.Visible || n.worldAlpha <= 0 {
		return 0
	}
	var drawn int
	if n.Color.A > 0 {
		r := n.drawBounds()
		if r.Width > 0 && r.Height > 0 && r.Intersects(clip) {
			vector.DrawFilledRect(screen,
				float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height),
				n.Color.toRGBA(n.worldAlpha), false)
			drawn++
		}
	}
	for _, child := range paintOrder(n) {
		drawn += drawNode(screen, clip, child)
	}
	return drawn
}

// drawBounds is WorldBounds without the ancestor refresh; Draw has already
// brought every transform up to date.
func (n *Node) drawBounds() Rect {
	if n.hasOverride {
		return n.override
	}
	x0, y0 := n.LocalToWorld(0, 0)
	x1, y1 := n.LocalToWorld(n.Width, n.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
