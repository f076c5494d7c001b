package morph

import (
	"fmt"

	"go.uber.org/zap"
)

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode; release builds skip it.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("morph debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugMaxTreeDepth is the depth past which DumpTree stops descending.
const debugMaxTreeDepth = 32

// DumpTree logs the scene's page and overlay trees at debug level, one entry
// per node, with world bounds and primitive role.
func (s *Scene) DumpTree() {
	s.refreshTransforms()
	dumpNode(s.logger, s.root, 0)
	dumpNode(s.logger, s.overlay, 0)
}

func dumpNode(l *zap.Logger, n *Node, depth int) {
	if depth > debugMaxTreeDepth {
		l.Warn("tree depth limit reached", zap.String("node", n.Name), zap.Int("depth", depth))
		return
	}
	b := n.drawBounds()
	l.Debug("node",
		zap.Int("depth", depth),
		zap.String("name", n.Name),
		zap.Uint32("id", n.ID),
		zap.String("role", n.role.String()),
		zap.Bool("visible", n.Visible),
		zap.Float64("x", b.X),
		zap.Float64("y", b.Y),
		zap.Float64("w", b.Width),
		zap.Float64("h", b.Height),
		zap.Bool("override", n.hasOverride))
	for _, child := range n.children {
		dumpNode(l, child, depth+1)
	}
}

func (r nodeRole) String() string {
	switch r {
	case roleRoot:
		return "root"
	case roleTrigger:
		return "trigger"
	case rolePortalLayer:
		return "portal"
	case roleContent:
		return "content"
	case roleItem:
		return "item"
	default:
		return "none"
	}
}
