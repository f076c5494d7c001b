package morph

import "sort"

// HitShape is used for custom hit testing regions in local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// PointerContext carries pointer event data.
type PointerContext struct {
	Node      *Node
	UserData  any
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
}

// ClickContext carries click event data.
type ClickContext struct {
	Node      *Node
	UserData  any
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
}

// --- ID counter ---

// nodeIDCounter is a plain counter; morph runs on one goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the scene graph element every primitive mounts. Width and Height
// are the local layout size; a node paints itself as a filled rectangle when
// its Color has non-zero alpha.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Layout (local). Direct writes are picked up when the node is next
	// marked dirty by SetPosition or SetAlpha; new nodes start dirty.
	X, Y          float64
	Width, Height float64
	ScaleX        float64
	ScaleY        float64

	// Computed (unexported, refreshed by updateWorldTransform)
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool
	Color        Color
	ZIndex       int

	// Metadata
	UserData any

	// Hit testing
	HitShape HitShape

	// World-space bounds written by the animator while an item morphs.
	override    Rect
	hasOverride bool

	// Per-node callbacks (nil by default)
	OnPointerDown func(PointerContext)
	OnPointerUp   func(PointerContext)
	OnClick       func(ClickContext)

	// Attach lifecycle, used by the primitives as mount/unmount signals.
	scene    *Scene
	onAttach func()
	onDetach func()
	role     nodeRole
	owner    any

	// Internal
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node // reused buffer for ZIndex-sorted traversal order
}

// nodeRole tags nodes created by the composition primitives so ancestry
// lookups can find the owning trigger, content or root.
type nodeRole uint8

const (
	roleNone nodeRole = iota
	roleRoot
	roleTrigger
	rolePortalLayer
	roleContent
	roleItem
)

// NewContainer creates a node with no size and no fill.
func NewContainer(name string) *Node {
	n := &Node{
		ID:             nextNodeID(),
		Name:           name,
		ScaleX:         1,
		ScaleY:         1,
		Alpha:          1,
		Visible:        true,
		transformDirty: true,
		childrenSorted: true,
	}
	return n
}

// NewRect creates a filled rectangle node of the given size.
func NewRect(name string, width, height float64, c Color) *Node {
	n := NewContainer(name)
	n.Width = width
	n.Height = height
	n.Color = c
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("morph: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("morph: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
	if n.scene != nil {
		attachSubtree(child, n.scene)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("morph: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("morph: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	if index < 0 || index > len(n.children) {
		panic("morph: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.childrenSorted = false
	markSubtreeDirty(child)
	if n.scene != nil {
		attachSubtree(child, n.scene)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("morph: child's parent is not this node")
	}
	if child.scene != nil {
		detachSubtree(child)
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.RemoveChild(n.children[len(n.children)-1])
	}
	n.sortedChildren = n.sortedChildren[:0]
	n.childrenSorted = true
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// IsAttached reports whether the node is reachable from a scene.
func (n *Node) IsAttached() bool {
	return n.scene != nil
}

// Scene returns the scene the node is attached to, or nil.
func (n *Node) Scene() *Scene {
	return n.scene
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.HitShape = nil
	n.UserData = nil
	n.OnPointerDown = nil
	n.OnPointerUp = nil
	n.OnClick = nil
	n.onAttach = nil
	n.onDetach = nil
	n.owner = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// attachSubtree links node and its descendants to s. Hooks fire children
// first, so a primitive sees its whole declared subtree attached.
func attachSubtree(node *Node, s *Scene) {
	node.scene = s
	for _, child := range append([]*Node(nil), node.children...) {
		attachSubtree(child, s)
	}
	if node.onAttach != nil && node.scene == s {
		node.onAttach()
	}
}

// detachSubtree unlinks node and its descendants. Hooks fire parents first.
func detachSubtree(node *Node) {
	if node.onDetach != nil {
		node.onDetach()
	}
	for _, child := range append([]*Node(nil), node.children...) {
		detachSubtree(child)
	}
	node.scene = nil
}

// nearestAncestor walks up from n (inclusive) to the first node with one of
// the given roles.
func nearestAncestor(n *Node, roles ...nodeRole) *Node {
	for p := n; p != nil; p = p.Parent {
		for _, r := range roles {
			if p.role == r {
				return p
			}
		}
	}
	return nil
}

// rebuildSortedChildren refreshes the ZIndex-ordered traversal buffer.
func rebuildSortedChildren(n *Node) {
	n.sortedChildren = append(n.sortedChildren[:0], n.children...)
	sort.SliceStable(n.sortedChildren, func(i, j int) bool {
		return n.sortedChildren[i].ZIndex < n.sortedChildren[j].ZIndex
	})
	n.childrenSorted = true
}

// paintOrder returns children in ZIndex order, stable by insertion.
func paintOrder(n *Node) []*Node {
	if !n.childrenSorted {
		rebuildSortedChildren(n)
	}
	if n.sortedChildren == nil {
		return n.children
	}
	return n.sortedChildren
}
