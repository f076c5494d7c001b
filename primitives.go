package morph

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Root is one independent modal concept on a page. It owns a Machine, the
// Router keeping it in step with the navigator and the Animator drawing it.
//
// A Root becomes live when its node is attached to the host's scene and is
// torn down, without close side effects, when the node is detached.
type Root struct {
	id   string
	path string
	host *Host
	node *Node

	machine  *Machine
	router   *Router
	animator *Animator
	logger   *zap.Logger

	paths        map[string]string
	triggers     []*Trigger
	portals      []*Portal
	backgrounds  []*Background
	contents     []*Content
	contentItems map[string]*Item

	hostHandle TransitionHandle
}

// NewRoot creates a root with the given id and default path. cfg tunes its
// animator; zero fields take their defaults.
func NewRoot(host *Host, rootID, path string, cfg TransitionConfig) *Root {
	r := &Root{
		id:           rootID,
		path:         path,
		host:         host,
		paths:        make(map[string]string),
		contentItems: make(map[string]*Item),
		logger:       host.logger.With(zap.String("root", rootID)),
	}
	r.node = NewContainer("root:" + rootID)
	r.node.Interactable = true
	r.node.role = roleRoot
	r.node.owner = r
	r.node.onAttach = r.mount
	r.node.onDetach = r.unmount

	r.machine = NewMachine(rootID, host.registry,
		WithMachineLogger(host.logger.Named("machine")),
		WithAnchor(host.DefaultGeometry))
	r.animator = NewAnimator(r.machine, cfg,
		WithAnimatorLogger(host.logger.Named("animator").With(zap.String("root", rootID))),
		WithMorphTarget(r.contentNode),
		WithProgressFunc(r.applyProgress))
	r.router = NewRouter(r.machine, host.nav,
		WithRouterLogger(host.logger.Named("router")),
		WithIdentityResolver(r.resolveIdentity))
	// First listener: portals must be mounted before the animator reads
	// the content geometry.
	r.machine.OnTransition(r.onTransition)
	return r
}

// ID returns the root id.
func (r *Root) ID() string { return r.id }

// Path returns the root's default path.
func (r *Root) Path() string { return r.path }

// Node returns the container to add triggers and page content to.
func (r *Root) Node() *Node { return r.node }

// Machine returns the root's state machine.
func (r *Root) Machine() *Machine { return r.machine }

// Animator returns the root's animator.
func (r *Root) Animator() *Animator { return r.animator }

// State returns the machine state.
func (r *Root) State() State { return r.machine.State() }

// Open opens identity at path. An empty path uses the root's default path.
func (r *Root) Open(identity, path string) {
	if path == "" {
		path = r.path
	}
	r.machine.Open(identity, path, false)
}

// Close closes the root if it is opening or open.
func (r *Root) Close() {
	r.machine.Close()
}

func (r *Root) mount() {
	r.host.addRoot(r)
	r.router.Attach()
}

func (r *Root) unmount() {
	r.machine.Reset()
	r.router.Detach()
	r.host.removeRoot(r)
}

// resolveIdentity maps a location path to the trigger item registered for
// it, or to the path itself.
func (r *Root) resolveIdentity(path string) string {
	if id, ok := r.paths[path]; ok {
		return id
	}
	return path
}

func (r *Root) contentNode(identity string) *Node {
	if it, ok := r.contentItems[identity]; ok {
		return it.node
	}
	return nil
}

func (r *Root) onTransition(tr Transition) {
	if tr.From == StateClosed && tr.To != StateClosed {
		for _, p := range r.portals {
			p.mount()
		}
		for _, t := range r.triggers {
			t.item.node.Visible = t.item.id != tr.Identity
		}
	}
	r.animator.Observe(tr)
	if tr.To == StateClosed {
		for _, p := range r.portals {
			p.unmount()
		}
		for _, t := range r.triggers {
			t.item.node.Visible = true
		}
	}
}

func (r *Root) applyProgress(p float64, mode MorphMode) {
	alpha := r.animator.Config().BackdropAlpha
	for _, b := range r.backgrounds {
		b.node.SetAlpha(p * alpha)
	}
	contentAlpha := 1.0
	if mode == MorphFade {
		contentAlpha = p
	}
	for _, c := range r.contents {
		c.node.SetAlpha(contentAlpha)
	}
}

// --- Trigger ---

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithTriggerPath sets the path the trigger opens. It defaults to the root's
// path, so a root with several triggers needs one distinct path per trigger
// for navigation to find the right item.
func WithTriggerPath(path string) TriggerOption {
	return func(t *Trigger) { t.path = path }
}

// Trigger is the collapsed, clickable side of a morph. It wraps exactly one
// Item; clicking it opens the root with that item's identity.
type Trigger struct {
	root *Root
	item *Item
	node *Node
	path string
}

// NewTrigger wraps item in a clickable trigger. Position the trigger with
// its Node. Panics if item is nil or already wrapped.
func NewTrigger(root *Root, item *Item, opts ...TriggerOption) *Trigger {
	if item == nil {
		panic("morph: trigger needs an item")
	}
	if item.node.Parent != nil {
		panic("morph: item " + item.id + " already has a parent")
	}
	t := &Trigger{root: root, item: item, path: root.path}
	for _, opt := range opts {
		opt(t)
	}
	t.node = NewContainer("trigger:" + item.id)
	t.node.Interactable = true
	t.node.role = roleTrigger
	t.node.owner = t
	t.node.HitShape = childBounds{child: item.node}
	t.node.AddChild(item.node)
	t.node.OnClick = func(ClickContext) {
		t.root.Open(t.item.id, t.path)
	}
	root.triggers = append(root.triggers, t)
	if prev, ok := root.paths[t.path]; ok && prev != item.id {
		// The first trigger keeps the path; route-driven opens resolve to it.
		root.logger.Warn("trigger path already taken, use WithTriggerPath",
			zap.String("path", t.path),
			zap.String("item", item.id),
			zap.String("owner", prev))
	} else {
		root.paths[t.path] = item.id
	}
	return t
}

// Node returns the trigger's node.
func (t *Trigger) Node() *Node { return t.node }

// Item returns the wrapped item.
func (t *Trigger) Item() *Item { return t.item }

// Path returns the path the trigger opens.
func (t *Trigger) Path() string { return t.path }

// childBounds hit-tests against a child's layout rect in parent space.
type childBounds struct {
	child *Node
}

func (c childBounds) Contains(x, y float64) bool {
	n := c.child
	return x >= n.X && x <= n.X+n.Width*n.ScaleX && y >= n.Y && y <= n.Y+n.Height*n.ScaleY
}

// --- Item ---

// Item presents one identity on one side of a morph. The side comes from
// its ancestry: inside a Trigger it is the trigger side, inside a Content it
// is the content side. Geometry is registered while the item is attached.
type Item struct {
	id   string
	node *Node
	side Side
	root *Root
	reg  Registration
}

// NewItem creates an item of the given size. Give it a Color through Node to
// make it visible.
func NewItem(id string, width, height float64) *Item {
	it := &Item{id: id}
	it.node = NewContainer("item:" + id)
	it.node.Width = width
	it.node.Height = height
	it.node.role = roleItem
	it.node.owner = it
	it.node.onAttach = it.mount
	it.node.onDetach = it.unmount
	return it
}

// ID returns the item identity.
func (it *Item) ID() string { return it.id }

// Node returns the item's node.
func (it *Item) Node() *Node { return it.node }

// Side returns the side the item registered on. Only meaningful while
// Registered is true.
func (it *Item) Side() Side { return it.side }

// Registered reports whether the item's geometry is in the registry.
func (it *Item) Registered() bool { return it.reg.Active() }

func (it *Item) mount() {
	var root *Root
	anc := nearestAncestor(it.node.Parent, roleTrigger, roleContent)
	switch {
	case anc == nil:
	case anc.role == roleTrigger:
		it.side = SideTrigger
		root = anc.owner.(*Trigger).root
	default:
		it.side = SideContent
		root = anc.owner.(*Content).root
	}
	if root == nil {
		it.node.Scene().logger.Warn("item outside any trigger or content, not registered",
			zap.String("item", it.id))
		return
	}
	it.root = root
	it.reg = root.host.registry.Register(it.id, it.side, NodeGeometry(it.node))
	if it.side == SideContent {
		root.contentItems[it.id] = it
	}
}

func (it *Item) unmount() {
	it.reg.Remove()
	it.reg = Registration{}
	if it.root != nil && it.side == SideContent && it.root.contentItems[it.id] == it {
		delete(it.root.contentItems, it.id)
	}
	it.root = nil
	it.node.ClearBoundsOverride()
}

// --- Portal ---

// Portal holds nodes that are mounted into the scene overlay while its root
// is not closed. They are removed only once StateClosed is reached, so a
// closing morph keeps its content geometry to the end. While mounted, Escape
// closes the root.
type Portal struct {
	root    *Root
	layer   *Node
	escape  CallbackHandle
	mounted bool
}

// NewPortal creates an empty portal for root.
func NewPortal(root *Root) *Portal {
	p := &Portal{root: root}
	p.layer = NewContainer("portal:" + root.id)
	p.layer.Interactable = true
	p.layer.role = rolePortalLayer
	p.layer.owner = root
	root.portals = append(root.portals, p)
	if root.machine.State() != StateClosed {
		p.mount()
	}
	return p
}

// Add appends nodes to the portal.
func (p *Portal) Add(nodes ...*Node) {
	for _, n := range nodes {
		p.layer.AddChild(n)
	}
}

// Layer returns the node mounted into the overlay.
func (p *Portal) Layer() *Node { return p.layer }

// Mounted reports whether the portal's layer is in the overlay.
func (p *Portal) Mounted() bool { return p.mounted }

func (p *Portal) mount() {
	if p.mounted {
		return
	}
	s := p.root.node.Scene()
	if s == nil {
		s = p.root.host.scene
	}
	p.mounted = true
	s.Overlay().AddChild(p.layer)
	p.escape = s.OnKey(ebiten.KeyEscape, func(KeyContext) {
		p.root.Close()
	})
}

func (p *Portal) unmount() {
	if !p.mounted {
		return
	}
	p.mounted = false
	p.escape.Remove()
	p.layer.RemoveFromParent()
}

// --- Background ---

// Background is a viewport-sized dismiss surface. Clicking it closes the
// root; its alpha follows the animation progress scaled by the root's
// backdrop alpha.
type Background struct {
	root *Root
	node *Node
}

// NewBackground creates a black backdrop covering the host viewport. Add it
// to a portal before the content.
func NewBackground(root *Root) *Background {
	w, h := root.host.Viewport()
	b := &Background{root: root}
	b.node = NewRect("background:"+root.id, w, h, Color{A: 1})
	b.node.Interactable = true
	b.node.Alpha = 0
	b.node.OnClick = func(ClickContext) {
		b.root.Close()
	}
	root.backgrounds = append(root.backgrounds, b)
	return b
}

// Node returns the background's node.
func (b *Background) Node() *Node { return b.node }

// --- Content ---

// Content is the expanded view. The Item inside it with the same id as the
// trigger's item is morphed; without one the whole content fades instead.
type Content struct {
	root *Root
	node *Node
}

// NewContent creates an empty content container. Once sized through Node it
// catches clicks that would otherwise reach the background.
func NewContent(root *Root) *Content {
	c := &Content{root: root}
	c.node = NewContainer("content:" + root.id)
	c.node.Interactable = true
	c.node.role = roleContent
	c.node.owner = c
	root.contents = append(root.contents, c)
	return c
}

// Node returns the content's node.
func (c *Content) Node() *Node { return c.node }

// Add appends children to the content.
func (c *Content) Add(nodes ...*Node) {
	for _, n := range nodes {
		c.node.AddChild(n)
	}
}
