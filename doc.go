// Package morph is a shared-element modal transition library for [Ebitengine].
//
// A compact trigger element (a thumbnail, a grid cell) morphs into an
// expanded content overlay and back, while the open/closed state stays in
// sync with a navigable location so deep links, back/forward and reloads all
// resolve to the same visual state.
//
// # Quick start
//
//	scene := morph.NewScene()
//	history := morph.NewHistory(morph.Location{Page: "/work"})
//	host := morph.NewHost(scene, history, morph.WithViewport(640, 480))
//
//	root := morph.NewRoot(host, "work", "", morph.DefaultTransitionConfig())
//	thumb := morph.NewItem("proj-1", 80, 60)
//	trigger := morph.NewTrigger(root, thumb, morph.WithTriggerPath("proj-1"))
//	root.Node().AddChild(trigger.Node())
//
//	portal := morph.NewPortal(root)
//	portal.Add(morph.NewBackground(root).Node())
//	content := morph.NewContent(root)
//	content.Node().AddChild(morph.NewItem("proj-1", 480, 320).Node())
//	portal.Add(content.Node())
//
//	scene.Root().AddChild(root.Node())
//	morph.Run(host, morph.RunConfig{Title: "Gallery", Width: 640, Height: 480})
//
// Containers between the scene root and a trigger must set Interactable for
// clicks to reach it; the primitives set it on their own nodes.
//
// # Lifecycle
//
// Every [Root] owns a [Machine] with four states: [StateClosed],
// [StateOpening], [StateOpen] and [StateClosing]. [Machine.Open] and
// [Machine.Close] are the external signals; [Machine.AnimationComplete] is
// called by the [Animator] once per opening or closing episode. Calls that
// do not apply to the current state are dropped silently.
//
// # Geometry
//
// Each [Item] registers a live [GeometryProvider] in the page-wide
// [Registry] under its identity and side (trigger or content). Episodes read
// the registry once at the start of a transition to fix their end points.
// Missing trigger geometry falls back to the viewport center; missing
// content geometry degrades the transition to a plain fade.
//
// # Locations
//
// A [Router] keeps one [LocationEntry] per open root in the [Navigator]. A
// page loaded at a location that already names a root opens that root
// directly in [StateOpen] with no animation (a cold open).
//
// [Ebitengine]: https://ebitengine.org
package morph
