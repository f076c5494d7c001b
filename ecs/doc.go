// Package ecs bridges morph transitions into a [Donburi] world.
//
// [NewDonburiSink] returns a [morph.EventSink] that publishes every
// transition as a [TransitionEventType] event and keeps one entity per root
// carrying a [RootState] component, so ECS systems can react to modals
// opening and closing without holding references to the roots.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	host := morph.NewHost(scene, history, morph.WithEventSink(sink))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
