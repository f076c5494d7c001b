package ecs

import (
	"github.com/phanxgames/morph"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// TransitionEventType is the Donburi event type for morph transitions.
// Subscribe to it and call ProcessEvents from a system to receive them.
var TransitionEventType = events.NewEventType[morph.TransitionEvent]()

// RootStateData mirrors the last known state of one transition root.
type RootStateData struct {
	RootID   string
	State    morph.State
	Identity string
	Path     string
}

// RootState is the component carried by the entity of each root.
var RootState = donburi.NewComponentType[RootStateData]()

// rootStates finds every root entity.
var rootStates = donburi.NewQuery(filter.Contains(RootState))

// DonburiSink publishes transitions into a Donburi world.
type DonburiSink struct {
	world    donburi.World
	entities map[string]donburi.Entity
}

// NewDonburiSink creates a sink writing to world.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, entities: make(map[string]donburi.Entity)}
}

var _ morph.EventSink = (*DonburiSink)(nil)

// EmitTransition queues ev on TransitionEventType and updates the root's
// RootState entity, creating it on first sight.
func (s *DonburiSink) EmitTransition(ev morph.TransitionEvent) {
	TransitionEventType.Publish(s.world, ev)

	e, ok := s.entities[ev.RootID]
	if !ok || !s.world.Valid(e) {
		e = s.world.Create(RootState)
		s.entities[ev.RootID] = e
	}
	data := RootStateData{RootID: ev.RootID, State: ev.To}
	if ev.To != morph.StateClosed {
		data.Identity = ev.Identity
		data.Path = ev.Path
	}
	RootState.SetValue(s.world.Entry(e), data)
}

// Entity returns the entity tracking rootID.
func (s *DonburiSink) Entity(rootID string) (donburi.Entity, bool) {
	e, ok := s.entities[rootID]
	if !ok || !s.world.Valid(e) {
		return 0, false
	}
	return e, true
}

// OpenRoots returns the ids of roots whose last state was not closed.
func OpenRoots(world donburi.World) []string {
	var ids []string
	rootStates.Each(world, func(entry *donburi.Entry) {
		rs := RootState.Get(entry)
		if rs.State != morph.StateClosed {
			ids = append(ids, rs.RootID)
		}
	})
	return ids
}
