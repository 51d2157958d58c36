// Package dialog collects a lesson over several chat messages and commits it
// to the timetable as an addition or a deletion.
package dialog

import (
	"time"

	"github.com/m3rciful/schedulebot/internal/lesson"
)

// Intent says what happens to the collected lesson.
type Intent int

const (
	// IntentAdd appends the lesson to the timetable.
	IntentAdd Intent = iota + 1
	// IntentDelete removes every equal lesson from the timetable.
	IntentDelete
)

func (i Intent) String() string {
	switch i {
	case IntentAdd:
		return "add"
	case IntentDelete:
		return "delete"
	}
	return "none"
}

// Slot is one field of the pending lesson, in collection order.
type Slot int

const (
	SlotName Slot = iota
	SlotStart
	SlotDuration
	SlotType
	SlotLocation
	// SlotNone means every slot is filled.
	SlotNone
)

func (s Slot) String() string {
	switch s {
	case SlotName:
		return "name"
	case SlotStart:
		return "start"
	case SlotDuration:
		return "duration"
	case SlotType:
		return "type"
	case SlotLocation:
		return "location"
	}
	return "none"
}

// Partial is a lesson under construction; nil fields are not filled yet.
type Partial struct {
	Name     *string
	Start    *time.Time
	Duration *int64
	Type     *string
	Location *string
}

// Next returns the first unfilled slot.
func (p Partial) Next() Slot {
	switch {
	case p.Name == nil:
		return SlotName
	case p.Start == nil:
		return SlotStart
	case p.Duration == nil:
		return SlotDuration
	case p.Type == nil:
		return SlotType
	case p.Location == nil:
		return SlotLocation
	}
	return SlotNone
}

// Lesson returns the completed lesson once every slot is filled.
func (p Partial) Lesson() (lesson.Lesson, bool) {
	if p.Next() != SlotNone {
		return lesson.Lesson{}, false
	}
	return lesson.Lesson{
		Name:     *p.Name,
		Type:     *p.Type,
		Duration: *p.Duration,
		Location: *p.Location,
		Start:    *p.Start,
	}, true
}

// State is either Idle or Collecting(intent, partial). The intent and the
// partial lesson are only reachable while collecting.
type State struct {
	collecting bool
	intent     Intent
	partial    Partial
}

// Idle is the initial and terminal state.
func Idle() State {
	return State{}
}

// Collecting starts a dialogue with every slot unset.
func Collecting(intent Intent) State {
	return State{collecting: true, intent: intent}
}

// IsIdle reports whether no dialogue is in progress.
func (s State) IsIdle() bool {
	return !s.collecting
}

// Intent returns the dialogue intent while collecting.
func (s State) Intent() (Intent, bool) {
	if !s.collecting {
		return 0, false
	}
	return s.intent, true
}

// Partial returns the pending lesson while collecting.
func (s State) Partial() (Partial, bool) {
	if !s.collecting {
		return Partial{}, false
	}
	return s.partial, true
}
