package dialog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/m3rciful/schedulebot/core/telegram/format"
	"github.com/m3rciful/schedulebot/internal/lesson"
)

// ErrIdle is returned when input arrives while no dialogue is in progress.
var ErrIdle = errors.New("dialog: not collecting")

// Input is one inbound message of a dialogue.
type Input struct {
	Text string
	// NonText marks messages without text content (photos, stickers, ...).
	NonText bool
}

// ValidationError rejects an input without advancing the dialogue.
type ValidationError struct {
	Slot    Slot
	Message string
}

func (e *ValidationError) Error() string {
	return "dialog: invalid " + e.Slot.String() + ": " + e.Message
}

// Code satisfies the error-code convention used by handler summaries.
func (e *ValidationError) Code() string {
	return "invalid_" + e.Slot.String()
}

// Outcome is the result of feeding one input to a collecting state.
type Outcome struct {
	State State
	// Filled is the slot accepted by this step; SlotNone when rejected.
	Filled Slot
	// Rejected is set when the input failed validation; State is unchanged.
	Rejected *ValidationError
	// Completed holds the finished lesson; State is then Idle.
	Completed *lesson.Lesson
	// Intent of the dialogue the input belonged to.
	Intent Intent
}

// Advance fills the next slot of st with in. It never touches the store:
// a completed lesson is returned for the caller to commit.
func Advance(st State, in Input) (Outcome, error) {
	intent, ok := st.Intent()
	if !ok {
		return Outcome{State: st}, ErrIdle
	}
	p, _ := st.Partial()
	slot := p.Next()
	out := Outcome{State: st, Filled: SlotNone, Intent: intent}

	reject := func(msg string) (Outcome, error) {
		out.Rejected = &ValidationError{Slot: slot, Message: msg}
		return out, nil
	}

	if in.NonText {
		return reject(errNonText)
	}
	// Text slots keep the message as typed; the trimmed copy only validates.
	text := strings.TrimSpace(in.Text)

	switch slot {
	case SlotName:
		if text == "" {
			return reject(errEmpty)
		}
		p.Name = format.Ptr(in.Text)
	case SlotStart:
		start, err := lesson.ParseStart(text)
		if err != nil {
			return reject(errStart)
		}
		p.Start = &start
	case SlotDuration:
		minutes, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return reject(errDuration)
		}
		p.Duration = &minutes
	case SlotType:
		if text == "" {
			return reject(errEmpty)
		}
		p.Type = format.Ptr(in.Text)
	case SlotLocation:
		if text == "" {
			return reject(errEmpty)
		}
		location := in.Text
		if text == noLocation {
			location = ""
		}
		p.Location = format.Ptr(location)
	default:
		return out, ErrIdle
	}

	out.Filled = slot
	if l, done := p.Lesson(); done {
		out.State = Idle()
		out.Completed = &l
		return out, nil
	}
	out.State = State{collecting: true, intent: intent, partial: p}
	return out, nil
}

// Prompt returns the question for the next unfilled slot of st.
func Prompt(st State) string {
	p, ok := st.Partial()
	if !ok {
		return ""
	}
	return prompts[p.Next()]
}
