package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/core/metrics"
	"github.com/m3rciful/schedulebot/core/telegram/format"
	"github.com/m3rciful/schedulebot/core/telegram/state"
	"github.com/m3rciful/schedulebot/internal/lesson"
)

const component = "dialog"

// Writer commits completed lessons.
type Writer interface {
	Append(ctx context.Context, l lesson.Lesson) error
	Delete(ctx context.Context, l lesson.Lesson) error
}

// Reply is what the machine wants delivered to the user.
type Reply struct {
	// Preview shows the lesson as collected so far.
	Preview string
	// Text is the next prompt, a validation error or a final confirmation.
	Text string
	// Collecting reports whether the dialogue continues after this reply.
	Collecting bool
}

// Message joins preview and text into one outbound message.
func (r Reply) Message() string {
	return format.Join(r.Preview, r.Text)
}

// Machine runs lesson dialogues for many conversations.
type Machine struct {
	sessions *state.Store[State]
	store    Writer
	now      func() time.Time
	metrics  *metrics.Metrics
}

// Option customises a Machine.
type Option func(*Machine)

// WithClock overrides the clock used for previews.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithMetrics reports finished dialogues to mt.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Machine) { m.metrics = mt }
}

// NewMachine creates a machine committing to store.
func NewMachine(store Writer, opts ...Option) *Machine {
	m := &Machine{
		sessions: state.NewStore(Idle),
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state of a conversation.
func (m *Machine) State(chatID int64) State {
	return m.sessions.Get(chatID)
}

// InProgress reports whether the conversation is collecting a lesson.
func (m *Machine) InProgress(chatID int64) bool {
	return !m.sessions.Get(chatID).IsIdle()
}

// Begin starts a fresh dialogue, discarding any partial lesson.
func (m *Machine) Begin(ctx context.Context, chatID int64, intent Intent) Reply {
	var reply Reply
	_ = m.sessions.Update(chatID, func(st *State) error {
		if !st.IsIdle() {
			prev, _ := st.Intent()
			m.metrics.ObserveDialog(prev.String(), "discarded")
			logger.Debug(ctx, component, "dialog.discard",
				slog.String("status", "ok"),
				slog.String("intent", prev.String()),
			)
		}
		*st = Collecting(intent)
		reply = m.promptReply(*st, "")
		return nil
	})
	logger.Debug(ctx, component, "dialog.begin",
		slog.String("status", "ok"),
		slog.String("intent", intent.String()),
	)
	return reply
}

// Cancel returns the conversation to Idle from any state.
func (m *Machine) Cancel(ctx context.Context, chatID int64) Reply {
	if prev, ok := m.sessions.Reset(chatID); ok {
		if intent, collecting := prev.Intent(); collecting {
			m.metrics.ObserveDialog(intent.String(), "cancelled")
		}
	}
	logger.Debug(ctx, component, "dialog.cancel", slog.String("status", "ok"))
	return Reply{Text: msgCancelled}
}

// Step feeds one message to a collecting conversation. It returns ErrIdle when
// no dialogue is in progress. When the final slot is filled the lesson is
// committed and the conversation returns to Idle whatever the store answers;
// a store failure is returned together with a reply describing it.
func (m *Machine) Step(ctx context.Context, chatID int64, in Input) (Reply, error) {
	var (
		reply  Reply
		outErr error
	)
	found, err := m.sessions.UpdateExisting(chatID, func(st *State) error {
		out, err := Advance(*st, in)
		if err != nil {
			return err
		}
		*st = out.State

		switch {
		case out.Rejected != nil:
			logger.Debug(ctx, component, "dialog.reject",
				slog.String("status", "skip"),
				slog.String("intent", out.Intent.String()),
				slog.String("slot", out.Rejected.Slot.String()),
			)
			reply = m.promptReply(*st, out.Rejected.Message+"\n"+Prompt(*st))
		case out.Completed != nil:
			reply, outErr = m.commit(ctx, out.Intent, *out.Completed)
		default:
			logger.Debug(ctx, component, "dialog.fill",
				slog.String("status", "ok"),
				slog.String("intent", out.Intent.String()),
				slog.String("slot", out.Filled.String()),
			)
			reply = m.promptReply(*st, "")
		}
		return nil
	})
	if !found {
		return Reply{}, ErrIdle
	}
	if err != nil {
		return Reply{}, err
	}
	return reply, outErr
}

func (m *Machine) commit(ctx context.Context, intent Intent, l lesson.Lesson) (Reply, error) {
	var (
		err  error
		done string
	)
	switch intent {
	case IntentAdd:
		err, done = m.store.Append(ctx, l), msgAdded
	case IntentDelete:
		err, done = m.store.Delete(ctx, l), msgDeleted
	default:
		err = fmt.Errorf("dialog: unknown intent %d", intent)
	}

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("intent", intent.String()),
		slog.String("lesson", logger.SanitizeLimit(l.Name, 64)),
		slog.String("start", l.Start.Format(lesson.StorageLayout)),
	}
	if err != nil {
		m.metrics.ObserveDialog(intent.String(), "failed")
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Error(ctx, component, "dialog.commit", attrs...)
		return Reply{Preview: render(l), Text: msgFailed}, fmt.Errorf("commit %s: %w", intent, err)
	}
	m.metrics.ObserveDialog(intent.String(), "done")
	logger.Info(ctx, component, "dialog.commit", attrs...)
	return Reply{Preview: render(l), Text: done}, nil
}

func (m *Machine) promptReply(st State, text string) Reply {
	p, ok := st.Partial()
	if !ok {
		return Reply{Text: text}
	}
	if text == "" {
		text = Prompt(st)
	}
	return Reply{
		Preview:    Preview(p, m.now()),
		Text:       text,
		Collecting: true,
	}
}
