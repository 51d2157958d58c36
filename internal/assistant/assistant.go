// Package assistant routes chat events to the schedule queries and the lesson
// dialogue. It knows nothing about the transport: events come in as plain
// values and replies go out as HTML strings.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/core/metrics"
	"github.com/m3rciful/schedulebot/internal/dialog"
	"github.com/m3rciful/schedulebot/internal/lesson"
	"github.com/m3rciful/schedulebot/internal/schedule"
	"github.com/m3rciful/schedulebot/internal/store"
)

// Kind classifies an inbound event.
type Kind int

const (
	// KindCommand carries a command name without the leading slash.
	KindCommand Kind = iota + 1
	// KindText carries free text typed by the user.
	KindText
	// KindNonText marks a message without text (photo, sticker, file).
	KindNonText
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindNonText:
		return "non_text"
	}
	return "unknown"
}

// Command names understood by the service.
const (
	CmdHelp     = "help"
	CmdStart    = "start"
	CmdAdd      = "add"
	CmdDelete   = "delete"
	CmdDay      = "day"
	CmdTomorrow = "tomorrow"
	CmdWeek     = "week"
	CmdNextWeek = "nweek"
	CmdCancel   = "cancel"
)

// Event is one inbound message of a conversation.
type Event struct {
	ConversationID int64
	Kind           Kind
	Payload        string
}

// Response lists the messages to deliver, in order.
type Response struct {
	Messages []string
	// Collecting reports whether a lesson dialogue is still in progress.
	Collecting bool
}

// Store is the timetable the service reads and writes.
type Store interface {
	schedule.Loader
	dialog.Writer
}

// Service handles events for any number of conversations.
type Service struct {
	machine *dialog.Machine
	engine  *schedule.Engine
	now     func() time.Time
	loc     *time.Location
	metrics *metrics.Metrics
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone in which "today" is read.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithMetrics reports dialogue outcomes to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New builds a service over the timetable tt.
func New(tt Store, opts ...Option) *Service {
	s := &Service{
		engine: schedule.NewEngine(tt),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.machine = dialog.NewMachine(tt,
		dialog.WithClock(s.localNow),
		dialog.WithMetrics(s.metrics),
	)
	return s
}

// InProgress reports whether the conversation is in the middle of a dialogue.
func (s *Service) InProgress(conversationID int64) bool {
	return s.machine.InProgress(conversationID)
}

// Handle processes ev and returns what to send back. A non-nil error is
// returned together with a response that already explains the failure to
// the user; callers only need it for logging.
func (s *Service) Handle(ctx context.Context, ev Event) (Response, error) {
	switch ev.Kind {
	case KindCommand:
		return s.command(ctx, ev.ConversationID, strings.TrimSpace(ev.Payload))
	case KindText:
		return s.step(ctx, ev.ConversationID, dialog.Input{Text: ev.Payload})
	case KindNonText:
		return s.step(ctx, ev.ConversationID, dialog.Input{NonText: true})
	}
	return Response{}, fmt.Errorf("assistant: unknown event kind %d", ev.Kind)
}

// command matches name case-insensitively. Anything unknown goes to the
// dialogue exactly as the user typed it.
func (s *Service) command(ctx context.Context, id int64, name string) (Response, error) {
	key := strings.ToLower(name)
	switch key {
	case CmdHelp, CmdStart:
		return s.reply(id, HelpText), nil
	case CmdAdd:
		return fromReply(s.machine.Begin(ctx, id, dialog.IntentAdd)), nil
	case CmdDelete:
		return fromReply(s.machine.Begin(ctx, id, dialog.IntentDelete)), nil
	case CmdCancel:
		return fromReply(s.machine.Cancel(ctx, id)), nil
	}
	if w, ok := schedule.ParseWindow(key); ok {
		return s.query(ctx, id, w)
	}
	// Unknown commands are ordinary text for an ongoing dialogue.
	return s.step(ctx, id, dialog.Input{Text: "/" + name})
}

func (s *Service) query(ctx context.Context, id int64, w schedule.Window) (Response, error) {
	reports, err := s.engine.Query(ctx, s.localNow(), w)
	if err != nil {
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("window", w.String()),
			slog.String("err", err.Error()),
		}
		if errors.Is(err, store.ErrCorrupt) {
			attrs = append(attrs, slog.String("cause", "corrupt"))
		}
		logger.Error(ctx, "schedule", "schedule.query", attrs...)
		return s.reply(id, msgFailure), err
	}
	return s.reply(id, schedule.RenderAll(reports)...), nil
}

func (s *Service) step(ctx context.Context, id int64, in dialog.Input) (Response, error) {
	r, err := s.machine.Step(ctx, id, in)
	if errors.Is(err, dialog.ErrIdle) {
		return s.reply(id, msgUnknown), nil
	}
	return fromReply(r), err
}

func (s *Service) reply(id int64, messages ...string) Response {
	return Response{Messages: messages, Collecting: s.machine.InProgress(id)}
}

// localNow reads the clock in the configured zone as a naive wall-clock time.
func (s *Service) localNow() time.Time {
	return lesson.Naive(s.now().In(s.loc))
}

func fromReply(r dialog.Reply) Response {
	return Response{Messages: []string{r.Message()}, Collecting: r.Collecting}
}
