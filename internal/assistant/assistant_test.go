package assistant

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/schedulebot/internal/schedule"
	"github.com/m3rciful/schedulebot/internal/store"
)

// Saturday, 1 March 2025.
var saturday = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

func newService(t *testing.T, now time.Time, opts ...Option) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.json")
	st, err := store.Open(path)
	require.NoError(t, err)
	opts = append([]Option{WithClock(func() time.Time { return now }), WithLocation(time.UTC)}, opts...)
	return New(st, opts...), path
}

func command(t *testing.T, s *Service, id int64, name string) Response {
	t.Helper()
	resp, err := s.Handle(context.Background(), Event{ConversationID: id, Kind: KindCommand, Payload: name})
	require.NoError(t, err, name)
	return resp
}

func text(t *testing.T, s *Service, id int64, payloads ...string) Response {
	t.Helper()
	var resp Response
	for _, p := range payloads {
		var err error
		resp, err = s.Handle(context.Background(), Event{ConversationID: id, Kind: KindText, Payload: p})
		require.NoError(t, err, p)
	}
	return resp
}

func TestHelpAndStart(t *testing.T) {
	s, _ := newService(t, saturday)
	for _, name := range []string{CmdHelp, CmdStart} {
		resp := command(t, s, 1, name)
		require.Len(t, resp.Messages, 1)
		assert.Equal(t, HelpText, resp.Messages[0])
		assert.False(t, resp.Collecting)
	}
}

func TestQueryEmptyTimetable(t *testing.T) {
	s, _ := newService(t, saturday)

	resp := command(t, s, 1, CmdDay)
	require.Len(t, resp.Messages, 1)
	assert.Contains(t, resp.Messages[0], schedule.NoClasses)
	assert.True(t, strings.HasPrefix(resp.Messages[0], "<b>01 "))

	resp = command(t, s, 1, CmdWeek)
	require.Len(t, resp.Messages, 7)
	for _, m := range resp.Messages {
		assert.Contains(t, m, schedule.NoClasses)
	}
	assert.True(t, strings.HasPrefix(resp.Messages[0], "<b>24 "), resp.Messages[0])

	resp = command(t, s, 1, CmdNextWeek)
	require.Len(t, resp.Messages, 7)
	assert.True(t, strings.HasPrefix(resp.Messages[0], "<b>03 "), resp.Messages[0])
}

func TestAddThenQuery(t *testing.T) {
	s, path := newService(t, saturday)

	resp := command(t, s, 1, CmdAdd)
	assert.True(t, resp.Collecting)
	resp = text(t, s, 1, "Algorithms", "01.03.2025 10:00", "90", "Lecture", "Room 204")
	assert.False(t, resp.Collecting)
	require.Len(t, resp.Messages, 1)
	assert.Contains(t, resp.Messages[0], "Пара добавлена")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"01-03-2025 10:00"`)
	assert.Contains(t, string(data), `"cabinet":"Room 204"`)

	resp = command(t, s, 1, CmdDay)
	require.Len(t, resp.Messages, 1)
	assert.Contains(t, resp.Messages[0], "10:00-11:30\n<b>Algorithms</b>\nLecture (Room 204)")

	resp = command(t, s, 1, CmdTomorrow)
	require.Len(t, resp.Messages, 1)
	assert.Contains(t, resp.Messages[0], schedule.NoClasses)
}

func TestDeleteRemovesLesson(t *testing.T) {
	s, _ := newService(t, saturday)
	lessonInput := []string{"Algorithms", "01.03.2025 10:00", "90", "Lecture", "-"}

	command(t, s, 1, CmdAdd)
	text(t, s, 1, lessonInput...)
	command(t, s, 1, CmdAdd)
	text(t, s, 1, lessonInput...)

	command(t, s, 2, CmdDelete)
	resp := text(t, s, 2, lessonInput...)
	assert.Contains(t, resp.Messages[0], "Пара удалена")

	resp = command(t, s, 1, CmdDay)
	assert.Contains(t, resp.Messages[0], schedule.NoClasses)
}

func TestQueryDuringDialogueKeepsState(t *testing.T) {
	s, _ := newService(t, saturday)
	command(t, s, 1, CmdAdd)
	text(t, s, 1, "Algorithms")

	resp := command(t, s, 1, CmdWeek)
	assert.Len(t, resp.Messages, 7)
	assert.True(t, resp.Collecting)
	assert.True(t, s.InProgress(1))

	resp = text(t, s, 1, "01.03.2025 10:00")
	assert.True(t, resp.Collecting)
	assert.Contains(t, resp.Messages[0], "<b>Algorithms</b>")
}

func TestCancel(t *testing.T) {
	s, _ := newService(t, saturday)
	command(t, s, 1, CmdAdd)
	text(t, s, 1, "Algorithms")

	resp := command(t, s, 1, CmdCancel)
	assert.False(t, resp.Collecting)
	assert.False(t, s.InProgress(1))

	resp = command(t, s, 1, CmdAdd)
	assert.NotContains(t, resp.Messages[0], "Algorithms")
}

func TestTextWhenIdle(t *testing.T) {
	s, _ := newService(t, saturday)
	resp := text(t, s, 1, "hello")
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, msgUnknown, resp.Messages[0])

	resp = command(t, s, 1, "unknown")
	assert.Equal(t, msgUnknown, resp.Messages[0])
}

func TestUnknownCommandFeedsDialogue(t *testing.T) {
	s, _ := newService(t, saturday)
	command(t, s, 1, CmdAdd)
	resp := command(t, s, 1, "algo")
	assert.True(t, resp.Collecting)
	assert.Contains(t, resp.Messages[0], "<b>/algo</b>")
}

func TestUnknownCommandKeepsCase(t *testing.T) {
	s, _ := newService(t, saturday)
	command(t, s, 1, CmdAdd)
	resp := command(t, s, 1, "Algo")
	assert.Contains(t, resp.Messages[0], "<b>/Algo</b>")

	resp = command(t, s, 1, "WEEK")
	assert.Len(t, resp.Messages, 7)
}

func TestNonTextIsRejected(t *testing.T) {
	s, _ := newService(t, saturday)
	command(t, s, 1, CmdAdd)
	resp, err := s.Handle(context.Background(), Event{ConversationID: 1, Kind: KindNonText})
	require.NoError(t, err)
	assert.True(t, resp.Collecting)
	assert.Contains(t, resp.Messages[0], "текстовое")
}

func TestCorruptStore(t *testing.T) {
	s, path := newService(t, saturday)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	resp, err := s.Handle(context.Background(), Event{ConversationID: 1, Kind: KindCommand, Payload: CmdDay})
	require.ErrorIs(t, err, store.ErrCorrupt)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, msgFailure, resp.Messages[0])

	command(t, s, 1, CmdAdd)
	text(t, s, 1, "Algorithms", "01.03.2025 10:00", "90", "Lecture")
	resp, err = s.Handle(context.Background(), Event{ConversationID: 1, Kind: KindText, Payload: "204"})
	require.ErrorIs(t, err, store.ErrCorrupt)
	assert.False(t, resp.Collecting)
	assert.False(t, s.InProgress(1))
}

func TestLocationDecidesToday(t *testing.T) {
	// 23:30 UTC on Saturday is already Sunday at UTC+3.
	late := time.Date(2025, time.March, 1, 23, 30, 0, 0, time.UTC)
	s, _ := newService(t, late, WithLocation(time.FixedZone("MSK", 3*60*60)))

	command(t, s, 1, CmdAdd)
	text(t, s, 1, "Algorithms", "02.03.2025 10:00", "90", "Lecture", "-")

	resp := command(t, s, 1, CmdDay)
	assert.True(t, strings.HasPrefix(resp.Messages[0], "<b>02 "), resp.Messages[0])
	assert.Contains(t, resp.Messages[0], "<b>Algorithms</b>")
}

func TestUnknownKind(t *testing.T) {
	s, _ := newService(t, saturday)
	_, err := s.Handle(context.Background(), Event{ConversationID: 1})
	assert.Error(t, err)
}
