package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/schedulebot/internal/lesson"
)

// 2025-03-05 is a Wednesday.
var wednesday = time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func at(d, hour, minute int) time.Time {
	return time.Date(2025, time.March, d, hour, minute, 0, 0, time.UTC)
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(day(3)))
	assert.Equal(t, 2, WeekdayIndex(wednesday))
	assert.Equal(t, 6, WeekdayIndex(day(9)))
}

func TestBuildReportCounts(t *testing.T) {
	cases := map[Window]int{Today: 1, Tomorrow: 1, ThisWeek: 7, NextWeek: 7}
	for w, want := range cases {
		reports := Build(nil, wednesday, w)
		require.Len(t, reports, want, w.String())
		for i := 1; i < len(reports); i++ {
			assert.Equal(t, reports[i-1].Date.AddDate(0, 0, 1), reports[i].Date, w.String())
		}
	}
}

func TestBoundsDayWindows(t *testing.T) {
	start, end := Bounds(wednesday, Today)
	assert.Equal(t, day(5), start)
	assert.Equal(t, day(6), end)

	start, end = Bounds(wednesday, Tomorrow)
	assert.Equal(t, day(6), start)
	assert.Equal(t, day(7), end)
}

func TestWeeksAreAdjacent(t *testing.T) {
	thisStart, thisEnd := Bounds(wednesday, ThisWeek)
	nextStart, nextEnd := Bounds(wednesday, NextWeek)

	assert.Equal(t, day(3), thisStart, "this week starts on the preceding Monday")
	assert.Equal(t, day(10), nextStart, "next week starts on the following Monday")
	assert.Equal(t, thisEnd, nextStart)
	assert.Equal(t, day(17), nextEnd)
}

func TestWeekFromMondayAndSunday(t *testing.T) {
	start, _ := Bounds(at(3, 8, 0), ThisWeek)
	assert.Equal(t, day(3), start)

	start, _ = Bounds(at(9, 23, 59), ThisWeek)
	assert.Equal(t, day(3), start)
	start, _ = Bounds(at(9, 23, 59), NextWeek)
	assert.Equal(t, day(10), start)
}

func TestBoundsUseWallClockDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	lateEvening := time.Date(2025, time.March, 5, 1, 0, 0, 0, loc)
	start, _ := Bounds(lateEvening, Today)
	assert.Equal(t, day(5), start)
}

func TestBuildGroupsByDateInStoredOrder(t *testing.T) {
	lessons := []lesson.Lesson{
		{Name: "Late", Type: "Lab", Duration: 90, Start: at(5, 15, 0)},
		{Name: "Thu", Type: "Lecture", Duration: 90, Start: at(6, 9, 0)},
		{Name: "Early", Type: "Lecture", Duration: 90, Start: at(5, 9, 0)},
		{Name: "Other week", Type: "Lecture", Duration: 90, Start: at(12, 9, 0)},
	}
	reports := Build(lessons, wednesday, ThisWeek)
	require.Len(t, reports, 7)

	wed := reports[2]
	assert.Equal(t, day(5), wed.Date)
	require.Len(t, wed.Lessons, 2)
	assert.Equal(t, "Late", wed.Lessons[0].Name)
	assert.Equal(t, "Early", wed.Lessons[1].Name)

	assert.Len(t, reports[3].Lessons, 1)
	assert.Empty(t, reports[0].Lessons)
	for _, r := range reports {
		for _, l := range r.Lessons {
			assert.NotEqual(t, "Other week", l.Name)
		}
	}
}

func TestRenderEmptyDay(t *testing.T) {
	out := Render(DayReport{Date: day(1)})
	assert.True(t, strings.HasPrefix(out, "<b>01 "), out)
	assert.True(t, strings.HasSuffix(out, "\n\n"+NoClasses), out)
}

func TestRenderLessons(t *testing.T) {
	r := DayReport{Date: day(1), Lessons: []lesson.Lesson{
		{Name: "Algorithms", Type: "Lecture", Duration: 90, Location: "Room 204", Start: at(1, 10, 0)},
		{Name: "PE", Type: "Practice", Duration: 80, Start: at(1, 12, 0)},
	}}
	out := Render(r)
	assert.Contains(t, out, "10:00-11:30\n<b>Algorithms</b>\nLecture (Room 204)")
	assert.Contains(t, out, "\n------\n\n12:00-13:20\n<b>PE</b>\nPractice")
	assert.NotContains(t, out, NoClasses)
}

func TestRenderEscapesLessonFields(t *testing.T) {
	out := Render(DayReport{Date: day(1), Lessons: []lesson.Lesson{
		{Name: "C&C <intro>", Type: "Lecture", Duration: 90, Location: "R&D", Start: at(1, 10, 0)},
	}})
	assert.Contains(t, out, "<b>C&amp;C &lt;intro&gt;</b>\nLecture (R&amp;D)")
	assert.NotContains(t, out, "<intro>")
}

func TestParseWindow(t *testing.T) {
	for _, name := range []string{"day", "tomorrow", "week", "nweek"} {
		w, ok := ParseWindow(name)
		require.True(t, ok, name)
		assert.Equal(t, name, w.String())
	}
	_, ok := ParseWindow("month")
	assert.False(t, ok)
}

type fakeLoader struct {
	lessons []lesson.Lesson
	err     error
}

func (f fakeLoader) LoadAll(context.Context) ([]lesson.Lesson, error) {
	return f.lessons, f.err
}

func TestEngineQuery(t *testing.T) {
	e := NewEngine(fakeLoader{lessons: []lesson.Lesson{
		{Name: "Algorithms", Type: "Lecture", Duration: 90, Start: at(6, 10, 0)},
	}})
	reports, err := e.Query(context.Background(), wednesday, Tomorrow)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Len(t, reports[0].Lessons, 1)
}

func TestEngineQueryPropagatesStoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewEngine(fakeLoader{err: boom}).Query(context.Background(), wednesday, Today)
	require.ErrorIs(t, err, boom)
}
