// Package schedule answers timetable queries for a day or a week.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/internal/lesson"
)

// Window selects the range of days a query reports.
type Window int

const (
	// Today covers the current day.
	Today Window = iota
	// Tomorrow covers the day after the current one.
	Tomorrow
	// ThisWeek covers Monday..Sunday of the current week.
	ThisWeek
	// NextWeek covers Monday..Sunday of the following week.
	NextWeek
)

var windowNames = map[Window]string{
	Today:    "day",
	Tomorrow: "tomorrow",
	ThisWeek: "week",
	NextWeek: "nweek",
}

// String returns the command name bound to the window.
func (w Window) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("window(%d)", int(w))
}

// ParseWindow maps a command name (day, tomorrow, week, nweek) to a window.
func ParseWindow(name string) (Window, bool) {
	for w, n := range windowNames {
		if n == name {
			return w, true
		}
	}
	return 0, false
}

// WeekdayIndex numbers days from Monday=0 to Sunday=6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Bounds returns the first day of the window and the exclusive end, both at
// midnight of the naive calendar date of now.
func Bounds(now time.Time, w Window) (time.Time, time.Time) {
	today := midnight(now)
	start, days := today, 1
	switch w {
	case Tomorrow:
		start = today.AddDate(0, 0, 1)
	case ThisWeek:
		start, days = today.AddDate(0, 0, -WeekdayIndex(today)), 7
	case NextWeek:
		start, days = today.AddDate(0, 0, 7-WeekdayIndex(today)), 7
	}
	return start, start.AddDate(0, 0, days)
}

// DayReport lists the lessons of one calendar day.
type DayReport struct {
	Date    time.Time
	Lessons []lesson.Lesson
}

// Lines renders each lesson of the day in stored order.
func (r DayReport) Lines() []string {
	lines := make([]string, 0, len(r.Lessons))
	for _, l := range r.Lessons {
		lines = append(lines, lesson.FormatLine(l))
	}
	return lines
}

// Build groups lessons into one report per day of the window. Days without
// lessons are included.
func Build(lessons []lesson.Lesson, now time.Time, w Window) []DayReport {
	start, end := Bounds(now, w)
	var reports []DayReport
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		r := DayReport{Date: day}
		for _, l := range lessons {
			if l.SameDay(day) {
				r.Lessons = append(r.Lessons, l)
			}
		}
		reports = append(reports, r)
	}
	return reports
}

// Loader reads the full timetable.
type Loader interface {
	LoadAll(ctx context.Context) ([]lesson.Lesson, error)
}

// Engine answers queries against a freshly loaded timetable.
type Engine struct {
	store Loader
}

// NewEngine returns an engine reading from store.
func NewEngine(store Loader) *Engine {
	return &Engine{store: store}
}

// Query loads the timetable and builds the reports for w relative to now.
func (e *Engine) Query(ctx context.Context, now time.Time, w Window) ([]DayReport, error) {
	lessons, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	reports := Build(lessons, now, w)
	matched := 0
	for _, r := range reports {
		matched += len(r.Lessons)
	}
	logger.Debug(ctx, "schedule", "schedule.query",
		slog.String("status", "ok"),
		slog.String("window", w.String()),
		slog.Int("days", len(reports)),
		slog.Int("count", matched),
	)
	return reports, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
