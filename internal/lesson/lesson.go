// Package lesson defines the timetable entry shared by the store, the query
// engine and the dialogue that creates or removes entries.
package lesson

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/schedulebot/core/telegram/format"
)

const (
	// StorageLayout is the wall-clock pattern used in the schedule file.
	StorageLayout = "02-01-2006 15:04"
	// InputLayout is the pattern users type when entering a start time.
	InputLayout = "02.01.2006 15:04"
	// DateLayout renders the calendar date of a lesson in previews.
	DateLayout = "02.01.2006"

	clockLayout = "15:04"
)

// Lesson is a single scheduled class. It has no identifier: two lessons are
// the same entity when every field compares equal.
type Lesson struct {
	Name     string
	Type     string
	Duration int64 // minutes
	// Location is empty when the lesson has no room.
	Location string
	// Start is a naive wall-clock instant kept in UTC with minute precision.
	Start time.Time
}

type wireLesson struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Duration int64  `json:"duration"`
	Cabinet  string `json:"cabinet"`
	Date     string `json:"date"`
}

// MarshalJSON encodes the lesson with its start truncated to minutes.
func (l Lesson) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireLesson{
		Name:     l.Name,
		Type:     l.Type,
		Duration: l.Duration,
		Cabinet:  l.Location,
		Date:     l.Start.UTC().Format(StorageLayout),
	})
}

// UnmarshalJSON decodes a stored lesson, reading its date as UTC.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	var w wireLesson
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	start, err := time.Parse(StorageLayout, w.Date)
	if err != nil {
		return fmt.Errorf("lesson %q: invalid date %q: %w", w.Name, w.Date, err)
	}
	*l = Lesson{
		Name:     w.Name,
		Type:     w.Type,
		Duration: w.Duration,
		Location: w.Cabinet,
		Start:    start,
	}
	return nil
}

// Equal reports whether both lessons describe the same entity.
func (l Lesson) Equal(other Lesson) bool {
	return l.Name == other.Name &&
		l.Type == other.Type &&
		l.Duration == other.Duration &&
		l.Location == other.Location &&
		l.Start.Equal(other.Start)
}

// End returns the instant the lesson finishes.
func (l Lesson) End() time.Time {
	return l.Start.Add(time.Duration(l.Duration) * time.Minute)
}

// SameDay reports whether the lesson starts on the calendar date of day.
func (l Lesson) SameDay(day time.Time) bool {
	y1, m1, d1 := l.Start.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ParseStart parses user input in InputLayout as a naive UTC instant.
func ParseStart(input string) (time.Time, error) {
	return time.Parse(InputLayout, strings.TrimSpace(input))
}

// Naive drops the location of t, keeping its wall clock reading as UTC.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// FormatLine renders the lesson the way it appears in schedules. Name, type
// and location are escaped for HTML parse mode:
//
//	10:00-11:30
//	<b>Algorithms</b>
//	Lecture (Room 204)
func FormatLine(l Lesson) string {
	var b strings.Builder
	b.WriteString(l.Start.Format(clockLayout))
	b.WriteByte('-')
	b.WriteString(l.End().Format(clockLayout))
	b.WriteByte('\n')
	b.WriteString(format.Bold(format.EscapeHTML(l.Name)))
	b.WriteByte('\n')
	b.WriteString(format.EscapeHTML(l.Type))
	if l.Location != "" {
		b.WriteString(" (")
		b.WriteString(format.EscapeHTML(l.Location))
		b.WriteByte(')')
	}
	return b.String()
}
