package dialog

import (
	"time"

	"github.com/m3rciful/schedulebot/core/telegram/format"
	"github.com/m3rciful/schedulebot/internal/lesson"
)

// Preview renders a possibly incomplete lesson with placeholders for the
// unfilled slots. An unset start shows now.
func Preview(p Partial, now time.Time) string {
	l := lesson.Lesson{
		Name:     format.Deref(p.Name, placeholderName),
		Type:     format.Deref(p.Type, placeholderType),
		Duration: format.Deref(p.Duration, placeholderDuration),
		Location: format.Deref(p.Location, placeholderLocation),
		Start:    format.Deref(p.Start, lesson.Naive(now)),
	}
	return render(l)
}

func render(l lesson.Lesson) string {
	return format.Italic(l.Start.Format(lesson.DateLayout)) + "\n" + lesson.FormatLine(l)
}
