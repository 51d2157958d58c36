package schedule

import (
	"strings"

	"github.com/goodsign/monday"

	"github.com/m3rciful/schedulebot/core/telegram/format"
)

const (
	// NoClasses is the body of a day without lessons.
	NoClasses = "Нет пар"

	headerLayout = "02 January (Monday)"
	separator    = "\n------\n\n"
)

// Header renders the day title, e.g. "01 марта (суббота)".
func Header(r DayReport) string {
	return strings.ToLower(monday.Format(r.Date, headerLayout, monday.LocaleRuRU))
}

// Render produces the message for one day: a bold header followed by the
// lessons, or the NoClasses placeholder.
func Render(r DayReport) string {
	var b strings.Builder
	b.WriteString(format.Bold(Header(r)))
	b.WriteString("\n\n")
	if len(r.Lessons) == 0 {
		b.WriteString(NoClasses)
		return b.String()
	}
	b.WriteString(strings.Join(r.Lines(), separator))
	return b.String()
}

// RenderAll renders every report, one message per day.
func RenderAll(reports []DayReport) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, Render(r))
	}
	return out
}
