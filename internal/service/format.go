package service

import "time"

// Layouts used when rendering event and feed times in the display timezone.
const (
	DateLayout     = "Mon Jan 2"               // Tue Sep 8
	FullDateLayout = "Monday, January 2, 2006" // Tuesday, September 8, 2015
	TimeLayout     = "3:04 PM MST"             // 10:33 AM PST
	InputLayout    = "2006-01-02T15:04"        // datetime-local form value
)

// inputLayouts are accepted when parsing a start time typed by a user.
var inputLayouts = []string{
	InputLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// FormattedTime is an instant rendered in the display timezone.
type FormattedTime struct {
	Time     time.Time
	Date     string
	FullDate string
	Clock    string
}

func formatTime(t time.Time, loc *time.Location) FormattedTime {
	local := t.In(loc)
	return FormattedTime{
		Time:     local,
		Date:     local.Format(DateLayout),
		FullDate: local.Format(FullDateLayout),
		Clock:    local.Format(TimeLayout),
	}
}

// parseLocalTime interprets s as a wall-clock time in loc.
func parseLocalTime(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
