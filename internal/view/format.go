// Package view renders the HTML pages and datastar fragments of the app.
package view

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Element ids patched by datastar fragments.
const (
	FeedItemsID = "feed-items"
	FeedCountID = "feed-count"
	RSVPID      = "rsvp"
)

// NewEventForm holds the values of the new event form.
type NewEventForm struct {
	Name        string
	Description string
	Start       string
}

var printer = message.NewPrinter(language.English)

// count formats n with thousands separators.
func count(n int) string {
	return printer.Sprintf("%d", n)
}

// plural formats a count with its noun, e.g. "1 registration", "2,500 registrations".
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return count(n) + " " + singular
	}
	return count(n) + " " + pluralForm
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

func rsvpAction(eventID int64, attending bool) string {
	return fmt.Sprintf("@post('/events/%d/rsvp?attending=%t')", eventID, attending)
}
