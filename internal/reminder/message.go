package reminder

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/notify"
)

// Message renders an alert for the desktop notifier.
func Message(a model.Alert, loc *time.Location) notify.Message {
	if loc == nil {
		loc = time.Local
	}
	clock := a.DueAt.In(loc).Format("3:04 PM")
	msg := notify.Message{At: a.FiredAt}
	switch a.Kind {
	case model.AlertDue:
		msg.Title = "Task Due Now"
		msg.Body = fmt.Sprintf("%q was due at %s", a.Title, clock)
	default:
		msg.Title = "Upcoming Task"
		mins := int(a.DueAt.Sub(a.FiredAt).Round(time.Minute) / time.Minute)
		if mins < 1 {
			mins = 1
		}
		msg.Body = fmt.Sprintf("%q is due at %s (in %d min)", a.Title, clock, mins)
	}
	if a.Snoozed {
		msg.Title += " (snoozed)"
	}
	return msg
}
