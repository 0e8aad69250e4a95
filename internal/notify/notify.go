// Package notify sends local desktop notifications for reminders and
// missed-task summaries.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

type Message struct {
	Title string
	Body  string
	At    time.Time
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Permission reports whether notifications may be shown at all.
type Permission interface {
	Granted(ctx context.Context) bool
}

type NoopSender struct{}

func (NoopSender) Send(context.Context, Message) error { return nil }

func (NoopSender) Granted(context.Context) bool { return false }

// DesktopSender shows notifications through the platform notification
// service (D-Bus on Linux, Notification Center on macOS, toasts on Windows).
type DesktopSender struct {
	Enabled bool
	// Notify delivers one notification; nil uses beeep.
	Notify func(title, body string) error
}

func NewDesktopSender(enabled bool) DesktopSender {
	return DesktopSender{Enabled: enabled, Notify: beeepNotify}
}

func beeepNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Granted reports whether desktop notifications are switched on.
func (s DesktopSender) Granted(context.Context) bool {
	return s.Enabled
}

func (s DesktopSender) Send(ctx context.Context, msg Message) error {
	if !s.Enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	send := s.Notify
	if send == nil {
		send = beeepNotify
	}
	if err := send(msg.Title, msg.Body); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Recorder keeps sent messages in memory. The TUI uses it as an in-app
// notification feed.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Allowed  bool
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) Granted(context.Context) bool { return r.Allowed }

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Fanout sends to every sender and returns the first error.
type Fanout []Sender

func (f Fanout) Send(ctx context.Context, msg Message) error {
	var first error
	for _, s := range f {
		if err := s.Send(ctx, msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}
