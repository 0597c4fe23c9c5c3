/*
Package notify delivers chat messages to staff.

PURPOSE:
  Wraps the chat sink behind a fire-and-forget dispatcher. State transitions
  in the exchange engine must never block on - or fail because of - a chat
  delivery, so every send happens on its own goroutine with a short timeout.
  Successful deliveries are recorded in the notification log; failures are
  logged and dropped.

SINK CONTRACT:
  Send(ctx, handle, text) - handle is the staff member's chat address
  (Slack channel/user ID). An error means the delivery attempt failed;
  it is never propagated past this package.

SEE ALSO:
  - templates.go: message bodies
  - slacknotify: the slack-go implementation of Sink
*/
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/shift-engine/schedule"
)

// Sink is the underlying delivery mechanism.
type Sink interface {
	Send(ctx context.Context, handle, text string) error
}

// Notifier is what the exchange engine sees: fire-and-forget delivery to one
// member or a fan-out list.
type Notifier interface {
	Notify(staff *schedule.Staff, kind, message string)
	NotifyAll(staff []schedule.Staff, kind, message string)
}

// =============================================================================
// DISPATCHER
// =============================================================================

const defaultSendTimeout = 5 * time.Second

// Dispatcher is the production Notifier. Sends are asynchronous; Wait exists
// so tests and shutdown can drain in-flight deliveries.
type Dispatcher struct {
	sink    Sink
	log     schedule.NotificationLog
	logger  zerolog.Logger
	timeout time.Duration
	via     string

	wg sync.WaitGroup
}

func NewDispatcher(sink Sink, log schedule.NotificationLog, logger zerolog.Logger, via string) *Dispatcher {
	return &Dispatcher{
		sink:    sink,
		log:     log,
		logger:  logger,
		timeout: defaultSendTimeout,
		via:     via,
	}
}

// Notify delivers one message. Members without a chat handle are skipped
// silently; delivery failures are logged at warn and otherwise dropped.
func (d *Dispatcher) Notify(staff *schedule.Staff, kind, message string) {
	if staff == nil || staff.ChatHandle == "" {
		d.logger.Debug().Str("kind", kind).Msg("notification skipped: no chat handle")
		return
	}

	staffID := staff.ID
	handle := staff.ChatHandle

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sink.Send(ctx, handle, message); err != nil {
			d.logger.Warn().Err(err).
				Int64("staff_id", int64(staffID)).
				Str("kind", kind).
				Msg("notification delivery failed")
			return
		}

		if d.log != nil {
			entry := &schedule.Notification{
				StaffID: staffID,
				Kind:    kind,
				Message: message,
				SentVia: d.via,
			}
			if err := d.log.LogNotification(context.Background(), entry); err != nil {
				d.logger.Warn().Err(err).Msg("failed to log notification")
			}
		}
	}()
}

// NotifyAll fans a message out to a list of members.
func (d *Dispatcher) NotifyAll(staff []schedule.Staff, kind, message string) {
	for i := range staff {
		d.Notify(&staff[i], kind, message)
	}
}

// Wait blocks until all in-flight deliveries have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// =============================================================================
// DISCARD - No-op Notifier
// =============================================================================

// Discard drops every notification. Used when no sink is configured.
type Discard struct{}

func (Discard) Notify(*schedule.Staff, string, string)     {}
func (Discard) NotifyAll([]schedule.Staff, string, string) {}
