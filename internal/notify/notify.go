package notify

import (
	"context"
	"time"
)

// Handle identifies one scheduled reminder for later cancellation.
type Handle string

// Reminder is the payload handed to a Sink when a timer fires.
type Reminder struct {
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CorrelationID string    `json:"correlationId"`
	FireAt        time.Time `json:"fireAt"`
}

// Scheduler accepts a future fire instant and a payload. Schedule returns
// ok=false, not an error, when fireAt is not strictly in the future or the
// backend cannot deliver. Reminders are best-effort and callers never block
// persistence on this interface.
type Scheduler interface {
	Schedule(ctx context.Context, fireAt time.Time, title, body, correlationID string) (Handle, bool)
	// Cancel is an idempotent no-op for unknown or already-fired handles.
	Cancel(h Handle)
	CancelAll()
}

// Nop is the degradation for platforms without notification support.
type Nop struct{}

func (Nop) Schedule(context.Context, time.Time, string, string, string) (Handle, bool) {
	return "", false
}
func (Nop) Cancel(Handle) {}
func (Nop) CancelAll()    {}
