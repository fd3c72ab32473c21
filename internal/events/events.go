// Package events publishes booking workflow transitions.
package events

import (
	"context"
	"time"

	"cleanroom/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "bookings"
	typePrefix    = "booking."
)

// Event describes one committed transition of a booking.
type Event struct {
	Transition string       `json:"transition"`
	DocID      string       `json:"docId"`
	BookingID  string       `json:"bookingId"`
	Status     string       `json:"status"`
	Ledger     model.Ledger `json:"approvalStatus"`
	Veto       bool         `json:"veto"`
	Actor      string       `json:"actor"`
	Equipment  string       `json:"equipment"`
	Faculty    string       `json:"faculty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// Type is the event-type header value, e.g. "booking.faculty_approve".
func (e Event) Type() string {
	return typePrefix + e.Transition
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
