package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets. The values are the
// wire/storage representation.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// ParseTicketStatus validates a raw status value. There is no transition
// graph: any of the four states may follow any other.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	switch TicketStatus(raw) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
}

// Ticket is the aggregate for support requests. Ownership is permanent:
// OwnerID is set at creation and never reassigned.
type Ticket struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// OwnerUsername is resolved via join on admin reads only.
	OwnerUsername string
}

// Comment is an immutable entry in a ticket's append-only thread. There is
// no edit or delete operation; comments disappear only with their ticket.
type Comment struct {
	ID        int64
	TicketID  string
	AuthorID  string
	Text      string
	CreatedAt time.Time

	// AuthorUsername is resolved via join on reads.
	AuthorUsername string
}
