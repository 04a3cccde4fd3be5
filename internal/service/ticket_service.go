package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/cache"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketService coordinates ticket workflows and enforces the ownership
// rules. A caller who is neither owner nor admin gets NOT_FOUND, never
// FORBIDDEN, so the existence of other users' tickets is not revealed.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	listings   *cache.TicketCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Listings    *cache.TicketCache
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		listings:   deps.Listings,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket for its owner. New tickets start Open with
// an empty comment thread.
func (s *TicketService) CreateTicket(ctx context.Context, ownerID, title, description string) (*domain.Ticket, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	ticket := &domain.Ticket{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateListings(ctx, ownerID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: ownerID, Role: domain.RoleUser},
		Payload:  events.TicketCreatedPayload{Title: ticket.Title},
	})
	return ticket, nil
}

// ListTickets returns the caller's own tickets, most recent first.
func (s *TicketService) ListTickets(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	if cached, err := s.listings.GetOwnerList(ctx, ownerID); err == nil && cached != nil {
		return cached, nil
	}
	tickets, err := s.tickets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	_ = s.listings.SetOwnerList(ctx, ownerID, tickets)
	return tickets, nil
}

// ListAllTickets returns every ticket with owner usernames resolved, most
// recent first. Admin dashboards only; role enforcement happens in the
// routing guard.
func (s *TicketService) ListAllTickets(ctx context.Context) ([]domain.Ticket, error) {
	if cached, err := s.listings.GetAllList(ctx); err == nil && cached != nil {
		return cached, nil
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	_ = s.listings.SetAllList(ctx, tickets)
	return tickets, nil
}

// GetTicket fetches a ticket with its comment thread, usernames resolved.
// Owners and admins may read; anyone else sees NOT_FOUND.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string, principal *auth.Principal) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.visibleTicket(ctx, ticketID, principal, true)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// DeleteTicket removes a ticket and its comments. Deletion is owner-only:
// unlike status updates, admins may not delete other users' tickets.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string, principal *auth.Principal) error {
	ticket, err := s.visibleTicket(ctx, ticketID, principal, false)
	if err != nil {
		return err
	}

	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket")
		}
		return apperrors.MapError(err)
	}

	s.invalidateListings(ctx, ticket.OwnerID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    actorFor(principal),
		Payload:  events.TicketDeletedPayload{Title: ticket.Title},
	})
	return nil
}

// AddComment appends an immutable comment to the ticket's thread. Only the
// ticket owner may comment; the stored text is whitespace-trimmed.
func (s *TicketService) AddComment(ctx context.Context, ticketID string, principal *auth.Principal, text string) (*domain.Comment, error) {
	ticket, err := s.visibleTicket(ctx, ticketID, principal, false)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment text is required", nil)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: principal.User.ID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateListings(ctx, ticket.OwnerID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Actor:    actorFor(principal),
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			BodyPreview: preview(comment.Text, 120),
		},
	})
	return comment, nil
}

// UpdateStatus moves the ticket to any of the four states; no transition
// graph is enforced. Owners may update their own tickets; admins may
// update any ticket. This is the single operation where admin bypasses
// ownership.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, principal *auth.Principal, rawStatus string) (domain.TicketStatus, error) {
	newStatus, err := domain.ParseTicketStatus(rawStatus)
	if err != nil {
		return "", apperrors.NewValidationError("invalid status", nil)
	}

	ticket, err := s.visibleTicket(ctx, ticketID, principal, true)
	if err != nil {
		return "", err
	}

	if err := s.tickets.UpdateStatus(ctx, ticket.ID, newStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("ticket")
		}
		return "", apperrors.MapError(err)
	}

	s.invalidateListings(ctx, ticket.OwnerID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(principal),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: ticket.Status,
			NewStatus: newStatus,
		},
	})
	return newStatus, nil
}

// visibleTicket fetches a ticket and applies the ownership rule. Both a
// missing ticket and someone else's ticket come back as NOT_FOUND.
func (s *TicketService) visibleTicket(ctx context.Context, ticketID string, principal *auth.Principal, adminOverride bool) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.OwnerID == principal.User.ID {
		return ticket, nil
	}
	if adminOverride && principal.IsAdmin() {
		return ticket, nil
	}
	return nil, apperrors.NewNotFound("ticket")
}

func (s *TicketService) invalidateListings(ctx context.Context, ownerID string) {
	_ = s.listings.Invalidate(ctx, ownerID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(principal *auth.Principal) events.Actor {
	return events.Actor{UserID: principal.User.ID, Role: principal.User.Role}
}

func preview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
