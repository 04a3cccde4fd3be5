package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	CommentText string `json:"commentText" form:"commentText"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status"`
}

// TicketResponse is the ticket shape returned to clients. OwnerUsername is
// populated on admin listings only.
type TicketResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	OwnerUsername string              `json:"ownerUsername,omitempty"`
}

// CommentResponse carries a comment with its author's username resolved so
// the client can display it without a follow-up fetch.
type CommentResponse struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		OwnerUsername: t.OwnerUsername,
	}
}

// NewTicketListResponse maps a listing.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		CreatedBy: c.AuthorUsername,
	}
}

// NewCommentListResponse maps a comment thread in insertion order.
func NewCommentListResponse(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentResponse(&comments[i]))
	}
	return out
}
