package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AdminHandler exposes the admin dashboard and the admin status override.
type AdminHandler struct {
	service *service.TicketService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(ticketService *service.TicketService) *AdminHandler {
	return &AdminHandler{service: ticketService}
}

// Dashboard GET /admin/dashboard: every ticket, annotated with its owner's
// username, newest first.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListAllTickets(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"username": principal.User.Username,
		"tickets":  dto.NewTicketListResponse(tickets),
	})
}

// UpdateStatus PUT /admin/ticket/:id/status. The one operation where admin
// bypasses ownership.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	status, err := h.service.UpdateStatus(c.Context(), ticketID, principal, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Status updated successfully",
		"status":  status,
	})
}
