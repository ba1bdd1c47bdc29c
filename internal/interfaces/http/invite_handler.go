package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/invite"
)

// InviteHandler serves supplier invitations: sending (authenticated) and
// accepting (public, token-authenticated).
type InviteHandler struct {
	uc *invite.UseCase
}

// NewInviteHandler builds the invite handler.
func NewInviteHandler(uc *invite.UseCase) *InviteHandler {
	return &InviteHandler{uc: uc}
}

// Invite godoc
// @Summary      Invite a supplier by email
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.InviteSupplierRequest  true  "invitation"
// @Success      201   {object}  dto.InviteSupplierResponse
// @Failure      409   {object}  dto.InviteSupplierResponse
// @Router       /api/invitations [post]
func (h *InviteHandler) Invite(c *fiber.Ctx) error {
	var in dto.InviteSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.InviteSupplierResponse{Error: "invalid body"})
	}
	if in.Email == "" || in.SupplierName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.InviteSupplierResponse{Error: "email and supplierName are required"})
	}
	// The session decides who is inviting, not the payload.
	in.InvitingCompanyID = GetCompanyID(c)
	in.InvitingUserID = GetUserID(c)

	inv, err := h.uc.InviteSupplier(c.Context(), in)
	if err != nil {
		status, body := errorStatus(err)
		return c.Status(status).JSON(dto.InviteSupplierResponse{Error: body.Message})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InviteSupplierResponse{
		Success: true,
		Data: fiber.Map{
			"id":         inv.ID,
			"email":      inv.Email,
			"status":     inv.Status,
			"expires_at": inv.ExpiresAt,
		},
	})
}

// Accept godoc
// @Summary      Accept an invitation and create the supplier account
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AcceptInviteRequest  true  "token and credentials"
// @Success      201   {object}  dto.SessionResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /api/invitations/accept [post]
func (h *InviteHandler) Accept(c *fiber.Ctx) error {
	var in dto.AcceptInviteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.Token == "" || len(in.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token and a password of at least 8 characters are required"})
	}
	out, err := h.uc.Accept(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
