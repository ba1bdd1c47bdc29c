package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scottring/compliant-connect-sub001/internal/application/admin"
	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
)

// AdminHandler serves the destructive maintenance surface. Only mounted when
// debug tooling is enabled; the reset use case refuses production regardless.
type AdminHandler struct {
	reset *admin.ResetUseCase
}

// NewAdminHandler builds the admin handler.
func NewAdminHandler(reset *admin.ResetUseCase) *AdminHandler {
	return &AdminHandler{reset: reset}
}

type resetRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
}

// Reset godoc
// @Summary      Wipe all application data
// @Description  Requires the environment confirmation code. Refused in production.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  resetRequest  true  "confirmation code"
// @Success      200   {object}  dto.StatusResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/admin/reset [post]
func (h *AdminHandler) Reset(c *fiber.Ctx) error {
	var in resetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if err := h.reset.Reset(c.Context(), in.ConfirmationCode); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatusResponse{Success: true, Message: "all data cleared"})
}
