package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/notify"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	domainpir "github.com/scottring/compliant-connect-sub001/internal/domain/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

// NotificationHandler is the legacy notification surface: clients POST an
// event type plus the affected record and the email goes out synchronously.
// The lifecycle use cases dispatch on their own; this endpoint exists for
// retries and for callers that still drive notifications by hand.
type NotificationHandler struct {
	pirRepo    repository.PIRRequestRepository
	dispatcher *notify.Dispatcher
}

// NewNotificationHandler builds the notification handler.
func NewNotificationHandler(pirRepo repository.PIRRequestRepository, dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{pirRepo: pirRepo, dispatcher: dispatcher}
}

// Send godoc
// @Summary      Send a notification email for an event
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.NotificationRequest  true  "event type plus record"
// @Success      200   {object}  dto.StatusResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/notifications [post]
func (h *NotificationHandler) Send(c *fiber.Ctx) error {
	var in dto.NotificationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type is required"})
	}

	if in.Type == "SUPPLIER_INVITATION" {
		return h.sendInvitation(c, in)
	}

	event := domainpir.Event(in.Type)
	switch event {
	case domainpir.EventPIRCreated, domainpir.EventResponseSubmitted,
		domainpir.EventRevisionRequested, domainpir.EventResponseResubmitted,
		domainpir.EventReviewCompleted:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "unknown notification type"})
	}

	pirID, _ := in.Record["id"].(string)
	if pirID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "record.id is required"})
	}
	req, err := h.pirRepo.GetByID(pirID)
	if err != nil {
		return respondError(c, err)
	}
	if req == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "request not found"})
	}
	if err := h.dispatcher.Dispatch(c.Context(), event, req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "DELIVERY_FAILED", Message: err.Error()})
	}
	return c.JSON(dto.StatusResponse{Success: true, Message: "notification sent"})
}

func (h *NotificationHandler) sendInvitation(c *fiber.Ctx, in dto.NotificationRequest) error {
	inv := entity.Invitation{
		Email:        stringField(in.Data, "email"),
		SupplierName: stringField(in.Data, "supplier_name"),
		ContactName:  stringField(in.Data, "contact_name"),
		Token:        stringField(in.Data, "token"),
		ExpiresAt:    time.Now().Add(7 * 24 * time.Hour),
	}
	if inv.Email == "" || inv.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "data.email and data.token are required"})
	}
	if err := h.dispatcher.DispatchInvitation(c.Context(), &inv); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "DELIVERY_FAILED", Message: err.Error()})
	}
	return c.JSON(dto.StatusResponse{Success: true, Message: "invitation sent"})
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
