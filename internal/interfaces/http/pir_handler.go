package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/pir"
)

// PIRHandler serves the Product Information Request lifecycle: creation and
// sending on the customer side, answering and submitting on the supplier
// side, review and exports back on the customer side.
type PIRHandler struct {
	uc     *pir.UseCase
	export *pir.ExportUseCase
}

// NewPIRHandler builds the PIR handler.
func NewPIRHandler(uc *pir.UseCase, export *pir.ExportUseCase) *PIRHandler {
	return &PIRHandler{uc: uc, export: export}
}

// Create godoc
// @Summary      Create a request (draft)
// @Tags         pirs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreatePIRRequest  true  "supplier, product, tags"
// @Success      201   {object}  dto.PIRRequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pirs [post]
func (h *PIRHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePIRRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.SupplierCompanyID == "" || in.ProductName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "supplier_company_id and product_name are required"})
	}
	out, err := h.uc.CreateRequest(GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Send godoc
// @Summary      Send a draft to the supplier
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRRequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pirs/{id}/send [post]
func (h *PIRHandler) Send(c *fiber.Ctx) error {
	out, err := h.uc.SendRequest(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListOutbound godoc
// @Summary      Requests this company sent
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRListResponse
// @Router       /api/pirs/outbound [get]
func (h *PIRHandler) ListOutbound(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	page.DefaultPage()
	out, err := h.uc.ListOutbound(GetCompanyID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListInbound godoc
// @Summary      Requests addressed to this company
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRListResponse
// @Router       /api/pirs/inbound [get]
func (h *PIRHandler) ListInbound(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	page.DefaultPage()
	out, err := h.uc.ListInbound(GetCompanyID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Request detail with responses
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pirs/{id} [get]
func (h *PIRHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetRequest(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SaveAnswer godoc
// @Summary      Save or replace one answer (supplier)
// @Tags         pirs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SaveAnswerRequest  true  "question_id plus one typed value"
// @Success      200   {object}  dto.PIRResponseDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pirs/{id}/answers [put]
func (h *PIRHandler) SaveAnswer(c *fiber.Ctx) error {
	var in dto.SaveAnswerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.QuestionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "question_id is required"})
	}
	out, err := h.uc.SaveAnswer(c.Params("id"), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Submit the questionnaire (supplier)
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRRequestResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/pirs/{id}/submit [post]
func (h *PIRHandler) Submit(c *fiber.Ctx) error {
	out, err := h.uc.SubmitResponses(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StartReview godoc
// @Summary      Start reviewing submitted responses (customer)
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRRequestResponse
// @Router       /api/pirs/{id}/review [post]
func (h *PIRHandler) StartReview(c *fiber.Ctx) error {
	out, err := h.uc.StartReview(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// FlagAnswer godoc
// @Summary      Flag one answer for revision (customer)
// @Tags         pirs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.FlagAnswerRequest  true  "response_id, description"
// @Success      200   {object}  dto.StatusResponse
// @Router       /api/pirs/{id}/flags [post]
func (h *PIRHandler) FlagAnswer(c *fiber.Ctx) error {
	var in dto.FlagAnswerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.ResponseID == "" || in.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "response_id and description are required"})
	}
	if err := h.uc.FlagAnswer(c.Params("id"), GetCompanyID(c), GetUserID(c), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatusResponse{Success: true})
}

// ApproveAnswer godoc
// @Summary      Approve one answer (customer)
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StatusResponse
// @Router       /api/pirs/{id}/answers/{responseId}/approve [post]
func (h *PIRHandler) ApproveAnswer(c *fiber.Ctx) error {
	if err := h.uc.ApproveAnswer(c.Params("id"), GetCompanyID(c), c.Params("responseId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatusResponse{Success: true})
}

// CompleteReview godoc
// @Summary      Close the review with a decision (customer)
// @Tags         pirs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ReviewDecisionRequest  true  "approved | rejected | flagged"
// @Success      200   {object}  dto.PIRRequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pirs/{id}/review/complete [post]
func (h *PIRHandler) CompleteReview(c *fiber.Ctx) error {
	var in dto.ReviewDecisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	out, err := h.uc.CompleteReview(c.Params("id"), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Resubmit godoc
// @Summary      Resubmit after addressing flags (supplier)
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRRequestResponse
// @Router       /api/pirs/{id}/resubmit [post]
func (h *PIRHandler) Resubmit(c *fiber.Ctx) error {
	out, err := h.uc.Resubmit(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancel a request (customer)
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PIRRequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pirs/{id}/cancel [post]
func (h *PIRHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.CancelRequest(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddComment godoc
// @Summary      Comment on one answer (either side)
// @Tags         pirs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AddCommentRequest  true  "body"
// @Success      201   {object}  dto.CommentResponse
// @Router       /api/responses/{responseId}/comments [post]
func (h *PIRHandler) AddComment(c *fiber.Ctx) error {
	var in dto.AddCommentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "body is required"})
	}
	out, err := h.uc.AddComment(c.Params("responseId"), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListComments godoc
// @Summary      Comment thread of one answer
// @Tags         pirs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.CommentResponse
// @Router       /api/responses/{responseId}/comments [get]
func (h *PIRHandler) ListComments(c *fiber.Ctx) error {
	out, err := h.uc.ListComments(c.Params("responseId"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExportPDF godoc
// @Summary      Compliance report PDF of an approved request
// @Tags         pirs
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}  byte
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pirs/{id}/report.pdf [get]
func (h *PIRHandler) ExportPDF(c *fiber.Ctx) error {
	out, err := h.export.ExportPDF(c.Context(), c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="compliance-report.pdf"`)
	return c.Send(out)
}

// ExportXML godoc
// @Summary      XML package of an approved request
// @Tags         pirs
// @Produce      application/xml
// @Security     BearerAuth
// @Success      200  {file}  byte
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pirs/{id}/export.xml [get]
func (h *PIRHandler) ExportXML(c *fiber.Ctx) error {
	out, err := h.export.ExportXML(c.Params("id"), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="compliance-report.xml"`)
	return c.Send(out)
}
