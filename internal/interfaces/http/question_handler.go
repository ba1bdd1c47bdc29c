package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/question"
)

// QuestionHandler serves the question bank: questions, tags, sections and
// the bulk CSV import.
type QuestionHandler struct {
	uc            *question.UseCase
	maxUploadSize int64
}

// NewQuestionHandler builds the question handler. maxUploadMB caps the CSV
// import body.
func NewQuestionHandler(uc *question.UseCase, maxUploadMB int) *QuestionHandler {
	return &QuestionHandler{uc: uc, maxUploadSize: int64(maxUploadMB) << 20}
}

// Create godoc
// @Summary      Create a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateQuestionRequest  true  "question"
// @Success      201   {object}  dto.QuestionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/questions [post]
func (h *QuestionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuestionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	out, err := h.uc.CreateWithTags(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Question detail
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.QuestionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/questions/{id} [get]
func (h *QuestionHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      List questions
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int     false  "page size"
// @Param        offset  query  int     false  "page offset"
// @Param        tag_id  query  string  false  "filter by tag, repeatable"
// @Success      200  {object}  dto.QuestionListResponse
// @Router       /api/questions [get]
func (h *QuestionHandler) List(c *fiber.Ctx) error {
	if tagIDs, ok := c.Queries()["tag_id"]; ok && tagIDs != "" {
		items, err := h.uc.ListByTags(strings.Split(tagIDs, ","))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.QuestionListResponse{
			Items: items,
			Page:  dto.PageResponse{Limit: len(items), Total: len(items)},
		})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	out, err := h.uc.List(page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateTag godoc
// @Summary      Create a tag
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTagRequest  true  "tag"
// @Success      201   {object}  dto.TagResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tags [post]
func (h *QuestionHandler) CreateTag(c *fiber.Ctx) error {
	var in dto.CreateTagRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	out, err := h.uc.CreateTag(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListTags godoc
// @Summary      List tags
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.TagResponse
// @Router       /api/tags [get]
func (h *QuestionHandler) ListTags(c *fiber.Ctx) error {
	out, err := h.uc.ListTags()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateSection godoc
// @Summary      Create a section or subsection
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateSectionRequest  true  "section"
// @Success      201   {object}  dto.SectionResponse
// @Router       /api/sections [post]
func (h *QuestionHandler) CreateSection(c *fiber.Ctx) error {
	var in dto.CreateSectionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	out, err := h.uc.CreateSection(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSections godoc
// @Summary      List sections
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.SectionResponse
// @Router       /api/sections [get]
func (h *QuestionHandler) ListSections(c *fiber.Ctx) error {
	out, err := h.uc.ListSections()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ImportCSV godoc
// @Summary      Bulk-import questions from a CSV file
// @Tags         questions
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file           formData  file    true   "CSV file"
// @Param        subsection_id  query     string  false  "target subsection"
// @Success      200  {object}  dto.ImportReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/questions/import [post]
func (h *QuestionHandler) ImportCSV(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "file is required"})
	}
	if fh.Size > h.maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("file exceeds %d MB", h.maxUploadSize>>20),
		})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cannot read file"})
	}
	defer f.Close()

	out, err := h.uc.ImportCSV(c.Context(), f, c.Query("subsection_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
