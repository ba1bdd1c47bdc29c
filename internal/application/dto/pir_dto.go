package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePIRRequest input to create a Product Information Request (starts in draft).
type CreatePIRRequest struct {
	SupplierCompanyID string   `json:"supplier_company_id" validate:"required,uuid"`
	ProductName       string   `json:"product_name" validate:"required,min=1,max=300"`
	Description       string   `json:"description"`
	TagIDs            []string `json:"tag_ids" validate:"omitempty,dive,uuid"`
}

// PIRResponseDTO one answered question of a request.
type PIRResponseDTO struct {
	ID         string           `json:"id"`
	QuestionID string           `json:"question_id"`
	Text       *string          `json:"text,omitempty"`
	Number     *decimal.Decimal `json:"number,omitempty"`
	Bool       *bool            `json:"bool,omitempty"`
	Choices    []string         `json:"choices,omitempty"`
	FileURL    *string          `json:"file_url,omitempty"`
	Table      [][]string       `json:"table,omitempty"`
	ApprovedAt *time.Time       `json:"approved_at,omitempty"`
	Flagged    bool             `json:"flagged"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// SaveAnswerRequest supplier input for one question. Exactly one value field
// should be set, matching the question type.
type SaveAnswerRequest struct {
	QuestionID string           `json:"question_id" validate:"required,uuid"`
	Text       *string          `json:"text"`
	Number     *decimal.Decimal `json:"number"`
	Bool       *bool            `json:"bool"`
	Choices    []string         `json:"choices"`
	FileURL    *string          `json:"file_url"`
	Table      [][]string       `json:"table"`
}

// FlagAnswerRequest customer input to flag an answer for revision.
type FlagAnswerRequest struct {
	ResponseID  string `json:"response_id" validate:"required,uuid"`
	Description string `json:"description" validate:"required,min=1"`
}

// ReviewDecisionRequest customer outcome of a review.
type ReviewDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected flagged"`
}

// PIRRequestResponse request output.
type PIRRequestResponse struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customer_id"`
	SupplierCompanyID string    `json:"supplier_company_id"`
	ProductName       string    `json:"product_name"`
	Description       string    `json:"description"`
	Status            string    `json:"status"`
	DisplayBucket     string    `json:"display_bucket"`
	NextActor         string    `json:"next_actor,omitempty"`
	TagIDs            []string  `json:"tag_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PIRListResponse paginated list of requests.
type PIRListResponse struct {
	Items []PIRRequestResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// PIRDetailResponse request with its responses.
type PIRDetailResponse struct {
	Request   PIRRequestResponse `json:"request"`
	Responses []PIRResponseDTO   `json:"responses"`
}

// AddCommentRequest appends a comment to a response.
type AddCommentRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// CommentResponse one comment on a response.
type CommentResponse struct {
	ID         string    `json:"id"`
	ResponseID string    `json:"response_id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
