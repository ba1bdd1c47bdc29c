package dto

import "time"

// CreateQuestionRequest input to create a question with its tag links
// (atomic, mirrors the create_question_with_tags RPC of the legacy backend).
type CreateQuestionRequest struct {
	SubsectionID string   `json:"subsection_id" validate:"required,uuid"`
	Text         string   `json:"text" validate:"required,min=1"`
	Description  string   `json:"description"`
	Type         string   `json:"type" validate:"required,oneof=text number boolean single_select multi_select file table"`
	Required     bool     `json:"required"`
	Options      []string `json:"options" validate:"omitempty,dive,min=1"`
	TagIDs       []string `json:"tag_ids" validate:"omitempty,dive,uuid"`
}

// QuestionResponse question output.
type QuestionResponse struct {
	ID           string    `json:"id"`
	SubsectionID string    `json:"subsection_id"`
	Text         string    `json:"text"`
	Description  string    `json:"description"`
	Type         string    `json:"type"`
	Required     bool      `json:"required"`
	Options      []string  `json:"options,omitempty"`
	TagIDs       []string  `json:"tag_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// QuestionListResponse paginated list of questions.
type QuestionListResponse struct {
	Items []QuestionResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateTagRequest input to create a tag.
type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description"`
}

// TagResponse tag output.
type TagResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSectionRequest input to create a section or subsection.
type CreateSectionRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
	OrderNum int     `json:"order_num"`
}

// SectionResponse section output.
type SectionResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
	OrderNum int     `json:"order_num"`
}

// ImportRowResult outcome of one CSV row during question import.
type ImportRowResult struct {
	Row     int    `json:"row"`
	Status  string `json:"status"` // imported, skipped, error
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// ImportReportResponse summary of a question-bank import.
type ImportReportResponse struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Errors   int               `json:"errors"`
	Rows     []ImportRowResult `json:"rows"`
}
