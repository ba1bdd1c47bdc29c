package entity

import "time"

// Question types (must match the CHECK on questions.question_type).
const (
	QuestionText         = "text"
	QuestionNumber       = "number"
	QuestionBoolean      = "boolean"
	QuestionSingleSelect = "single_select"
	QuestionMultiSelect  = "multi_select"
	QuestionFile         = "file"
	QuestionTable        = "table"
)

// ValidQuestionType reports whether s is one of the defined question types.
func ValidQuestionType(s string) bool {
	switch s {
	case QuestionText, QuestionNumber, QuestionBoolean,
		QuestionSingleSelect, QuestionMultiSelect, QuestionFile, QuestionTable:
		return true
	}
	return false
}

// IsChoiceType reports whether the type requires an options list.
func IsChoiceType(s string) bool {
	return s == QuestionSingleSelect || s == QuestionMultiSelect
}

// Question belongs to the shared question bank. Identity is immutable once
// any PIR response references it.
type Question struct {
	ID           string
	SubsectionID string
	Text         string
	Description  string
	Type         string
	Required     bool
	Options      []string // only for choice types
	TagIDs       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tag scopes which questions apply to a PIR. Many-to-many with both questions
// and PIR requests.
type Tag struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Section groups questions hierarchically (sections contain subsections).
type Section struct {
	ID        string
	Name      string
	ParentID  *string // nil for top-level sections
	OrderNum  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
