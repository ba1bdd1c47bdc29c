package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/scottring/compliant-connect-sub001/internal/domain/pir"
)

// PIRRequest is a Product Information Request: a customer company asking a
// supplier company for compliance data about one product. The customer owns
// the record; the supplier owns the responses.
type PIRRequest struct {
	ID                string
	CustomerID        string
	SupplierCompanyID string
	ProductName       string
	Description       string
	Status            pir.Status
	TagIDs            []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AnswerValue is the typed payload of a response, one variant set per
// question type. Stored as jsonb.
type AnswerValue struct {
	Text    *string          `json:"text,omitempty"`
	Number  *decimal.Decimal `json:"number,omitempty"`
	Bool    *bool            `json:"bool,omitempty"`
	Choices []string         `json:"choices,omitempty"`
	FileURL *string          `json:"file_url,omitempty"`
	Table   [][]string       `json:"table,omitempty"`
}

// IsEmpty reports whether no variant is set.
func (a AnswerValue) IsEmpty() bool {
	return a.Text == nil && a.Number == nil && a.Bool == nil &&
		len(a.Choices) == 0 && a.FileURL == nil && len(a.Table) == 0
}

// PIRResponse is the supplier's answer to one question of a request.
// One row per (request, question) pair.
type PIRResponse struct {
	ID         string
	PIRID      string
	QuestionID string
	Answer     AnswerValue
	ApprovedAt *time.Time // set when the customer approves this answer
	Flagged    bool       // true while an unresolved flag exists
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ResponseFlag marks an answer the customer wants revised.
type ResponseFlag struct {
	ID          string
	ResponseID  string
	CreatedBy   string
	Description string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// Comment is an append-only note on a response.
type Comment struct {
	ID         string
	ResponseID string
	AuthorID   string
	Body       string
	CreatedAt  time.Time
}

// Invitation statuses.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

// Invitation invites a supplier contact by email to join the platform.
type Invitation struct {
	ID                       string
	Email                    string
	InvitingCompanyID        string
	InvitingUserID           string
	SupplierName             string
	ContactName              string
	InvitedSupplierCompanyID *string // set when the supplier company was pre-created
	Token                    string
	Status                   string
	ExpiresAt                time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}
