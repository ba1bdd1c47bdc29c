package repository

import (
	"time"

	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/pir"
)

// PIRRequestRepository defines the persistence port for PIR requests.
type PIRRequestRepository interface {
	Create(req *entity.PIRRequest) error
	AddTags(pirID string, tagIDs []string) error
	GetByID(id string) (*entity.PIRRequest, error)
	UpdateStatus(id string, status pir.Status, updatedAt time.Time) error
	ListByCustomer(companyID string, limit, offset int) ([]*entity.PIRRequest, error)
	ListBySupplier(companyID string, limit, offset int) ([]*entity.PIRRequest, error)
}

// PIRResponseRepository defines the persistence port for responses, flags and
// comments of a request.
type PIRResponseRepository interface {
	// Upsert writes the answer for (pir, question), inserting or replacing the
	// single row the unique constraint allows.
	Upsert(resp *entity.PIRResponse) error
	GetByID(id string) (*entity.PIRResponse, error)
	GetByPIRAndQuestion(pirID, questionID string) (*entity.PIRResponse, error)
	ListByPIR(pirID string) ([]*entity.PIRResponse, error)
	SetApproved(responseID string, at time.Time) error
	SetFlagged(responseID string, flagged bool) error

	CreateFlag(flag *entity.ResponseFlag) error
	ListOpenFlagsByPIR(pirID string) ([]*entity.ResponseFlag, error)
	ResolveFlagsByResponse(responseID string, at time.Time) error

	CreateComment(comment *entity.Comment) error
	ListCommentsByResponse(responseID string) ([]*entity.Comment, error)
}
