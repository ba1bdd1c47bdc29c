package pir

import (
	"time"

	"github.com/google/uuid"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	domainpir "github.com/scottring/compliant-connect-sub001/internal/domain/pir"
)

// StartReview moves submitted/resubmitted -> in_review. No notification.
func (uc *UseCase) StartReview(pirID, customerID string) (*dto.PIRRequestResponse, error) {
	req, err := uc.loadOwned(pirID, customerID, domainpir.PartyCustomer)
	if err != nil {
		return nil, err
	}
	return uc.applyTransition(req, domainpir.StatusInReview)
}

// FlagAnswer records a revision flag on one answer while the request is in
// review. The status change to flagged happens in CompleteReview, so the
// customer can flag several answers and notify the supplier once.
func (uc *UseCase) FlagAnswer(pirID, customerID, userID string, in dto.FlagAnswerRequest) error {
	req, err := uc.loadOwned(pirID, customerID, domainpir.PartyCustomer)
	if err != nil {
		return err
	}
	if req.Status != domainpir.StatusInReview {
		return domain.ErrConflict
	}
	resp, err := uc.responseRepo.GetByID(in.ResponseID)
	if err != nil {
		return err
	}
	if resp == nil || resp.PIRID != pirID {
		return domain.ErrNotFound
	}
	now := time.Now()
	if err := uc.responseRepo.CreateFlag(&entity.ResponseFlag{
		ID:          uuid.New().String(),
		ResponseID:  in.ResponseID,
		CreatedBy:   userID,
		Description: in.Description,
		CreatedAt:   now,
	}); err != nil {
		return err
	}
	return uc.responseRepo.SetFlagged(in.ResponseID, true)
}

// ApproveAnswer marks a single answer approved during review.
func (uc *UseCase) ApproveAnswer(pirID, customerID, responseID string) error {
	req, err := uc.loadOwned(pirID, customerID, domainpir.PartyCustomer)
	if err != nil {
		return err
	}
	if req.Status != domainpir.StatusInReview && req.Status != domainpir.StatusResubmitted {
		return domain.ErrConflict
	}
	resp, err := uc.responseRepo.GetByID(responseID)
	if err != nil {
		return err
	}
	if resp == nil || resp.PIRID != pirID {
		return domain.ErrNotFound
	}
	return uc.responseRepo.SetApproved(responseID, time.Now())
}

// CompleteReview closes a review round. Decisions:
//   - "flagged": requires at least one open flag; notifies the supplier.
//   - "approved": requires zero open flags; approves all answers; terminal.
//   - "rejected": terminal.
func (uc *UseCase) CompleteReview(pirID, customerID string, in dto.ReviewDecisionRequest) (*dto.PIRRequestResponse, error) {
	req, err := uc.loadOwned(pirID, customerID, domainpir.PartyCustomer)
	if err != nil {
		return nil, err
	}
	openFlags, err := uc.responseRepo.ListOpenFlagsByPIR(pirID)
	if err != nil {
		return nil, err
	}
	switch in.Decision {
	case "flagged":
		if len(openFlags) == 0 {
			return nil, domain.ErrInvalidInput
		}
		return uc.applyTransition(req, domainpir.StatusFlagged)
	case "approved":
		if len(openFlags) > 0 {
			return nil, domain.ErrConflict
		}
		out, err := uc.applyTransition(req, domainpir.StatusApproved)
		if err != nil {
			return nil, err
		}
		if err := uc.approveAllResponses(pirID); err != nil {
			uc.log.Warn().Err(err).Str("pir_id", pirID).Msg("bulk answer approval failed")
		}
		return out, nil
	case "rejected":
		return uc.applyTransition(req, domainpir.StatusRejected)
	default:
		return nil, domain.ErrInvalidInput
	}
}

// Resubmit moves flagged -> resubmitted: the supplier addressed the flags,
// open flags are resolved and the customer is notified.
func (uc *UseCase) Resubmit(pirID, supplierCompanyID string) (*dto.PIRRequestResponse, error) {
	req, err := uc.loadOwned(pirID, supplierCompanyID, domainpir.PartySupplier)
	if err != nil {
		return nil, err
	}
	if _, _, err := domainpir.Transition(req.Status, domainpir.StatusResubmitted); err != nil {
		return nil, err
	}
	if err := uc.checkRequiredAnswered(req); err != nil {
		return nil, err
	}
	openFlags, err := uc.responseRepo.ListOpenFlagsByPIR(pirID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, f := range openFlags {
		if err := uc.responseRepo.ResolveFlagsByResponse(f.ResponseID, now); err != nil {
			return nil, err
		}
		if err := uc.responseRepo.SetFlagged(f.ResponseID, false); err != nil {
			return nil, err
		}
	}
	return uc.applyTransition(req, domainpir.StatusResubmitted)
}

// CancelRequest moves any non-terminal status to canceled. Terminal, silent.
func (uc *UseCase) CancelRequest(pirID, customerID string) (*dto.PIRRequestResponse, error) {
	req, err := uc.loadOwned(pirID, customerID, domainpir.PartyCustomer)
	if err != nil {
		return nil, err
	}
	return uc.applyTransition(req, domainpir.StatusCanceled)
}

// AddComment appends a comment to a response. Either side of the request may
// comment; the thread is append-only.
func (uc *UseCase) AddComment(responseID, companyID, userID string, in dto.AddCommentRequest) (*dto.CommentResponse, error) {
	resp, err := uc.responseRepo.GetByID(responseID)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, domain.ErrNotFound
	}
	req, err := uc.requestRepo.GetByID(resp.PIRID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.CustomerID != companyID && req.SupplierCompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	comment := &entity.Comment{
		ID:         uuid.New().String(),
		ResponseID: responseID,
		AuthorID:   userID,
		Body:       in.Body,
		CreatedAt:  time.Now(),
	}
	if err := uc.responseRepo.CreateComment(comment); err != nil {
		return nil, err
	}
	return &dto.CommentResponse{
		ID:         comment.ID,
		ResponseID: comment.ResponseID,
		AuthorID:   comment.AuthorID,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt,
	}, nil
}

// ListComments returns the comment thread of a response, oldest first.
func (uc *UseCase) ListComments(responseID, companyID string) ([]dto.CommentResponse, error) {
	resp, err := uc.responseRepo.GetByID(responseID)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, domain.ErrNotFound
	}
	req, err := uc.requestRepo.GetByID(resp.PIRID)
	if err != nil {
		return nil, err
	}
	if req == nil || (req.CustomerID != companyID && req.SupplierCompanyID != companyID) {
		return nil, domain.ErrForbidden
	}
	comments, err := uc.responseRepo.ListCommentsByResponse(responseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, dto.CommentResponse{
			ID:         c.ID,
			ResponseID: c.ResponseID,
			AuthorID:   c.AuthorID,
			Body:       c.Body,
			CreatedAt:  c.CreatedAt,
		})
	}
	return out, nil
}

func (uc *UseCase) approveAllResponses(pirID string) error {
	responses, err := uc.responseRepo.ListByPIR(pirID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, r := range responses {
		if r.ApprovedAt == nil {
			if err := uc.responseRepo.SetApproved(r.ID, now); err != nil {
				return err
			}
		}
	}
	return nil
}
