package pir

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	domainpir "github.com/scottring/compliant-connect-sub001/internal/domain/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// Notifier is the dispatch port the lifecycle fires into. Satisfied by
// *notify.Dispatcher; the call must not block the caller.
type Notifier interface {
	DispatchAsync(event domainpir.Event, req *entity.PIRRequest)
}

// UseCase applies the PIR lifecycle: it validates transitions through the
// domain table, persists them and fires notifications. A status change is
// committed before its notification; delivery failures are logged, never
// rolled back.
type UseCase struct {
	requestRepo  repository.PIRRequestRepository
	responseRepo repository.PIRResponseRepository
	questionRepo repository.QuestionRepository
	companyRepo  repository.CompanyRepository
	dispatcher   Notifier
	log          *logger.Logger
}

// NewUseCase builds the PIR use case.
func NewUseCase(
	requestRepo repository.PIRRequestRepository,
	responseRepo repository.PIRResponseRepository,
	questionRepo repository.QuestionRepository,
	companyRepo repository.CompanyRepository,
	dispatcher Notifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		requestRepo:  requestRepo,
		responseRepo: responseRepo,
		questionRepo: questionRepo,
		companyRepo:  companyRepo,
		dispatcher:   dispatcher,
		log:          log,
	}
}

// CreateRequest creates a PIR in draft for the calling customer company.
// Customer and supplier must be distinct existing companies.
func (uc *UseCase) CreateRequest(customerID string, in dto.CreatePIRRequest) (*dto.PIRRequestResponse, error) {
	if customerID == in.SupplierCompanyID {
		return nil, domain.ErrSameCompany
	}
	supplier, err := uc.companyRepo.GetByID(in.SupplierCompanyID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	req := &entity.PIRRequest{
		ID:                uuid.New().String(),
		CustomerID:        customerID,
		SupplierCompanyID: in.SupplierCompanyID,
		ProductName:       in.ProductName,
		Description:       in.Description,
		Status:            domainpir.Initial(),
		TagIDs:            in.TagIDs,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.requestRepo.Create(req); err != nil {
		return nil, err
	}
	if len(in.TagIDs) > 0 {
		if err := uc.requestRepo.AddTags(req.ID, in.TagIDs); err != nil {
			return nil, err
		}
	}
	return toRequestResponse(req), nil
}

// SendRequest moves draft -> sent and notifies the supplier.
func (uc *UseCase) SendRequest(pirID, customerID string) (*dto.PIRRequestResponse, error) {
	req, err := uc.loadOwned(pirID, customerID, domainpir.PartyCustomer)
	if err != nil {
		return nil, err
	}
	return uc.applyTransition(req, domainpir.StatusSent)
}

// SaveAnswer upserts the supplier's answer for one question. Allowed while
// the request is with the supplier (sent, in_progress or flagged); the first
// answer on a sent request implicitly moves it to in_progress.
func (uc *UseCase) SaveAnswer(pirID, supplierCompanyID string, in dto.SaveAnswerRequest) (*dto.PIRResponseDTO, error) {
	req, err := uc.loadOwned(pirID, supplierCompanyID, domainpir.PartySupplier)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case domainpir.StatusSent, domainpir.StatusInProgress, domainpir.StatusFlagged:
	default:
		return nil, domain.ErrConflict
	}

	question, err := uc.questionRepo.GetByID(in.QuestionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, domain.ErrNotFound
	}
	answer := entity.AnswerValue{
		Text:    in.Text,
		Number:  in.Number,
		Bool:    in.Bool,
		Choices: in.Choices,
		FileURL: in.FileURL,
		Table:   in.Table,
	}
	if err := validateAnswer(question, answer); err != nil {
		return nil, err
	}

	now := time.Now()
	resp := &entity.PIRResponse{
		ID:         uuid.New().String(),
		PIRID:      pirID,
		QuestionID: in.QuestionID,
		Answer:     answer,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if existing, err := uc.responseRepo.GetByPIRAndQuestion(pirID, in.QuestionID); err != nil {
		return nil, err
	} else if existing != nil {
		resp.ID = existing.ID
		resp.CreatedAt = existing.CreatedAt
		resp.Flagged = existing.Flagged
	}
	if err := uc.responseRepo.Upsert(resp); err != nil {
		return nil, err
	}

	// Display-only bucket change; no notification attached to this edge.
	if req.Status == domainpir.StatusSent {
		if _, err := uc.applyTransition(req, domainpir.StatusInProgress); err != nil {
			uc.log.Warn().Err(err).Str("pir_id", pirID).Msg("in_progress bump failed")
		}
	}
	return toResponseDTO(resp), nil
}

// SubmitResponses moves sent/in_progress -> submitted after verifying every
// required question in scope has a non-empty answer. The check runs before
// any store write: an incomplete questionnaire changes nothing.
func (uc *UseCase) SubmitResponses(pirID, supplierCompanyID string) (*dto.PIRRequestResponse, error) {
	req, err := uc.loadOwned(pirID, supplierCompanyID, domainpir.PartySupplier)
	if err != nil {
		return nil, err
	}
	if _, _, err := domainpir.Transition(req.Status, domainpir.StatusSubmitted); err != nil {
		return nil, err
	}
	if err := uc.checkRequiredAnswered(req); err != nil {
		return nil, err
	}
	return uc.applyTransition(req, domainpir.StatusSubmitted)
}

// GetRequest returns a request with its responses. Visible to both sides.
func (uc *UseCase) GetRequest(pirID, companyID string) (*dto.PIRDetailResponse, error) {
	req, err := uc.requestRepo.GetByID(pirID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.CustomerID != companyID && req.SupplierCompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	responses, err := uc.responseRepo.ListByPIR(pirID)
	if err != nil {
		return nil, err
	}
	out := &dto.PIRDetailResponse{Request: *toRequestResponse(req)}
	for _, r := range responses {
		out.Responses = append(out.Responses, *toResponseDTO(r))
	}
	return out, nil
}

// ListOutbound lists requests the company created as customer.
func (uc *UseCase) ListOutbound(companyID string, limit, offset int) (*dto.PIRListResponse, error) {
	list, err := uc.requestRepo.ListByCustomer(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toListResponse(list, limit, offset), nil
}

// ListInbound lists requests addressed to the company as supplier.
func (uc *UseCase) ListInbound(companyID string, limit, offset int) (*dto.PIRListResponse, error) {
	list, err := uc.requestRepo.ListBySupplier(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toListResponse(list, limit, offset), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────────────────────────────────

// loadOwned loads a request and verifies the caller acts for the right side.
func (uc *UseCase) loadOwned(pirID, companyID string, side domainpir.Party) (*entity.PIRRequest, error) {
	req, err := uc.requestRepo.GetByID(pirID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	owner := req.CustomerID
	if side == domainpir.PartySupplier {
		owner = req.SupplierCompanyID
	}
	if owner != companyID {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// applyTransition validates the move, commits it and fires the attached
// notification asynchronously. The dispatch never blocks or undoes the commit.
func (uc *UseCase) applyTransition(req *entity.PIRRequest, to domainpir.Status) (*dto.PIRRequestResponse, error) {
	_, event, err := domainpir.Transition(req.Status, to)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := uc.requestRepo.UpdateStatus(req.ID, to, now); err != nil {
		return nil, err
	}
	req.Status = to
	req.UpdatedAt = now
	uc.log.Info().
		Str("pir_id", req.ID).
		Str("status", string(to)).
		Msg("PIR status changed")
	uc.dispatcher.DispatchAsync(event, req)
	return toRequestResponse(req), nil
}

// checkRequiredAnswered fails with ErrMissingRequired when any required
// question in the request's tag scope lacks a non-empty answer.
func (uc *UseCase) checkRequiredAnswered(req *entity.PIRRequest) error {
	questions, err := uc.questionRepo.ListByTags(req.TagIDs)
	if err != nil {
		return err
	}
	responses, err := uc.responseRepo.ListByPIR(req.ID)
	if err != nil {
		return err
	}
	answered := make(map[string]bool, len(responses))
	for _, r := range responses {
		if !r.Answer.IsEmpty() {
			answered[r.QuestionID] = true
		}
	}
	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			return fmt.Errorf("%w: question %s", domain.ErrMissingRequired, q.ID)
		}
	}
	return nil
}

// validateAnswer checks the payload variant against the question type.
func validateAnswer(q *entity.Question, a entity.AnswerValue) error {
	switch q.Type {
	case entity.QuestionText:
		if a.Text == nil {
			return fmt.Errorf("%w: text answer required", domain.ErrInvalidInput)
		}
	case entity.QuestionNumber:
		if a.Number == nil {
			return fmt.Errorf("%w: numeric answer required", domain.ErrInvalidInput)
		}
	case entity.QuestionBoolean:
		if a.Bool == nil {
			return fmt.Errorf("%w: boolean answer required", domain.ErrInvalidInput)
		}
	case entity.QuestionSingleSelect:
		if len(a.Choices) != 1 {
			return fmt.Errorf("%w: exactly one choice required", domain.ErrInvalidInput)
		}
		if !optionAllowed(q.Options, a.Choices[0]) {
			return fmt.Errorf("%w: %q is not an option", domain.ErrInvalidInput, a.Choices[0])
		}
	case entity.QuestionMultiSelect:
		if len(a.Choices) == 0 {
			return fmt.Errorf("%w: at least one choice required", domain.ErrInvalidInput)
		}
		for _, c := range a.Choices {
			if !optionAllowed(q.Options, c) {
				return fmt.Errorf("%w: %q is not an option", domain.ErrInvalidInput, c)
			}
		}
	case entity.QuestionFile:
		if a.FileURL == nil {
			return fmt.Errorf("%w: file answer required", domain.ErrInvalidInput)
		}
	case entity.QuestionTable:
		if len(a.Table) == 0 {
			return fmt.Errorf("%w: table answer required", domain.ErrInvalidInput)
		}
	}
	return nil
}

func optionAllowed(options []string, choice string) bool {
	for _, o := range options {
		if o == choice {
			return true
		}
	}
	return false
}

func toRequestResponse(req *entity.PIRRequest) *dto.PIRRequestResponse {
	if req == nil {
		return nil
	}
	next := ""
	if actor, ok := domainpir.NextActor(req.Status); ok {
		next = string(actor)
	}
	return &dto.PIRRequestResponse{
		ID:                req.ID,
		CustomerID:        req.CustomerID,
		SupplierCompanyID: req.SupplierCompanyID,
		ProductName:       req.ProductName,
		Description:       req.Description,
		Status:            string(req.Status),
		DisplayBucket:     domainpir.DisplayBucket(req.Status),
		NextActor:         next,
		TagIDs:            req.TagIDs,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
}

func toResponseDTO(r *entity.PIRResponse) *dto.PIRResponseDTO {
	if r == nil {
		return nil
	}
	return &dto.PIRResponseDTO{
		ID:         r.ID,
		QuestionID: r.QuestionID,
		Text:       r.Answer.Text,
		Number:     r.Answer.Number,
		Bool:       r.Answer.Bool,
		Choices:    r.Answer.Choices,
		FileURL:    r.Answer.FileURL,
		Table:      r.Answer.Table,
		ApprovedAt: r.ApprovedAt,
		Flagged:    r.Flagged,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toListResponse(list []*entity.PIRRequest, limit, offset int) *dto.PIRListResponse {
	items := make([]dto.PIRRequestResponse, 0, len(list))
	for _, req := range list {
		items = append(items, *toRequestResponse(req))
	}
	return &dto.PIRListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
}
