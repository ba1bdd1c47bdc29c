package pir_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppir "github.com/scottring/compliant-connect-sub001/internal/application/dto"
	pirapp "github.com/scottring/compliant-connect-sub001/internal/application/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	domainpir "github.com/scottring/compliant-connect-sub001/internal/domain/pir"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ──────────────────────────────────────────────────────────────────────────────

type memRequestRepo struct {
	rows         map[string]*entity.PIRRequest
	statusWrites int // counts UpdateStatus calls reaching the store
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{rows: map[string]*entity.PIRRequest{}}
}

func (r *memRequestRepo) Create(req *entity.PIRRequest) error {
	cp := *req
	r.rows[req.ID] = &cp
	return nil
}

func (r *memRequestRepo) AddTags(pirID string, tagIDs []string) error { return nil }

func (r *memRequestRepo) GetByID(id string) (*entity.PIRRequest, error) {
	req, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *memRequestRepo) UpdateStatus(id string, status domainpir.Status, updatedAt time.Time) error {
	r.statusWrites++
	r.rows[id].Status = status
	r.rows[id].UpdatedAt = updatedAt
	return nil
}

func (r *memRequestRepo) ListByCustomer(companyID string, limit, offset int) ([]*entity.PIRRequest, error) {
	var out []*entity.PIRRequest
	for _, req := range r.rows {
		if req.CustomerID == companyID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *memRequestRepo) ListBySupplier(companyID string, limit, offset int) ([]*entity.PIRRequest, error) {
	var out []*entity.PIRRequest
	for _, req := range r.rows {
		if req.SupplierCompanyID == companyID {
			out = append(out, req)
		}
	}
	return out, nil
}

type memResponseRepo struct {
	responses map[string]*entity.PIRResponse
	flags     []*entity.ResponseFlag
	comments  []*entity.Comment
}

func newMemResponseRepo() *memResponseRepo {
	return &memResponseRepo{responses: map[string]*entity.PIRResponse{}}
}

func (r *memResponseRepo) Upsert(resp *entity.PIRResponse) error {
	cp := *resp
	r.responses[resp.ID] = &cp
	return nil
}

func (r *memResponseRepo) GetByID(id string) (*entity.PIRResponse, error) {
	resp, ok := r.responses[id]
	if !ok {
		return nil, nil
	}
	cp := *resp
	return &cp, nil
}

func (r *memResponseRepo) GetByPIRAndQuestion(pirID, questionID string) (*entity.PIRResponse, error) {
	for _, resp := range r.responses {
		if resp.PIRID == pirID && resp.QuestionID == questionID {
			cp := *resp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memResponseRepo) ListByPIR(pirID string) ([]*entity.PIRResponse, error) {
	var out []*entity.PIRResponse
	for _, resp := range r.responses {
		if resp.PIRID == pirID {
			cp := *resp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memResponseRepo) SetApproved(responseID string, at time.Time) error {
	if resp, ok := r.responses[responseID]; ok {
		resp.ApprovedAt = &at
	}
	return nil
}

func (r *memResponseRepo) SetFlagged(responseID string, flagged bool) error {
	if resp, ok := r.responses[responseID]; ok {
		resp.Flagged = flagged
	}
	return nil
}

func (r *memResponseRepo) CreateFlag(flag *entity.ResponseFlag) error {
	r.flags = append(r.flags, flag)
	return nil
}

func (r *memResponseRepo) ListOpenFlagsByPIR(pirID string) ([]*entity.ResponseFlag, error) {
	var out []*entity.ResponseFlag
	for _, f := range r.flags {
		if f.ResolvedAt != nil {
			continue
		}
		if resp, ok := r.responses[f.ResponseID]; ok && resp.PIRID == pirID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memResponseRepo) ResolveFlagsByResponse(responseID string, at time.Time) error {
	for _, f := range r.flags {
		if f.ResponseID == responseID && f.ResolvedAt == nil {
			f.ResolvedAt = &at
		}
	}
	return nil
}

func (r *memResponseRepo) CreateComment(c *entity.Comment) error {
	r.comments = append(r.comments, c)
	return nil
}

func (r *memResponseRepo) ListCommentsByResponse(responseID string) ([]*entity.Comment, error) {
	var out []*entity.Comment
	for _, c := range r.comments {
		if c.ResponseID == responseID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memQuestionRepo struct {
	rows []*entity.Question
}

func (r *memQuestionRepo) Create(q *entity.Question) error {
	r.rows = append(r.rows, q)
	return nil
}

func (r *memQuestionRepo) AddTags(questionID string, tagIDs []string) error { return nil }

func (r *memQuestionRepo) GetByID(id string) (*entity.Question, error) {
	for _, q := range r.rows {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (r *memQuestionRepo) List(limit, offset int) ([]*entity.Question, error) { return r.rows, nil }

func (r *memQuestionRepo) ListByTags(tagIDs []string) ([]*entity.Question, error) {
	want := map[string]bool{}
	for _, id := range tagIDs {
		want[id] = true
	}
	var out []*entity.Question
	for _, q := range r.rows {
		for _, t := range q.TagIDs {
			if want[t] {
				out = append(out, q)
				break
			}
		}
	}
	return out, nil
}

type memCompanyRepo struct {
	rows []*entity.Company
}

func (r *memCompanyRepo) Create(c *entity.Company) error {
	r.rows = append(r.rows, c)
	return nil
}

func (r *memCompanyRepo) GetByID(id string) (*entity.Company, error) {
	for _, c := range r.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCompanyRepo) GetByName(name string) (*entity.Company, error) { return nil, nil }
func (r *memCompanyRepo) Update(*entity.Company) error                   { return nil }
func (r *memCompanyRepo) List(int, int) ([]*entity.Company, error)       { return r.rows, nil }

// recNotifier records dispatched events synchronously.
type recNotifier struct {
	events []domainpir.Event
}

func (n *recNotifier) DispatchAsync(event domainpir.Event, req *entity.PIRRequest) {
	if event != domainpir.EventNone {
		n.events = append(n.events, event)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	customerID = "company-a"
	supplierID = "company-b"
	tagID      = "tag-compliance"
)

type fixture struct {
	uc        *pirapp.UseCase
	requests  *memRequestRepo
	responses *memResponseRepo
	questions *memQuestionRepo
	notifier  *recNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	requests := newMemRequestRepo()
	responses := newMemResponseRepo()
	questions := &memQuestionRepo{rows: []*entity.Question{
		{ID: "q-material", Text: "Material composition", Type: entity.QuestionText, Required: true, TagIDs: []string{tagID}},
		{ID: "q-lead", Text: "Lead content (ppm)", Type: entity.QuestionNumber, Required: true, TagIDs: []string{tagID}},
		{ID: "q-reach", Text: "REACH compliant", Type: entity.QuestionBoolean, Required: false, TagIDs: []string{tagID}},
	}}
	companies := &memCompanyRepo{rows: []*entity.Company{
		{ID: customerID, Name: "Acme Corp", ContactEmail: "compliance@acme.test"},
		{ID: supplierID, Name: "Widget Supply Co", ContactEmail: "contact@widgetsupply.test"},
	}}
	notifier := &recNotifier{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := pirapp.NewUseCase(requests, responses, questions, companies, notifier, log)
	return &fixture{uc: uc, requests: requests, responses: responses, questions: questions, notifier: notifier}
}

func (f *fixture) createDraft(t *testing.T) string {
	t.Helper()
	out, err := f.uc.CreateRequest(customerID, apppir.CreatePIRRequest{
		SupplierCompanyID: supplierID,
		ProductName:       "Widget",
		TagIDs:            []string{tagID},
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) answerAll(t *testing.T, pirID string) {
	t.Helper()
	material := "Aluminium 6061"
	_, err := f.uc.SaveAnswer(pirID, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-material", Text: &material})
	require.NoError(t, err)
	lead := decimal.NewFromInt(12)
	_, err = f.uc.SaveAnswer(pirID, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-lead", Number: &lead})
	require.NoError(t, err)
}

func (f *fixture) status(pirID string) domainpir.Status {
	return f.requests.rows[pirID].Status
}

// ──────────────────────────────────────────────────────────────────────────────
// Creation and sending
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateRequest_StartsInDraft(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	assert.Equal(t, domainpir.StatusDraft, f.status(id), "a new request always starts in draft")
	assert.Empty(t, f.notifier.events, "creating a draft does not notify")
}

func TestCreateRequest_SameCompanyRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateRequest(customerID, apppir.CreatePIRRequest{
		SupplierCompanyID: customerID,
		ProductName:       "Widget",
	})
	assert.ErrorIs(t, err, domain.ErrSameCompany)
}

func TestCreateRequest_UnknownSupplierRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateRequest(customerID, apppir.CreatePIRRequest{
		SupplierCompanyID: "company-ghost",
		ProductName:       "Widget",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendRequest_NotifiesOnce(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)

	out, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)
	assert.Equal(t, "sent", out.Status)
	require.Len(t, f.notifier.events, 1, "exactly one dispatcher invocation for draft -> sent")
	assert.Equal(t, domainpir.EventPIRCreated, f.notifier.events[0])
}

func TestSendRequest_OnlyCustomerMaySend(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, supplierID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Answering and submitting
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveAnswer_FirstAnswerMovesToInProgress(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)

	material := "Steel"
	_, err = f.uc.SaveAnswer(id, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-material", Text: &material})
	require.NoError(t, err)
	assert.Equal(t, domainpir.StatusInProgress, f.status(id))
	assert.Len(t, f.notifier.events, 1, "the in_progress bump is silent")
}

func TestSaveAnswer_TypeMismatchRejected(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)

	yes := true
	_, err = f.uc.SaveAnswer(id, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-material", Bool: &yes})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "text question rejects a boolean payload")
}

func TestSaveAnswer_UpsertKeepsOneRowPerQuestion(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)

	first := "Steel"
	second := "Stainless steel"
	_, err = f.uc.SaveAnswer(id, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-material", Text: &first})
	require.NoError(t, err)
	_, err = f.uc.SaveAnswer(id, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-material", Text: &second})
	require.NoError(t, err)

	list, _ := f.responses.ListByPIR(id)
	require.Len(t, list, 1, "one response row per (request, question)")
	assert.Equal(t, "Stainless steel", *list[0].Answer.Text)
}

// Required questions unanswered: the submit is rejected before any store write.
func TestSubmitResponses_MissingRequiredRejectedBeforeWrites(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)

	material := "Steel"
	_, err = f.uc.SaveAnswer(id, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-material", Text: &material})
	require.NoError(t, err)
	writesBefore := f.requests.statusWrites

	// q-lead (required) is unanswered
	_, err = f.uc.SubmitResponses(id, supplierID)
	assert.ErrorIs(t, err, domain.ErrMissingRequired)
	assert.Equal(t, domainpir.StatusInProgress, f.status(id))
	assert.Equal(t, writesBefore, f.requests.statusWrites, "no status write on rejected submit")
	assert.Len(t, f.notifier.events, 1, "no submission notification fired")
}

func TestSubmitResponses_AllRequiredAnswered(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)
	f.answerAll(t, id)

	out, err := f.uc.SubmitResponses(id, supplierID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", out.Status)
	assert.Equal(t, domainpir.EventResponseSubmitted, f.notifier.events[len(f.notifier.events)-1])
}

// ──────────────────────────────────────────────────────────────────────────────
// Review cycle and terminality
// ──────────────────────────────────────────────────────────────────────────────

// End-to-end: draft -> sent -> submitted -> flagged -> resubmitted -> approved,
// with exactly one notification per notifying edge and a frozen terminal state.
func TestLifecycle_EndToEnd(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)

	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)

	f.answerAll(t, id)
	_, err = f.uc.SubmitResponses(id, supplierID)
	require.NoError(t, err)

	_, err = f.uc.StartReview(id, customerID)
	require.NoError(t, err)
	assert.Equal(t, domainpir.StatusInReview, f.status(id))

	// Flag the lead-content answer.
	resp, err := f.responses.GetByPIRAndQuestion(id, "q-lead")
	require.NoError(t, err)
	require.NotNil(t, resp)
	err = f.uc.FlagAnswer(id, customerID, "user-reviewer", apppir.FlagAnswerRequest{
		ResponseID:  resp.ID,
		Description: "Please attach the lab test report",
	})
	require.NoError(t, err)

	_, err = f.uc.CompleteReview(id, customerID, apppir.ReviewDecisionRequest{Decision: "flagged"})
	require.NoError(t, err)
	assert.Equal(t, domainpir.StatusFlagged, f.status(id))

	// Supplier revises the answer and resubmits.
	lead := decimal.NewFromInt(8)
	_, err = f.uc.SaveAnswer(id, supplierID, apppir.SaveAnswerRequest{QuestionID: "q-lead", Number: &lead})
	require.NoError(t, err)
	_, err = f.uc.Resubmit(id, supplierID)
	require.NoError(t, err)
	assert.Equal(t, domainpir.StatusResubmitted, f.status(id))

	open, _ := f.responses.ListOpenFlagsByPIR(id)
	assert.Empty(t, open, "resubmission resolves open flags")

	_, err = f.uc.CompleteReview(id, customerID, apppir.ReviewDecisionRequest{Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, domainpir.StatusApproved, f.status(id))

	assert.Equal(t, []domainpir.Event{
		domainpir.EventPIRCreated,
		domainpir.EventResponseSubmitted,
		domainpir.EventRevisionRequested,
		domainpir.EventResponseResubmitted,
		domainpir.EventReviewCompleted,
	}, f.notifier.events, "one email per notifying edge, in order")

	// No further status-changing action reaches the store.
	writes := f.requests.statusWrites
	_, err = f.uc.CancelRequest(id, customerID)
	assert.ErrorIs(t, err, domainpir.ErrTerminalStatus)
	_, err = f.uc.SendRequest(id, customerID)
	assert.Error(t, err)
	assert.Equal(t, writes, f.requests.statusWrites, "terminal status blocks writes")
}

func TestCompleteReview_ApproveWithOpenFlagsRejected(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)
	f.answerAll(t, id)
	_, err = f.uc.SubmitResponses(id, supplierID)
	require.NoError(t, err)
	_, err = f.uc.StartReview(id, customerID)
	require.NoError(t, err)

	resp, _ := f.responses.GetByPIRAndQuestion(id, "q-material")
	require.NoError(t, f.uc.FlagAnswer(id, customerID, "user-reviewer", apppir.FlagAnswerRequest{
		ResponseID: resp.ID, Description: "Source unclear",
	}))

	_, err = f.uc.CompleteReview(id, customerID, apppir.ReviewDecisionRequest{Decision: "approved"})
	assert.ErrorIs(t, err, domain.ErrConflict, "cannot approve while flags are open")
}

func TestCompleteReview_Reject(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)
	f.answerAll(t, id)
	_, err = f.uc.SubmitResponses(id, supplierID)
	require.NoError(t, err)
	_, err = f.uc.StartReview(id, customerID)
	require.NoError(t, err)

	out, err := f.uc.CompleteReview(id, customerID, apppir.ReviewDecisionRequest{Decision: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.Status)
	assert.Equal(t, domainpir.EventReviewCompleted, f.notifier.events[len(f.notifier.events)-1])
}

func TestCancelRequest_FromNonTerminal(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	events := len(f.notifier.events)

	out, err := f.uc.CancelRequest(id, customerID)
	require.NoError(t, err)
	assert.Equal(t, "canceled", out.Status)
	assert.Len(t, f.notifier.events, events, "cancellation sends no notification")
}

// ──────────────────────────────────────────────────────────────────────────────
// Comments
// ──────────────────────────────────────────────────────────────────────────────

func TestComments_AppendOnlyThreadVisibleToBothSides(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t)
	_, err := f.uc.SendRequest(id, customerID)
	require.NoError(t, err)
	f.answerAll(t, id)

	resp, _ := f.responses.GetByPIRAndQuestion(id, "q-material")
	_, err = f.uc.AddComment(resp.ID, customerID, "user-a", apppir.AddCommentRequest{Body: "Can you confirm the alloy?"})
	require.NoError(t, err)
	_, err = f.uc.AddComment(resp.ID, supplierID, "user-b", apppir.AddCommentRequest{Body: "Confirmed, 6061."})
	require.NoError(t, err)

	thread, err := f.uc.ListComments(resp.ID, customerID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "Can you confirm the alloy?", thread[0].Body)

	_, err = f.uc.ListComments(resp.ID, "company-outsider")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
