package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottring/compliant-connect-sub001/internal/application/notify"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/pir"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

type memCompanyRepo struct {
	rows map[string]*entity.Company
}

func (r *memCompanyRepo) Create(c *entity.Company) error { r.rows[c.ID] = c; return nil }
func (r *memCompanyRepo) GetByID(id string) (*entity.Company, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}
func (r *memCompanyRepo) GetByName(string) (*entity.Company, error) { return nil, nil }
func (r *memCompanyRepo) Update(*entity.Company) error              { return nil }
func (r *memCompanyRepo) List(int, int) ([]*entity.Company, error)  { return nil, nil }

type recSender struct {
	sent []notify.Email
	fail error
}

func (s *recSender) Send(_ context.Context, e notify.Email) error {
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, e)
	return nil
}

func newDispatcher(companies *memCompanyRepo, sender *recSender) *notify.Dispatcher {
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return notify.NewDispatcher(companies, sender, log, "https://app.compliant-connect.test")
}

func request() *entity.PIRRequest {
	return &entity.PIRRequest{
		ID:                "pir-1",
		CustomerID:        "company-a",
		SupplierCompanyID: "company-b",
		ProductName:       "Widget",
		Status:            pir.StatusSent,
	}
}

func TestDispatch_SendNotifiesSupplierContact(t *testing.T) {
	companies := &memCompanyRepo{rows: map[string]*entity.Company{
		"company-a": {ID: "company-a", Name: "Acme Corp", ContactEmail: "compliance@acme.test"},
		"company-b": {ID: "company-b", Name: "Widget Supply Co", ContactEmail: "contact@widgetsupply.test"},
	}}
	sender := &recSender{}
	d := newDispatcher(companies, sender)

	err := d.Dispatch(context.Background(), pir.EventPIRCreated, request())
	require.NoError(t, err)
	require.Len(t, sender.sent, 1, "exactly one email per dispatch")
	assert.Equal(t, "contact@widgetsupply.test", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "Widget")
	assert.Contains(t, sender.sent[0].HTML, "Acme Corp", "names the requesting company")
}

func TestDispatch_SubmissionNotifiesCustomer(t *testing.T) {
	companies := &memCompanyRepo{rows: map[string]*entity.Company{
		"company-a": {ID: "company-a", Name: "Acme Corp", ContactEmail: "compliance@acme.test"},
		"company-b": {ID: "company-b", Name: "Widget Supply Co", ContactEmail: "contact@widgetsupply.test"},
	}}
	sender := &recSender{}
	d := newDispatcher(companies, sender)

	err := d.Dispatch(context.Background(), pir.EventResponseSubmitted, request())
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "compliance@acme.test", sender.sent[0].To)
}

func TestDispatch_MissingContactEmailDropsSilently(t *testing.T) {
	companies := &memCompanyRepo{rows: map[string]*entity.Company{
		"company-a": {ID: "company-a", Name: "Acme Corp", ContactEmail: "compliance@acme.test"},
		"company-b": {ID: "company-b", Name: "Widget Supply Co"}, // no contact email
	}}
	sender := &recSender{}
	d := newDispatcher(companies, sender)

	err := d.Dispatch(context.Background(), pir.EventPIRCreated, request())
	assert.NoError(t, err, "missing recipient is logged, never surfaced")
	assert.Empty(t, sender.sent)
}

func TestDispatch_NoneEventIsNoop(t *testing.T) {
	sender := &recSender{}
	d := newDispatcher(&memCompanyRepo{rows: map[string]*entity.Company{}}, sender)

	err := d.Dispatch(context.Background(), pir.EventNone, request())
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestDispatch_SenderFailureSurfacedForLogging(t *testing.T) {
	companies := &memCompanyRepo{rows: map[string]*entity.Company{
		"company-a": {ID: "company-a", Name: "Acme Corp", ContactEmail: "compliance@acme.test"},
		"company-b": {ID: "company-b", Name: "Widget Supply Co", ContactEmail: "contact@widgetsupply.test"},
	}}
	sender := &recSender{fail: errors.New("smtp down")}
	d := newDispatcher(companies, sender)

	err := d.Dispatch(context.Background(), pir.EventPIRCreated, request())
	assert.Error(t, err)
}

func TestDispatchInvitation_RendersAcceptLink(t *testing.T) {
	companies := &memCompanyRepo{rows: map[string]*entity.Company{
		"company-a": {ID: "company-a", Name: "Acme Corp", ContactEmail: "compliance@acme.test"},
	}}
	sender := &recSender{}
	d := newDispatcher(companies, sender)

	err := d.DispatchInvitation(context.Background(), &entity.Invitation{
		ID:                "inv-1",
		InvitingCompanyID: "company-a",
		SupplierName:      "Widget Supply Co",
		ContactName:       "Jordan Lee",
		Email:             "jordan@widgetsupply.test",
		Token:             "tok-123",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jordan@widgetsupply.test", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "invitations/accept?token=tok-123")
	assert.Contains(t, sender.sent[0].Subject, "Acme Corp")
}
