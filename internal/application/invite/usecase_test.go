package invite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/invite"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/config"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

type memInvitationRepo struct {
	rows map[string]*entity.Invitation // by token
}

func (r *memInvitationRepo) Create(inv *entity.Invitation) error {
	r.rows[inv.Token] = inv
	return nil
}

func (r *memInvitationRepo) GetByToken(token string) (*entity.Invitation, error) {
	inv, ok := r.rows[token]
	if !ok {
		return nil, nil
	}
	return inv, nil
}

func (r *memInvitationRepo) GetPendingByEmail(email string) (*entity.Invitation, error) {
	for _, inv := range r.rows {
		if inv.Email == email && inv.Status == entity.InvitationPending {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *memInvitationRepo) Update(inv *entity.Invitation) error {
	r.rows[inv.Token] = inv
	return nil
}

type memUserRepo struct {
	rows map[string]*entity.User
}

func (r *memUserRepo) Create(u *entity.User) error { r.rows[u.ID] = u; return nil }
func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}
func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (r *memUserRepo) Update(u *entity.User) error { r.rows[u.ID] = u; return nil }

type memProfileRepo struct {
	rows map[string]*entity.Profile
}

func (r *memProfileRepo) Upsert(p *entity.Profile) error { r.rows[p.UserID] = p; return nil }
func (r *memProfileRepo) GetByUserID(userID string) (*entity.Profile, error) {
	p, ok := r.rows[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

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

type memMembershipRepo struct {
	rows []*entity.CompanyUser
}

func (r *memMembershipRepo) Create(m *entity.CompanyUser) error {
	r.rows = append(r.rows, m)
	return nil
}
func (r *memMembershipRepo) Get(userID, companyID string) (*entity.CompanyUser, error) {
	for _, m := range r.rows {
		if m.UserID == userID && m.CompanyID == companyID {
			return m, nil
		}
	}
	return nil, nil
}
func (r *memMembershipRepo) ListByUser(userID string) ([]*entity.CompanyUser, error) {
	var out []*entity.CompanyUser
	for _, m := range r.rows {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}
func (r *memMembershipRepo) ListByCompany(string, int, int) ([]*entity.CompanyUser, error) {
	return nil, nil
}
func (r *memMembershipRepo) CountByUser(string) (int, error)        { return 0, nil }
func (r *memMembershipRepo) UpdateRole(string, string, string) error { return nil }

type memTx struct {
	companies   *memCompanyRepo
	memberships *memMembershipRepo
}

func (t *memTx) RunOnboarding(_ context.Context, fn func(
	repository.CompanyRepository,
	repository.MembershipRepository,
) error) error {
	return fn(t.companies, t.memberships)
}

type recNotifier struct {
	invitations []*entity.Invitation
}

func (n *recNotifier) DispatchInvitationAsync(inv *entity.Invitation) {
	n.invitations = append(n.invitations, inv)
}

type env struct {
	uc          *invite.UseCase
	invitations *memInvitationRepo
	users       *memUserRepo
	companies   *memCompanyRepo
	memberships *memMembershipRepo
	notifier    *recNotifier
}

func newEnv() *env {
	invitations := &memInvitationRepo{rows: map[string]*entity.Invitation{}}
	users := &memUserRepo{rows: map[string]*entity.User{}}
	profiles := &memProfileRepo{rows: map[string]*entity.Profile{}}
	companies := &memCompanyRepo{rows: map[string]*entity.Company{}}
	memberships := &memMembershipRepo{}
	notifier := &recNotifier{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := invite.NewUseCase(
		invitations, users, profiles, companies, memberships,
		&memTx{companies: companies, memberships: memberships},
		notifier,
		config.JWTConfig{Secret: "test-secret-material-0123456789", Expiration: 60, Issuer: "compliant-connect"},
		log,
	)
	return &env{uc: uc, invitations: invitations, users: users, companies: companies, memberships: memberships, notifier: notifier}
}

func inviteRequest() dto.InviteSupplierRequest {
	return dto.InviteSupplierRequest{
		Email:             "Jordan@widgetsupply.test",
		InvitingCompanyID: "company-a",
		InvitingUserID:    "user-a",
		SupplierName:      "Widget Supply Co",
		ContactName:       "Jordan Lee",
	}
}

func TestInviteSupplier_CreatesPendingAndEmails(t *testing.T) {
	e := newEnv()

	inv, err := e.uc.InviteSupplier(context.Background(), inviteRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationPending, inv.Status)
	assert.Equal(t, "jordan@widgetsupply.test", inv.Email, "email normalized to lower case")
	assert.NotEmpty(t, inv.Token)
	assert.True(t, inv.ExpiresAt.After(time.Now()))
	require.Len(t, e.notifier.invitations, 1)
	assert.Equal(t, inv.ID, e.notifier.invitations[0].ID)
}

func TestInviteSupplier_RegisteredEmailConflicts(t *testing.T) {
	e := newEnv()
	e.users.rows["u-1"] = &entity.User{ID: "u-1", Email: "jordan@widgetsupply.test"}

	_, err := e.uc.InviteSupplier(context.Background(), inviteRequest())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, e.notifier.invitations)
}

func TestInviteSupplier_PendingDuplicateRejected(t *testing.T) {
	e := newEnv()
	_, err := e.uc.InviteSupplier(context.Background(), inviteRequest())
	require.NoError(t, err)

	_, err = e.uc.InviteSupplier(context.Background(), inviteRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestAccept_CreatesAccountCompanyAndAdminMembership(t *testing.T) {
	e := newEnv()
	inv, err := e.uc.InviteSupplier(context.Background(), inviteRequest())
	require.NoError(t, err)

	out, err := e.uc.Accept(context.Background(), dto.AcceptInviteRequest{
		Token:    inv.Token,
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "jordan@widgetsupply.test", out.User.Email)
	assert.Equal(t, "Jordan Lee", out.User.FirstName, "contact name backfills the profile")

	company, err := e.companies.GetByID(out.CurrentCompanyID)
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, "Widget Supply Co", company.Name)
	assert.Equal(t, "jordan@widgetsupply.test", company.ContactEmail)

	require.Len(t, e.memberships.rows, 1)
	assert.Equal(t, entity.RoleAdmin, e.memberships.rows[0].Role)

	assert.Equal(t, entity.InvitationAccepted, e.invitations.rows[inv.Token].Status)
}

func TestAccept_JoinsPreCreatedCompany(t *testing.T) {
	e := newEnv()
	e.companies.rows["company-s"] = &entity.Company{ID: "company-s", Name: "Widget Supply Co"}
	req := inviteRequest()
	companyID := "company-s"
	req.InvitedSupplierCompanyID = &companyID
	inv, err := e.uc.InviteSupplier(context.Background(), req)
	require.NoError(t, err)

	out, err := e.uc.Accept(context.Background(), dto.AcceptInviteRequest{Token: inv.Token, Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "company-s", out.CurrentCompanyID)
	assert.Len(t, e.companies.rows, 1, "no new company created")
}

func TestAccept_ExpiredOrUsedTokenRejected(t *testing.T) {
	e := newEnv()
	inv, err := e.uc.InviteSupplier(context.Background(), inviteRequest())
	require.NoError(t, err)

	inv.ExpiresAt = time.Now().Add(-time.Hour)
	_, err = e.uc.Accept(context.Background(), dto.AcceptInviteRequest{Token: inv.Token, Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInviteExpired)

	inv.ExpiresAt = time.Now().Add(time.Hour)
	inv.Status = entity.InvitationAccepted
	_, err = e.uc.Accept(context.Background(), dto.AcceptInviteRequest{Token: inv.Token, Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInviteExpired)

	_, err = e.uc.Accept(context.Background(), dto.AcceptInviteRequest{Token: "nope", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
