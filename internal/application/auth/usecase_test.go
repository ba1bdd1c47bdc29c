package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottring/compliant-connect-sub001/internal/application/auth"
	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/onboarding"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/config"
	"github.com/scottring/compliant-connect-sub001/pkg/jwt"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

type memUserRepo struct {
	rows map[string]*entity.User
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.rows[u.ID] = u
	return nil
}

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

func (r *memUserRepo) Update(u *entity.User) error {
	r.rows[u.ID] = u
	return nil
}

type memProfileRepo struct {
	rows map[string]*entity.Profile
}

func (r *memProfileRepo) Upsert(p *entity.Profile) error {
	r.rows[p.UserID] = p
	return nil
}

func (r *memProfileRepo) GetByUserID(userID string) (*entity.Profile, error) {
	p, ok := r.rows[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

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

func (r *memMembershipRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.CompanyUser, error) {
	var out []*entity.CompanyUser
	for _, m := range r.rows {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMembershipRepo) CountByUser(userID string) (int, error) {
	n := 0
	for _, m := range r.rows {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memMembershipRepo) UpdateRole(userID, companyID, role string) error { return nil }

type memCompanyRepo struct {
	rows map[string]*entity.Company
}

func (r *memCompanyRepo) Create(c *entity.Company) error {
	r.rows[c.ID] = c
	return nil
}

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

type memTx struct {
	companies   *memCompanyRepo
	memberships *memMembershipRepo
}

func (t *memTx) RunOnboarding(_ context.Context, fn func(
	companyRepo repository.CompanyRepository,
	membershipRepo repository.MembershipRepository,
) error) error {
	return fn(t.companies, t.memberships)
}

const testSecret = "test-secret-material-0123456789"

func newUseCase() (*auth.UseCase, *memUserRepo, *memMembershipRepo, *memCompanyRepo) {
	users := &memUserRepo{rows: map[string]*entity.User{}}
	profiles := &memProfileRepo{rows: map[string]*entity.Profile{}}
	memberships := &memMembershipRepo{}
	companies := &memCompanyRepo{rows: map[string]*entity.Company{}}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	bootstrap := onboarding.NewBootstrapUseCase(
		memberships, profiles, &memTx{companies: companies, memberships: memberships}, log,
	)
	cfg := config.JWTConfig{Secret: testSecret, Expiration: 60, Issuer: "compliant-connect"}
	return auth.NewUseCase(users, profiles, memberships, companies, bootstrap, cfg, log), users, memberships, companies
}

func TestRegister_BootstrapsCompanyAndIssuesScopedToken(t *testing.T) {
	uc, _, memberships, companies := newUseCase()

	out, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email:     "Jane.Doe@acme.test",
		Password:  "correct horse battery",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.True(t, out.AssociationCreated)
	assert.Equal(t, "jane.doe@acme.test", out.User.Email, "emails are normalized to lower case")
	require.Len(t, memberships.rows, 1)
	assert.Equal(t, entity.RoleAdmin, memberships.rows[0].Role)

	company, err := companies.GetByID(out.CurrentCompanyID)
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, "jane.doe's Company", company.Name)

	userID, companyID, role, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, userID)
	assert.Equal(t, out.CurrentCompanyID, companyID)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	uc, _, _, _ := newUseCase()

	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "jane@acme.test", Password: "password123"})
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), dto.RegisterRequest{Email: "JANE@acme.test", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_WrongPasswordUnauthorized(t *testing.T) {
	uc, _, _, _ := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "jane@acme.test", Password: "password123"})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "jane@acme.test", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nobody@acme.test", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "unknown email and bad password are indistinguishable")
}

func TestLogin_SecondLoginDoesNotDuplicateAssociation(t *testing.T) {
	uc, _, memberships, _ := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "jane@acme.test", Password: "password123"})
	require.NoError(t, err)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "jane@acme.test", Password: "password123"})
	require.NoError(t, err)
	assert.False(t, out.AssociationCreated)
	assert.Len(t, memberships.rows, 1, "bootstrap is idempotent across logins")
}

func TestSwitchCompany_RequiresMembership(t *testing.T) {
	uc, _, memberships, companies := newUseCase()
	reg, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "jane@acme.test", Password: "password123"})
	require.NoError(t, err)

	// A second company the user belongs to.
	companies.rows["company-2"] = &entity.Company{ID: "company-2", Name: "Second Co"}
	require.NoError(t, memberships.Create(&entity.CompanyUser{
		ID: "m-2", UserID: reg.User.ID, CompanyID: "company-2", Role: entity.RoleMember,
	}))

	out, err := uc.SwitchCompany(reg.User.ID, dto.SwitchCompanyRequest{CompanyID: "company-2"})
	require.NoError(t, err)
	assert.Equal(t, "company-2", out.CurrentCompanyID)
	_, companyID, role, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "company-2", companyID)
	assert.Equal(t, entity.RoleMember, role)

	_, err = uc.SwitchCompany(reg.User.ID, dto.SwitchCompanyRequest{CompanyID: "company-nope"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
