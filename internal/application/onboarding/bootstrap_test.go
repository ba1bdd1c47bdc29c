package onboarding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottring/compliant-connect-sub001/internal/application/onboarding"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ──────────────────────────────────────────────────────────────────────────────

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

func (r *memCompanyRepo) GetByName(name string) (*entity.Company, error) {
	for _, c := range r.rows {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCompanyRepo) Update(*entity.Company) error { return nil }

func (r *memCompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	return r.rows, nil
}

type memMembershipRepo struct {
	rows       []*entity.CompanyUser
	failCreate bool
}

func (r *memMembershipRepo) Create(m *entity.CompanyUser) error {
	if r.failCreate {
		return errors.New("membership insert failed")
	}
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
	list, _ := r.ListByUser(userID)
	return len(list), nil
}

func (r *memMembershipRepo) UpdateRole(userID, companyID, role string) error { return nil }

type memProfileRepo struct {
	rows map[string]*entity.Profile
}

func (r *memProfileRepo) Upsert(p *entity.Profile) error {
	if r.rows == nil {
		r.rows = map[string]*entity.Profile{}
	}
	r.rows[p.UserID] = p
	return nil
}

func (r *memProfileRepo) GetByUserID(userID string) (*entity.Profile, error) {
	return r.rows[userID], nil
}

// memTx snapshots both stores before fn and restores them on error, matching
// the rollback semantics of the real transaction.
type memTx struct {
	companies   *memCompanyRepo
	memberships *memMembershipRepo
}

func (t *memTx) RunOnboarding(ctx context.Context, fn func(
	companyRepo repository.CompanyRepository,
	membershipRepo repository.MembershipRepository,
) error) error {
	cSnap := append([]*entity.Company(nil), t.companies.rows...)
	mSnap := append([]*entity.CompanyUser(nil), t.memberships.rows...)
	if err := fn(t.companies, t.memberships); err != nil {
		t.companies.rows = cSnap
		t.memberships.rows = mSnap
		return err
	}
	return nil
}

func newBootstrapFixture() (*onboarding.BootstrapUseCase, *memCompanyRepo, *memMembershipRepo, *memProfileRepo) {
	companies := &memCompanyRepo{}
	memberships := &memMembershipRepo{}
	profiles := &memProfileRepo{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := onboarding.NewBootstrapUseCase(memberships, profiles, &memTx{companies, memberships}, log)
	return uc, companies, memberships, profiles
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// A user with zero memberships gets exactly one company and one admin
// membership; a second invocation creates nothing more.
func TestEnsureCompanyAssociation_Idempotent(t *testing.T) {
	uc, companies, memberships, profiles := newBootstrapFixture()

	res, err := uc.EnsureCompanyAssociation(context.Background(), "user-1", "jane.doe@acme.com")
	require.NoError(t, err)
	assert.True(t, res.AssociationCreated)
	assert.Equal(t, entity.RoleAdmin, res.Role)
	require.Len(t, companies.rows, 1)
	require.Len(t, memberships.rows, 1)
	assert.Equal(t, "jane.doe's Company", companies.rows[0].Name,
		"company name derives from the email local-part")
	assert.Equal(t, res.CompanyID, memberships.rows[0].CompanyID)
	assert.NotNil(t, profiles.rows["user-1"], "profile row must exist after bootstrap")

	// Second call: membership exists, nothing new is created.
	res2, err := uc.EnsureCompanyAssociation(context.Background(), "user-1", "jane.doe@acme.com")
	require.NoError(t, err)
	assert.False(t, res2.AssociationCreated)
	assert.Equal(t, res.CompanyID, res2.CompanyID)
	assert.Len(t, companies.rows, 1, "no duplicate company")
	assert.Len(t, memberships.rows, 1, "no duplicate membership")
}

func TestEnsureCompanyAssociation_ExistingMembershipIsNoOp(t *testing.T) {
	uc, companies, memberships, _ := newBootstrapFixture()
	memberships.rows = append(memberships.rows, &entity.CompanyUser{
		ID: "m-1", UserID: "user-2", CompanyID: "company-9", Role: entity.RoleMember,
	})

	res, err := uc.EnsureCompanyAssociation(context.Background(), "user-2", "bob@acme.com")
	require.NoError(t, err)
	assert.False(t, res.AssociationCreated)
	assert.Equal(t, "company-9", res.CompanyID)
	assert.Equal(t, entity.RoleMember, res.Role)
	assert.Empty(t, companies.rows)
}

// Membership failure rolls the company back with it: no orphaned company.
func TestEnsureCompanyAssociation_MembershipFailureRollsBack(t *testing.T) {
	uc, companies, memberships, _ := newBootstrapFixture()
	memberships.failCreate = true

	res, err := uc.EnsureCompanyAssociation(context.Background(), "user-3", "eve@acme.com")
	require.Error(t, err)
	assert.False(t, res.AssociationCreated, "failure reports no association created")
	assert.Empty(t, companies.rows, "transaction must not leave an orphaned company")
	assert.Empty(t, memberships.rows)

	// The caller may retry once the fault clears.
	memberships.failCreate = false
	res, err = uc.EnsureCompanyAssociation(context.Background(), "user-3", "eve@acme.com")
	require.NoError(t, err)
	assert.True(t, res.AssociationCreated)
	assert.Len(t, companies.rows, 1)
}
