package company

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/onboarding"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

// UseCase manages company records and their member lists.
type UseCase struct {
	companyRepo    repository.CompanyRepository
	membershipRepo repository.MembershipRepository
	tx             onboarding.TxRunner
}

// NewUseCase builds the company use case.
func NewUseCase(companyRepo repository.CompanyRepository, membershipRepo repository.MembershipRepository, tx onboarding.TxRunner) *UseCase {
	return &UseCase{companyRepo: companyRepo, membershipRepo: membershipRepo, tx: tx}
}

// Create makes a new company with the calling user as its owner. Company and
// membership commit in one transaction.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: company name", domain.ErrMissingRequired)
	}

	now := time.Now()
	c := &entity.Company{
		ID:           uuid.New().String(),
		Name:         name,
		ContactName:  in.ContactName,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Address:      in.Address,
		City:         in.City,
		Country:      in.Country,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.tx.RunOnboarding(ctx, func(
		companyRepo repository.CompanyRepository,
		membershipRepo repository.MembershipRepository,
	) error {
		if err := companyRepo.Create(c); err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		if err := membershipRepo.Create(&entity.CompanyUser{
			ID:        uuid.New().String(),
			UserID:    userID,
			CompanyID: c.ID,
			Role:      entity.RoleOwner,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(c), nil
}

// Get returns one company.
func (uc *UseCase) Get(id string) (*dto.CompanyResponse, error) {
	c, err := uc.companyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCompanyResponse(c), nil
}

// List returns a page of companies. Every authenticated user can browse the
// directory; that is how customers find suppliers to send requests to.
func (uc *UseCase) List(page dto.PageRequest) ([]dto.CompanyResponse, error) {
	page.DefaultPage()
	companies, err := uc.companyRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, *toCompanyResponse(c))
	}
	return out, nil
}

// Update rewrites the company's own record. Only members with the admin or
// owner role of that same company may update it; the handler enforces the
// company match via the session claim, the role is checked here.
func (uc *UseCase) Update(companyID, userID string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	membership, err := uc.membershipRepo.Get(userID, companyID)
	if err != nil {
		return nil, err
	}
	if membership == nil || (membership.Role != entity.RoleAdmin && membership.Role != entity.RoleOwner) {
		return nil, domain.ErrForbidden
	}

	c, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			c.Name = name
		}
	}
	if in.ContactName != nil {
		c.ContactName = *in.ContactName
	}
	if in.ContactEmail != nil {
		c.ContactEmail = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		c.ContactPhone = *in.ContactPhone
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.City != nil {
		c.City = *in.City
	}
	if in.Country != nil {
		c.Country = *in.Country
	}
	c.UpdatedAt = time.Now()

	if err := uc.companyRepo.Update(c); err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}
	return toCompanyResponse(c), nil
}

// ListMembers returns the member roster of a company.
func (uc *UseCase) ListMembers(companyID string, page dto.PageRequest) ([]dto.MemberResponse, error) {
	page.DefaultPage()
	memberships, err := uc.membershipRepo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, dto.MemberResponse{
			UserID:    m.UserID,
			Role:      m.Role,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// UpdateMemberRole changes another member's role. Only admins and owners of
// the company may do this, and the last owner cannot demote themself.
func (uc *UseCase) UpdateMemberRole(companyID, actorID, memberID string, in dto.UpdateMemberRoleRequest) error {
	if !entity.ValidRole(in.Role) {
		return fmt.Errorf("%w: role %q", domain.ErrInvalidInput, in.Role)
	}
	actor, err := uc.membershipRepo.Get(actorID, companyID)
	if err != nil {
		return err
	}
	if actor == nil || (actor.Role != entity.RoleAdmin && actor.Role != entity.RoleOwner) {
		return domain.ErrForbidden
	}
	target, err := uc.membershipRepo.Get(memberID, companyID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if target.Role == entity.RoleOwner && in.Role != entity.RoleOwner && actorID == memberID {
		return fmt.Errorf("%w: an owner cannot demote themself", domain.ErrConflict)
	}
	return uc.membershipRepo.UpdateRole(memberID, companyID, in.Role)
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:           c.ID,
		Name:         c.Name,
		ContactName:  c.ContactName,
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,
		Address:      c.Address,
		City:         c.City,
		Country:      c.Country,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
