package invite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/onboarding"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/config"
	"github.com/scottring/compliant-connect-sub001/pkg/jwt"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// invitationTTL is how long an invitation stays acceptable.
const invitationTTL = 7 * 24 * time.Hour

// Notifier sends the invitation email, fire-and-forget.
type Notifier interface {
	DispatchInvitationAsync(inv *entity.Invitation)
}

// UseCase handles the supplier invitation flow: a customer invites a contact
// by email; accepting the invitation creates the account, the supplier
// company and an admin membership in one step.
type UseCase struct {
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	companyRepo    repository.CompanyRepository
	membershipRepo repository.MembershipRepository
	tx             onboarding.TxRunner
	notifier       Notifier
	jwtCfg         config.JWTConfig
	log            *logger.Logger
}

// NewUseCase builds the invitation use case.
func NewUseCase(
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	companyRepo repository.CompanyRepository,
	membershipRepo repository.MembershipRepository,
	tx onboarding.TxRunner,
	notifier Notifier,
	jwtCfg config.JWTConfig,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		companyRepo:    companyRepo,
		membershipRepo: membershipRepo,
		tx:             tx,
		notifier:       notifier,
		jwtCfg:         jwtCfg,
		log:            log,
	}
}

// InviteSupplier creates a pending invitation and emails the contact. An
// email that already belongs to a registered user is a conflict: the inviter
// should send a PIR to the existing company instead.
func (uc *UseCase) InviteSupplier(ctx context.Context, in dto.InviteSupplierRequest) (*entity.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := uc.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a user with this email already exists", domain.ErrConflict)
	}

	pending, err := uc.invitationRepo.GetPendingByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: an invitation for this email is already pending", domain.ErrDuplicate)
	}

	now := time.Now()
	inv := &entity.Invitation{
		ID:                       uuid.New().String(),
		Email:                    email,
		InvitingCompanyID:        in.InvitingCompanyID,
		InvitingUserID:           in.InvitingUserID,
		SupplierName:             strings.TrimSpace(in.SupplierName),
		ContactName:              strings.TrimSpace(in.ContactName),
		InvitedSupplierCompanyID: in.InvitedSupplierCompanyID,
		Token:                    uuid.New().String(),
		Status:                   entity.InvitationPending,
		ExpiresAt:                now.Add(invitationTTL),
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := uc.invitationRepo.Create(inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	uc.notifier.DispatchInvitationAsync(inv)
	uc.log.Info().
		Str("invitation_id", inv.ID).
		Str("inviting_company_id", inv.InvitingCompanyID).
		Msg("supplier invited")
	return inv, nil
}

// Accept redeems an invitation: creates the user account and profile, then
// the supplier company plus an admin membership in one transaction, marks the
// invitation accepted and returns a ready session scoped to the new company.
func (uc *UseCase) Accept(ctx context.Context, in dto.AcceptInviteRequest) (*dto.SessionResponse, error) {
	inv, err := uc.invitationRepo.GetByToken(in.Token)
	if err != nil {
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.Status != entity.InvitationPending || time.Now().After(inv.ExpiresAt) {
		return nil, domain.ErrInviteExpired
	}

	existing, err := uc.userRepo.FindByEmail(inv.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        inv.Email,
		PasswordHash: string(hash),
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	firstName, lastName := in.FirstName, in.LastName
	if firstName == "" && lastName == "" {
		firstName = inv.ContactName
	}
	if err := uc.profileRepo.Upsert(&entity.Profile{
		UserID:    user.ID,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("profile upsert failed at invitation accept")
	}

	companyID, err := uc.joinOrCreateCompany(ctx, inv, user.ID, now)
	if err != nil {
		return nil, err
	}

	inv.Status = entity.InvitationAccepted
	inv.UpdatedAt = time.Now()
	if err := uc.invitationRepo.Update(inv); err != nil {
		// The account and company exist; a stale pending row only blocks
		// re-inviting this email, so log and continue.
		uc.log.Warn().Err(err).Str("invitation_id", inv.ID).Msg("could not mark invitation accepted")
	}

	uc.log.Info().
		Str("invitation_id", inv.ID).
		Str("user_id", user.ID).
		Str("company_id", companyID).
		Msg("invitation accepted")

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, companyID, entity.RoleAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.Expiration)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	companyName := inv.SupplierName
	if c, err := uc.companyRepo.GetByID(companyID); err == nil && c != nil {
		companyName = c.Name
	}
	return &dto.SessionResponse{
		Token: token,
		User: dto.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: firstName,
			LastName:  lastName,
			Status:    user.Status,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
		CurrentCompanyID: companyID,
		Memberships: []dto.MembershipResponse{
			{CompanyID: companyID, CompanyName: companyName, Role: entity.RoleAdmin},
		},
		AssociationCreated: true,
	}, nil
}

// joinOrCreateCompany attaches the new user to the pre-created supplier
// company when the invitation references one, otherwise creates the company
// named in the invitation. Company and membership commit atomically.
func (uc *UseCase) joinOrCreateCompany(ctx context.Context, inv *entity.Invitation, userID string, now time.Time) (string, error) {
	if inv.InvitedSupplierCompanyID != nil {
		companyID := *inv.InvitedSupplierCompanyID
		company, err := uc.companyRepo.GetByID(companyID)
		if err != nil {
			return "", fmt.Errorf("load invited company: %w", err)
		}
		if company == nil {
			return "", fmt.Errorf("%w: invited company %s", domain.ErrNotFound, companyID)
		}
		if err := uc.membershipRepo.Create(&entity.CompanyUser{
			ID:        uuid.New().String(),
			UserID:    userID,
			CompanyID: companyID,
			Role:      entity.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return "", fmt.Errorf("create membership: %w", err)
		}
		return companyID, nil
	}

	companyID := uuid.New().String()
	err := uc.tx.RunOnboarding(ctx, func(
		companyRepo repository.CompanyRepository,
		membershipRepo repository.MembershipRepository,
	) error {
		if err := companyRepo.Create(&entity.Company{
			ID:           companyID,
			Name:         inv.SupplierName,
			ContactName:  inv.ContactName,
			ContactEmail: inv.Email,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return fmt.Errorf("create supplier company: %w", err)
		}
		if err := membershipRepo.Create(&entity.CompanyUser{
			ID:        uuid.New().String(),
			UserID:    userID,
			CompanyID: companyID,
			Role:      entity.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("create admin membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return companyID, nil
}
