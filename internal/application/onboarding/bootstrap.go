package onboarding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// BootstrapResult reports what the bootstrap did for this user.
type BootstrapResult struct {
	AssociationCreated bool
	CompanyID          string // the user's company context after bootstrap
	Role               string
}

// BootstrapUseCase guarantees every authenticated user has at least one
// company membership so the rest of the app has a valid company context.
type BootstrapUseCase struct {
	membershipRepo repository.MembershipRepository
	profileRepo    repository.ProfileRepository
	tx             TxRunner
	log            *logger.Logger
}

// NewBootstrapUseCase builds the bootstrap use case.
func NewBootstrapUseCase(
	membershipRepo repository.MembershipRepository,
	profileRepo repository.ProfileRepository,
	tx TxRunner,
	log *logger.Logger,
) *BootstrapUseCase {
	return &BootstrapUseCase{
		membershipRepo: membershipRepo,
		profileRepo:    profileRepo,
		tx:             tx,
		log:            log,
	}
}

// EnsureCompanyAssociation is idempotent: with one or more memberships it is
// a no-op reporting AssociationCreated=false. Otherwise it ensures a profile
// row exists, then creates a default company plus an admin membership inside
// one transaction. Any unrecoverable error aborts the whole sequence and is
// reported as "no association created"; the caller may retry once.
func (uc *BootstrapUseCase) EnsureCompanyAssociation(ctx context.Context, userID, email string) (*BootstrapResult, error) {
	memberships, err := uc.membershipRepo.ListByUser(userID)
	if err != nil {
		return &BootstrapResult{}, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) > 0 {
		return &BootstrapResult{
			AssociationCreated: false,
			CompanyID:          memberships[0].CompanyID,
			Role:               memberships[0].Role,
		}, nil
	}

	// Profile may already exist (created by a concurrent login or the invite
	// flow); Upsert tolerates the duplicate-key race.
	now := time.Now()
	if err := uc.profileRepo.Upsert(&entity.Profile{
		UserID:    userID,
		FirstName: localPart(email),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("profile upsert failed, continuing")
	}

	companyID := uuid.New().String()
	companyName := defaultCompanyName(email)
	err = uc.tx.RunOnboarding(ctx, func(
		companyRepo repository.CompanyRepository,
		membershipRepo repository.MembershipRepository,
	) error {
		if err := companyRepo.Create(&entity.Company{
			ID:           companyID,
			Name:         companyName,
			ContactEmail: email,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return fmt.Errorf("create default company: %w", err)
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
		return &BootstrapResult{}, err
	}

	uc.log.Info().
		Str("user_id", userID).
		Str("company_id", companyID).
		Str("company", companyName).
		Msg("bootstrapped company association")
	return &BootstrapResult{
		AssociationCreated: true,
		CompanyID:          companyID,
		Role:               entity.RoleAdmin,
	}, nil
}

// defaultCompanyName derives a deterministic company name from the email
// local-part: "jane.doe@acme.com" -> "jane.doe's Company".
func defaultCompanyName(email string) string {
	lp := localPart(email)
	if lp == "" {
		lp = "My"
		return lp + " Company"
	}
	return lp + "'s Company"
}

func localPart(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return strings.TrimSpace(email)
	}
	return email[:at]
}
