package auth

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

// UseCase handles registration, login and company-context switching. Every
// session token carries the selected company and role, so no handler depends
// on ambient "current company" state.
type UseCase struct {
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	membershipRepo repository.MembershipRepository
	companyRepo    repository.CompanyRepository
	bootstrap      *onboarding.BootstrapUseCase
	jwtCfg         config.JWTConfig
	log            *logger.Logger
}

// NewUseCase builds the auth use case.
func NewUseCase(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	membershipRepo repository.MembershipRepository,
	companyRepo repository.CompanyRepository,
	bootstrap *onboarding.BootstrapUseCase,
	jwtCfg config.JWTConfig,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		membershipRepo: membershipRepo,
		companyRepo:    companyRepo,
		bootstrap:      bootstrap,
		jwtCfg:         jwtCfg,
		log:            log,
	}
}

// Register creates the account, ensures a company association and returns a
// ready-to-use session. Email comparison is case-insensitive.
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := uc.userRepo.FindByEmail(email)
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
		Email:        email,
		PasswordHash: string(hash),
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if in.FirstName != "" || in.LastName != "" {
		if err := uc.profileRepo.Upsert(&entity.Profile{
			UserID:    user.ID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("profile upsert failed at registration")
		}
	}

	result, err := uc.bootstrap.EnsureCompanyAssociation(ctx, user.ID, user.Email)
	if err != nil {
		// The account exists; association is retried on next login.
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("company bootstrap failed at registration")
		return nil, fmt.Errorf("bootstrap company association: %w", err)
	}

	uc.log.Info().
		Str("user_id", user.ID).
		Bool("association_created", result.AssociationCreated).
		Msg("user registered")

	return uc.buildSession(user, result.CompanyID, result.Role, result.AssociationCreated)
}

// Login verifies the credentials and issues a session scoped to the user's
// first membership. Users with a missing association get one bootstrapped
// here, which heals accounts whose registration was interrupted.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := uc.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}

	result, err := uc.bootstrap.EnsureCompanyAssociation(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("bootstrap company association: %w", err)
	}

	return uc.buildSession(user, result.CompanyID, result.Role, result.AssociationCreated)
}

// SwitchCompany reissues the session token scoped to another company the user
// belongs to. A company the user is not a member of yields ErrForbidden.
func (uc *UseCase) SwitchCompany(userID string, in dto.SwitchCompanyRequest) (*dto.SessionResponse, error) {
	membership, err := uc.membershipRepo.Get(userID, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if membership == nil {
		return nil, domain.ErrForbidden
	}

	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return uc.buildSession(user, membership.CompanyID, membership.Role, false)
}

// CurrentSession rebuilds the session view for an already-authenticated
// request (the /auth/me endpoint).
func (uc *UseCase) CurrentSession(userID, companyID, role string) (*dto.SessionResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.buildSession(user, companyID, role, false)
}

// Refresh reissues the token for the current session's company. The
// membership is re-read so a role change or a revoked membership takes
// effect on the next refresh.
func (uc *UseCase) Refresh(userID, companyID string) (*dto.SessionResponse, error) {
	membership, err := uc.membershipRepo.Get(userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if membership == nil {
		return nil, domain.ErrForbidden
	}

	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}

	return uc.buildSession(user, membership.CompanyID, membership.Role, false)
}

func (uc *UseCase) buildSession(user *entity.User, companyID, role string, associationCreated bool) (*dto.SessionResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, companyID, role, uc.jwtCfg.Issuer, uc.jwtCfg.Expiration)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	memberships, err := uc.membershipRepo.ListByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	out := make([]dto.MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		name := ""
		if c, err := uc.companyRepo.GetByID(m.CompanyID); err == nil && c != nil {
			name = c.Name
		}
		out = append(out, dto.MembershipResponse{
			CompanyID:   m.CompanyID,
			CompanyName: name,
			Role:        m.Role,
		})
	}

	ur := dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if p, err := uc.profileRepo.GetByUserID(user.ID); err == nil && p != nil {
		ur.FirstName = p.FirstName
		ur.LastName = p.LastName
	}

	return &dto.SessionResponse{
		Token:              token,
		User:               ur,
		CurrentCompanyID:   companyID,
		Memberships:        out,
		AssociationCreated: associationCreated,
	}, nil
}
