package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// Store is the destructive persistence port of the reset tool. Truncate must
// remove the tables' rows in the given order inside one transaction.
type Store interface {
	Truncate(ctx context.Context, tables []string) error
}

// resetTables lists every application table child-first, so each truncate
// only ever removes rows whose foreign keys point at still-populated parents.
var resetTables = []string{
	"response_comments",
	"response_flags",
	"pir_responses",
	"pir_tags",
	"pir_requests",
	"question_tags",
	"questions",
	"sections",
	"tags",
	"invitations",
	"company_users",
	"profiles",
	"companies",
	"users",
}

// ResetUseCase wipes all application data. It is a development and staging
// tool only and refuses to run against production no matter the code.
type ResetUseCase struct {
	store Store
	env   string
	log   *logger.Logger
}

// NewResetUseCase builds the reset tool for the given environment.
func NewResetUseCase(store Store, env string, log *logger.Logger) *ResetUseCase {
	return &ResetUseCase{store: store, env: env, log: log}
}

// ConfirmationCode returns the code the operator must supply for env, e.g.
// "CLEAR-STAGING-2026". The year makes stale runbook copies expire.
func ConfirmationCode(env string, now time.Time) string {
	return fmt.Sprintf("CLEAR-%s-%d", strings.ToUpper(env), now.Year())
}

// ValidateConfirmation checks the operator-supplied code. Production is
// always refused, before the code is even looked at.
func (uc *ResetUseCase) ValidateConfirmation(code string) error {
	if strings.EqualFold(uc.env, "production") {
		return fmt.Errorf("%w: reset is disabled in production", domain.ErrForbidden)
	}
	expected := ConfirmationCode(uc.env, time.Now())
	if code != expected {
		return fmt.Errorf("%w: confirmation code mismatch", domain.ErrInvalidInput)
	}
	return nil
}

// Reset validates the code and truncates every application table.
func (uc *ResetUseCase) Reset(ctx context.Context, code string) error {
	if err := uc.ValidateConfirmation(code); err != nil {
		return err
	}
	uc.log.Warn().Str("env", uc.env).Msg("destructive reset confirmed, truncating all tables")
	if err := uc.store.Truncate(ctx, resetTables); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	uc.log.Info().Int("tables", len(resetTables)).Msg("reset complete")
	return nil
}
