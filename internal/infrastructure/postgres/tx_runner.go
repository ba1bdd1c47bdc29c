package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scottring/compliant-connect-sub001/internal/application/onboarding"
	"github.com/scottring/compliant-connect-sub001/internal/application/question"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

// Ensure TxRunner implements onboarding.TxRunner and question.TxRunner.
var _ onboarding.TxRunner = (*TxRunner)(nil)
var _ question.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside one PostgreSQL transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner on the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunOnboarding begins a transaction, runs fn with tx-bound company and
// membership repos and commits, rolling back on any error.
func (r *TxRunner) RunOnboarding(ctx context.Context, fn func(
	companyRepo repository.CompanyRepository,
	membershipRepo repository.MembershipRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCompanyRepository(tx), NewMembershipRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunQuestion begins a transaction for a question plus its tag links.
func (r *TxRunner) RunQuestion(ctx context.Context, fn func(
	questionRepo repository.QuestionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewQuestionRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
