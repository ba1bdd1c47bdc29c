package onboarding

import (
	"context"

	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

// TxRunner executes fn inside one database transaction, passing repositories
// bound to that tx. Guarantees the company and its admin membership are
// created atomically: no orphaned company when the membership insert fails.
type TxRunner interface {
	RunOnboarding(ctx context.Context, fn func(
		companyRepo repository.CompanyRepository,
		membershipRepo repository.MembershipRepository,
	) error) error
}
