package question

import (
	"context"

	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

// TxRunner executes fn inside one database transaction with a tx-bound
// question repository. The question row and its tag links commit together,
// so a half-tagged question is never visible.
type TxRunner interface {
	RunQuestion(ctx context.Context, fn func(questionRepo repository.QuestionRepository) error) error
}
