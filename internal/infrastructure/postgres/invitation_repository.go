package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

// InvitationRepo implements the InvitationRepository port on PostgreSQL.
type InvitationRepo struct {
	q Querier
}

// NewInvitationRepository builds the persistence adapter for invitations.
func NewInvitationRepository(q Querier) *InvitationRepo {
	return &InvitationRepo{q: q}
}

const invitationColumns = `id, email, inviting_company_id, inviting_user_id, supplier_name, contact_name,
	invited_supplier_company_id, token, status, expires_at, created_at, updated_at`

// Create persists an invitation. The partial unique index on pending emails
// maps to ErrDuplicate.
func (r *InvitationRepo) Create(inv *entity.Invitation) error {
	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.Email, inv.InvitingCompanyID, inv.InvitingUserID, inv.SupplierName, inv.ContactName,
		inv.InvitedSupplierCompanyID, inv.Token, inv.Status, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

// GetByToken fetches an invitation by its redemption token.
func (r *InvitationRepo) GetByToken(token string) (*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, token))
}

// GetPendingByEmail fetches the pending invitation of an email, if any.
func (r *InvitationRepo) GetPendingByEmail(email string) (*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE email = lower($1) AND status = 'pending'`
	return r.scanOne(r.q.QueryRow(context.Background(), query, email))
}

// Update rewrites the invitation's mutable fields (status, expiry).
func (r *InvitationRepo) Update(inv *entity.Invitation) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE invitations SET status = $2, expires_at = $3, updated_at = $4 WHERE id = $1`,
		inv.ID, inv.Status, inv.ExpiresAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvitationRepo) scanOne(row pgx.Row) (*entity.Invitation, error) {
	var inv entity.Invitation
	err := row.Scan(
		&inv.ID, &inv.Email, &inv.InvitingCompanyID, &inv.InvitingUserID, &inv.SupplierName,
		&inv.ContactName, &inv.InvitedSupplierCompanyID, &inv.Token, &inv.Status,
		&inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &inv, nil
}
