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

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo implements the MembershipRepository port on PostgreSQL.
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository builds the persistence adapter for company_users.
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

const membershipColumns = `id, user_id, company_id, role, created_at, updated_at`

// Create persists a membership. A duplicate (user, company) pair maps to
// ErrDuplicate; a dangling user or company reference to ErrNotFound.
func (r *MembershipRepo) Create(m *entity.CompanyUser) error {
	query := `
		INSERT INTO company_users (` + membershipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.UserID, m.CompanyID, m.Role, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// Get fetches one membership by (user, company).
func (r *MembershipRepo) Get(userID, companyID string) (*entity.CompanyUser, error) {
	query := `SELECT ` + membershipColumns + ` FROM company_users WHERE user_id = $1 AND company_id = $2`
	var m entity.CompanyUser
	err := r.q.QueryRow(context.Background(), query, userID, companyID).Scan(
		&m.ID, &m.UserID, &m.CompanyID, &m.Role, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

// ListByUser returns all memberships of a user, oldest first so the first
// row is the stable default company.
func (r *MembershipRepo) ListByUser(userID string) ([]*entity.CompanyUser, error) {
	query := `SELECT ` + membershipColumns + ` FROM company_users WHERE user_id = $1 ORDER BY created_at`
	return r.list(query, userID)
}

// ListByCompany returns a page of the company's members.
func (r *MembershipRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.CompanyUser, error) {
	query := `SELECT ` + membershipColumns + ` FROM company_users WHERE company_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`
	return r.list(query, companyID, limit, offset)
}

// CountByUser returns how many companies the user belongs to.
func (r *MembershipRepo) CountByUser(userID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM company_users WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count memberships: %w", err)
	}
	return n, nil
}

// UpdateRole changes the role of one membership.
func (r *MembershipRepo) UpdateRole(userID, companyID, role string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE company_users SET role = $3, updated_at = now() WHERE user_id = $1 AND company_id = $2`,
		userID, companyID, role,
	)
	if err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MembershipRepo) list(query string, args ...any) ([]*entity.CompanyUser, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []*entity.CompanyUser
	for rows.Next() {
		var m entity.CompanyUser
		if err := rows.Scan(&m.ID, &m.UserID, &m.CompanyID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
