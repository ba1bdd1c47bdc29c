package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	domainpir "github.com/scottring/compliant-connect-sub001/internal/domain/pir"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

var _ repository.PIRRequestRepository = (*PIRRequestRepo)(nil)

// PIRRequestRepo implements the PIRRequestRepository port on PostgreSQL.
type PIRRequestRepo struct {
	q Querier
}

// NewPIRRequestRepository builds the persistence adapter for PIR requests.
func NewPIRRequestRepository(q Querier) *PIRRequestRepo {
	return &PIRRequestRepo{q: q}
}

const pirSelect = `
	SELECT p.id, p.customer_id, p.supplier_company_id, p.product_name, p.description, p.status,
	       COALESCE(array_agg(pt.tag_id) FILTER (WHERE pt.tag_id IS NOT NULL), '{}'),
	       p.created_at, p.updated_at
	FROM pir_requests p
	LEFT JOIN pir_tags pt ON pt.pir_id = p.id`

// Create persists a new request.
func (r *PIRRequestRepo) Create(req *entity.PIRRequest) error {
	query := `
		INSERT INTO pir_requests (id, customer_id, supplier_company_id, product_name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.CustomerID, req.SupplierCompanyID, req.ProductName, req.Description,
		string(req.Status), req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert pir request: %w", err)
	}
	return nil
}

// AddTags links the request to the given tags.
func (r *PIRRequestRepo) AddTags(pirID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO pir_tags (pir_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pirID, tagID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("link pir tag: %w", err)
		}
	}
	return nil
}

// GetByID fetches one request with its tag IDs.
func (r *PIRRequestRepo) GetByID(id string) (*entity.PIRRequest, error) {
	requests, err := r.query(pirSelect+` WHERE p.id = $1 GROUP BY p.id`, id)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, nil
	}
	return requests[0], nil
}

// UpdateStatus rewrites only the status column.
func (r *PIRRequestRepo) UpdateStatus(id string, status domainpir.Status, updatedAt time.Time) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE pir_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update pir status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCustomer returns the requests a company sent, newest first.
func (r *PIRRequestRepo) ListByCustomer(companyID string, limit, offset int) ([]*entity.PIRRequest, error) {
	query := pirSelect + ` WHERE p.customer_id = $1 GROUP BY p.id ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`
	return r.query(query, companyID, limit, offset)
}

// ListBySupplier returns the requests addressed to a company, newest first.
func (r *PIRRequestRepo) ListBySupplier(companyID string, limit, offset int) ([]*entity.PIRRequest, error) {
	query := pirSelect + ` WHERE p.supplier_company_id = $1 GROUP BY p.id ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`
	return r.query(query, companyID, limit, offset)
}

func (r *PIRRequestRepo) query(query string, args ...any) ([]*entity.PIRRequest, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pir requests: %w", err)
	}
	defer rows.Close()

	var out []*entity.PIRRequest
	for rows.Next() {
		var req entity.PIRRequest
		var status string
		if err := rows.Scan(
			&req.ID, &req.CustomerID, &req.SupplierCompanyID, &req.ProductName, &req.Description,
			&status, &req.TagIDs, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pir request: %w", err)
		}
		parsed, err := domainpir.Parse(status)
		if err != nil {
			return nil, fmt.Errorf("pir %s: %w", req.ID, err)
		}
		req.Status = parsed
		out = append(out, &req)
	}
	return out, rows.Err()
}

var _ repository.PIRResponseRepository = (*PIRResponseRepo)(nil)

// PIRResponseRepo implements the PIRResponseRepository port on PostgreSQL.
// Answers are stored as jsonb.
type PIRResponseRepo struct {
	q Querier
}

// NewPIRResponseRepository builds the persistence adapter for PIR responses.
func NewPIRResponseRepository(q Querier) *PIRResponseRepo {
	return &PIRResponseRepo{q: q}
}

const responseColumns = `id, pir_id, question_id, answer, approved_at, flagged, created_at, updated_at`

// Upsert inserts the response or replaces the answer of the existing
// (request, question) row.
func (r *PIRResponseRepo) Upsert(resp *entity.PIRResponse) error {
	answer, err := json.Marshal(resp.Answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	query := `
		INSERT INTO pir_responses (` + responseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pir_id, question_id) DO UPDATE
		SET answer = EXCLUDED.answer, approved_at = EXCLUDED.approved_at,
		    flagged = EXCLUDED.flagged, updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(context.Background(), query,
		resp.ID, resp.PIRID, resp.QuestionID, answer, resp.ApprovedAt, resp.Flagged,
		resp.CreatedAt, resp.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert pir response: %w", err)
	}
	return nil
}

// GetByID fetches one response.
func (r *PIRResponseRepo) GetByID(id string) (*entity.PIRResponse, error) {
	return r.scanOne(r.q.QueryRow(context.Background(),
		`SELECT `+responseColumns+` FROM pir_responses WHERE id = $1`, id))
}

// GetByPIRAndQuestion fetches the response of one question on one request.
func (r *PIRResponseRepo) GetByPIRAndQuestion(pirID, questionID string) (*entity.PIRResponse, error) {
	return r.scanOne(r.q.QueryRow(context.Background(),
		`SELECT `+responseColumns+` FROM pir_responses WHERE pir_id = $1 AND question_id = $2`,
		pirID, questionID))
}

// ListByPIR returns all responses of a request.
func (r *PIRResponseRepo) ListByPIR(pirID string) ([]*entity.PIRResponse, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+responseColumns+` FROM pir_responses WHERE pir_id = $1 ORDER BY created_at`, pirID)
	if err != nil {
		return nil, fmt.Errorf("list pir responses: %w", err)
	}
	defer rows.Close()

	var out []*entity.PIRResponse
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

// SetApproved stamps the approval time of one response.
func (r *PIRResponseRepo) SetApproved(responseID string, at time.Time) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE pir_responses SET approved_at = $2, updated_at = $2 WHERE id = $1`, responseID, at)
	if err != nil {
		return fmt.Errorf("approve pir response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetFlagged sets or clears the flagged marker of one response.
func (r *PIRResponseRepo) SetFlagged(responseID string, flagged bool) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE pir_responses SET flagged = $2, updated_at = now() WHERE id = $1`, responseID, flagged)
	if err != nil {
		return fmt.Errorf("flag pir response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateFlag persists a revision flag on a response.
func (r *PIRResponseRepo) CreateFlag(flag *entity.ResponseFlag) error {
	query := `
		INSERT INTO response_flags (id, response_id, created_by, description, resolved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		flag.ID, flag.ResponseID, flag.CreatedBy, flag.Description, flag.ResolvedAt, flag.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert response flag: %w", err)
	}
	return nil
}

// ListOpenFlagsByPIR returns the unresolved flags across all responses of a
// request.
func (r *PIRResponseRepo) ListOpenFlagsByPIR(pirID string) ([]*entity.ResponseFlag, error) {
	query := `
		SELECT f.id, f.response_id, f.created_by, f.description, f.resolved_at, f.created_at
		FROM response_flags f
		JOIN pir_responses resp ON resp.id = f.response_id
		WHERE resp.pir_id = $1 AND f.resolved_at IS NULL
		ORDER BY f.created_at`
	rows, err := r.q.Query(context.Background(), query, pirID)
	if err != nil {
		return nil, fmt.Errorf("list open flags: %w", err)
	}
	defer rows.Close()

	var out []*entity.ResponseFlag
	for rows.Next() {
		var f entity.ResponseFlag
		if err := rows.Scan(&f.ID, &f.ResponseID, &f.CreatedBy, &f.Description, &f.ResolvedAt, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response flag: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// ResolveFlagsByResponse closes every open flag of one response.
func (r *PIRResponseRepo) ResolveFlagsByResponse(responseID string, at time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE response_flags SET resolved_at = $2 WHERE response_id = $1 AND resolved_at IS NULL`,
		responseID, at)
	if err != nil {
		return fmt.Errorf("resolve flags: %w", err)
	}
	return nil
}

// CreateComment appends a comment to a response.
func (r *PIRResponseRepo) CreateComment(c *entity.Comment) error {
	query := `
		INSERT INTO response_comments (id, response_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query, c.ID, c.ResponseID, c.AuthorID, c.Body, c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListCommentsByResponse returns the comment thread, oldest first.
func (r *PIRResponseRepo) ListCommentsByResponse(responseID string) ([]*entity.Comment, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, response_id, author_id, body, created_at FROM response_comments WHERE response_id = $1 ORDER BY created_at`,
		responseID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.ResponseID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PIRResponseRepo) scanOne(row pgx.Row) (*entity.PIRResponse, error) {
	resp, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

func scanResponse(row pgx.Row) (*entity.PIRResponse, error) {
	var resp entity.PIRResponse
	var answer []byte
	err := row.Scan(
		&resp.ID, &resp.PIRID, &resp.QuestionID, &answer, &resp.ApprovedAt, &resp.Flagged,
		&resp.CreatedAt, &resp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan pir response: %w", err)
	}
	if len(answer) > 0 {
		if err := json.Unmarshal(answer, &resp.Answer); err != nil {
			return nil, fmt.Errorf("unmarshal answer: %w", err)
		}
	}
	return &resp, nil
}
