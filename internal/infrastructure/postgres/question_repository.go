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

var _ repository.QuestionRepository = (*QuestionRepo)(nil)

// QuestionRepo implements the QuestionRepository port on PostgreSQL.
type QuestionRepo struct {
	q Querier
}

// NewQuestionRepository builds the persistence adapter for questions.
func NewQuestionRepository(q Querier) *QuestionRepo {
	return &QuestionRepo{q: q}
}

// questionSelect aggregates the tag links so one round trip loads the whole
// question.
const questionSelect = `
	SELECT q.id, q.subsection_id, q.text, q.description, q.question_type, q.required, q.options,
	       COALESCE(array_agg(qt.tag_id) FILTER (WHERE qt.tag_id IS NOT NULL), '{}'),
	       q.created_at, q.updated_at
	FROM questions q
	LEFT JOIN question_tags qt ON qt.question_id = q.id`

// Create persists a new question (without its tag links; see AddTags).
func (r *QuestionRepo) Create(question *entity.Question) error {
	query := `
		INSERT INTO questions (id, subsection_id, text, description, question_type, required, options, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		question.ID, question.SubsectionID, question.Text, question.Description,
		question.Type, question.Required, question.Options, question.CreatedAt, question.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// AddTags links the question to the given tags.
func (r *QuestionRepo) AddTags(questionID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO question_tags (question_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			questionID, tagID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("link question tag: %w", err)
		}
	}
	return nil
}

// GetByID fetches one question with its tag IDs.
func (r *QuestionRepo) GetByID(id string) (*entity.Question, error) {
	query := questionSelect + ` WHERE q.id = $1 GROUP BY q.id`
	questions, err := r.query(query, id)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}
	return questions[0], nil
}

// List returns a page of the question bank.
func (r *QuestionRepo) List(limit, offset int) ([]*entity.Question, error) {
	query := questionSelect + ` GROUP BY q.id ORDER BY q.created_at LIMIT $1 OFFSET $2`
	return r.query(query, limit, offset)
}

// ListByTags returns the questions linked to any of the given tags. An empty
// tag list yields an empty result, not the whole bank.
func (r *QuestionRepo) ListByTags(tagIDs []string) ([]*entity.Question, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	query := questionSelect + `
		WHERE q.id IN (SELECT question_id FROM question_tags WHERE tag_id = ANY($1))
		GROUP BY q.id ORDER BY q.created_at`
	return r.query(query, tagIDs)
}

func (r *QuestionRepo) query(query string, args ...any) ([]*entity.Question, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Question
	for rows.Next() {
		var q entity.Question
		if err := rows.Scan(
			&q.ID, &q.SubsectionID, &q.Text, &q.Description, &q.Type, &q.Required,
			&q.Options, &q.TagIDs, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

var _ repository.TagRepository = (*TagRepo)(nil)

// TagRepo implements the TagRepository port on PostgreSQL.
type TagRepo struct {
	q Querier
}

// NewTagRepository builds the persistence adapter for tags.
func NewTagRepository(q Querier) *TagRepo {
	return &TagRepo{q: q}
}

const tagColumns = `id, name, description, created_at, updated_at`

// Create persists a tag; the unique index on lower(name) maps to ErrDuplicate.
func (r *TagRepo) Create(tag *entity.Tag) error {
	query := `INSERT INTO tags (` + tagColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		tag.ID, tag.Name, tag.Description, tag.CreatedAt, tag.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// GetByID fetches a tag by ID.
func (r *TagRepo) GetByID(id string) (*entity.Tag, error) {
	return r.scanOne(r.q.QueryRow(context.Background(),
		`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id))
}

// GetByName fetches a tag by name, case-insensitively.
func (r *TagRepo) GetByName(name string) (*entity.Tag, error) {
	return r.scanOne(r.q.QueryRow(context.Background(),
		`SELECT `+tagColumns+` FROM tags WHERE lower(name) = lower($1)`, name))
}

// List returns all tags ordered by name.
func (r *TagRepo) List() ([]*entity.Tag, error) {
	rows, err := r.q.Query(context.Background(), `SELECT `+tagColumns+` FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []*entity.Tag
	for rows.Next() {
		var t entity.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *TagRepo) scanOne(row pgx.Row) (*entity.Tag, error) {
	var t entity.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &t, nil
}

var _ repository.SectionRepository = (*SectionRepo)(nil)

// SectionRepo implements the SectionRepository port on PostgreSQL.
type SectionRepo struct {
	q Querier
}

// NewSectionRepository builds the persistence adapter for sections.
func NewSectionRepository(q Querier) *SectionRepo {
	return &SectionRepo{q: q}
}

const sectionColumns = `id, name, parent_id, order_num, created_at, updated_at`

// Create persists a section or subsection.
func (r *SectionRepo) Create(section *entity.Section) error {
	query := `INSERT INTO sections (` + sectionColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		section.ID, section.Name, section.ParentID, section.OrderNum, section.CreatedAt, section.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

// GetByID fetches a section by ID.
func (r *SectionRepo) GetByID(id string) (*entity.Section, error) {
	var s entity.Section
	err := r.q.QueryRow(context.Background(),
		`SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id).Scan(
		&s.ID, &s.Name, &s.ParentID, &s.OrderNum, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get section: %w", err)
	}
	return &s, nil
}

// List returns the whole hierarchy, parents first, then by order.
func (r *SectionRepo) List() ([]*entity.Section, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+sectionColumns+` FROM sections ORDER BY parent_id NULLS FIRST, order_num, name`)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var out []*entity.Section
	for rows.Next() {
		var s entity.Section
		if err := rows.Scan(&s.ID, &s.Name, &s.ParentID, &s.OrderNum, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
