package question_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/application/question"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

type memQuestionRepo struct {
	rows       []*entity.Question
	failCreate bool
	tagLinks   map[string][]string
}

func (r *memQuestionRepo) Create(q *entity.Question) error {
	if r.failCreate {
		return assert.AnError
	}
	r.rows = append(r.rows, q)
	return nil
}

func (r *memQuestionRepo) AddTags(questionID string, tagIDs []string) error {
	if r.tagLinks == nil {
		r.tagLinks = map[string][]string{}
	}
	r.tagLinks[questionID] = append(r.tagLinks[questionID], tagIDs...)
	return nil
}

func (r *memQuestionRepo) GetByID(id string) (*entity.Question, error) {
	for _, q := range r.rows {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (r *memQuestionRepo) List(limit, offset int) ([]*entity.Question, error) { return r.rows, nil }

func (r *memQuestionRepo) ListByTags(tagIDs []string) ([]*entity.Question, error) { return nil, nil }

type memTagRepo struct {
	rows []*entity.Tag
}

func (r *memTagRepo) Create(t *entity.Tag) error {
	r.rows = append(r.rows, t)
	return nil
}

func (r *memTagRepo) GetByID(id string) (*entity.Tag, error) {
	for _, t := range r.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memTagRepo) GetByName(name string) (*entity.Tag, error) {
	for _, t := range r.rows {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memTagRepo) List() ([]*entity.Tag, error) { return r.rows, nil }

type memSectionRepo struct {
	rows []*entity.Section
}

func (r *memSectionRepo) Create(s *entity.Section) error {
	r.rows = append(r.rows, s)
	return nil
}

func (r *memSectionRepo) GetByID(id string) (*entity.Section, error) {
	for _, s := range r.rows {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memSectionRepo) List() ([]*entity.Section, error) { return r.rows, nil }

type memTx struct {
	questions *memQuestionRepo
}

func (t *memTx) RunQuestion(_ context.Context, fn func(repository.QuestionRepository) error) error {
	return fn(t.questions)
}

const subsectionID = "sub-1"

func newUseCase() (*question.UseCase, *memQuestionRepo, *memTagRepo) {
	questions := &memQuestionRepo{}
	tags := &memTagRepo{}
	sections := &memSectionRepo{rows: []*entity.Section{
		{ID: "sec-1", Name: "Materials"},
		{ID: subsectionID, Name: "Composition", ParentID: ptr("sec-1")},
	}}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := question.NewUseCase(questions, tags, sections, &memTx{questions: questions}, log)
	return uc, questions, tags
}

func ptr(s string) *string { return &s }

func TestCreateWithTags(t *testing.T) {
	uc, questions, tags := newUseCase()
	tag, err := uc.CreateTag(dto.CreateTagRequest{Name: "REACH"})
	require.NoError(t, err)

	out, err := uc.CreateWithTags(context.Background(), dto.CreateQuestionRequest{
		SubsectionID: subsectionID,
		Text:         "List all substances above 0.1% w/w",
		Type:         entity.QuestionText,
		Required:     true,
		TagIDs:       []string{tag.ID},
	})
	require.NoError(t, err)
	require.Len(t, questions.rows, 1)
	assert.Equal(t, []string{tag.ID}, questions.tagLinks[out.ID])
	assert.Len(t, tags.rows, 1)
}

func TestCreateWithTags_ChoiceTypeNeedsOptions(t *testing.T) {
	uc, _, _ := newUseCase()
	_, err := uc.CreateWithTags(context.Background(), dto.CreateQuestionRequest{
		SubsectionID: subsectionID,
		Text:         "Packaging material",
		Type:         entity.QuestionSingleSelect,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateWithTags_UnknownTagRejected(t *testing.T) {
	uc, questions, _ := newUseCase()
	_, err := uc.CreateWithTags(context.Background(), dto.CreateQuestionRequest{
		SubsectionID: subsectionID,
		Text:         "Any question",
		Type:         entity.QuestionText,
		TagIDs:       []string{"tag-missing"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, questions.rows, "nothing persisted when a tag reference is dangling")
}

func TestCreateTag_DuplicateNameRejected(t *testing.T) {
	uc, _, _ := newUseCase()
	_, err := uc.CreateTag(dto.CreateTagRequest{Name: "REACH"})
	require.NoError(t, err)
	_, err = uc.CreateTag(dto.CreateTagRequest{Name: "reach"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateSection_SubsectionNestingLimited(t *testing.T) {
	uc, _, _ := newUseCase()
	_, err := uc.CreateSection(dto.CreateSectionRequest{Name: "Deep", ParentID: ptr(subsectionID)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "subsections cannot have children")
}

// ──────────────────────────────────────────────────────────────────────────────
// CSV import
// ──────────────────────────────────────────────────────────────────────────────

func TestImportCSV_HeaderFoldingAndRowIsolation(t *testing.T) {
	uc, questions, tags := newUseCase()

	// Accented, mixed-case Spanish headers; one good row, one empty, one with
	// a broken type.
	csvData := strings.Join([]string{
		"Pregunta,Tipo,Obligatorio,Opciones,Etiquetas,Descripción",
		`"Lead content (ppm)",numeric,yes,,"RoHS|REACH",Heavy metals`,
		",text,,,,",
		`"Broken row",hologram,,,,`,
		`"Packaging material",dropdown,no,"Cardboard|Plastic",RoHS,`,
	}, "\n")

	report, err := uc.ImportCSV(context.Background(), strings.NewReader(csvData), subsectionID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Rows, 4)
	assert.Equal(t, "imported", report.Rows[0].Status)
	assert.Equal(t, "skipped", report.Rows[1].Status)
	assert.Equal(t, "error", report.Rows[2].Status)
	assert.Equal(t, "imported", report.Rows[3].Status)

	require.Len(t, questions.rows, 2)
	assert.Equal(t, entity.QuestionNumber, questions.rows[0].Type, "numeric maps to number")
	assert.True(t, questions.rows[0].Required)
	assert.Equal(t, "Heavy metals", questions.rows[0].Description)
	assert.Equal(t, entity.QuestionSingleSelect, questions.rows[1].Type, "dropdown maps to single_select")
	assert.Equal(t, []string{"Cardboard", "Plastic"}, questions.rows[1].Options)

	// RoHS appears twice but is created once.
	assert.Len(t, tags.rows, 2)
}

func TestImportCSV_MissingTextColumnFailsFast(t *testing.T) {
	uc, _, _ := newUseCase()
	_, err := uc.ImportCSV(context.Background(), strings.NewReader("foo,bar\n1,2\n"), subsectionID)
	assert.Error(t, err)
}
