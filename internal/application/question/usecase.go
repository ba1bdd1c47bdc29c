package question

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scottring/compliant-connect-sub001/internal/application/dto"
	"github.com/scottring/compliant-connect-sub001/internal/domain"
	"github.com/scottring/compliant-connect-sub001/internal/domain/entity"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

// UseCase manages the shared question bank: questions, tags and the
// section/subsection hierarchy.
type UseCase struct {
	questionRepo repository.QuestionRepository
	tagRepo      repository.TagRepository
	sectionRepo  repository.SectionRepository
	tx           TxRunner
	log          *logger.Logger
}

// NewUseCase builds the question-bank use case.
func NewUseCase(
	questionRepo repository.QuestionRepository,
	tagRepo repository.TagRepository,
	sectionRepo repository.SectionRepository,
	tx TxRunner,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		questionRepo: questionRepo,
		tagRepo:      tagRepo,
		sectionRepo:  sectionRepo,
		tx:           tx,
		log:          log,
	}
}

// CreateWithTags validates and creates a question together with its tag links
// in one transaction.
func (uc *UseCase) CreateWithTags(ctx context.Context, in dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	if !entity.ValidQuestionType(in.Type) {
		return nil, fmt.Errorf("%w: unknown question type %q", domain.ErrInvalidInput, in.Type)
	}
	if entity.IsChoiceType(in.Type) && len(in.Options) == 0 {
		return nil, fmt.Errorf("%w: %s questions need at least one option", domain.ErrInvalidInput, in.Type)
	}
	if !entity.IsChoiceType(in.Type) && len(in.Options) > 0 {
		return nil, fmt.Errorf("%w: options are only valid for choice questions", domain.ErrInvalidInput)
	}

	sub, err := uc.sectionRepo.GetByID(in.SubsectionID)
	if err != nil {
		return nil, fmt.Errorf("load subsection: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: subsection %s", domain.ErrNotFound, in.SubsectionID)
	}

	for _, tagID := range in.TagIDs {
		tag, err := uc.tagRepo.GetByID(tagID)
		if err != nil {
			return nil, fmt.Errorf("load tag: %w", err)
		}
		if tag == nil {
			return nil, fmt.Errorf("%w: tag %s", domain.ErrNotFound, tagID)
		}
	}

	now := time.Now()
	q := &entity.Question{
		ID:           uuid.New().String(),
		SubsectionID: in.SubsectionID,
		Text:         strings.TrimSpace(in.Text),
		Description:  in.Description,
		Type:         in.Type,
		Required:     in.Required,
		Options:      in.Options,
		TagIDs:       in.TagIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.RunQuestion(ctx, func(questionRepo repository.QuestionRepository) error {
		if err := questionRepo.Create(q); err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		if len(in.TagIDs) > 0 {
			if err := questionRepo.AddTags(q.ID, in.TagIDs); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("question_id", q.ID).Str("type", q.Type).Msg("question created")
	return toQuestionResponse(q), nil
}

// Get returns one question.
func (uc *UseCase) Get(id string) (*dto.QuestionResponse, error) {
	q, err := uc.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	return toQuestionResponse(q), nil
}

// List returns a page of the question bank.
func (uc *UseCase) List(page dto.PageRequest) (*dto.QuestionListResponse, error) {
	page.DefaultPage()
	questions, err := uc.questionRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		items = append(items, *toQuestionResponse(q))
	}
	return &dto.QuestionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

// ListByTags returns the questions linked to any of the given tags. An empty
// tag list is an empty scope, not the whole bank.
func (uc *UseCase) ListByTags(tagIDs []string) ([]dto.QuestionResponse, error) {
	questions, err := uc.questionRepo.ListByTags(tagIDs)
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		items = append(items, *toQuestionResponse(q))
	}
	return items, nil
}

// CreateTag creates a tag; duplicate names (case-insensitive) are rejected.
func (uc *UseCase) CreateTag(in dto.CreateTagRequest) (*dto.TagResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name", domain.ErrMissingRequired)
	}
	existing, err := uc.tagRepo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	tag := &entity.Tag{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.tagRepo.Create(tag); err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &dto.TagResponse{ID: tag.ID, Name: tag.Name, Description: tag.Description, CreatedAt: tag.CreatedAt}, nil
}

// ListTags returns all tags.
func (uc *UseCase) ListTags() ([]dto.TagResponse, error) {
	tags, err := uc.tagRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagResponse{ID: t.ID, Name: t.Name, Description: t.Description, CreatedAt: t.CreatedAt})
	}
	return out, nil
}

// CreateSection creates a section, or a subsection when ParentID is set.
// Only one level of nesting is allowed.
func (uc *UseCase) CreateSection(in dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: section name", domain.ErrMissingRequired)
	}
	if in.ParentID != nil {
		parent, err := uc.sectionRepo.GetByID(*in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent section %s", domain.ErrNotFound, *in.ParentID)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: subsections cannot be nested further", domain.ErrInvalidInput)
		}
	}

	now := time.Now()
	s := &entity.Section{
		ID:        uuid.New().String(),
		Name:      name,
		ParentID:  in.ParentID,
		OrderNum:  in.OrderNum,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.sectionRepo.Create(s); err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	return &dto.SectionResponse{ID: s.ID, Name: s.Name, ParentID: s.ParentID, OrderNum: s.OrderNum}, nil
}

// ListSections returns the full hierarchy, ordered by OrderNum in the store.
func (uc *UseCase) ListSections() ([]dto.SectionResponse, error) {
	sections, err := uc.sectionRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.SectionResponse, 0, len(sections))
	for _, s := range sections {
		out = append(out, dto.SectionResponse{ID: s.ID, Name: s.Name, ParentID: s.ParentID, OrderNum: s.OrderNum})
	}
	return out, nil
}

func toQuestionResponse(q *entity.Question) *dto.QuestionResponse {
	return &dto.QuestionResponse{
		ID:           q.ID,
		SubsectionID: q.SubsectionID,
		Text:         q.Text,
		Description:  q.Description,
		Type:         q.Type,
		Required:     q.Required,
		Options:      q.Options,
		TagIDs:       q.TagIDs,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}
