package repository

import "github.com/scottring/compliant-connect-sub001/internal/domain/entity"

// QuestionRepository defines the persistence port for the question bank.
type QuestionRepository interface {
	Create(question *entity.Question) error
	AddTags(questionID string, tagIDs []string) error
	GetByID(id string) (*entity.Question, error)
	List(limit, offset int) ([]*entity.Question, error)
	ListByTags(tagIDs []string) ([]*entity.Question, error)
}

// TagRepository defines the persistence port for tags.
type TagRepository interface {
	Create(tag *entity.Tag) error
	GetByID(id string) (*entity.Tag, error)
	GetByName(name string) (*entity.Tag, error)
	List() ([]*entity.Tag, error)
}

// SectionRepository defines the persistence port for sections/subsections.
type SectionRepository interface {
	Create(section *entity.Section) error
	GetByID(id string) (*entity.Section, error)
	List() ([]*entity.Section, error)
}
