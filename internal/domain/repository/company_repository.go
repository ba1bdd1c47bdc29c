package repository

import "github.com/scottring/compliant-connect-sub001/internal/domain/entity"

// CompanyRepository defines the persistence port for Company (DIP).
// The implementation lives in infrastructure.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	GetByName(name string) (*entity.Company, error)
	Update(company *entity.Company) error
	List(limit, offset int) ([]*entity.Company, error)
}

// MembershipRepository defines the persistence port for company_users rows.
type MembershipRepository interface {
	Create(m *entity.CompanyUser) error
	Get(userID, companyID string) (*entity.CompanyUser, error)
	ListByUser(userID string) ([]*entity.CompanyUser, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.CompanyUser, error)
	CountByUser(userID string) (int, error)
	UpdateRole(userID, companyID, role string) error
}
