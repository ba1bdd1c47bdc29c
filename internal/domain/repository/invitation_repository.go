package repository

import "github.com/scottring/compliant-connect-sub001/internal/domain/entity"

// InvitationRepository defines the persistence port for supplier invitations.
type InvitationRepository interface {
	Create(inv *entity.Invitation) error
	GetByToken(token string) (*entity.Invitation, error)
	GetPendingByEmail(email string) (*entity.Invitation, error)
	Update(inv *entity.Invitation) error
}
