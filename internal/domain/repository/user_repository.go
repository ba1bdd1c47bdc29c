package repository

import "github.com/scottring/compliant-connect-sub001/internal/domain/entity"

// UserRepository defines the persistence port for User (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
}

// ProfileRepository defines the persistence port for user profiles.
// Upsert must tolerate concurrent creation of the same row (bootstrap races).
type ProfileRepository interface {
	Upsert(profile *entity.Profile) error
	GetByUserID(userID string) (*entity.Profile, error)
}
