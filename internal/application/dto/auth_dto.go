package dto

import "time"

// RegisterRequest signup input. Company association is bootstrapped after the
// user is created, so no company_id is required here.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

// LoginRequest login input.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SwitchCompanyRequest selects the current company for this session.
type SwitchCompanyRequest struct {
	CompanyID string `json:"company_id" validate:"required,uuid"`
}

// UserResponse user output (no password hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MembershipResponse one company membership of the current user.
type MembershipResponse struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Role        string `json:"role"`
}

// SessionResponse token plus the session's company context.
type SessionResponse struct {
	Token              string               `json:"token"`
	User               UserResponse         `json:"user"`
	CurrentCompanyID   string               `json:"current_company_id"`
	Memberships        []MembershipResponse `json:"memberships"`
	AssociationCreated bool                 `json:"association_created,omitempty"`
}
