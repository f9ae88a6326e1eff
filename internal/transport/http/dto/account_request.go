package dto

import "strings"

// LoginRequest carries no validate tags: every login failure, including a
// missing field, is reported as invalid credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// CreateAccountRequest omits role to create a Member.
type CreateAccountRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,role"`
}

func (r *CreateAccountRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
}

// UpdateAccountRequest is a partial update: absent fields are left untouched,
// present fields must be non-empty.
type UpdateAccountRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,notblank,email,max=320"`
	Password *string `json:"password,omitempty" validate:"omitempty,notblank,max=72"`
	Role     *string `json:"role,omitempty" validate:"omitempty,notblank,role"`
}

func (r *UpdateAccountRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil && r.Role == nil
}
