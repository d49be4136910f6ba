package domain

import "time"

// StoredUser is the on-disk user record. Emails are kept trimmed and
// lowercased; no two stored users share the same email.
type StoredUser struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,br_phone"`
	Password  string `json:"password" validate:"required,min=6,max=12"`
	CreatedAt string `json:"createdAt" validate:"required,timestamp"`
	UpdatedAt string `json:"updatedAt" validate:"required,timestamp"`
}

// User is the entity view handed to callers. It never exposes the password.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput describes the registration payload.
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,br_phone"`
	Password string `json:"password" validate:"required,min=6,max=12"`
}

// UpdateUserInput is a partial patch; nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=3"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,br_phone"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=12"`
}

// Empty reports whether the patch carries no fields at all.
func (in UpdateUserInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil && in.Password == nil
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=12"`
}
