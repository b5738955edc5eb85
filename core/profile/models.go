package profile

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shubham414kumar/vidyasphere/core"
)

// Profile holds the public details of an identity. There is exactly one per user.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Grade     string    `json:"grade"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// UpdateProfile defines what the owner may change on their profile.
type UpdateProfile struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Grade    string `json:"grade" validate:"omitempty,max=20"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.FullName = core.CleanString(up.FullName)
	up.Phone = core.CleanString(up.Phone)
	up.Grade = core.CleanString(up.Grade)
	return validate.Struct(up)
}
