package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shubham414kumar/vidyasphere/core"
)

// Roles
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// Sign-in providers
const (
	ProviderEmail     = "email"
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

var (
	AllRoles = []string{RoleAdmin, RoleModerator, RoleUser}

	rolePriorities = map[string]int{
		RoleAdmin:     30,
		RoleModerator: 20,
		RoleUser:      10,
	}

	errNoPassword = errors.New("user has no password")
)

func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Provider   string `json:"provider"`
	ProviderID string `json:"-"`
	// EmailVerified is set once the owner proved control of the address:
	// a provider vouched for it or a password reset mail was used.
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	Roles         []string  `json:"roles"`
	PasswordHash  []byte    `json:"-"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
	LastLogin     time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	if len(u.PasswordHash) == 0 {
		return errNoPassword
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// RoleAssignment is a user_roles row joined with the owner's email and profile.
type RoleAssignment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser contains information needed to sign up with an email and a password.
type NewUser struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FullName        string `json:"full_name" validate:"required,max=120"`
	Phone           string `json:"phone" validate:"omitempty,phone"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Phone = core.CleanString(nu.Phone)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// ProviderIdentity is what an OAuth provider tells us about a signed-in person.
type ProviderIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	// EmailVerified is true only when the provider vouches that Subject owns Email.
	EmailVerified bool
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// AssignRole grants a role to the user owning Email.
type AssignRole struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,role"`
}

func (ar *AssignRole) Validate(validate *validator.Validate) error {
	ar.Email = core.CleanString(ar.Email, true /* lower */)
	ar.Role = core.CleanString(ar.Role, true /* lower */)
	return validate.Struct(ar)
}
