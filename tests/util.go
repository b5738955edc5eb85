// Package testutil holds helpers shared by the tests of several packages.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
	"github.com/Shubham414kumar/vidyasphere/services/logger"
)

// NewLogger returns a logger that discards its output and never reports to Rollbar.
func NewLogger() core.Logger {
	conf := core.NewTestConfig()
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// NewValidator returns a validator with every custom tag of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	fullName, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if len(roles) == 0 {
		roles = []string{user.RoleUser}
	}
	usr := user.User{
		Email:     email,
		Provider:  user.ProviderEmail,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	prof := profile.Profile{FullName: fullName, CreatedAt: tstamp, UpdatedAt: tstamp}
	usr, err := repo.CreateUser(context.Background(), usr, prof)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
