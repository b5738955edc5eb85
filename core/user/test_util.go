package user

import (
	"context"

	"github.com/Shubham414kumar/vidyasphere/core"
)

type serviceMock struct {
	*service
}

// NewServiceMock returns a Service that sends its mails synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, logger core.Logger, opts Options) Service {
	return &serviceMock{
		service: NewService(repo, mailSvc, logger, opts).(*service),
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakeResetToken exposes the password reset token of usr to tests.
func (svc *serviceMock) MakeResetToken(usr User) string {
	return svc.tokens.makeToken(usr)
}
