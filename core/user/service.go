package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/profile"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrRoleNotFound       = core.NewNotFoundError("role")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrRoleExists         = core.NewConflictError("the user already has this role")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrUnknownProvider    = errors.New("unknown sign-in provider")

	ErrProviderEmailUnverified = core.NewPermissionError("the sign-in provider did not verify this email address")
	ErrAccountNotLinkable      = core.NewConflictError(
		"an account with this email already exists: sign in with your password, or reset it to confirm your email, then try again")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		// CreateUser inserts the user, its roles and its profile in one transaction.
		CreateUser(ctx context.Context, usr User, prof profile.Profile) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByProvider(ctx context.Context, provider, providerID string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)

		QueryRoles(ctx context.Context) ([]RoleAssignment, error)
		AddRole(ctx context.Context, userID, role string) (RoleAssignment, error)
		DeleteRole(ctx context.Context, id string) error
	}

	Service interface {
		CheckUniqueness(email string) error
		SignUp(ctx context.Context, nu NewUser) (User, error)
		// Create adds an active email user directly with the given roles (admin tooling).
		Create(ctx context.Context, nu NewUser, roles ...string) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		SignInWithProvider(ctx context.Context, ident ProviderIdentity) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		SetPassword(ctx context.Context, usr User, pwd string) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error

		HasRole(ctx context.Context, userID, role string) (bool, error)
		ListRoles(ctx context.Context) ([]RoleAssignment, error)
		AssignRole(ctx context.Context, data AssignRole) (RoleAssignment, error)
		RemoveRole(ctx context.Context, id string) error
	}

	Options struct {
		AppName         string
		FrontendBaseURL string
		SecretKey       string
		ResetTimeout    time.Duration
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
		opts    Options
		tokens  *tokenGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger, opts Options) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
		opts:    opts,
		tokens:  newTokenGenerator(opts.SecretKey, opts.ResetTimeout),
	}
}

// NewServiceOptions picks the user service options from the app config.
func NewServiceOptions(conf *core.Config) Options {
	return Options{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		SecretKey:       conf.SecretKey,
		ResetTimeout:    conf.PasswordResetTimeoutDelta,
	}
}

func (svc *service) CheckUniqueness(email string) error {
	return emailExistsErr(svc.repo.CheckEmailUniqueness(context.Background(), email))
}

func emailExistsErr(err error) error {
	if errors.Cause(err) == ErrEmailExists {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return err
}

func (svc *service) create(ctx context.Context, usr User, fullName, phone string) (User, error) {
	now := time.Now().UTC()
	usr.IsActive = true
	usr.CreatedAt = now
	usr.UpdatedAt = now
	if len(usr.Roles) == 0 {
		usr.Roles = []string{RoleUser}
	}
	prof := profile.Profile{
		FullName:  fullName,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr, err := svc.repo.CreateUser(ctx, usr, prof)
	return usr, emailExistsErr(err)
}

func (svc *service) SignUp(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.Create(ctx, nu)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr, nu.FullName)
	return usr, nil
}

func (svc *service) Create(ctx context.Context, nu NewUser, roles ...string) (User, error) {
	usr := User{
		Email:    nu.Email,
		Provider: ProviderEmail,
		Roles:    roles,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.create(ctx, usr, nu.FullName, nu.Phone)
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	return svc.setLastLogin(ctx, usr)
}

// SignInWithProvider finds the user linked to the provider identity.
// Otherwise, when the provider vouches for the email, a verified account with that email
// is linked, or a new user is created.
func (svc *service) SignInWithProvider(ctx context.Context, ident ProviderIdentity) (User, error) {
	if ident.Provider != ProviderGoogle && ident.Provider != ProviderMicrosoft {
		return User{}, ErrUnknownProvider
	}
	ident.Email = core.CleanString(ident.Email, true /* lower */)

	usr, err := svc.repo.GetUserByProvider(ctx, ident.Provider, ident.Subject)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		if usr, err = svc.linkOrCreate(ctx, ident); err != nil {
			return User{}, err
		}
	default:
		return User{}, errors.Wrap(err, "finding user by provider")
	}

	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	return svc.setLastLogin(ctx, usr)
}

func (svc *service) linkOrCreate(ctx context.Context, ident ProviderIdentity) (User, error) {
	if !ident.EmailVerified {
		return User{}, ErrProviderEmailUnverified
	}

	usr, err := svc.repo.GetUserByEmail(ctx, ident.Email)
	switch errors.Cause(err) {
	case nil:
		// whoever registered the email first never proved they own it
		if !usr.EmailVerified {
			return User{}, ErrAccountNotLinkable
		}
		usr.Provider = ident.Provider
		usr.ProviderID = ident.Subject
		usr.UpdatedAt = time.Now().UTC()
		usr, err = svc.repo.UpdateUser(ctx, usr)
		return usr, errors.Wrap(err, "linking provider")
	case ErrNotFound:
		usr = User{Email: ident.Email, Provider: ident.Provider, ProviderID: ident.Subject, EmailVerified: true}
		if usr, err = svc.create(ctx, usr, ident.Name, ""); err != nil {
			return User{}, errors.Wrap(err, "creating user")
		}
		svc.sendWelcomeMail(usr, ident.Name)
		return usr, nil
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}
}

func (svc *service) setLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	usr, err := svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting last login")
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalidErr := core.NewValidationError(errInvalidToken)

	uid, err := decodeUID(data.UID)
	if err != nil {
		return invalidErr
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalidErr
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err := svc.tokens.verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err)
	}
	// the token came through the mailbox
	usr.EmailVerified = true
	_, err = svc.SetPassword(ctx, usr, data.Password)
	return err
}

func (svc *service) HasRole(ctx context.Context, userID, role string) (bool, error) {
	usr, err := svc.GetByID(ctx, userID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return usr.HasRole(role), nil
}

func (svc *service) ListRoles(ctx context.Context) ([]RoleAssignment, error) {
	return svc.repo.QueryRoles(ctx)
}

// AssignRole resolves the email to its user before inserting the role row.
func (svc *service) AssignRole(ctx context.Context, data AssignRole) (RoleAssignment, error) {
	usr, err := svc.GetByEmail(ctx, data.Email)
	if err != nil {
		return RoleAssignment{}, err
	}
	if usr.HasRole(data.Role) {
		return RoleAssignment{}, ErrRoleExists
	}
	return svc.repo.AddRole(ctx, usr.ID, data.Role)
}

func (svc *service) RemoveRole(ctx context.Context, id string) error {
	return svc.repo.DeleteRole(ctx, id)
}

// Mails

func (svc *service) sendMail(msg *core.EmailMessage) {
	if err := msg.Render(svc.opts.AppName, svc.opts.FrontendBaseURL); err != nil {
		svc.logger.Error("rendering "+msg.TemplateName+" email", errors.Wrap(err, "rendering email"))
		return
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) sendWelcomeMail(usr User, name string) {
	svc.sendMail(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.opts.AppName,
		TemplateName: "welcome",
		TemplateData: map[string]string{"Name": name, "Email": usr.Email},
	})
}

func (svc *service) sendPasswordResetMail(usr User) {
	svc.sendMail(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Password reset on " + svc.opts.AppName,
		TemplateName: "password_reset",
		TemplateData: map[string]string{
			"UID":   EncodeUID(usr),
			"Token": svc.tokens.makeToken(usr),
		},
	})
}
