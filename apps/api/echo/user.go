package echoapi

import (
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
	"github.com/Shubham414kumar/vidyasphere/services/oauth"
)

type userApi struct {
	svc         user.Service
	profileSvc  profile.Service
	validate    *validator.Validate
	tokens      tokenIssuer
	revocations core.RevocationStore
	google      GoogleVerifier
	microsoft   MicrosoftSignIn
	frontendURL string
	logger      core.Logger
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := userApi{
		svc:         opts.UserSvc,
		profileSvc:  opts.ProfileSvc,
		validate:    opts.Validate,
		tokens:      tokenIssuer{conf: opts.Conf},
		revocations: opts.Revocations,
		google:      opts.Google,
		microsoft:   opts.Microsoft,
		frontendURL: opts.Conf.FrontendBaseURL,
		logger:      opts.Logger,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/signup", api.signUp)
	ag.POST("/login", api.login)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)
	ag.POST("/oauth/google", api.googleSignIn)
	ag.GET("/oauth/microsoft", api.microsoftRedirect)
	ag.GET("/oauth/microsoft/callback", api.microsoftCallback)

	// authed endpoints
	ag.POST("/logout", api.logout, auth)
	ag.POST("/token-refresh", api.refreshToken, auth)
	ag.GET("/session", api.session, auth)
}

// Handlers

func (api *userApi) signUp(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.SignUp(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	token, err := api.tokens.issue(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, LoginResponse{Token: token, User: &usr})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return signInErr(err, "authenticating")
	}
	token, err := api.tokens.issue(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: &usr})
}

func signInErr(err error, action string) error {
	switch errors.Cause(err) {
	case user.ErrInvalidCredentials:
		return errAuthenticationFailed
	case user.ErrAccountDeactivated:
		return errAccountDeactivated
	}
	return errors.Wrap(err, action)
}

func (api *userApi) logout(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	if err := api.revocations.Revoke(ctx.Request().Context(), sess.TokenID, sess.ExpiresAt); err != nil {
		return errors.Wrap(err, "revoking token")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), sess.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUnauthorized
		}
		return errors.Wrap(err, "finding user by ID")
	}
	token, err := api.tokens.refresh(sess, usr)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) session(ctx echo.Context) error {
	sess, err := mustSession(ctx)
	if err != nil {
		return err
	}
	resp := SessionResponse{Session: sess}
	prof, err := api.profileSvc.Get(ctx.Request().Context(), sess.UserID)
	switch errors.Cause(err) {
	case nil:
		resp.Profile = &prof
	case profile.ErrNotFound:
	default:
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) googleSignIn(ctx echo.Context) error {
	if api.google == nil {
		return errProviderNotAvailable
	}
	var data GoogleSignInRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GoogleSignInRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	ident, err := api.google.VerifyIDToken(ctx.Request().Context(), data.IDToken)
	if err != nil {
		return providerErr(err)
	}
	usr, err := api.svc.SignInWithProvider(ctx.Request().Context(), ident)
	if err != nil {
		return signInErr(err, "signing in with google")
	}
	token, err := api.tokens.issue(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, User: &usr})
}

func (api *userApi) microsoftRedirect(ctx echo.Context) error {
	if api.microsoft == nil {
		return errProviderNotAvailable
	}
	state, nonce, err := api.tokens.oauthState()
	if err != nil {
		return errors.Wrap(err, "generating oauth state")
	}
	authURL, err := api.microsoft.AuthCodeURL(state)
	if err != nil {
		return providerErr(err)
	}
	ctx.SetCookie(stateNonceCookie(ctx, nonce, int(stateExpiresIn.Seconds())))
	return ctx.Redirect(http.StatusFound, authURL)
}

// microsoftCallback signs the user in and hands the token to the frontend in the URL fragment.
func (api *userApi) microsoftCallback(ctx echo.Context) error {
	if api.microsoft == nil {
		return errProviderNotAvailable
	}
	var nonce string
	if c, err := ctx.Cookie(stateCookie); err == nil {
		nonce = c.Value
	}
	ctx.SetCookie(stateNonceCookie(ctx, "", -1))
	if err := api.tokens.checkOAuthState(ctx.QueryParam("state"), nonce); err != nil {
		return err
	}
	code := ctx.QueryParam("code")
	if code == "" {
		return errAuthenticationFailed
	}

	ident, err := api.microsoft.Exchange(ctx.Request().Context(), code)
	if err != nil {
		return providerErr(err)
	}
	usr, err := api.svc.SignInWithProvider(ctx.Request().Context(), ident)
	if err != nil {
		return signInErr(err, "signing in with microsoft")
	}
	token, err := api.tokens.issue(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.Redirect(http.StatusFound, api.frontendURL+"/auth/callback#access_token="+url.QueryEscape(token))
}

func providerErr(err error) error {
	switch errors.Cause(err) {
	case oauthsvc.ErrNotConfigured:
		return errProviderNotAvailable
	case oauthsvc.ErrInvalidToken:
		return errAuthenticationFailed
	}
	return errors.Wrap(err, "verifying provider identity")
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string     `json:"token"`
		User  *user.User `json:"user,omitempty"`
	}

	GoogleSignInRequest struct {
		IDToken string `json:"id_token" validate:"required"`
	}

	SessionResponse struct {
		Session Session          `json:"session"`
		Profile *profile.Profile `json:"profile"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
