package echoapi

import (
	"context"
	"net/http"
	"os"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/attendance"
	"github.com/Shubham414kumar/vidyasphere/core/batch"
	"github.com/Shubham414kumar/vidyasphere/core/dashboard"
	"github.com/Shubham414kumar/vidyasphere/core/document"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

type (
	// GoogleVerifier checks ID tokens from Google Sign-In.
	GoogleVerifier interface {
		VerifyIDToken(ctx context.Context, idToken string) (user.ProviderIdentity, error)
	}

	// MicrosoftSignIn runs the OAuth2 authorization code flow with Microsoft accounts.
	MicrosoftSignIn interface {
		AuthCodeURL(state string) (string, error)
		Exchange(ctx context.Context, code string) (user.ProviderIdentity, error)
	}

	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Shutdown   chan os.Signal

		UserSvc       user.Service
		ProfileSvc    profile.Service
		NoteSvc       document.Service
		PYQSvc        document.Service
		BatchSvc      batch.Service
		AttendanceSvc attendance.Service
		DonationSvc   donation.Service
		DashboardSvc  dashboard.Service

		Objects     core.ObjectStore
		Revocations core.RevocationStore
		Google      GoogleVerifier
		Microsoft   MicrosoftSignIn
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      isEdgeFunction, // sets its own headers
		AllowOrigins: conf.Server.CORSAllowedOrigins,
		AllowHeaders: []string{
			echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderOrigin,
		},
	}))
	if conf.Server.RateLimit > 0 && !conf.TestMode {
		s.app.Use(rateLimitMiddleware(conf))
	}
	s.app.Use(middleware.BodyLimit(bodyLimit(conf)))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf.AppName))
	s.app.GET("/health", health)

	auth := authMiddleware(conf, s.opts.Revocations, false)
	optionalAuth := authMiddleware(conf, s.opts.Revocations, true)
	admin := requireRole(user.RoleAdmin)

	registerStorageAPI(s.app, auth, s.opts)
	registerDownloadProxy(s.app, s.opts.Objects)

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, auth, s.opts)
	registerProfileAPI(v1, auth, s.opts.ProfileSvc, s.opts.Validate)
	registerDocumentAPI(v1.Group("/notes"), auth, admin, s.opts.NoteSvc, s.opts.Validate)
	registerDocumentAPI(v1.Group("/pyqs"), auth, admin, s.opts.PYQSvc, s.opts.Validate)
	registerBatchAPI(v1, auth, admin, s.opts.BatchSvc, s.opts.Validate)
	registerAttendanceAPI(v1, auth, s.opts.AttendanceSvc, s.opts.Validate)
	registerDonationAPI(v1, optionalAuth, s.opts.DonationSvc, s.opts.Validate)
	registerAdminAPI(v1.Group("/admin", auth, admin), s.opts)
}

func (s *server) signalShutdown() {
	if s.opts.Shutdown != nil {
		s.opts.Shutdown <- syscall.SIGTERM
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.opts.Logger.Fatal("starting server", err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func isEdgeFunction(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/functions/")
}

func home(appName string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+appName+" API!")
	}
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
