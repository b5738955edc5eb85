package dig_container

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/Shubham414kumar/vidyasphere/apps/api/echo"
	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/attendance"
	"github.com/Shubham414kumar/vidyasphere/core/batch"
	"github.com/Shubham414kumar/vidyasphere/core/dashboard"
	"github.com/Shubham414kumar/vidyasphere/core/document"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
	emailsvc "github.com/Shubham414kumar/vidyasphere/services/email"
	logsvc "github.com/Shubham414kumar/vidyasphere/services/logger"
	oauthsvc "github.com/Shubham414kumar/vidyasphere/services/oauth"
	paymentsvc "github.com/Shubham414kumar/vidyasphere/services/payment"
	reportsvc "github.com/Shubham414kumar/vidyasphere/services/report"
	"github.com/Shubham414kumar/vidyasphere/storage/database"
	inmemdb "github.com/Shubham414kumar/vidyasphere/storage/database/inmem"
	sqlxrepos "github.com/Shubham414kumar/vidyasphere/storage/database/sqlx"
	objstore "github.com/Shubham414kumar/vidyasphere/storage/objects"
	"github.com/Shubham414kumar/vidyasphere/storage/sessions"
)

// Closer releases a resource on shutdown.
type Closer func()

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// ClosersParam collects the closers of every resource opened by the container.
type ClosersParam struct {
	dig.In
	Closers []Closer `group:"closers"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := logsvc.NewStdLogger(conf)
	stdLogger.SetPrefix("API : ")
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := logsvc.NewStdLogger(conf)
	stdLogger.SetPrefix("DB : ")
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

type dbResult struct {
	dig.Out
	DB     *sqlx.DB
	Closer Closer `group:"closers"`
}

// newDB yields a nil *sqlx.DB when the app runs on in-memory repositories.
func newDB(conf *core.Config, loggerParam DBLoggerParam) (dbResult, error) {
	if conf.Database.InMemory {
		loggerParam.Logger.Warn("using in-memory repositories: data is lost on restart")
		return dbResult{Closer: func() {}}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return dbResult{}, errors.Wrap(err, "setting up database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return dbResult{}, errors.Wrap(err, "setting up database")
	}
	if err = database.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return dbResult{}, errors.Wrap(err, "setting up database")
	}

	closer := func() {
		if err := db.Close(); err != nil {
			loggerParam.Logger.Error("failed to close database", err)
		}
	}
	return dbResult{DB: db, Closer: closer}, nil
}

type repositories struct {
	dig.Out
	Users      user.Repository
	Profiles   profile.Repository
	Notes      document.Repository `name:"notes"`
	PYQs       document.Repository `name:"pyqs"`
	Batches    batch.Repository
	Attendance attendance.Repository
	Donations  donation.Repository
}

func newRepositories(conf *core.Config, db *sqlx.DB) repositories {
	if conf.Database.InMemory {
		mem := inmemdb.Open()
		return repositories{
			Users:      inmemdb.NewUserRepository(mem),
			Profiles:   inmemdb.NewProfileRepository(mem),
			Notes:      inmemdb.NewDocumentRepository(mem, document.KindNote),
			PYQs:       inmemdb.NewDocumentRepository(mem, document.KindPYQ),
			Batches:    inmemdb.NewBatchRepository(mem),
			Attendance: inmemdb.NewAttendanceRepository(mem),
			Donations:  inmemdb.NewDonationRepository(mem),
		}
	}
	return repositories{
		Users:      sqlxrepos.NewUserRepository(db),
		Profiles:   sqlxrepos.NewProfileRepository(db),
		Notes:      sqlxrepos.NewDocumentRepository(db, document.KindNote),
		PYQs:       sqlxrepos.NewDocumentRepository(db, document.KindPYQ),
		Batches:    sqlxrepos.NewBatchRepository(db),
		Attendance: sqlxrepos.NewAttendanceRepository(db),
		Donations:  sqlxrepos.NewDonationRepository(db),
	}
}

type documentRepos struct {
	dig.In
	Notes document.Repository `name:"notes"`
	PYQs  document.Repository `name:"pyqs"`
}

type documentServices struct {
	dig.Out
	Notes document.Service `name:"notes"`
	PYQs  document.Service `name:"pyqs"`
}

func newDocumentServices(repos documentRepos) documentServices {
	return documentServices{
		Notes: document.NewService(document.KindNote, repos.Notes),
		PYQs:  document.NewService(document.KindPYQ, repos.PYQs),
	}
}

func newDonationService(
	conf *core.Config,
	repo donation.Repository,
	gateway donation.PaymentGateway,
	mailSvc core.EmailService,
	logger core.Logger,
) donation.Service {
	return donation.NewService(repo, gateway, mailSvc, logger, donation.Options{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
	})
}

type dashboardParams struct {
	dig.In
	Profiles  profile.Service
	Notes     document.Service `name:"notes"`
	PYQs      document.Service `name:"pyqs"`
	Batches   batch.Service
	Donations donation.Service
}

func newDashboardService(p dashboardParams) dashboard.Service {
	return dashboard.NewService(p.Profiles, p.Notes, p.PYQs, p.Batches, p.Donations)
}

type revocationsResult struct {
	dig.Out
	Store  core.RevocationStore
	Closer Closer `group:"closers"`
}

func newRevocationStore(conf *core.Config, logger core.Logger) (revocationsResult, error) {
	store, stop, err := sessions.NewStore(context.Background(), conf, logger)
	if err != nil {
		return revocationsResult{}, errors.Wrap(err, "setting up revocation store")
	}
	return revocationsResult{Store: store, Closer: Closer(stop)}, nil
}

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	return validate, translator
}

func newShutdownChannel() chan os.Signal {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	return shutdown
}

type serverParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Shutdown   chan os.Signal

	UserSvc       user.Service
	ProfileSvc    profile.Service
	NoteSvc       document.Service `name:"notes"`
	PYQSvc        document.Service `name:"pyqs"`
	BatchSvc      batch.Service
	AttendanceSvc attendance.Service
	DonationSvc   donation.Service
	DashboardSvc  dashboard.Service

	Objects     core.ObjectStore
	Revocations core.RevocationStore
	Google      echoapi.GoogleVerifier
	Microsoft   echoapi.MicrosoftSignIn
}

func newServer(p serverParams) echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Shutdown:      p.Shutdown,
		UserSvc:       p.UserSvc,
		ProfileSvc:    p.ProfileSvc,
		NoteSvc:       p.NoteSvc,
		PYQSvc:        p.PYQSvc,
		BatchSvc:      p.BatchSvc,
		AttendanceSvc: p.AttendanceSvc,
		DonationSvc:   p.DonationSvc,
		DashboardSvc:  p.DashboardSvc,
		Objects:       p.Objects,
		Revocations:   p.Revocations,
		Google:        p.Google,
		Microsoft:     p.Microsoft,
	})
}

func oauthConfig(conf *core.Config) core.OAuthConfig { return conf.OAuth }

// New returns a new dependency injection dig.Container.
// newConfig lets tests and tools swap the configuration source.
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	// config & ambient
	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newValidator))
	must(c.Provide(newShutdownChannel))
	must(c.Provide(emailsvc.NewService))

	// storage
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(objstore.NewStore))
	must(c.Provide(newRevocationStore))

	// external services
	must(c.Provide(oauthConfig))
	must(c.Provide(oauthsvc.NewGoogle, dig.As(new(echoapi.GoogleVerifier))))
	must(c.Provide(oauthsvc.NewMicrosoft, dig.As(new(echoapi.MicrosoftSignIn))))
	must(c.Provide(paymentsvc.NewGateway))
	must(c.Provide(reportsvc.NewXLSXReporter))

	// domain services
	must(c.Provide(user.NewServiceOptions))
	must(c.Provide(user.NewService))
	must(c.Provide(profile.NewService))
	must(c.Provide(newDocumentServices))
	must(c.Provide(batch.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(newDonationService))
	must(c.Provide(newDashboardService))

	must(c.Provide(newServer))

	return c
}

// Visualize writes the dependency graph of c in DOT format.
func Visualize(c *dig.Container, w io.Writer) error {
	return dig.Visualize(c, w)
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
