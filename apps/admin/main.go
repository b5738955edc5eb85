package main

import (
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/user"
	emailsvc "github.com/Shubham414kumar/vidyasphere/services/email"
	logsvc "github.com/Shubham414kumar/vidyasphere/services/logger"
	"github.com/Shubham414kumar/vidyasphere/storage/database"
	sqlxrepos "github.com/Shubham414kumar/vidyasphere/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	stdLogger := logsvc.NewStdLogger(conf)
	stdLogger.SetPrefix("ADMIN : ")
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	defer logger.Close()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db: db.DB,
		usrSvc: user.NewService(
			sqlxrepos.NewUserRepository(db),
			emailsvc.NewService(conf, logger),
			logger,
			user.NewServiceOptions(conf),
		),
		validate: validate,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		logger.Close()
		os.Exit(1)
	}
}
