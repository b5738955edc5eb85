package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/user"
	emailsvc "github.com/Shubham414kumar/vidyasphere/services/email"
	inmemdb "github.com/Shubham414kumar/vidyasphere/storage/database/inmem"
	"github.com/Shubham414kumar/vidyasphere/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	validate, _ := testutil.NewValidator()

	usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	usrSvc := user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(conf, logger), logger, user.NewServiceOptions(conf))

	// start CLI
	return &commandLine{
		usrSvc:   usrSvc,
		validate: validate,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err))
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "batches", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-email", "asha@test.in"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "asha@test.in", "-name", "Asha"}, wantErr: errHelp},
		{name: "ok", args: []string{"adduser", "-email", "Asha@test.in", "-name", "Asha"}, extra: "Lib3rty&Books"},
		{name: "admin", args: []string{"adduser", "-email", "ravi@test.in", "-name", "Ravi", "-admin"}, extra: "Lib3rty&Books"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	asha, err := usrRepo.GetUserByEmail(ctx, "asha@test.in")
	require.NoError(t, err)
	assert.True(t, asha.IsActive)
	assert.Equal(t, []string{user.RoleUser}, asha.Roles)
	assert.NoError(t, asha.CheckPassword("Lib3rty&Books"))

	ravi, err := usrRepo.GetUserByEmail(ctx, "ravi@test.in")
	require.NoError(t, err)
	assert.True(t, ravi.IsAdmin())

	// the same email twice
	mockPassword("Lib3rty&Books")
	err = cli.run([]string{"admin", "adduser", "-email", "asha@test.in", "-name", "Asha"})
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr), "error = %v", err)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "Ravi", "ravi@test.in", "Lib3rty&Books", nil, true)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "ravi@test.in"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "who@test.in"}, extra: "N3w&Better-Pass", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "RAVI@test.in"}, extra: "N3w&Better-Pass"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("N3w&Better-Pass"))
}

func Test_commandLine_assignRole(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "Ravi", "ravi@test.in", "Lib3rty&Books", nil, true)

	tests := []cliTest{
		{name: "no args", args: []string{"assignrole"}, wantErr: errHelp},
		{name: "no role", args: []string{"assignrole", "-email", "ravi@test.in"}, wantErr: errHelp},
		{name: "user not found", args: []string{"assignrole", "-email", "who@test.in", "-role", user.RoleAdmin}, wantErr: user.ErrNotFound},
		{name: "assign", args: []string{"assignrole", "-email", "ravi@test.in", "-role", user.RoleAdmin}},
		{name: "twice", args: []string{"assignrole", "-email", "ravi@test.in", "-role", user.RoleAdmin}, wantErr: user.ErrRoleExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.IsAdmin())
}
