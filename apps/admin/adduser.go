package main

import (
	"context"
	"fmt"

	"github.com/Shubham414kumar/vidyasphere/core/user"
)

// addUser creates an active email user. Admins also get the user role.
func (cli *commandLine) addUser(email, fullName, pwd string, isAdmin bool) error {
	nu := user.NewUser{
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		FullName:        fullName,
	}
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}

	roles := []string{user.RoleUser}
	if isAdmin {
		roles = append(roles, user.RoleAdmin)
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu, roles...)
	if err != nil {
		return err
	}
	fmt.Printf("created user %s (%s)\n", usr.Email, usr.ID)
	return nil
}
