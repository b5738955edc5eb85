package main

import (
	"context"

	"github.com/Shubham414kumar/vidyasphere/core/user"
)

func (cli *commandLine) assignRole(email, role string) error {
	data := user.AssignRole{Email: email, Role: role}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}
	_, err := cli.usrSvc.AssignRole(context.Background(), data)
	return err
}
