package main

import (
	"context"
	"time"

	"github.com/nmutua/gradepoint/core"
	"github.com/nmutua/gradepoint/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, pwd string) error {
	var usr user.User
	var err error
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUserByEmail(ctx, email); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Email:     email,
			Semesters: []user.Semester{},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
