package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yuwenwww/membervault/internal/client/api"
)

func (a *App) Login(ctx context.Context) error {

	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if err := a.api.Login(ctx, userName, string(password)); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Println("Invalid credentials")
		} else {
			fmt.Println(err.Error())
		}
		return err
	}

	a.userName = userName
	fmt.Println("Logged in!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	fmt.Println("Logged out")
	return nil
}
