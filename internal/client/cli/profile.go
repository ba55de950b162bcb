package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuwenwww/membervault/internal/client/api"
)

func (a *App) Profile(ctx context.Context) error {

	if !a.isLoggedIn() {
		fmt.Println("Please login first")
		return nil
	}

	profile, err := a.api.GetProfile(ctx, a.api.MemberID())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Println("Session expired, please login again")
		} else {
			fmt.Println(err.Error())
		}
		return err
	}

	fmt.Printf("ID:       %s\n", profile.ID)
	fmt.Printf("Username: %s\n", profile.Username)
	if profile.Email != "" {
		fmt.Printf("Email:    %s\n", profile.Email)
	}
	if profile.PhoneNumber != "" {
		fmt.Printf("Phone:    %s\n", profile.PhoneNumber)
	}
	return nil
}
