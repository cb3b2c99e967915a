package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gitlab.com/adam.stanek/huckleberry/pkg/client"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session, prompts for missing credentials",
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	instance, err := newApp()
	if err != nil {
		return err
	}

	c := instance.RestClient
	if c.Email == "" || c.Password == "" {
		log.Info().Msg("Doing login")
		c.Email, c.Password, err = getCredentials(c.Email)
		fmt.Print("\n")
		if err != nil {
			return fmt.Errorf("can't get credentials: %w", err)
		}
	}

	ctx := context.Background()

	err = c.Authorize(ctx)
	var authErr *client.AuthError
	if errors.As(err, &authErr) {
		fmt.Printf("Can't login: %s\n", authErr.Reason)
		return err
	} else if err != nil {
		return err
	}

	children, err := c.GetChildren(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s, found %d children\n", c.Email, len(children))
	for _, ch := range children {
		fmt.Printf("  %s\t%s\n", ch.UID, ch.Name)
	}

	return nil
}

func getCredentials(email string) (string, string, error) {
	if email == "" {
		reader := bufio.NewReader(os.Stdin)

		fmt.Print("Enter Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", "", err
	}

	return email, string(bytePassword), nil
}
