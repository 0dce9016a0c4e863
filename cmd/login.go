// Package cmd implements the command-line interface for streamwatch.
package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/auth"
	"github.com/streamer459/streamingdev-sub000/color"
	"github.com/streamer459/streamingdev-sub000/icon"
	"github.com/streamer459/streamingdev-sub000/style"
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("username", "u", "", "The account username")
	loginCmd.Flags().StringP("password", "p", "", "The account password (prompted when omitted)")
}

// loginCmd exchanges account credentials for a session token and stores it
// in the system keyring.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		username := lo.Must(cmd.Flags().GetString("username"))
		password := lo.Must(cmd.Flags().GetString("password"))

		if username == "" {
			handleErr(survey.AskOne(&survey.Input{Message: "Username:"}, &username, survey.WithValidator(survey.Required)))
		}
		if password == "" {
			handleErr(survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)))
		}

		session, err := api.New().Login(cmd.Context(), username, password)
		if errors.Is(err, api.ErrUnauthorized) {
			handleErr(errors.New("invalid username or password"))
		}
		handleErr(err)

		handleErr(auth.SetToken(session.Token))

		fmt.Printf(
			"%s signed in as %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(session.Username),
		)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// logoutCmd invalidates the server session (best effort) and removes the
// stored token.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session token",
	Run: func(cmd *cobra.Command, args []string) {
		client := api.New().WithToken(auth.GetToken)

		// The local token is removed even when the server call fails.
		_ = client.Logout(cmd.Context())

		handleErr(auth.DeleteToken())
		fmt.Printf("%s signed out\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
