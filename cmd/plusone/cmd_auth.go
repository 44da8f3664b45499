package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plusone-alumni/plusone/internal/services"
)

func (c *cli) signupCmd() *cobra.Command {
	var form services.SignupForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account with a @vanderbilt.edu email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.NewAuthService(c.client).Signup(cmd.Context(), form)
			if err != nil {
				return fail(err)
			}
			return c.startSession(cmd, result)
		},
	}
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Vanderbilt email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (6+ characters)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password again")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.NewAuthService(c.client).Login(cmd.Context(), email, password)
			if err != nil {
				return fail(err)
			}
			return c.startSession(cmd, result)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func (c *cli) startSession(cmd *cobra.Command, result *services.AuthResult) error {
	if c.state.User == nil || c.state.User.UserID != result.User.UserID {
		c.state.Onboarding = nil
	}
	user := result.User
	c.state.User = &user
	if err := c.save(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signed in as %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	if result.Destination == services.DestinationOnboarding {
		fmt.Fprintln(out, `Your profile is not finished yet. Run "plusone onboard show" to continue.`)
	}
	return nil
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.user()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> (%s)\n", user.FirstName, user.LastName, user.Email, user.UserID)
			return nil
		},
	}
}
