package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendsync/internal/core"
	"spendsync/internal/services"
	"spendsync/internal/state"
)

func newLoginCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Authenticate and warm the local caches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			app.Dispatcher.Dispatch(services.Login{Username: args[0], Password: args[1]})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Session.Status)
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Session.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Session.LastError)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", snap.Session.CurrentUser.Username)
			return nil
		},
	}
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear all cached data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			app.Dispatcher.Dispatch(services.Logout{})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return s.Session.LogoutReason != ""
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), snap.Session.LogoutReason)
			return nil
		},
	}
}

func newRegisterCmd(configPath *string) *cobra.Command {
	var reg core.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			app.Dispatcher.Dispatch(services.Register{Registration: reg})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Session.Status)
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Session.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Session.LastError)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered as %s\n", snap.Session.CurrentUser.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "account username")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&reg.Country, "country", "", "country code")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newForgotPasswordCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			app.Dispatcher.Dispatch(services.ForgotPassword{Email: args[0]})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return s.Session.PasswordReset || s.Session.Status == state.StatusFailed
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Session.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Session.LastError)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password reset requested, check your inbox")
			return nil
		},
	}
}

func newWhoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			snap := app.Store.Snapshot()
			if !snap.Session.Authenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}

			// Restore only knows the user id; wait for the profile fetch it
			// kicked off to land.
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Profile.Status)
			}); err != nil {
				return err
			}

			snap = app.Store.Snapshot()
			if snap.Profile.User != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", snap.Profile.User.Username, snap.Profile.User.Email)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as user %s\n", snap.Session.CurrentUser.ID)
			return nil
		},
	}
}
