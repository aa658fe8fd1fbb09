package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spendsync/internal/core"
	"spendsync/internal/services"
	"spendsync/internal/state"
)

func newSettingsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage per-user preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			user, err := requireSession(app)
			if err != nil {
				return err
			}

			app.Dispatcher.Dispatch(services.FetchSettings{UserID: user.ID})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Settings.Status)
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Settings.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Settings.LastError)
			}
			data := snap.Settings.Data
			if data == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No settings stored")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", data.Theme)
			fmt.Fprintf(cmd.OutOrStdout(), "selected categories: %s\n", strings.Join(data.SelectedCategories, ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "selected payment methods: %s\n", strings.Join(data.SelectedPaymentMethods, ", "))
			return nil
		},
	}

	var (
		theme      string
		categories []string
		methods    []string
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Save settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			user, err := requireSession(app)
			if err != nil {
				return err
			}

			data := core.Settings{
				Theme:                  theme,
				SelectedCategories:     categories,
				SelectedPaymentMethods: methods,
			}
			app.Dispatcher.Dispatch(services.SaveSettings{UserID: user.ID, Data: data})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Settings.Status)
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Settings.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Settings.LastError)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved")
			return nil
		},
	}
	save.Flags().StringVar(&theme, "theme", "light", "UI theme")
	save.Flags().StringSliceVar(&categories, "categories", nil, "selected category ids")
	save.Flags().StringSliceVar(&methods, "payment-methods", nil, "selected payment method ids")

	cmd.AddCommand(show, save)
	return cmd
}

func newProfileCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the account profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the account profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			user, err := requireSession(app)
			if err != nil {
				return err
			}

			app.Dispatcher.Dispatch(services.FetchProfile{UserID: user.ID})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Profile.Status)
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Profile.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Profile.LastError)
			}
			p := snap.Profile.User
			if p == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No profile loaded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "username: %s\n", p.Username)
			fmt.Fprintf(cmd.OutOrStdout(), "email: %s\n", p.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "name: %s %s\n", p.FirstName, p.LastName)
			if p.Country != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "country: %s\n", p.Country)
			}
			if p.Phone != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "phone: %s\n", p.Phone)
			}
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch core.ProfilePatch
			if cmd.Flags().Changed("first-name") {
				v, _ := cmd.Flags().GetString("first-name")
				patch.FirstName = &v
			}
			if cmd.Flags().Changed("last-name") {
				v, _ := cmd.Flags().GetString("last-name")
				patch.LastName = &v
			}
			if cmd.Flags().Changed("phone") {
				v, _ := cmd.Flags().GetString("phone")
				patch.Phone = &v
			}
			if cmd.Flags().Changed("country") {
				v, _ := cmd.Flags().GetString("country")
				patch.Country = &v
			}
			if cmd.Flags().Changed("avatar-url") {
				v, _ := cmd.Flags().GetString("avatar-url")
				patch.AvatarURL = &v
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			user, err := requireSession(app)
			if err != nil {
				return err
			}

			app.Dispatcher.Dispatch(services.UpdateProfile{UserID: user.ID, Patch: patch})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Profile.Status)
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Profile.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Profile.LastError)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
			return nil
		},
	}
	update.Flags().String("first-name", "", "new first name")
	update.Flags().String("last-name", "", "new last name")
	update.Flags().String("phone", "", "new phone number")
	update.Flags().String("country", "", "new country code")
	update.Flags().String("avatar-url", "", "new avatar URL")

	cmd.AddCommand(show, update)
	return cmd
}
