package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"spendsync/internal/export"
	"spendsync/internal/export/google"
	"spendsync/internal/services"
	"spendsync/internal/state"
)

// newExportCmd refreshes every collection and writes the snapshot to a
// Google spreadsheet.
func newExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export all cached data to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			if _, err := requireSession(app); err != nil {
				return err
			}

			writer, err := google.NewFromEnv(ctx)
			if err != nil {
				return err
			}

			app.Dispatcher.Dispatch(services.FetchExpenses{})
			app.Dispatcher.Dispatch(services.FetchCategories{})
			app.Dispatcher.Dispatch(services.FetchPaymentMethods{})
			app.Dispatcher.Dispatch(services.FetchGroups{})

			// Wait for every collection in parallel so one slow endpoint
			// doesn't serialize the rest.
			g, gctx := errgroup.WithContext(ctx)
			for _, pred := range []func(state.State) bool{
				func(s state.State) bool { return settled(s.Expenses.Status) },
				func(s state.State) bool { return settled(s.Categories.Status) },
				func(s state.State) bool { return settled(s.PaymentMethods.Status) },
				func(s state.State) bool { return settled(s.Groups.Status) },
			} {
				g.Go(func() error { return app.Store.Wait(gctx, pred) })
			}
			if err := g.Wait(); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			for name, st := range map[string]state.Status{
				"expenses":        snap.Expenses.Status,
				"categories":      snap.Categories.Status,
				"payment_methods": snap.PaymentMethods.Status,
				"groups":          snap.Groups.Status,
			} {
				if st == state.StatusFailed {
					return fmt.Errorf("refresh of %s failed, not exporting a partial snapshot", name)
				}
			}

			exporter := export.NewExporter(writer)
			if err := exporter.Export(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Export complete")
			return nil
		},
	}
}
