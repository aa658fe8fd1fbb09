package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendsync/internal/core"
	"spendsync/internal/services"
	"spendsync/internal/state"
)

var errNotLoggedIn = errors.New("not logged in, run 'spendsync login' first")

func requireSession(app *App) (core.UserProfile, error) {
	snap := app.Store.Snapshot()
	if !snap.Session.Authenticated || snap.Session.CurrentUser == nil {
		return core.UserProfile{}, errNotLoggedIn
	}
	return *snap.Session.CurrentUser, nil
}

// runIntent dispatches in, waits for the collection to settle and surfaces
// the failure message if there is one.
func runIntent(cmd *cobra.Command, configPath string, in services.Intent,
	status func(state.State) state.Status, lastError func(state.State) string,
	onSuccess func(*cobra.Command, *App) error) error {

	ctx := cmd.Context()
	app, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if _, err := requireSession(app); err != nil {
		return err
	}

	app.Dispatcher.Dispatch(in)
	if err := app.waitSettled(ctx, func(s state.State) bool {
		return settled(status(s))
	}); err != nil {
		return err
	}

	snap := app.Store.Snapshot()
	if status(snap) == state.StatusFailed {
		return fmt.Errorf("%s", lastError(snap))
	}
	if onSuccess != nil {
		return onSuccess(cmd, app)
	}
	return nil
}

func expenseStatus(s state.State) state.Status { return s.Expenses.Status }
func expenseError(s state.State) string       { return s.Expenses.LastError }

func newExpenseCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage expenses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cached expenses after refreshing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.FetchExpenses{},
				expenseStatus, expenseError,
				func(cmd *cobra.Command, app *App) error {
					snap := app.Store.Snapshot()
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tDESCRIPTION")
					for _, e := range snap.Expenses.Items {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Amount, e.Description)
					}
					fmt.Fprintf(w, "total: %d\n", snap.Expenses.Page.Total)
					return w.Flush()
				})
		},
	}

	var (
		amountStr   string
		dateStr     string
		description string
		categoryID  string
		methodID    string
		groupID     string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(amountStr)
			if err != nil {
				return err
			}
			date := core.Today()
			if dateStr != "" {
				if date, err = core.ParseDate(dateStr); err != nil {
					return err
				}
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

			draft := core.ExpenseDraft{
				Amount:          amount,
				Description:     description,
				Date:            date,
				CategoryID:      categoryID,
				PaymentMethodID: methodID,
				GroupID:         groupID,
				AuthorID:        user.ID,
			}
			if err := draft.Validate(); err != nil {
				return err
			}

			app.Dispatcher.Dispatch(services.CreateExpense{Draft: draft})
			if err := app.waitSettled(ctx, func(s state.State) bool {
				return settled(s.Expenses.Status)
			}); err != nil {
				return err
			}

			snap := app.Store.Snapshot()
			if snap.Expenses.Status == state.StatusFailed {
				return fmt.Errorf("%s", snap.Expenses.LastError)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Expense recorded")
			return nil
		},
	}
	add.Flags().StringVar(&amountStr, "amount", "", "amount, e.g. 12.50")
	add.Flags().StringVar(&dateStr, "date", "", "date as YYYY-MM-DD (default today)")
	add.Flags().StringVar(&description, "description", "", "free-form description")
	add.Flags().StringVar(&categoryID, "category", "", "category id")
	add.Flags().StringVar(&methodID, "payment-method", "", "payment method id")
	add.Flags().StringVar(&groupID, "group", "", "group id")
	add.MarkFlagRequired("amount")
	add.MarkFlagRequired("category")
	add.MarkFlagRequired("payment-method")
	add.MarkFlagRequired("group")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch core.ExpensePatch
			if cmd.Flags().Changed("amount") {
				v, _ := cmd.Flags().GetString("amount")
				amount, err := core.ParseAmount(v)
				if err != nil {
					return err
				}
				patch.Amount = &amount
			}
			if cmd.Flags().Changed("description") {
				v, _ := cmd.Flags().GetString("description")
				patch.Description = &v
			}
			if cmd.Flags().Changed("date") {
				v, _ := cmd.Flags().GetString("date")
				date, err := core.ParseDate(v)
				if err != nil {
					return err
				}
				patch.Date = &date
			}
			if cmd.Flags().Changed("category") {
				v, _ := cmd.Flags().GetString("category")
				patch.CategoryID = &v
			}
			if cmd.Flags().Changed("payment-method") {
				v, _ := cmd.Flags().GetString("payment-method")
				patch.PaymentMethodID = &v
			}
			if cmd.Flags().Changed("group") {
				v, _ := cmd.Flags().GetString("group")
				patch.GroupID = &v
			}

			return runIntent(cmd, *configPath, services.UpdateExpense{ID: args[0], Patch: patch},
				expenseStatus, expenseError,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Expense updated")
					return nil
				})
		},
	}
	update.Flags().String("amount", "", "new amount")
	update.Flags().String("description", "", "new description")
	update.Flags().String("date", "", "new date as YYYY-MM-DD")
	update.Flags().String("category", "", "new category id")
	update.Flags().String("payment-method", "", "new payment method id")
	update.Flags().String("group", "", "new group id")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.DeleteExpense{ID: args[0]},
				expenseStatus, expenseError,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Expense deleted")
					return nil
				})
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}

func newCategoryCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	status := func(s state.State) state.Status { return s.Categories.Status }
	lastErr := func(s state.State) string { return s.Categories.LastError }

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.FetchCategories{}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME")
					for _, c := range app.Store.Snapshot().Categories.Items {
						fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
					}
					return w.Flush()
				})
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := core.CategoryDraft{Name: args[0]}
			if err := draft.Validate(); err != nil {
				return err
			}
			return runIntent(cmd, *configPath, services.CreateCategory{Draft: draft}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Category created")
					return nil
				})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[1]
			patch := core.CategoryPatch{Name: &name}
			return runIntent(cmd, *configPath, services.UpdateCategory{ID: args[0], Patch: patch}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Category renamed")
					return nil
				})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.DeleteCategory{ID: args[0]}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Category deleted")
					return nil
				})
		},
	}

	cmd.AddCommand(list, add, rename, del)
	return cmd
}

func newPaymentMethodCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment-method",
		Short: "Manage payment methods",
	}

	status := func(s state.State) state.Status { return s.PaymentMethods.Status }
	lastErr := func(s state.State) string { return s.PaymentMethods.LastError }

	list := &cobra.Command{
		Use:   "list",
		Short: "List payment methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.FetchPaymentMethods{}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME")
					for _, p := range app.Store.Snapshot().PaymentMethods.Items {
						fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
					}
					return w.Flush()
				})
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a payment method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := core.PaymentMethodDraft{Name: args[0]}
			if err := draft.Validate(); err != nil {
				return err
			}
			return runIntent(cmd, *configPath, services.CreatePaymentMethod{Draft: draft}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Payment method created")
					return nil
				})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a payment method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[1]
			patch := core.PaymentMethodPatch{Name: &name}
			return runIntent(cmd, *configPath, services.UpdatePaymentMethod{ID: args[0], Patch: patch}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Payment method renamed")
					return nil
				})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a payment method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.DeletePaymentMethod{ID: args[0]}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Payment method deleted")
					return nil
				})
		},
	}

	cmd.AddCommand(list, add, rename, del)
	return cmd
}

func newGroupCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}

	status := func(s state.State) state.Status { return s.Groups.Status }
	lastErr := func(s state.State) string { return s.Groups.LastError }

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.FetchGroups{}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tCURRENCY\tMEMBERS")
					for _, g := range app.Store.Snapshot().Groups.Items {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", g.ID, g.Name, g.Currency, len(g.UserIDs))
					}
					return w.Flush()
				})
		},
	}

	var currency string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := core.GroupDraft{Name: args[0], Currency: currency}
			if err := draft.Validate(); err != nil {
				return err
			}
			return runIntent(cmd, *configPath, services.CreateGroup{Draft: draft}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Group created")
					return nil
				})
		},
	}
	add.Flags().StringVar(&currency, "currency", "EUR", "group currency code")

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[1]
			patch := core.GroupPatch{Name: &name}
			return runIntent(cmd, *configPath, services.UpdateGroup{ID: args[0], Patch: patch}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Group renamed")
					return nil
				})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, *configPath, services.DeleteGroup{ID: args[0]}, status, lastErr,
				func(cmd *cobra.Command, app *App) error {
					fmt.Fprintln(cmd.OutOrStdout(), "Group deleted")
					return nil
				})
		},
	}

	cmd.AddCommand(list, add, rename, del)
	return cmd
}
