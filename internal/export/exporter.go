package export

import (
	"context"
	"fmt"
	"log/slog"

	"spendsync/internal/state"
)

// Tab names in the target spreadsheet.
const (
	TabExpenses       = "Expenses"
	TabCategories     = "Categories"
	TabPaymentMethods = "PaymentMethods"
	TabGroups         = "Groups"
)

type Exporter struct {
	writer RowWriter
}

func NewExporter(writer RowWriter) *Exporter {
	return &Exporter{writer: writer}
}

// Export writes one tab per cached collection. It reads a single snapshot so
// all tabs describe the same instant.
func (e *Exporter) Export(ctx context.Context, snap state.State) error {
	names := make(map[string]string, len(snap.Categories.Items))
	for _, c := range snap.Categories.Items {
		names[c.ID] = c.Name
	}
	methods := make(map[string]string, len(snap.PaymentMethods.Items))
	for _, p := range snap.PaymentMethods.Items {
		methods[p.ID] = p.Name
	}

	expenseRows := [][]any{{"ID", "Date", "Description", "Amount", "Category", "Payment method", "Group", "Added by"}}
	for _, ex := range snap.Expenses.Items {
		expenseRows = append(expenseRows, []any{
			ex.ID,
			ex.Date.String(),
			ex.Description,
			ex.Amount.String(),
			orID(names, ex.CategoryID),
			orID(methods, ex.PaymentMethodID),
			ex.GroupID,
			ex.AddedBy,
		})
	}
	if err := e.writer.WriteRows(ctx, TabExpenses, expenseRows); err != nil {
		return fmt.Errorf("export expenses: %w", err)
	}

	categoryRows := [][]any{{"ID", "Name"}}
	for _, c := range snap.Categories.Items {
		categoryRows = append(categoryRows, []any{c.ID, c.Name})
	}
	if err := e.writer.WriteRows(ctx, TabCategories, categoryRows); err != nil {
		return fmt.Errorf("export categories: %w", err)
	}

	methodRows := [][]any{{"ID", "Name", "Author"}}
	for _, p := range snap.PaymentMethods.Items {
		methodRows = append(methodRows, []any{p.ID, p.Name, p.AuthorID})
	}
	if err := e.writer.WriteRows(ctx, TabPaymentMethods, methodRows); err != nil {
		return fmt.Errorf("export payment methods: %w", err)
	}

	groupRows := [][]any{{"ID", "Name", "Currency", "Members"}}
	for _, g := range snap.Groups.Items {
		groupRows = append(groupRows, []any{g.ID, g.Name, g.Currency, len(g.UserIDs)})
	}
	if err := e.writer.WriteRows(ctx, TabGroups, groupRows); err != nil {
		return fmt.Errorf("export groups: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot exported",
		"expenses", len(snap.Expenses.Items),
		"categories", len(snap.Categories.Items),
		"payment_methods", len(snap.PaymentMethods.Items),
		"groups", len(snap.Groups.Items))
	return nil
}

// orID resolves an id to its display name, falling back to the raw id when
// the referenced item is not cached.
func orID(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
