package services

import (
	"context"
	"time"

	"spendsync/internal/core"
	"spendsync/internal/state"
)

// Expense orchestration. Fetch is latest-wins; create/update/delete run to
// completion and re-issue a fetch so items converge to server state (server
// defaults, computed fields and cascades included).

func (d *Dispatcher) fetchExpenses(ctx context.Context, token string) {
	in := FetchExpenses{}
	start := time.Now()
	page, err := d.api.FetchExpenses(ctx)
	d.observe(in, start)

	if d.dropIfStale("expenses", token) {
		return
	}
	if err != nil {
		d.fail(ctx, in, err, "Failed to fetch expenses", d.store.FailExpenses)
		return
	}
	d.store.SetExpenses(page.Expenses, state.ExpensePage{
		Total:       page.Total,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		PageSize:    page.PageSize,
	})
}

func (d *Dispatcher) createExpense(ctx context.Context, draft core.ExpenseDraft) {
	in := CreateExpense{}
	start := time.Now()
	created, err := d.api.CreateExpense(ctx, draft)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to create expense", d.store.FailExpenses)
		return
	}
	d.store.ApplyExpenseCreated(created)
	d.Dispatch(FetchExpenses{})
}

func (d *Dispatcher) updateExpense(ctx context.Context, id string, patch core.ExpensePatch) {
	in := UpdateExpense{}
	start := time.Now()
	updated, err := d.api.UpdateExpense(ctx, id, patch)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to update expense", d.store.FailExpenses)
		return
	}
	d.store.ApplyExpenseUpdated(updated)
	d.Dispatch(FetchExpenses{})
}

func (d *Dispatcher) deleteExpense(ctx context.Context, id string) {
	in := DeleteExpense{}
	start := time.Now()
	err := d.api.DeleteExpense(ctx, id)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to delete expense", d.store.FailExpenses)
		return
	}
	d.store.ApplyExpenseDeleted(id)
	d.Dispatch(FetchExpenses{})
}
