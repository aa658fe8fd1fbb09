package services

import (
	"context"
	"time"

	"spendsync/internal/core"
)

func (d *Dispatcher) fetchPaymentMethods(ctx context.Context, token string) {
	in := FetchPaymentMethods{}
	start := time.Now()
	items, err := d.api.FetchPaymentMethods(ctx)
	d.observe(in, start)

	if d.dropIfStale("payment_methods", token) {
		return
	}
	if err != nil {
		d.fail(ctx, in, err, "Failed to fetch payment methods", d.store.FailPaymentMethods)
		return
	}
	d.store.SetPaymentMethods(items)
}

func (d *Dispatcher) createPaymentMethod(ctx context.Context, draft core.PaymentMethodDraft) {
	in := CreatePaymentMethod{}
	start := time.Now()
	created, err := d.api.CreatePaymentMethod(ctx, draft)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to create payment method", d.store.FailPaymentMethods)
		return
	}
	d.store.ApplyPaymentMethodCreated(created)
	d.Dispatch(FetchPaymentMethods{})
}

func (d *Dispatcher) updatePaymentMethod(ctx context.Context, id string, patch core.PaymentMethodPatch) {
	in := UpdatePaymentMethod{}
	start := time.Now()
	updated, err := d.api.UpdatePaymentMethod(ctx, id, patch)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to update payment method", d.store.FailPaymentMethods)
		return
	}
	d.store.ApplyPaymentMethodUpdated(updated)
	d.Dispatch(FetchPaymentMethods{})
}

func (d *Dispatcher) deletePaymentMethod(ctx context.Context, id string) {
	in := DeletePaymentMethod{}
	start := time.Now()
	err := d.api.DeletePaymentMethod(ctx, id)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to delete payment method", d.store.FailPaymentMethods)
		return
	}
	d.store.ApplyPaymentMethodDeleted(id)
	d.Dispatch(FetchPaymentMethods{})
}
