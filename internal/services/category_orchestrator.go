package services

import (
	"context"
	"time"

	"spendsync/internal/core"
)

func (d *Dispatcher) fetchCategories(ctx context.Context, token string) {
	in := FetchCategories{}
	start := time.Now()
	items, err := d.api.FetchCategories(ctx)
	d.observe(in, start)

	if d.dropIfStale("categories", token) {
		return
	}
	if err != nil {
		d.fail(ctx, in, err, "Failed to fetch categories", d.store.FailCategories)
		return
	}
	d.store.SetCategories(items)
}

func (d *Dispatcher) createCategory(ctx context.Context, draft core.CategoryDraft) {
	in := CreateCategory{}
	start := time.Now()
	created, err := d.api.CreateCategory(ctx, draft)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to create category", d.store.FailCategories)
		return
	}
	d.store.ApplyCategoryCreated(created)
	d.Dispatch(FetchCategories{})
}

func (d *Dispatcher) updateCategory(ctx context.Context, id string, patch core.CategoryPatch) {
	in := UpdateCategory{}
	start := time.Now()
	updated, err := d.api.UpdateCategory(ctx, id, patch)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to update category", d.store.FailCategories)
		return
	}
	d.store.ApplyCategoryUpdated(updated)
	d.Dispatch(FetchCategories{})
}

func (d *Dispatcher) deleteCategory(ctx context.Context, id string) {
	in := DeleteCategory{}
	start := time.Now()
	err := d.api.DeleteCategory(ctx, id)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to delete category", d.store.FailCategories)
		return
	}
	d.store.ApplyCategoryDeleted(id)
	d.Dispatch(FetchCategories{})
}
