package services

import (
	"context"
	"time"

	"spendsync/internal/core"
)

func (d *Dispatcher) fetchGroups(ctx context.Context, token string) {
	in := FetchGroups{}
	start := time.Now()
	items, err := d.api.FetchGroups(ctx)
	d.observe(in, start)

	if d.dropIfStale("groups", token) {
		return
	}
	if err != nil {
		d.fail(ctx, in, err, "Failed to fetch groups", d.store.FailGroups)
		return
	}
	d.store.SetGroups(items)
}

func (d *Dispatcher) createGroup(ctx context.Context, draft core.GroupDraft) {
	in := CreateGroup{}
	start := time.Now()
	created, err := d.api.CreateGroup(ctx, draft)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to create group", d.store.FailGroups)
		return
	}
	d.store.ApplyGroupCreated(created)
	d.Dispatch(FetchGroups{})
}

func (d *Dispatcher) updateGroup(ctx context.Context, id string, patch core.GroupPatch) {
	in := UpdateGroup{}
	start := time.Now()
	updated, err := d.api.UpdateGroup(ctx, id, patch)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to update group", d.store.FailGroups)
		return
	}
	d.store.ApplyGroupUpdated(updated)
	d.Dispatch(FetchGroups{})
}

func (d *Dispatcher) deleteGroup(ctx context.Context, id string) {
	in := DeleteGroup{}
	start := time.Now()
	err := d.api.DeleteGroup(ctx, id)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to delete group", d.store.FailGroups)
		return
	}
	d.store.ApplyGroupDeleted(id)
	d.Dispatch(FetchGroups{})
}
