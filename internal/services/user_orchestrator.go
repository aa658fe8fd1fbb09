package services

import (
	"context"
	"time"

	"spendsync/internal/core"
)

func (d *Dispatcher) fetchProfile(ctx context.Context, token, userID string) {
	in := FetchProfile{UserID: userID}
	start := time.Now()
	profile, err := d.api.FetchProfile(ctx, userID)
	d.observe(in, start)

	if d.dropIfStale("profile", token) {
		return
	}
	if err != nil {
		d.fail(ctx, in, err, "Failed to fetch user profile.", d.store.FailProfile)
		return
	}
	d.store.SetProfile(profile)
}

func (d *Dispatcher) updateProfile(ctx context.Context, userID string, patch core.ProfilePatch) {
	in := UpdateProfile{UserID: userID}
	start := time.Now()
	updated, err := d.api.UpdateProfile(ctx, userID, patch)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to update user profile.", d.store.FailProfile)
		return
	}
	d.store.SetProfile(updated)
	d.Dispatch(FetchProfile{UserID: userID})
}
