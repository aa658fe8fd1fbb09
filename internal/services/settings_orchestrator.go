package services

import (
	"context"
	"time"

	"spendsync/internal/core"
)

func (d *Dispatcher) fetchSettings(ctx context.Context, token, userID string) {
	in := FetchSettings{UserID: userID}
	start := time.Now()
	settings, err := d.api.FetchSettings(ctx, userID)
	d.observe(in, start)

	if d.dropIfStale("settings", token) {
		return
	}
	if err != nil {
		d.fail(ctx, in, err, "Failed to fetch settings", d.store.FailSettings)
		return
	}
	d.store.SetSettings(settings)
}

func (d *Dispatcher) saveSettings(ctx context.Context, userID string, data core.Settings) {
	in := SaveSettings{UserID: userID}
	start := time.Now()
	saved, err := d.api.SaveSettings(ctx, userID, data)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to save settings", d.store.FailSettings)
		return
	}
	d.store.SetSettings(saved)
	d.Dispatch(FetchSettings{UserID: userID})
}
