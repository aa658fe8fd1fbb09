package services

import (
	"context"
	"log/slog"
	"time"

	"spendsync/internal/api"
	"spendsync/internal/core"
)

// LogoutReason is recorded after a user-initiated logout completes.
const LogoutReason = "Logout successful"

func (d *Dispatcher) login(ctx context.Context, username, password string) {
	in := Login{}
	start := time.Now()
	creds, err := d.api.Login(ctx, username, password)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Login failed. Please try again.", d.store.FailSession)
		return
	}

	d.persistCredentials(ctx, creds)
	d.store.SetAuthenticated(creds.UserProfile, creds.Token)
	slog.InfoContext(ctx, "Login succeeded", "user_id", creds.UserProfile.ID)

	d.warmCaches(creds.UserProfile.ID)
}

// register creates the account and authenticates the session in memory, but
// deliberately does not persist credentials. The user logs in explicitly on
// the next start.
func (d *Dispatcher) register(ctx context.Context, reg core.Registration) {
	in := Register{}
	start := time.Now()
	creds, err := d.api.Register(ctx, reg)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Registration failed. Please try again.", d.store.FailSession)
		return
	}

	d.store.SetAuthenticated(creds.UserProfile, creds.Token)
	slog.InfoContext(ctx, "Registration succeeded", "user_id", creds.UserProfile.ID)

	d.warmCaches(creds.UserProfile.ID)
}

// logout tells the server, then clears local state regardless of the server's
// answer. A dead network must never trap the user in an authenticated shell.
func (d *Dispatcher) logout(ctx context.Context, reason string) {
	in := Logout{}
	start := time.Now()
	err := d.api.Logout(ctx)
	d.observe(in, start)

	if err != nil {
		slog.WarnContext(ctx, "Logout request failed, clearing local state anyway", "error", err)
	}
	if reason == "" {
		reason = LogoutReason
	}
	d.clearEverything(ctx, reason)
}

func (d *Dispatcher) forgotPassword(ctx context.Context, email string) {
	in := ForgotPassword{}
	start := time.Now()
	err := d.api.ForgotPassword(ctx, email)
	d.observe(in, start)

	if err != nil {
		d.fail(ctx, in, err, "Failed to reset password.", d.store.FailSession)
		return
	}
	d.store.SetPasswordResetRequested()
}

// warmCaches fans out one fetch per resource so every screen opens against a
// populated cache right after authentication.
func (d *Dispatcher) warmCaches(userID string) {
	d.Dispatch(FetchCategories{})
	d.Dispatch(FetchGroups{})
	d.Dispatch(FetchPaymentMethods{})
	d.Dispatch(FetchSettings{UserID: userID})
	d.Dispatch(FetchExpenses{})
	d.Dispatch(FetchProfile{UserID: userID})
}

func (d *Dispatcher) persistCredentials(ctx context.Context, creds api.Credentials) {
	if d.vault == nil {
		return
	}
	if err := d.vault.Set(ctx, VaultKeyToken, creds.Token); err != nil {
		slog.WarnContext(ctx, "Failed to persist token", "error", err)
	}
	if err := d.vault.Set(ctx, VaultKeyUserID, creds.UserProfile.ID); err != nil {
		slog.WarnContext(ctx, "Failed to persist user id", "error", err)
	}
}

// Restore rebuilds an authenticated session from the vault without a network
// round trip. It returns false when nothing usable is persisted, including a
// token that is already past its expiry.
func (d *Dispatcher) Restore(ctx context.Context) (bool, error) {
	if d.vault == nil {
		return false, nil
	}
	token, ok, err := d.vault.Get(ctx, VaultKeyToken)
	if err != nil {
		return false, err
	}
	if !ok || token == "" {
		return false, nil
	}
	userID, ok, err := d.vault.Get(ctx, VaultKeyUserID)
	if err != nil {
		return false, err
	}
	if !ok || userID == "" {
		return false, nil
	}

	if expired, err := tokenExpired(token, time.Now()); err != nil {
		slog.WarnContext(ctx, "Persisted token is unreadable, discarding", "error", err)
		d.clearEverything(ctx, SessionExpiredReason)
		return false, nil
	} else if expired {
		slog.InfoContext(ctx, "Persisted token has expired")
		d.clearEverything(ctx, SessionExpiredReason)
		return false, nil
	}

	d.store.SetAuthenticated(core.UserProfile{ID: userID}, token)
	slog.InfoContext(ctx, "Session restored from vault", "user_id", userID)

	d.warmCaches(userID)
	return true, nil
}
