// Package services contains the effect orchestration between UI intents and
// the remote API. One dispatcher goroutine drains the intent queue, applies
// the synchronous Loading transition, and runs the network call in its own
// goroutine. Completions are translated back into state transitions; nothing
// from the API layer ever escapes past this package as an error.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendsync/internal/api"
	"spendsync/internal/metrics"
	"spendsync/internal/state"
)

const intentQueueSize = 128

// SessionExpiredReason is recorded when the reset is triggered by an
// authorization failure rather than an explicit logout.
const SessionExpiredReason = "Session expired"

// Dispatcher is the single entry point for intents. Reads (fetch-all) follow
// a latest-wins discipline: every fetch is issued a token and a completion
// whose token has been superseded is dropped. Writes always run to
// completion and trigger a refetch of their resource on success.
type Dispatcher struct {
	api     API
	store   *state.Store
	vault   Vault
	metrics *metrics.Metrics

	intents chan Intent

	// onLoggedOut, when set, runs after every global reset (logout or
	// auth-denied). Frontends use it to return to their login surface.
	onLoggedOut func(reason string)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	inflight sync.WaitGroup

	latestMu sync.Mutex
	latest   map[string]string
}

// NewDispatcher wires the orchestration layer. vault and m may be nil: no
// token persistence and no instrumentation, respectively.
func NewDispatcher(apiClient API, store *state.Store, vault Vault, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		api:     apiClient,
		store:   store,
		vault:   vault,
		metrics: m,
		intents: make(chan Intent, intentQueueSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		latest:  make(map[string]string),
	}
}

// SetLoggedOutHook registers the callback invoked after every global reset.
// Must be called before Start.
func (d *Dispatcher) SetLoggedOutHook(fn func(reason string)) {
	d.onLoggedOut = fn
}

// Start begins draining the intent queue. Returns an error if already
// running.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher is already running")
	}
	d.running = true
	d.mu.Unlock()

	go d.run(ctx)
	slog.InfoContext(ctx, "Dispatcher started", "queue_size", intentQueueSize)
	return nil
}

// Stop shuts the loop down and waits for in-flight handlers, bounded by ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	close(d.stopCh)

	select {
	case <-d.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	drained := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		slog.InfoContext(ctx, "Dispatcher stopped")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Dispatcher stop timed out with handlers in flight")
		return ctx.Err()
	}

	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	return nil
}

// Dispatch enqueues an intent. After Stop the intent is dropped with a
// warning; UI code does not get an error channel, it observes state.
func (d *Dispatcher) Dispatch(in Intent) {
	select {
	case d.intents <- in:
	case <-d.stopCh:
		slog.Warn("Dispatcher stopped, intent dropped",
			"resource", in.Resource(), "operation", in.Operation())
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.doneCh)
	for {
		select {
		case <-d.stopCh:
			return
		case <-ctx.Done():
			return
		case in := <-d.intents:
			d.handle(ctx, in)
		}
	}
}

// handle applies the synchronous Loading transition and hands the network
// call to a goroutine. It runs on the dispatcher goroutine, so intents enter
// Loading strictly in dispatch order.
func (d *Dispatcher) handle(ctx context.Context, in Intent) {
	d.metrics.Intent(in.Resource(), in.Operation())
	slog.DebugContext(ctx, "Handling intent",
		"resource", in.Resource(), "operation", in.Operation())

	switch in := in.(type) {
	case FetchExpenses:
		token := d.issue("expenses")
		d.store.BeginExpenses()
		d.spawn(func() { d.fetchExpenses(ctx, token) })
	case CreateExpense:
		d.store.BeginExpenses()
		d.spawn(func() { d.createExpense(ctx, in.Draft) })
	case UpdateExpense:
		d.store.BeginExpenses()
		d.spawn(func() { d.updateExpense(ctx, in.ID, in.Patch) })
	case DeleteExpense:
		d.store.BeginExpenses()
		d.spawn(func() { d.deleteExpense(ctx, in.ID) })

	case FetchCategories:
		token := d.issue("categories")
		d.store.BeginCategories()
		d.spawn(func() { d.fetchCategories(ctx, token) })
	case CreateCategory:
		d.store.BeginCategories()
		d.spawn(func() { d.createCategory(ctx, in.Draft) })
	case UpdateCategory:
		d.store.BeginCategories()
		d.spawn(func() { d.updateCategory(ctx, in.ID, in.Patch) })
	case DeleteCategory:
		d.store.BeginCategories()
		d.spawn(func() { d.deleteCategory(ctx, in.ID) })

	case FetchPaymentMethods:
		token := d.issue("payment_methods")
		d.store.BeginPaymentMethods()
		d.spawn(func() { d.fetchPaymentMethods(ctx, token) })
	case CreatePaymentMethod:
		d.store.BeginPaymentMethods()
		d.spawn(func() { d.createPaymentMethod(ctx, in.Draft) })
	case UpdatePaymentMethod:
		d.store.BeginPaymentMethods()
		d.spawn(func() { d.updatePaymentMethod(ctx, in.ID, in.Patch) })
	case DeletePaymentMethod:
		d.store.BeginPaymentMethods()
		d.spawn(func() { d.deletePaymentMethod(ctx, in.ID) })

	case FetchGroups:
		token := d.issue("groups")
		d.store.BeginGroups()
		d.spawn(func() { d.fetchGroups(ctx, token) })
	case CreateGroup:
		d.store.BeginGroups()
		d.spawn(func() { d.createGroup(ctx, in.Draft) })
	case UpdateGroup:
		d.store.BeginGroups()
		d.spawn(func() { d.updateGroup(ctx, in.ID, in.Patch) })
	case DeleteGroup:
		d.store.BeginGroups()
		d.spawn(func() { d.deleteGroup(ctx, in.ID) })

	case FetchProfile:
		token := d.issue("profile")
		d.store.BeginProfile()
		d.spawn(func() { d.fetchProfile(ctx, token, in.UserID) })
	case UpdateProfile:
		d.store.BeginProfile()
		d.spawn(func() { d.updateProfile(ctx, in.UserID, in.Patch) })

	case FetchSettings:
		token := d.issue("settings")
		d.store.BeginSettings()
		d.spawn(func() { d.fetchSettings(ctx, token, in.UserID) })
	case SaveSettings:
		d.store.BeginSettings()
		d.spawn(func() { d.saveSettings(ctx, in.UserID, in.Data) })

	case Login:
		d.store.BeginSession()
		d.spawn(func() { d.login(ctx, in.Username, in.Password) })
	case Register:
		d.store.BeginSession()
		d.spawn(func() { d.register(ctx, in.Registration) })
	case Logout:
		d.store.BeginSession()
		d.spawn(func() { d.logout(ctx, in.Reason) })
	case ForgotPassword:
		d.store.BeginSession()
		d.spawn(func() { d.forgotPassword(ctx, in.Email) })
	}
}

func (d *Dispatcher) spawn(fn func()) {
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		fn()
	}()
}

// issue records a new request token as the latest for key and returns it.
func (d *Dispatcher) issue(key string) string {
	token := uuid.NewString()
	d.latestMu.Lock()
	d.latest[key] = token
	d.latestMu.Unlock()
	return token
}

// current reports whether token is still the newest issued for key.
func (d *Dispatcher) current(key, token string) bool {
	d.latestMu.Lock()
	defer d.latestMu.Unlock()
	return d.latest[key] == token
}

// dropIfStale is the latest-wins gate for fetch completions. When it returns
// true the completion (success or failure) must not touch the store.
func (d *Dispatcher) dropIfStale(key, token string) bool {
	if d.current(key, token) {
		return false
	}
	d.metrics.Stale(key)
	slog.Debug("Superseded fetch completion dropped", "resource", key)
	return true
}

// fail converts an API error into a failure transition via apply, using the
// server's message when present. Authorization failures additionally expire
// the whole session; that check lives here so no orchestrator has to
// remember it.
func (d *Dispatcher) fail(ctx context.Context, in Intent, err error, fallback string, apply func(string)) {
	d.metrics.Failure(in.Resource(), in.Operation())
	slog.WarnContext(ctx, "Intent failed",
		"resource", in.Resource(), "operation", in.Operation(), "error", err)

	// The session expiry resets the whole tree, so it must run before the
	// failure transition: the error message stays observable afterwards.
	if errors.Is(err, api.ErrUnauthorized) {
		d.expireSession(ctx)
	}
	apply(api.Message(err, fallback))
}

// expireSession is the auth-denied path: same global reset as a logout, with
// the canonical reason, but without calling the logout endpoint.
func (d *Dispatcher) expireSession(ctx context.Context) {
	slog.InfoContext(ctx, "Authorization denied, clearing session")
	d.clearEverything(ctx, SessionExpiredReason)
}

// clearEverything removes persisted credentials and resets the whole state
// tree in one step, then notifies the frontend hook.
func (d *Dispatcher) clearEverything(ctx context.Context, reason string) {
	if d.vault != nil {
		if err := d.vault.Remove(ctx, VaultKeyToken); err != nil {
			slog.WarnContext(ctx, "Failed to remove persisted token", "error", err)
		}
		if err := d.vault.Remove(ctx, VaultKeyUserID); err != nil {
			slog.WarnContext(ctx, "Failed to remove cached user id", "error", err)
		}
	}
	d.store.ResetAll(reason)
	if d.onLoggedOut != nil {
		d.onLoggedOut(reason)
	}
}

// observe wraps an API call for the duration histogram.
func (d *Dispatcher) observe(in Intent, start time.Time) {
	d.metrics.ObserveCall(in.Resource(), in.Operation(), time.Since(start).Seconds())
}
