package state

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"spendsync/internal/core"
)

// Store wraps the state tree with a single RWMutex. Mutations are issued by
// the services dispatcher; frontends read via Snapshot. Snapshots clone the
// item slices and singleton records, and must be treated as read-only.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current tree.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Expenses.Collection = s.state.Expenses.Collection.snapshot()
	snap.Categories = s.state.Categories.snapshot()
	snap.PaymentMethods = s.state.PaymentMethods.snapshot()
	snap.Groups = s.state.Groups.snapshot()
	// The generic clone is shallow; member lists need their own copies.
	for i := range snap.Groups.Items {
		snap.Groups.Items[i].UserIDs = slices.Clone(snap.Groups.Items[i].UserIDs)
	}
	snap.Session.CurrentUser = cloneProfile(s.state.Session.CurrentUser)
	snap.Profile.User = cloneProfile(s.state.Profile.User)
	if s.state.Settings.Data != nil {
		data := *s.state.Settings.Data
		snap.Settings.Data = &data
	}
	return snap
}

func cloneProfile(u *core.UserProfile) *core.UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Wait blocks until pred holds for a snapshot or the context ends. Frontends
// use it to turn the fire-and-forget intent flow into a synchronous call.
func (s *Store) Wait(ctx context.Context, pred func(State) bool) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if pred(s.Snapshot()) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ResetAll clears the session and every resource store in one lock
// acquisition; no reader can observe a partial reset.
func (s *Store) ResetAll(logoutReason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.reset(logoutReason)
}

// --- expenses ---

func (s *Store) BeginExpenses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Expenses.begin()
}

func (s *Store) SetExpenses(items []core.Expense, page ExpensePage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Expenses.setAll(items)
	s.state.Expenses.Page = page
}

func (s *Store) FailExpenses(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Expenses.fail(msg)
}

func (s *Store) ApplyExpenseCreated(e core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Expenses.upsert(e)
}

func (s *Store) ApplyExpenseUpdated(e core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Expenses.replace(e) {
		slog.Warn("Update for unknown expense ignored", "id", e.ID)
	}
}

func (s *Store) ApplyExpenseDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Expenses.remove(id) {
		slog.Warn("Delete for unknown expense ignored", "id", id)
	}
}

// --- categories ---

func (s *Store) BeginCategories() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Categories.begin()
}

func (s *Store) SetCategories(items []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Categories.setAll(items)
}

func (s *Store) FailCategories(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Categories.fail(msg)
}

func (s *Store) ApplyCategoryCreated(c core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Categories.upsert(c)
}

func (s *Store) ApplyCategoryUpdated(c core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Categories.replace(c) {
		slog.Warn("Update for unknown category ignored", "id", c.ID)
	}
}

func (s *Store) ApplyCategoryDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Categories.remove(id) {
		slog.Warn("Delete for unknown category ignored", "id", id)
	}
}

// --- payment methods ---

func (s *Store) BeginPaymentMethods() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaymentMethods.begin()
}

func (s *Store) SetPaymentMethods(items []core.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaymentMethods.setAll(items)
}

func (s *Store) FailPaymentMethods(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaymentMethods.fail(msg)
}

func (s *Store) ApplyPaymentMethodCreated(p core.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaymentMethods.upsert(p)
}

func (s *Store) ApplyPaymentMethodUpdated(p core.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.PaymentMethods.replace(p) {
		slog.Warn("Update for unknown payment method ignored", "id", p.ID)
	}
}

func (s *Store) ApplyPaymentMethodDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.PaymentMethods.remove(id) {
		slog.Warn("Delete for unknown payment method ignored", "id", id)
	}
}

// --- groups ---

func (s *Store) BeginGroups() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Groups.begin()
}

func (s *Store) SetGroups(items []core.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Groups.setAll(items)
}

func (s *Store) FailGroups(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Groups.fail(msg)
}

func (s *Store) ApplyGroupCreated(g core.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Groups.upsert(g)
}

func (s *Store) ApplyGroupUpdated(g core.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Groups.replace(g) {
		slog.Warn("Update for unknown group ignored", "id", g.ID)
	}
}

func (s *Store) ApplyGroupDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Groups.remove(id) {
		slog.Warn("Delete for unknown group ignored", "id", id)
	}
}

// --- profile ---

func (s *Store) BeginProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Profile.Status = StatusLoading
	s.state.Profile.LastError = ""
}

func (s *Store) SetProfile(u core.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Profile.User = &u
	s.state.Profile.Status = StatusSucceeded
	s.state.Profile.LastError = ""
}

func (s *Store) FailProfile(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Profile.Status = StatusFailed
	s.state.Profile.LastError = msg
}

// --- settings ---

func (s *Store) BeginSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings.Status = StatusLoading
	s.state.Settings.LastError = ""
}

func (s *Store) SetSettings(data core.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings.Data = &data
	s.state.Settings.Status = StatusSucceeded
	s.state.Settings.LastError = ""
}

func (s *Store) FailSettings(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings.Status = StatusFailed
	s.state.Settings.LastError = msg
}

// --- session ---

func (s *Store) BeginSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Status = StatusLoading
	s.state.Session.LastError = ""
}

// SetAuthenticated records a successful login or registration.
func (s *Store) SetAuthenticated(user core.UserProfile, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.CurrentUser = &user
	s.state.Session.Token = token
	s.state.Session.Authenticated = true
	s.state.Session.Status = StatusSucceeded
	s.state.Session.LastError = ""
	s.state.Session.LogoutReason = ""
}

// FailSession records a failed login/registration; the session stays
// unauthenticated.
func (s *Store) FailSession(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Status = StatusFailed
	s.state.Session.LastError = msg
	s.state.Session.Authenticated = false
}

// SetPasswordResetRequested marks a completed forgot-password request.
func (s *Store) SetPasswordResetRequested() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.PasswordReset = true
	s.state.Session.Status = StatusSucceeded
	s.state.Session.LastError = ""
}

// ClearSessionError drops a lingering error message without touching
// anything else.
func (s *Store) ClearSessionError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.LastError = ""
}
