package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"spendsync/internal/api"
	"spendsync/internal/core"
	"spendsync/internal/state"
)

// fakeAPI implements API with per-method hooks. A nil hook answers with zero
// values and no error.
type fakeAPI struct {
	login          func(ctx context.Context, username, password string) (api.Credentials, error)
	register       func(ctx context.Context, reg core.Registration) (api.Credentials, error)
	logout         func(ctx context.Context) error
	forgotPassword func(ctx context.Context, email string) error

	fetchExpenses func(ctx context.Context) (api.ExpensePage, error)
	createExpense func(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error)
	updateExpense func(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error)
	deleteExpense func(ctx context.Context, id string) error

	fetchCategories func(ctx context.Context) ([]core.Category, error)
	createCategory  func(ctx context.Context, draft core.CategoryDraft) (core.Category, error)
	updateCategory  func(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error)
	deleteCategory  func(ctx context.Context, id string) error

	fetchPaymentMethods func(ctx context.Context) ([]core.PaymentMethod, error)
	fetchGroups         func(ctx context.Context) ([]core.Group, error)
	fetchProfile        func(ctx context.Context, userID string) (core.UserProfile, error)
	updateProfile       func(ctx context.Context, userID string, patch core.ProfilePatch) (core.UserProfile, error)
	fetchSettings       func(ctx context.Context, userID string) (core.Settings, error)
	saveSettings        func(ctx context.Context, userID string, settings core.Settings) (core.Settings, error)
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (api.Credentials, error) {
	if f.login != nil {
		return f.login(ctx, username, password)
	}
	return api.Credentials{}, nil
}

func (f *fakeAPI) Register(ctx context.Context, reg core.Registration) (api.Credentials, error) {
	if f.register != nil {
		return f.register(ctx, reg)
	}
	return api.Credentials{}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	if f.logout != nil {
		return f.logout(ctx)
	}
	return nil
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error {
	if f.forgotPassword != nil {
		return f.forgotPassword(ctx, email)
	}
	return nil
}

func (f *fakeAPI) FetchExpenses(ctx context.Context) (api.ExpensePage, error) {
	if f.fetchExpenses != nil {
		return f.fetchExpenses(ctx)
	}
	return api.ExpensePage{}, nil
}

func (f *fakeAPI) CreateExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error) {
	if f.createExpense != nil {
		return f.createExpense(ctx, draft)
	}
	return core.Expense{}, nil
}

func (f *fakeAPI) UpdateExpense(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if f.updateExpense != nil {
		return f.updateExpense(ctx, id, patch)
	}
	return core.Expense{}, nil
}

func (f *fakeAPI) DeleteExpense(ctx context.Context, id string) error {
	if f.deleteExpense != nil {
		return f.deleteExpense(ctx, id)
	}
	return nil
}

func (f *fakeAPI) FetchCategories(ctx context.Context) ([]core.Category, error) {
	if f.fetchCategories != nil {
		return f.fetchCategories(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) CreateCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	if f.createCategory != nil {
		return f.createCategory(ctx, draft)
	}
	return core.Category{}, nil
}

func (f *fakeAPI) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error) {
	if f.updateCategory != nil {
		return f.updateCategory(ctx, id, patch)
	}
	return core.Category{}, nil
}

func (f *fakeAPI) DeleteCategory(ctx context.Context, id string) error {
	if f.deleteCategory != nil {
		return f.deleteCategory(ctx, id)
	}
	return nil
}

func (f *fakeAPI) FetchPaymentMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	if f.fetchPaymentMethods != nil {
		return f.fetchPaymentMethods(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) CreatePaymentMethod(ctx context.Context, draft core.PaymentMethodDraft) (core.PaymentMethod, error) {
	return core.PaymentMethod{}, nil
}

func (f *fakeAPI) UpdatePaymentMethod(ctx context.Context, id string, patch core.PaymentMethodPatch) (core.PaymentMethod, error) {
	return core.PaymentMethod{}, nil
}

func (f *fakeAPI) DeletePaymentMethod(ctx context.Context, id string) error { return nil }

func (f *fakeAPI) FetchGroups(ctx context.Context) ([]core.Group, error) {
	if f.fetchGroups != nil {
		return f.fetchGroups(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) CreateGroup(ctx context.Context, draft core.GroupDraft) (core.Group, error) {
	return core.Group{}, nil
}

func (f *fakeAPI) UpdateGroup(ctx context.Context, id string, patch core.GroupPatch) (core.Group, error) {
	return core.Group{}, nil
}

func (f *fakeAPI) DeleteGroup(ctx context.Context, id string) error { return nil }

func (f *fakeAPI) FetchProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	if f.fetchProfile != nil {
		return f.fetchProfile(ctx, userID)
	}
	return core.UserProfile{}, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, userID string, patch core.ProfilePatch) (core.UserProfile, error) {
	if f.updateProfile != nil {
		return f.updateProfile(ctx, userID, patch)
	}
	return core.UserProfile{}, nil
}

func (f *fakeAPI) FetchSettings(ctx context.Context, userID string) (core.Settings, error) {
	if f.fetchSettings != nil {
		return f.fetchSettings(ctx, userID)
	}
	return core.Settings{}, nil
}

func (f *fakeAPI) SaveSettings(ctx context.Context, userID string, settings core.Settings) (core.Settings, error) {
	if f.saveSettings != nil {
		return f.saveSettings(ctx, userID, settings)
	}
	return settings, nil
}

type fakeVault struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeVault() *fakeVault {
	return &fakeVault{data: make(map[string]string)}
}

func (v *fakeVault) Set(_ context.Context, key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
	return nil
}

func (v *fakeVault) Get(_ context.Context, key string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	value, ok := v.data[key]
	return value, ok, nil
}

func (v *fakeVault) Remove(_ context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.data, key)
	return nil
}

func (v *fakeVault) get(key string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	value, ok := v.data[key]
	return value, ok
}

func startDispatcher(t *testing.T, apiClient API, vault Vault) (*Dispatcher, *state.Store) {
	t.Helper()
	store := state.NewStore()
	d := NewDispatcher(apiClient, store, vault, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start dispatcher: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.Stop(ctx); err != nil {
			t.Errorf("stop dispatcher: %v", err)
		}
	})
	return d, store
}

func waitFor(t *testing.T, store *state.Store, pred func(state.State) bool) state.State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Wait(ctx, pred); err != nil {
		t.Fatalf("condition never held: %v", err)
	}
	return store.Snapshot()
}

func TestFetchPopulatesStore(t *testing.T) {
	fake := &fakeAPI{
		fetchCategories: func(context.Context) ([]core.Category, error) {
			return []core.Category{{ID: "a", Name: "Food"}, {ID: "b", Name: "Travel"}}, nil
		},
	}
	d, store := startDispatcher(t, fake, nil)

	d.Dispatch(FetchCategories{})

	snap := waitFor(t, store, func(s state.State) bool {
		return s.Categories.Status == state.StatusSucceeded
	})
	if len(snap.Categories.Items) != 2 {
		t.Errorf("items = %d, want 2", len(snap.Categories.Items))
	}
}

func TestFetchFailureKeepsItemsAndUsesFallback(t *testing.T) {
	calls := 0
	fake := &fakeAPI{
		fetchCategories: func(context.Context) ([]core.Category, error) {
			calls++
			if calls == 1 {
				return []core.Category{{ID: "a", Name: "Food"}}, nil
			}
			return nil, errors.New("connection refused")
		},
	}
	d, store := startDispatcher(t, fake, nil)

	d.Dispatch(FetchCategories{})
	waitFor(t, store, func(s state.State) bool {
		return s.Categories.Status == state.StatusSucceeded
	})

	d.Dispatch(FetchCategories{})
	snap := waitFor(t, store, func(s state.State) bool {
		return s.Categories.Status == state.StatusFailed
	})

	if len(snap.Categories.Items) != 1 {
		t.Errorf("failed fetch must keep cached items, got %d", len(snap.Categories.Items))
	}
	if snap.Categories.LastError != "Failed to fetch categories" {
		t.Errorf("LastError = %q, want fallback message", snap.Categories.LastError)
	}
}

func TestServerMessagePreferredOverFallback(t *testing.T) {
	fake := &fakeAPI{
		fetchCategories: func(context.Context) ([]core.Category, error) {
			return nil, &api.Error{StatusCode: 403, Message: "No access to this workspace"}
		},
	}
	d, store := startDispatcher(t, fake, nil)

	d.Dispatch(FetchCategories{})
	snap := waitFor(t, store, func(s state.State) bool {
		return s.Categories.Status == state.StatusFailed
	})
	if snap.Categories.LastError != "No access to this workspace" {
		t.Errorf("LastError = %q, want server message", snap.Categories.LastError)
	}
}

func TestCreateRefetchesAndConverges(t *testing.T) {
	// The server adds a computed field the create response does not carry,
	// so only the refetch produces the final items.
	serverItems := []core.Category{{ID: "a", Name: "Food"}}
	var mu sync.Mutex
	fake := &fakeAPI{
		fetchCategories: func(context.Context) ([]core.Category, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]core.Category(nil), serverItems...), nil
		},
		createCategory: func(_ context.Context, draft core.CategoryDraft) (core.Category, error) {
			mu.Lock()
			defer mu.Unlock()
			created := core.Category{ID: "b", Name: draft.Name}
			serverItems = append(serverItems, created)
			return created, nil
		},
	}
	d, store := startDispatcher(t, fake, nil)

	d.Dispatch(CreateCategory{Draft: core.CategoryDraft{Name: "Travel"}})

	snap := waitFor(t, store, func(s state.State) bool {
		return s.Categories.Status == state.StatusSucceeded && len(s.Categories.Items) == 2
	})
	if snap.Categories.Items[1].Name != "Travel" {
		t.Errorf("store did not converge to server state: %+v", snap.Categories.Items)
	}
}

func TestOverlappingFetchesLatestWins(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var call int
	var mu sync.Mutex

	fake := &fakeAPI{
		fetchCategories: func(context.Context) ([]core.Category, error) {
			mu.Lock()
			call++
			mine := call
			mu.Unlock()
			if mine == 1 {
				close(firstStarted)
				<-releaseFirst
				return []core.Category{{ID: "stale", Name: "Stale"}}, nil
			}
			return []core.Category{{ID: "fresh", Name: "Fresh"}}, nil
		},
	}
	d, store := startDispatcher(t, fake, nil)

	d.Dispatch(FetchCategories{})
	<-firstStarted
	d.Dispatch(FetchCategories{})

	waitFor(t, store, func(s state.State) bool {
		return len(s.Categories.Items) == 1 && s.Categories.Items[0].ID == "fresh"
	})

	// Let the first call finish late; its result must be dropped.
	close(releaseFirst)
	time.Sleep(100 * time.Millisecond)

	snap := store.Snapshot()
	if snap.Categories.Items[0].ID != "fresh" {
		t.Errorf("stale completion overwrote newer data: %+v", snap.Categories.Items)
	}
	if snap.Categories.Status != state.StatusSucceeded {
		t.Errorf("status = %v, want succeeded", snap.Categories.Status)
	}
}

func TestUnauthorizedResetsEverything(t *testing.T) {
	fake := &fakeAPI{
		fetchCategories: func(context.Context) ([]core.Category, error) {
			return nil, fmt.Errorf("%w: token rejected", api.ErrUnauthorized)
		},
	}
	vault := newFakeVault()
	vault.Set(context.Background(), VaultKeyToken, "tok")
	vault.Set(context.Background(), VaultKeyUserID, "u1")

	d, store := startDispatcher(t, fake, vault)

	var hookReason string
	var hookMu sync.Mutex
	d.SetLoggedOutHook(func(reason string) {
		hookMu.Lock()
		hookReason = reason
		hookMu.Unlock()
	})

	store.SetAuthenticated(core.UserProfile{ID: "u1"}, "tok")
	store.SetCategories([]core.Category{{ID: "a", Name: "Food"}})

	d.Dispatch(FetchCategories{})

	snap := waitFor(t, store, func(s state.State) bool {
		return s.Session.LogoutReason == SessionExpiredReason
	})
	if snap.Session.Authenticated || len(snap.Categories.Items) != 0 {
		t.Errorf("auth denial must clear everything: %+v", snap.Session)
	}
	if _, ok := vault.get(VaultKeyToken); ok {
		t.Errorf("token must be removed from the vault")
	}
	if _, ok := vault.get(VaultKeyUserID); ok {
		t.Errorf("user id must be removed from the vault")
	}
	hookMu.Lock()
	defer hookMu.Unlock()
	if hookReason != SessionExpiredReason {
		t.Errorf("hook reason = %q", hookReason)
	}
}

func TestLoginDenialKeepsFailureMessage(t *testing.T) {
	fake := &fakeAPI{
		login: func(context.Context, string, string) (api.Credentials, error) {
			return api.Credentials{}, &api.Error{
				StatusCode: http.StatusUnauthorized,
				Message:    "Invalid username or password",
			}
		},
	}
	vault := newFakeVault()
	vault.Set(context.Background(), VaultKeyToken, "stale")

	d, store := startDispatcher(t, fake, vault)
	d.Dispatch(Login{Username: "sam", Password: "wrong"})

	// The denial expires the session, but the failure must still land on
	// top of the reset so the message reaches the user.
	snap := waitFor(t, store, func(s state.State) bool {
		return s.Session.Status == state.StatusFailed
	})
	if snap.Session.LastError != "Invalid username or password" {
		t.Errorf("last error = %q, want the server's message", snap.Session.LastError)
	}
	if snap.Session.LogoutReason != SessionExpiredReason {
		t.Errorf("logout reason = %q, want %q", snap.Session.LogoutReason, SessionExpiredReason)
	}
	if snap.Session.Authenticated {
		t.Errorf("session must stay unauthenticated")
	}
	if _, ok := vault.get(VaultKeyToken); ok {
		t.Errorf("stale token must be removed from the vault")
	}
}

func TestLoginPersistsAndWarmsCaches(t *testing.T) {
	user := core.UserProfile{ID: "u1", Username: "sam", Email: "sam@example.com"}
	fake := &fakeAPI{
		login: func(context.Context, string, string) (api.Credentials, error) {
			return api.Credentials{UserProfile: user, Token: "tok-1"}, nil
		},
		fetchCategories: func(context.Context) ([]core.Category, error) {
			return []core.Category{{ID: "a", Name: "Food"}}, nil
		},
		fetchGroups: func(context.Context) ([]core.Group, error) {
			return []core.Group{{ID: "g1", Name: "Household"}}, nil
		},
		fetchExpenses: func(context.Context) (api.ExpensePage, error) {
			return api.ExpensePage{Expenses: []core.Expense{{ID: "e1"}}, Total: 1}, nil
		},
		fetchProfile: func(_ context.Context, userID string) (core.UserProfile, error) {
			if userID != "u1" {
				return core.UserProfile{}, fmt.Errorf("unexpected user id %s", userID)
			}
			return user, nil
		},
		fetchSettings: func(context.Context, string) (core.Settings, error) {
			return core.Settings{Theme: "dark"}, nil
		},
	}
	vault := newFakeVault()
	d, store := startDispatcher(t, fake, vault)

	d.Dispatch(Login{Username: "sam", Password: "pw"})

	snap := waitFor(t, store, func(s state.State) bool {
		return s.Session.Authenticated &&
			s.Categories.Status == state.StatusSucceeded &&
			s.Groups.Status == state.StatusSucceeded &&
			s.PaymentMethods.Status == state.StatusSucceeded &&
			s.Expenses.Status == state.StatusSucceeded &&
			s.Profile.Status == state.StatusSucceeded &&
			s.Settings.Status == state.StatusSucceeded
	})

	if snap.Session.Token != "tok-1" || snap.Session.CurrentUser.Username != "sam" {
		t.Errorf("session not populated: %+v", snap.Session)
	}
	if tok, _ := vault.get(VaultKeyToken); tok != "tok-1" {
		t.Errorf("token not persisted, got %q", tok)
	}
	if uid, _ := vault.get(VaultKeyUserID); uid != "u1" {
		t.Errorf("user id not persisted, got %q", uid)
	}
	if snap.Settings.Data == nil || snap.Settings.Data.Theme != "dark" {
		t.Errorf("settings cache not warmed: %+v", snap.Settings)
	}
}

func TestLoginFailureUsesFallbackMessage(t *testing.T) {
	fake := &fakeAPI{
		login: func(context.Context, string, string) (api.Credentials, error) {
			return api.Credentials{}, errors.New("dial tcp: timeout")
		},
	}
	d, store := startDispatcher(t, fake, nil)

	d.Dispatch(Login{Username: "sam", Password: "pw"})
	snap := waitFor(t, store, func(s state.State) bool {
		return s.Session.Status == state.StatusFailed
	})
	if snap.Session.LastError != "Login failed. Please try again." {
		t.Errorf("LastError = %q", snap.Session.LastError)
	}
	if snap.Session.Authenticated {
		t.Errorf("failed login must not authenticate")
	}
}

func TestRegisterDoesNotPersistCredentials(t *testing.T) {
	fake := &fakeAPI{
		register: func(_ context.Context, reg core.Registration) (api.Credentials, error) {
			return api.Credentials{
				UserProfile: core.UserProfile{ID: "u2", Username: reg.Username},
				Token:       "tok-2",
			}, nil
		},
	}
	vault := newFakeVault()
	d, store := startDispatcher(t, fake, vault)

	d.Dispatch(Register{Registration: core.Registration{Username: "new", Email: "n@e.com", Password: "longenough"}})

	snap := waitFor(t, store, func(s state.State) bool {
		return s.Session.Authenticated
	})
	if snap.Session.Token != "tok-2" {
		t.Errorf("session token = %q", snap.Session.Token)
	}
	if _, ok := vault.get(VaultKeyToken); ok {
		t.Errorf("registration must not persist the token")
	}
}

func TestLogoutClearsStateEvenWhenServerFails(t *testing.T) {
	fake := &fakeAPI{
		logout: func(context.Context) error {
			return errors.New("server unreachable")
		},
	}
	vault := newFakeVault()
	vault.Set(context.Background(), VaultKeyToken, "tok")

	d, store := startDispatcher(t, fake, vault)
	store.SetAuthenticated(core.UserProfile{ID: "u1"}, "tok")
	store.SetCategories([]core.Category{{ID: "a", Name: "Food"}})

	d.Dispatch(Logout{})

	snap := waitFor(t, store, func(s state.State) bool {
		return s.Session.LogoutReason == LogoutReason
	})
	if snap.Session.Authenticated || len(snap.Categories.Items) != 0 {
		t.Errorf("logout must clear state regardless of the server answer")
	}
	if _, ok := vault.get(VaultKeyToken); ok {
		t.Errorf("token must be removed on logout")
	}
}

func TestForgotPassword(t *testing.T) {
	t.Run("success sets the flag", func(t *testing.T) {
		d, store := startDispatcher(t, &fakeAPI{}, nil)
		d.Dispatch(ForgotPassword{Email: "sam@example.com"})
		waitFor(t, store, func(s state.State) bool {
			return s.Session.PasswordReset
		})
	})

	t.Run("failure uses the fallback", func(t *testing.T) {
		fake := &fakeAPI{
			forgotPassword: func(context.Context, string) error {
				return errors.New("smtp down")
			},
		}
		d, store := startDispatcher(t, fake, nil)
		d.Dispatch(ForgotPassword{Email: "sam@example.com"})
		snap := waitFor(t, store, func(s state.State) bool {
			return s.Session.Status == state.StatusFailed
		})
		if snap.Session.LastError != "Failed to reset password." {
			t.Errorf("LastError = %q", snap.Session.LastError)
		}
	})
}

func TestDeleteAppliesLocallyThenRefetches(t *testing.T) {
	var mu sync.Mutex
	serverItems := []core.Category{{ID: "a", Name: "Food"}, {ID: "b", Name: "Travel"}}
	fake := &fakeAPI{
		fetchCategories: func(context.Context) ([]core.Category, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]core.Category(nil), serverItems...), nil
		},
		deleteCategory: func(_ context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			for i := range serverItems {
				if serverItems[i].ID == id {
					serverItems = append(serverItems[:i], serverItems[i+1:]...)
					break
				}
			}
			return nil
		},
	}
	d, store := startDispatcher(t, fake, nil)

	d.Dispatch(FetchCategories{})
	waitFor(t, store, func(s state.State) bool {
		return len(s.Categories.Items) == 2
	})

	d.Dispatch(DeleteCategory{ID: "a"})
	snap := waitFor(t, store, func(s state.State) bool {
		return s.Categories.Status == state.StatusSucceeded && len(s.Categories.Items) == 1
	})
	if snap.Categories.Items[0].ID != "b" {
		t.Errorf("wrong item removed: %+v", snap.Categories.Items)
	}
}

func TestRestoreRebuildsSessionFromVault(t *testing.T) {
	fake := &fakeAPI{
		fetchProfile: func(_ context.Context, userID string) (core.UserProfile, error) {
			return core.UserProfile{ID: userID, Username: "sam"}, nil
		},
	}
	vault := newFakeVault()
	// No exp claim, so the token is treated as unexpired.
	vault.Set(context.Background(), VaultKeyToken, "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.e30.3B-FLgx1i8W7dywtSqtUlCRGJ5vLHKCJqSEIRBIDuPk")
	vault.Set(context.Background(), VaultKeyUserID, "u1")

	d, store := startDispatcher(t, fake, vault)

	restored, err := d.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !restored {
		t.Fatalf("expected session to be restored")
	}

	snap := waitFor(t, store, func(s state.State) bool {
		return s.Profile.Status == state.StatusSucceeded
	})
	if !snap.Session.Authenticated || snap.Session.CurrentUser.ID != "u1" {
		t.Errorf("session not restored: %+v", snap.Session)
	}
}

func TestRestoreWithEmptyVault(t *testing.T) {
	d, _ := startDispatcher(t, &fakeAPI{}, newFakeVault())
	restored, err := d.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored {
		t.Errorf("empty vault must not restore a session")
	}
}
