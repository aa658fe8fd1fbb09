package mockapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"spendsync/internal/api"
	"spendsync/internal/core"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := NewServer([]byte("test-secret"), nil)
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *httptest.Server) api.Credentials {
	t.Helper()
	c := api.NewClient(ts.URL, 0, nil)
	creds, err := c.Login(context.Background(), "demo", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return creds
}

func TestLoginAndFetch(t *testing.T) {
	ts := newTestServer(t)
	creds := login(t, ts)

	if creds.Token == "" || creds.UserProfile.Username != "demo" {
		t.Fatalf("credentials = %+v", creds)
	}

	c := api.NewClient(ts.URL, 0, api.StaticToken(creds.Token))
	ctx := context.Background()

	cats, err := c.FetchCategories(ctx)
	if err != nil {
		t.Fatalf("fetch categories: %v", err)
	}
	if len(cats) == 0 {
		t.Errorf("seeded server should have categories")
	}

	page, err := c.FetchExpenses(ctx)
	if err != nil {
		t.Fatalf("fetch expenses: %v", err)
	}
	if page.Total != len(page.Expenses) {
		t.Errorf("total = %d, items = %d", page.Total, len(page.Expenses))
	}
}

func TestWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	c := api.NewClient(ts.URL, 0, nil)

	_, err := c.Login(context.Background(), "demo", "wrong")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	c := api.NewClient(ts.URL, 0, nil)

	_, err := c.FetchCategories(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestExpenseCRUD(t *testing.T) {
	ts := newTestServer(t)
	creds := login(t, ts)
	c := api.NewClient(ts.URL, 0, api.StaticToken(creds.Token))
	ctx := context.Background()

	cats, err := c.FetchCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	methods, err := c.FetchPaymentMethods(ctx)
	if err != nil {
		t.Fatal(err)
	}
	groups, err := c.FetchGroups(ctx)
	if err != nil {
		t.Fatal(err)
	}

	created, err := c.CreateExpense(ctx, core.ExpenseDraft{
		Amount:          core.Money{Cents: 999},
		Description:     "Coffee beans",
		Date:            core.Today(),
		CategoryID:      cats[0].ID,
		PaymentMethodID: methods[0].ID,
		GroupID:         groups[0].ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.AddedBy != creds.UserProfile.ID {
		t.Errorf("created = %+v", created)
	}

	desc := "Better coffee beans"
	updated, err := c.UpdateExpense(ctx, created.ID, core.ExpensePatch{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != desc {
		t.Errorf("description = %q", updated.Description)
	}

	if err := c.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := c.UpdateExpense(ctx, created.ID, core.ExpensePatch{Description: &desc}); err == nil {
		t.Errorf("updating a deleted expense should fail")
	}
}

func TestInvalidDraftRejected(t *testing.T) {
	ts := newTestServer(t)
	creds := login(t, ts)
	c := api.NewClient(ts.URL, 0, api.StaticToken(creds.Token))

	_, err := c.CreateExpense(context.Background(), core.ExpenseDraft{})
	if err == nil {
		t.Fatal("empty draft must be rejected")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Errorf("error type = %T", err)
	}
}

func TestSignupThenLogin(t *testing.T) {
	ts := newTestServer(t)
	c := api.NewClient(ts.URL, 0, nil)
	ctx := context.Background()

	creds, err := c.Register(ctx, core.Registration{
		Username:  "newuser",
		Email:     "new@example.com",
		Password:  "longenough",
		FirstName: "New",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if creds.Token == "" {
		t.Errorf("registration should return a token")
	}

	if _, err := c.Login(ctx, "newuser", "longenough"); err != nil {
		t.Errorf("login after signup: %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	creds := login(t, ts)
	c := api.NewClient(ts.URL, 0, api.StaticToken(creds.Token))
	ctx := context.Background()

	saved, err := c.SaveSettings(ctx, creds.UserProfile.ID, core.Settings{Theme: "dark"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Theme != "dark" {
		t.Errorf("saved theme = %q", saved.Theme)
	}

	got, err := c.FetchSettings(ctx, creds.UserProfile.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Theme != "dark" {
		t.Errorf("fetched theme = %q", got.Theme)
	}
}

func TestProfileOwnership(t *testing.T) {
	ts := newTestServer(t)
	creds := login(t, ts)
	c := api.NewClient(ts.URL, 0, api.StaticToken(creds.Token))
	ctx := context.Background()

	name := "Changed"
	if _, err := c.UpdateProfile(ctx, "someone-else", core.ProfilePatch{FirstName: &name}); err == nil {
		t.Errorf("updating another user's profile must fail")
	}

	updated, err := c.UpdateProfile(ctx, creds.UserProfile.ID, core.ProfilePatch{FirstName: &name})
	if err != nil {
		t.Fatalf("update own profile: %v", err)
	}
	if updated.FirstName != "Changed" {
		t.Errorf("first name = %q", updated.FirstName)
	}
}
