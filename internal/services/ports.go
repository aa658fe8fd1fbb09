package services

import (
	"context"

	"spendsync/internal/api"
	"spendsync/internal/core"
)

// API is the outbound port to the remote expense service. *api.Client is the
// production implementation; tests substitute fakes.
type API interface {
	Login(ctx context.Context, username, password string) (api.Credentials, error)
	Register(ctx context.Context, reg core.Registration) (api.Credentials, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error

	FetchExpenses(ctx context.Context) (api.ExpensePage, error)
	CreateExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error)
	UpdateExpense(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	FetchCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error)
	UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	FetchPaymentMethods(ctx context.Context) ([]core.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, draft core.PaymentMethodDraft) (core.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id string, patch core.PaymentMethodPatch) (core.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id string) error

	FetchGroups(ctx context.Context) ([]core.Group, error)
	CreateGroup(ctx context.Context, draft core.GroupDraft) (core.Group, error)
	UpdateGroup(ctx context.Context, id string, patch core.GroupPatch) (core.Group, error)
	DeleteGroup(ctx context.Context, id string) error

	FetchProfile(ctx context.Context, userID string) (core.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, patch core.ProfilePatch) (core.UserProfile, error)

	FetchSettings(ctx context.Context, userID string) (core.Settings, error)
	SaveSettings(ctx context.Context, userID string, settings core.Settings) (core.Settings, error)
}

// Vault is the durable local store for the session token and the cached
// user id. Implementations must tolerate missing keys.
type Vault interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
}

// Vault keys the session controller owns.
const (
	VaultKeyToken  = "authToken"
	VaultKeyUserID = "userId"
)
