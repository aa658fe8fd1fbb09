package api

import (
	"context"
	"net/http"
	"net/url"

	"spendsync/internal/core"
)

// Credentials is the payload of a successful login or registration.
type Credentials struct {
	UserProfile core.UserProfile `json:"userProfile"`
	Token       string           `json:"token"`
}

// ExpensePage is the paginated fetch-all payload for expenses.
type ExpensePage struct {
	Expenses    []core.Expense `json:"expenses"`
	Total       int            `json:"total"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	PageSize    int            `json:"pageSize"`
}

// --- auth ---

func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	var creds Credentials
	payload := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login", payload, &creds)
	return creds, err
}

func (c *Client) Register(ctx context.Context, reg core.Registration) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/auth/signup", reg, &creds)
	return creds, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", payload, nil)
}

// --- expenses ---

func (c *Client) FetchExpenses(ctx context.Context) (ExpensePage, error) {
	var page ExpensePage
	err := c.do(ctx, http.MethodGet, "/expenses", nil, &page)
	return page, err
}

func (c *Client) CreateExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error) {
	var created core.Expense
	err := c.do(ctx, http.MethodPost, "/expenses/create", draft, &created)
	return created, err
}

func (c *Client) UpdateExpense(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	var updated core.Expense
	err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id)+"/update", patch, &updated)
	return updated, err
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id)+"/delete", nil, nil)
}

// --- categories ---

func (c *Client) FetchCategories(ctx context.Context) ([]core.Category, error) {
	var items []core.Category
	err := c.do(ctx, http.MethodGet, "/categories", nil, &items)
	return items, err
}

func (c *Client) CreateCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	var created core.Category
	err := c.do(ctx, http.MethodPost, "/categories/create", draft, &created)
	return created, err
}

func (c *Client) UpdateCategory(ctx context.Context, id string, patch core.CategoryPatch) (core.Category, error) {
	var updated core.Category
	err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id)+"/update", patch, &updated)
	return updated, err
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id)+"/delete", nil, nil)
}

// --- payment methods ---

func (c *Client) FetchPaymentMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	var items []core.PaymentMethod
	err := c.do(ctx, http.MethodGet, "/payment-methods", nil, &items)
	return items, err
}

func (c *Client) CreatePaymentMethod(ctx context.Context, draft core.PaymentMethodDraft) (core.PaymentMethod, error) {
	var created core.PaymentMethod
	err := c.do(ctx, http.MethodPost, "/payment-methods/create", draft, &created)
	return created, err
}

func (c *Client) UpdatePaymentMethod(ctx context.Context, id string, patch core.PaymentMethodPatch) (core.PaymentMethod, error) {
	var updated core.PaymentMethod
	err := c.do(ctx, http.MethodPut, "/payment-methods/"+url.PathEscape(id)+"/update", patch, &updated)
	return updated, err
}

func (c *Client) DeletePaymentMethod(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/payment-methods/"+url.PathEscape(id)+"/delete", nil, nil)
}

// --- groups ---

func (c *Client) FetchGroups(ctx context.Context) ([]core.Group, error) {
	var items []core.Group
	err := c.do(ctx, http.MethodGet, "/groups", nil, &items)
	return items, err
}

func (c *Client) CreateGroup(ctx context.Context, draft core.GroupDraft) (core.Group, error) {
	var created core.Group
	err := c.do(ctx, http.MethodPost, "/groups/create", draft, &created)
	return created, err
}

func (c *Client) UpdateGroup(ctx context.Context, id string, patch core.GroupPatch) (core.Group, error) {
	var updated core.Group
	err := c.do(ctx, http.MethodPut, "/groups/"+url.PathEscape(id)+"/update", patch, &updated)
	return updated, err
}

func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+url.PathEscape(id)+"/delete", nil, nil)
}

// --- profile ---

func (c *Client) FetchProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	var profile core.UserProfile
	err := c.do(ctx, http.MethodGet, "/profile/"+url.PathEscape(userID), nil, &profile)
	return profile, err
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, patch core.ProfilePatch) (core.UserProfile, error) {
	var updated core.UserProfile
	err := c.do(ctx, http.MethodPut, "/profile/"+url.PathEscape(userID), patch, &updated)
	return updated, err
}

// --- settings ---

func (c *Client) FetchSettings(ctx context.Context, userID string) (core.Settings, error) {
	var settings core.Settings
	err := c.do(ctx, http.MethodGet, "/settings/"+url.PathEscape(userID), nil, &settings)
	return settings, err
}

func (c *Client) SaveSettings(ctx context.Context, userID string, settings core.Settings) (core.Settings, error) {
	var saved core.Settings
	err := c.do(ctx, http.MethodPut, "/settings/"+url.PathEscape(userID), settings, &saved)
	return saved, err
}
