package services

import "spendsync/internal/core"

// Intent is one UI-issued request to the synchronization core. The set is
// closed: every variant lives in this file and the dispatcher's switch is
// the single place they are interpreted.
type Intent interface {
	intent()
	// Resource and Operation label the intent for logs and metrics.
	Resource() string
	Operation() string
}

// --- expenses ---

type FetchExpenses struct{}

type CreateExpense struct {
	Draft core.ExpenseDraft
}

type UpdateExpense struct {
	ID    string
	Patch core.ExpensePatch
}

type DeleteExpense struct {
	ID string
}

// --- categories ---

type FetchCategories struct{}

type CreateCategory struct {
	Draft core.CategoryDraft
}

type UpdateCategory struct {
	ID    string
	Patch core.CategoryPatch
}

type DeleteCategory struct {
	ID string
}

// --- payment methods ---

type FetchPaymentMethods struct{}

type CreatePaymentMethod struct {
	Draft core.PaymentMethodDraft
}

type UpdatePaymentMethod struct {
	ID    string
	Patch core.PaymentMethodPatch
}

type DeletePaymentMethod struct {
	ID string
}

// --- groups ---

type FetchGroups struct{}

type CreateGroup struct {
	Draft core.GroupDraft
}

type UpdateGroup struct {
	ID    string
	Patch core.GroupPatch
}

type DeleteGroup struct {
	ID string
}

// --- profile ---

type FetchProfile struct {
	UserID string
}

type UpdateProfile struct {
	UserID string
	Patch  core.ProfilePatch
}

// --- settings ---

type FetchSettings struct {
	UserID string
}

type SaveSettings struct {
	UserID string
	Data   core.Settings
}

// --- session ---

type Login struct {
	Username string
	Password string
}

type Register struct {
	Registration core.Registration
}

// Logout clears the session and every resource store. Reason is recorded on
// the cleared session; empty means a plain user-initiated logout.
type Logout struct {
	Reason string
}

type ForgotPassword struct {
	Email string
}

func (FetchExpenses) intent()       {}
func (CreateExpense) intent()       {}
func (UpdateExpense) intent()       {}
func (DeleteExpense) intent()       {}
func (FetchCategories) intent()     {}
func (CreateCategory) intent()      {}
func (UpdateCategory) intent()      {}
func (DeleteCategory) intent()      {}
func (FetchPaymentMethods) intent() {}
func (CreatePaymentMethod) intent() {}
func (UpdatePaymentMethod) intent() {}
func (DeletePaymentMethod) intent() {}
func (FetchGroups) intent()         {}
func (CreateGroup) intent()         {}
func (UpdateGroup) intent()         {}
func (DeleteGroup) intent()         {}
func (FetchProfile) intent()        {}
func (UpdateProfile) intent()       {}
func (FetchSettings) intent()       {}
func (SaveSettings) intent()        {}
func (Login) intent()               {}
func (Register) intent()            {}
func (Logout) intent()              {}
func (ForgotPassword) intent()      {}

func (FetchExpenses) Resource() string       { return "expenses" }
func (CreateExpense) Resource() string       { return "expenses" }
func (UpdateExpense) Resource() string       { return "expenses" }
func (DeleteExpense) Resource() string       { return "expenses" }
func (FetchCategories) Resource() string     { return "categories" }
func (CreateCategory) Resource() string      { return "categories" }
func (UpdateCategory) Resource() string      { return "categories" }
func (DeleteCategory) Resource() string      { return "categories" }
func (FetchPaymentMethods) Resource() string { return "payment_methods" }
func (CreatePaymentMethod) Resource() string { return "payment_methods" }
func (UpdatePaymentMethod) Resource() string { return "payment_methods" }
func (DeletePaymentMethod) Resource() string { return "payment_methods" }
func (FetchGroups) Resource() string         { return "groups" }
func (CreateGroup) Resource() string         { return "groups" }
func (UpdateGroup) Resource() string         { return "groups" }
func (DeleteGroup) Resource() string         { return "groups" }
func (FetchProfile) Resource() string        { return "profile" }
func (UpdateProfile) Resource() string       { return "profile" }
func (FetchSettings) Resource() string       { return "settings" }
func (SaveSettings) Resource() string        { return "settings" }
func (Login) Resource() string               { return "session" }
func (Register) Resource() string            { return "session" }
func (Logout) Resource() string              { return "session" }
func (ForgotPassword) Resource() string      { return "session" }

func (FetchExpenses) Operation() string       { return "fetch" }
func (CreateExpense) Operation() string       { return "create" }
func (UpdateExpense) Operation() string       { return "update" }
func (DeleteExpense) Operation() string       { return "delete" }
func (FetchCategories) Operation() string     { return "fetch" }
func (CreateCategory) Operation() string      { return "create" }
func (UpdateCategory) Operation() string      { return "update" }
func (DeleteCategory) Operation() string      { return "delete" }
func (FetchPaymentMethods) Operation() string { return "fetch" }
func (CreatePaymentMethod) Operation() string { return "create" }
func (UpdatePaymentMethod) Operation() string { return "update" }
func (DeletePaymentMethod) Operation() string { return "delete" }
func (FetchGroups) Operation() string         { return "fetch" }
func (CreateGroup) Operation() string         { return "create" }
func (UpdateGroup) Operation() string         { return "update" }
func (DeleteGroup) Operation() string         { return "delete" }
func (FetchProfile) Operation() string        { return "fetch" }
func (UpdateProfile) Operation() string       { return "update" }
func (FetchSettings) Operation() string       { return "fetch" }
func (SaveSettings) Operation() string        { return "save" }
func (Login) Operation() string               { return "login" }
func (Register) Operation() string            { return "register" }
func (Logout) Operation() string              { return "logout" }
func (ForgotPassword) Operation() string      { return "forgot_password" }
