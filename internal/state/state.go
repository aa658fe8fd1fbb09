// Package state holds the local copy of every remote resource plus the
// request-status metadata the frontends render. All mutation goes through
// Store, which guards the whole tree with a single lock so cross-resource
// transitions (the logout reset in particular) are atomic.
package state

import (
	"slices"

	"spendsync/internal/core"
)

// Status is the coarse request lifecycle of one resource store. It tracks
// the store's most recent request, not individual in-flight calls.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Entity is anything with a stable opaque id.
type Entity interface {
	EntityID() string
}

// Collection is the store for one entity type: the last known server copy of
// the items plus request metadata. Items never contain two entries with the
// same id.
type Collection[T Entity] struct {
	Items     []T
	Status    Status
	LastError string
}

func (c *Collection[T]) begin() {
	c.Status = StatusLoading
	c.LastError = ""
}

func (c *Collection[T]) fail(msg string) {
	c.Status = StatusFailed
	c.LastError = msg
}

// setAll replaces the items with a fetch-all result. Duplicate ids in the
// payload collapse to the first occurrence.
func (c *Collection[T]) setAll(items []T) {
	deduped := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.EntityID()]; dup {
			continue
		}
		seen[it.EntityID()] = struct{}{}
		deduped = append(deduped, it)
	}
	c.Items = deduped
	c.Status = StatusSucceeded
	c.LastError = ""
}

// upsert appends the item, or replaces an existing item with the same id.
func (c *Collection[T]) upsert(item T) {
	c.Status = StatusSucceeded
	c.LastError = ""
	for i := range c.Items {
		if c.Items[i].EntityID() == item.EntityID() {
			c.Items[i] = item
			return
		}
	}
	c.Items = append(c.Items, item)
}

// replace swaps the item with the same id in place. Returns false when the
// id is not present; the caller decides whether that is worth logging.
func (c *Collection[T]) replace(item T) bool {
	c.Status = StatusSucceeded
	c.LastError = ""
	for i := range c.Items {
		if c.Items[i].EntityID() == item.EntityID() {
			c.Items[i] = item
			return true
		}
	}
	return false
}

// remove deletes the item with the given id. Returns false when absent.
func (c *Collection[T]) remove(id string) bool {
	c.Status = StatusSucceeded
	c.LastError = ""
	for i := range c.Items {
		if c.Items[i].EntityID() == id {
			c.Items = slices.Delete(c.Items, i, i+1)
			return true
		}
	}
	return false
}

func (c *Collection[T]) reset() {
	*c = Collection[T]{}
}

func (c Collection[T]) snapshot() Collection[T] {
	c.Items = slices.Clone(c.Items)
	return c
}

// ExpensePage is the pagination metadata the expense fetch returns alongside
// the items. It is overwritten wholesale by every fetch-all.
type ExpensePage struct {
	Total       int
	CurrentPage int
	TotalPages  int
	PageSize    int
}

// ExpenseList is the expense store: a collection plus its page metadata.
type ExpenseList struct {
	Collection[core.Expense]
	Page ExpensePage
}

func (l *ExpenseList) reset() {
	*l = ExpenseList{}
}

// Session is the singleton auth record.
type Session struct {
	CurrentUser   *core.UserProfile
	Token         string
	Authenticated bool
	Status        Status
	LastError     string
	LogoutReason  string
	PasswordReset bool
}

func (s *Session) reset(reason string) {
	*s = Session{LogoutReason: reason}
}

// Profile is the singleton store for the logged-in user's profile.
type Profile struct {
	User      *core.UserProfile
	Status    Status
	LastError string
}

// SettingsState is the singleton store for the user's settings.
type SettingsState struct {
	Data      *core.Settings
	Status    Status
	LastError string
}

// State is the whole local tree: one store per resource plus the session.
type State struct {
	Session        Session
	Expenses       ExpenseList
	Categories     Collection[core.Category]
	PaymentMethods Collection[core.PaymentMethod]
	Groups         Collection[core.Group]
	Profile        Profile
	Settings       SettingsState
}

// reset clears every store in one step. It is the only cross-store
// transition in the tree; everything else touches exactly one resource.
func (s *State) reset(logoutReason string) {
	*s = State{}
	s.Session.LogoutReason = logoutReason
}
