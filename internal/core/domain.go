// Package core holds the domain entities mirrored from the remote expense
// service. Entities reference each other by id only; resolving ids to display
// names is a read-side concern and happens in the frontends.
package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrMissingCategory  = errors.New("missing category id")
	ErrMissingPayment   = errors.New("missing payment method id")
	ErrMissingGroup     = errors.New("missing group id")
	ErrInvalidDate      = errors.New("invalid date")
	ErrWeakPassword     = errors.New("password must be at least 8 characters")
)

// Date is a calendar day without a time component. It marshals as
// "2006-01-02", which is what the expense endpoints exchange.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current day in UTC.
func Today() Date {
	y, m, d := time.Now().UTC().Date()
	return NewDate(y, int(m), d)
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expense is one recorded expense. Category, payment method and group are
// carried as ids; the server owns the authoritative copies.
type Expense struct {
	ID              string    `json:"id"`
	Amount          Money     `json:"amountCents"`
	Description     string    `json:"description,omitempty"`
	Date            Date      `json:"date"`
	CategoryID      string    `json:"categoryId"`
	PaymentMethodID string    `json:"paymentMethodId"`
	GroupID         string    `json:"groupId"`
	AddedBy         string    `json:"addedBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (e Expense) EntityID() string { return e.ID }

// Category is a spending category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c Category) EntityID() string { return c.ID }

// PaymentMethod is a way of paying (cash, a specific card, ...).
type PaymentMethod struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p PaymentMethod) EntityID() string { return p.ID }

// Group is a shared spending context (household, trip, ...).
type Group struct {
	ID       string   `json:"id"`
	Name     string   `json:"groupName"`
	Currency string   `json:"currency"`
	UserIDs  []string `json:"userIds,omitempty"`
	AuthorID string   `json:"authorId"`
}

func (g Group) EntityID() string { return g.ID }

// UserProfile is the account record for one user.
type UserProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country,omitempty"`
	AvatarURL string `json:"profilePicture,omitempty"`
}

func (u UserProfile) EntityID() string { return u.ID }

// Settings holds per-user preferences.
type Settings struct {
	SelectedCategories     []string `json:"selectedCategories"`
	SelectedPaymentMethods []string `json:"selectedPaymentMethods"`
	Theme                  string   `json:"theme"`
}
