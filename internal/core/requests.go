package core

import "strings"

// Drafts are the payloads for create intents; patches for update intents.
// Patch fields are pointers so "not provided" and "set to zero value" stay
// distinguishable. Validation here is the pre-dispatch check the frontends
// run; the synchronization core itself never rejects a payload.

type ExpenseDraft struct {
	Amount          Money  `json:"amountCents"`
	Description     string `json:"description,omitempty"`
	Date            Date   `json:"date"`
	CategoryID      string `json:"categoryId"`
	PaymentMethodID string `json:"paymentMethodId"`
	GroupID         string `json:"groupId"`
	AuthorID        string `json:"authorId"`
}

func (d ExpenseDraft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(d.CategoryID) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(d.PaymentMethodID) == "" {
		return ErrMissingPayment
	}
	if strings.TrimSpace(d.GroupID) == "" {
		return ErrMissingGroup
	}
	return nil
}

type ExpensePatch struct {
	Amount          *Money  `json:"amountCents,omitempty"`
	Description     *string `json:"description,omitempty"`
	Date            *Date   `json:"date,omitempty"`
	CategoryID      *string `json:"categoryId,omitempty"`
	PaymentMethodID *string `json:"paymentMethodId,omitempty"`
	GroupID         *string `json:"groupId,omitempty"`
	AuthorID        string  `json:"authorId"`
}

type CategoryDraft struct {
	Name     string `json:"name"`
	AuthorID string `json:"authorId"`
}

func (d CategoryDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

type CategoryPatch struct {
	Name     *string `json:"name,omitempty"`
	AuthorID string  `json:"authorId"`
}

type PaymentMethodDraft struct {
	Name     string `json:"name"`
	AuthorID string `json:"authorId"`
}

func (d PaymentMethodDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

type PaymentMethodPatch struct {
	Name     *string `json:"name,omitempty"`
	AuthorID string  `json:"authorId"`
}

type GroupDraft struct {
	Name     string   `json:"groupName"`
	Currency string   `json:"currency"`
	UserIDs  []string `json:"userIds,omitempty"`
	AuthorID string   `json:"authorId"`
}

func (d GroupDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

type GroupPatch struct {
	Name     *string `json:"groupName,omitempty"`
	Currency *string `json:"currency,omitempty"`
	AuthorID string  `json:"authorId"`
}

// ProfilePatch updates the caller's own profile.
type ProfilePatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Country   *string `json:"country,omitempty"`
	AvatarURL *string `json:"profilePicture,omitempty"`
}

// Registration is the signup payload.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Country   string `json:"country,omitempty"`
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" {
		return ErrEmptyName
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	return nil
}
