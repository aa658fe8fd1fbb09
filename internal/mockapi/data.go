package mockapi

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"spendsync/internal/core"
)

type userRecord struct {
	profile      core.UserProfile
	passwordHash []byte
}

// memStore is the in-memory backing data. One mutex guards everything; the
// mock server optimizes for predictability, not throughput.
type memStore struct {
	mu             sync.Mutex
	users          map[string]*userRecord // keyed by username
	expenses       []core.Expense
	categories     []core.Category
	paymentMethods []core.PaymentMethod
	groups         []core.Group
	settings       map[string]core.Settings // keyed by user id
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*userRecord),
		settings: make(map[string]core.Settings),
	}
}

// seed loads a small fixture set so a fresh server is immediately usable.
func (s *memStore) seed(passwordHash []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := core.UserProfile{
		ID:        uuid.NewString(),
		Username:  "demo",
		Email:     "demo@example.com",
		FirstName: "Demo",
		LastName:  "User",
		Country:   "IT",
	}
	s.users[user.Username] = &userRecord{profile: user, passwordHash: passwordHash}

	groceries := core.Category{ID: uuid.NewString(), Name: "Groceries"}
	transport := core.Category{ID: uuid.NewString(), Name: "Transport"}
	s.categories = []core.Category{groceries, transport}

	now := time.Now().UTC()
	card := core.PaymentMethod{ID: uuid.NewString(), Name: "Debit card", AuthorID: user.ID, CreatedAt: now, UpdatedAt: now}
	cash := core.PaymentMethod{ID: uuid.NewString(), Name: "Cash", AuthorID: user.ID, CreatedAt: now, UpdatedAt: now}
	s.paymentMethods = []core.PaymentMethod{card, cash}

	household := core.Group{
		ID:       uuid.NewString(),
		Name:     "Household",
		Currency: "EUR",
		UserIDs:  []string{user.ID},
		AuthorID: user.ID,
	}
	s.groups = []core.Group{household}

	s.expenses = []core.Expense{{
		ID:              uuid.NewString(),
		Amount:          core.Money{Cents: 4250},
		Description:     "Weekly shop",
		Date:            core.Today(),
		CategoryID:      groceries.ID,
		PaymentMethodID: card.ID,
		GroupID:         household.ID,
		AddedBy:         user.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}}

	s.settings[user.ID] = core.Settings{
		SelectedCategories:     []string{groceries.ID},
		SelectedPaymentMethods: []string{card.ID},
		Theme:                  "light",
	}
}

func (s *memStore) findUserByID(id string) (*userRecord, bool) {
	for _, rec := range s.users {
		if rec.profile.ID == id {
			return rec, true
		}
	}
	return nil, false
}
