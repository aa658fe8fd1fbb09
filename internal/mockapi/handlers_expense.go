package mockapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"spendsync/internal/api"
	"spendsync/internal/core"
)

const expensePageSize = 20

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	items := append([]core.Expense(nil), s.store.expenses...)
	s.store.mu.Unlock()

	total := len(items)
	totalPages := (total + expensePageSize - 1) / expensePageSize
	if totalPages == 0 {
		totalPages = 1
	}
	writeSuccess(w, http.StatusOK, "", api.ExpensePage{
		Expenses:    items,
		Total:       total,
		CurrentPage: 1,
		TotalPages:  totalPages,
		PageSize:    expensePageSize,
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var draft core.ExpenseDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	expense := core.Expense{
		ID:              uuid.NewString(),
		Amount:          draft.Amount,
		Description:     draft.Description,
		Date:            draft.Date,
		CategoryID:      draft.CategoryID,
		PaymentMethodID: draft.PaymentMethodID,
		GroupID:         draft.GroupID,
		AddedBy:         callerID(r),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	s.store.mu.Lock()
	s.store.expenses = append(s.store.expenses, expense)
	s.store.mu.Unlock()

	s.announce(r.Context(), "expenses", expense.ID, "create")
	writeSuccess(w, http.StatusCreated, "Expense created", expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch core.ExpensePatch
	if !decodeBody(w, r, &patch) {
		return
	}

	s.store.mu.Lock()
	var updated *core.Expense
	for i := range s.store.expenses {
		if s.store.expenses[i].ID != id {
			continue
		}
		e := &s.store.expenses[i]
		if patch.Amount != nil {
			e.Amount = *patch.Amount
		}
		if patch.Description != nil {
			e.Description = *patch.Description
		}
		if patch.Date != nil {
			e.Date = *patch.Date
		}
		if patch.CategoryID != nil {
			e.CategoryID = *patch.CategoryID
		}
		if patch.PaymentMethodID != nil {
			e.PaymentMethodID = *patch.PaymentMethodID
		}
		if patch.GroupID != nil {
			e.GroupID = *patch.GroupID
		}
		e.UpdatedAt = time.Now().UTC()
		updated = e
		break
	}
	s.store.mu.Unlock()

	if updated == nil {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	s.announce(r.Context(), "expenses", id, "update")
	writeSuccess(w, http.StatusOK, "Expense updated", *updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.store.mu.Lock()
	found := false
	for i := range s.store.expenses {
		if s.store.expenses[i].ID == id {
			s.store.expenses = append(s.store.expenses[:i], s.store.expenses[i+1:]...)
			found = true
			break
		}
	}
	s.store.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	s.announce(r.Context(), "expenses", id, "delete")
	writeSuccess(w, http.StatusOK, "Expense deleted", nil)
}
