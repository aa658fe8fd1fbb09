package mockapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"spendsync/internal/core"
)

// Categories, payment methods and groups share the same handler shape:
// list returns the whole collection, writes answer with the affected item.

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	items := append([]core.Category(nil), s.store.categories...)
	s.store.mu.Unlock()
	writeSuccess(w, http.StatusOK, "", items)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var draft core.CategoryDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category := core.Category{ID: uuid.NewString(), Name: draft.Name}
	s.store.mu.Lock()
	s.store.categories = append(s.store.categories, category)
	s.store.mu.Unlock()

	s.announce(r.Context(), "categories", category.ID, "create")
	writeSuccess(w, http.StatusCreated, "Category created", category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch core.CategoryPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	s.store.mu.Lock()
	var updated *core.Category
	for i := range s.store.categories {
		if s.store.categories[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.store.categories[i].Name = *patch.Name
		}
		updated = &s.store.categories[i]
		break
	}
	s.store.mu.Unlock()

	if updated == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	s.announce(r.Context(), "categories", id, "update")
	writeSuccess(w, http.StatusOK, "Category updated", *updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.store.mu.Lock()
	found := false
	for i := range s.store.categories {
		if s.store.categories[i].ID == id {
			s.store.categories = append(s.store.categories[:i], s.store.categories[i+1:]...)
			found = true
			break
		}
	}
	s.store.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	s.announce(r.Context(), "categories", id, "delete")
	writeSuccess(w, http.StatusOK, "Category deleted", nil)
}

func (s *Server) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	items := append([]core.PaymentMethod(nil), s.store.paymentMethods...)
	s.store.mu.Unlock()
	writeSuccess(w, http.StatusOK, "", items)
}

func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var draft core.PaymentMethodDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	method := core.PaymentMethod{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		AuthorID:  callerID(r),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.mu.Lock()
	s.store.paymentMethods = append(s.store.paymentMethods, method)
	s.store.mu.Unlock()

	s.announce(r.Context(), "payment_methods", method.ID, "create")
	writeSuccess(w, http.StatusCreated, "Payment method created", method)
}

func (s *Server) handleUpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch core.PaymentMethodPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	s.store.mu.Lock()
	var updated *core.PaymentMethod
	for i := range s.store.paymentMethods {
		if s.store.paymentMethods[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.store.paymentMethods[i].Name = *patch.Name
		}
		s.store.paymentMethods[i].UpdatedAt = time.Now().UTC()
		updated = &s.store.paymentMethods[i]
		break
	}
	s.store.mu.Unlock()

	if updated == nil {
		writeError(w, http.StatusNotFound, "Payment method not found")
		return
	}
	s.announce(r.Context(), "payment_methods", id, "update")
	writeSuccess(w, http.StatusOK, "Payment method updated", *updated)
}

func (s *Server) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.store.mu.Lock()
	found := false
	for i := range s.store.paymentMethods {
		if s.store.paymentMethods[i].ID == id {
			s.store.paymentMethods = append(s.store.paymentMethods[:i], s.store.paymentMethods[i+1:]...)
			found = true
			break
		}
	}
	s.store.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Payment method not found")
		return
	}
	s.announce(r.Context(), "payment_methods", id, "delete")
	writeSuccess(w, http.StatusOK, "Payment method deleted", nil)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	items := append([]core.Group(nil), s.store.groups...)
	s.store.mu.Unlock()
	writeSuccess(w, http.StatusOK, "", items)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var draft core.GroupDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	group := core.Group{
		ID:       uuid.NewString(),
		Name:     draft.Name,
		Currency: draft.Currency,
		UserIDs:  draft.UserIDs,
		AuthorID: callerID(r),
	}
	if len(group.UserIDs) == 0 {
		group.UserIDs = []string{callerID(r)}
	}

	s.store.mu.Lock()
	s.store.groups = append(s.store.groups, group)
	s.store.mu.Unlock()

	s.announce(r.Context(), "groups", group.ID, "create")
	writeSuccess(w, http.StatusCreated, "Group created", group)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch core.GroupPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	s.store.mu.Lock()
	var updated *core.Group
	for i := range s.store.groups {
		if s.store.groups[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.store.groups[i].Name = *patch.Name
		}
		if patch.Currency != nil {
			s.store.groups[i].Currency = *patch.Currency
		}
		updated = &s.store.groups[i]
		break
	}
	s.store.mu.Unlock()

	if updated == nil {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	s.announce(r.Context(), "groups", id, "update")
	writeSuccess(w, http.StatusOK, "Group updated", *updated)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.store.mu.Lock()
	found := false
	for i := range s.store.groups {
		if s.store.groups[i].ID == id {
			s.store.groups = append(s.store.groups[:i], s.store.groups[i+1:]...)
			found = true
			break
		}
	}
	s.store.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Group not found")
		return
	}
	s.announce(r.Context(), "groups", id, "delete")
	writeSuccess(w, http.StatusOK, "Group deleted", nil)
}
