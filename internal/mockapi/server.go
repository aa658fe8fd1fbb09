// Package mockapi is a self-contained stand-in for the remote expense
// service. It speaks the same envelope protocol and route layout as
// production, backed by in-memory data, so the client can be developed and
// demoed without network access to the real backend.
package mockapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"spendsync/internal/log"
	"spendsync/internal/notify"
)

// Publisher announces resource changes to interested clients. Nil disables
// announcements.
type Publisher interface {
	PublishChange(ctx context.Context, msg *notify.ChangeMessage) error
}

type Server struct {
	store     *memStore
	secret    []byte
	publisher Publisher
	router    chi.Router
}

// NewServer builds a seeded server. The seeded account is demo/password123.
func NewServer(secret []byte, publisher Publisher) (*Server, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:     newMemStore(),
		secret:    secret,
		publisher: publisher,
	}
	s.store.seed(hash)
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(log.RequestLogger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/signup", s.handleSignup)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.With(s.requireAuth).Post("/logout", s.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses/create", s.handleCreateExpense)
		r.Put("/expenses/{id}/update", s.handleUpdateExpense)
		r.Delete("/expenses/{id}/delete", s.handleDeleteExpense)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories/create", s.handleCreateCategory)
		r.Put("/categories/{id}/update", s.handleUpdateCategory)
		r.Delete("/categories/{id}/delete", s.handleDeleteCategory)

		r.Get("/payment-methods", s.handleListPaymentMethods)
		r.Post("/payment-methods/create", s.handleCreatePaymentMethod)
		r.Put("/payment-methods/{id}/update", s.handleUpdatePaymentMethod)
		r.Delete("/payment-methods/{id}/delete", s.handleDeletePaymentMethod)

		r.Get("/groups", s.handleListGroups)
		r.Post("/groups/create", s.handleCreateGroup)
		r.Put("/groups/{id}/update", s.handleUpdateGroup)
		r.Delete("/groups/{id}/delete", s.handleDeleteGroup)

		r.Get("/profile/{id}", s.handleGetProfile)
		r.Put("/profile/{id}", s.handleUpdateProfile)

		r.Get("/settings/{userID}", s.handleGetSettings)
		r.Put("/settings/{userID}", s.handleSaveSettings)
	})

	s.router = r
}

// announce publishes a change message when a publisher is configured.
func (s *Server) announce(ctx context.Context, resource, id, operation string) {
	if s.publisher == nil {
		return
	}
	msg := notify.NewChangeMessage(resource, id, operation)
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		// Announcements are best effort. The write already succeeded.
		return
	}
}
