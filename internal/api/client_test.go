package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"spendsync/internal/core"
)

func TestFetchCategoriesDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[{"id":"a","name":"Food"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, StaticToken("tok"))
	items, err := c.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Food" {
		t.Errorf("items = %+v", items)
	}
}

func TestEnvelopeFailureBeatsHTTPSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// HTTP 200 but the envelope says error.
		w.Write([]byte(`{"status":"error","message":"Name already taken"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	_, err := c.CreateCategory(context.Background(), core.CategoryDraft{Name: "Food"})
	if err == nil {
		t.Fatal("expected an error")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Message != "Name already taken" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestUnauthorizedIsSentinel(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"with envelope", `{"status":"error","message":"Invalid token"}`, "Invalid token"},
		{"without envelope", `Unauthorized`, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 0, StaticToken("expired"))
			_, err := c.FetchCategories(context.Background())
			if !errors.Is(err, ErrUnauthorized) {
				t.Errorf("error = %v, want ErrUnauthorized", err)
			}
			// The sentinel must not swallow the server's own message.
			if got := Message(err, "fallback"); got != tt.message {
				t.Errorf("Message() = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestNoTokenHeaderWithoutSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"server message wins", &Error{Message: "Quota exceeded"}, "Failed to fetch", "Quota exceeded"},
		{"empty server message falls back", &Error{StatusCode: 500}, "Failed to fetch", "Failed to fetch"},
		{"plain error falls back", errors.New("dial tcp: refused"), "Failed to fetch", "Failed to fetch"},
		{"nil-safe wrapping", context.DeadlineExceeded, "Timed out", "Timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err, tt.fallback); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}
