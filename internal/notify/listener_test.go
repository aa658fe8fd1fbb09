package notify

import (
	"testing"

	"spendsync/internal/core"
	"spendsync/internal/services"
	"spendsync/internal/state"
)

func TestIntentForSharedResources(t *testing.T) {
	l := NewListener(nil, nil, state.NewStore())

	tests := []struct {
		resource string
		want     services.Intent
	}{
		{"expenses", services.FetchExpenses{}},
		{"categories", services.FetchCategories{}},
		{"payment_methods", services.FetchPaymentMethods{}},
		{"groups", services.FetchGroups{}},
	}
	for _, tt := range tests {
		t.Run(tt.resource, func(t *testing.T) {
			in, err := l.intentFor(tt.resource)
			if err != nil {
				t.Fatalf("intentFor(%s): %v", tt.resource, err)
			}
			if in != tt.want {
				t.Errorf("intent = %#v, want %#v", in, tt.want)
			}
		})
	}
}

func TestIntentForSessionResources(t *testing.T) {
	store := state.NewStore()
	l := NewListener(nil, nil, store)

	// Nobody logged in: nothing to refresh, but not an error either.
	for _, resource := range []string{"profile", "settings"} {
		in, err := l.intentFor(resource)
		if err != nil {
			t.Fatalf("intentFor(%s): %v", resource, err)
		}
		if in != nil {
			t.Errorf("intent for %s without session = %#v, want nil", resource, in)
		}
	}

	store.SetAuthenticated(core.UserProfile{ID: "u1"}, "tok")

	in, err := l.intentFor("profile")
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := in.(services.FetchProfile); !ok || got.UserID != "u1" {
		t.Errorf("intent = %#v, want FetchProfile for u1", in)
	}

	in, err = l.intentFor("settings")
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := in.(services.FetchSettings); !ok || got.UserID != "u1" {
		t.Errorf("intent = %#v, want FetchSettings for u1", in)
	}
}

func TestIntentForUnknownResource(t *testing.T) {
	l := NewListener(nil, nil, state.NewStore())

	if _, err := l.intentFor("invoices"); err == nil {
		t.Error("unknown resource must be an error so the message is dead-lettered")
	}
}
