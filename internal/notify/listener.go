package notify

import (
	"context"
	"fmt"
	"log/slog"

	"spendsync/internal/services"
	"spendsync/internal/state"
)

// Consumer is the piece of Client the listener needs.
type Consumer interface {
	ConsumeChanges(ctx context.Context, handler func(*ChangeMessage) error) error
}

// Listener turns change announcements into refetch intents. The cache refresh
// goes through the normal fetch path, so latest-wins de-duplication applies
// to pushed refreshes exactly as to user-initiated ones.
type Listener struct {
	consumer   Consumer
	dispatcher *services.Dispatcher
	store      *state.Store
}

func NewListener(consumer Consumer, dispatcher *services.Dispatcher, store *state.Store) *Listener {
	return &Listener{
		consumer:   consumer,
		dispatcher: dispatcher,
		store:      store,
	}
}

// Run consumes until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	return l.consumer.ConsumeChanges(ctx, func(msg *ChangeMessage) error {
		return l.handle(ctx, msg)
	})
}

func (l *Listener) handle(ctx context.Context, msg *ChangeMessage) error {
	in, err := l.intentFor(msg.Resource)
	if err != nil {
		return err
	}
	if in == nil {
		// Session-scoped resource with nobody logged in. Nothing to refresh.
		slog.DebugContext(ctx, "Change message skipped, no session",
			"resource", msg.Resource)
		return nil
	}

	slog.InfoContext(ctx, "Refreshing cache on change message",
		"resource", msg.Resource, "operation", msg.Operation)
	l.dispatcher.Dispatch(in)
	return nil
}

func (l *Listener) intentFor(resource string) (services.Intent, error) {
	switch resource {
	case "expenses":
		return services.FetchExpenses{}, nil
	case "categories":
		return services.FetchCategories{}, nil
	case "payment_methods":
		return services.FetchPaymentMethods{}, nil
	case "groups":
		return services.FetchGroups{}, nil
	case "profile":
		if id := l.currentUserID(); id != "" {
			return services.FetchProfile{UserID: id}, nil
		}
		return nil, nil
	case "settings":
		if id := l.currentUserID(); id != "" {
			return services.FetchSettings{UserID: id}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown resource in change message: %s", resource)
	}
}

func (l *Listener) currentUserID() string {
	snap := l.store.Snapshot()
	if snap.Session.CurrentUser == nil {
		return ""
	}
	return snap.Session.CurrentUser.ID
}
