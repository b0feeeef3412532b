package workflow

import (
	"context"

	"storeops-borrow/internal/domain/audit"
)

// Notifier hands a message to the staff group of one store. excludeActorID, when set,
// suppresses delivery to the actor who caused the event.
type Notifier interface {
	NotifyStore(ctx context.Context, storeID, title, body string, data map[string]string, excludeActorID string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, storeID string, action audit.ActionType, entityRef string, payload map[string]any, actorID string) error
}

// Directory resolves display names. Unknown ids resolve to "".
type Directory interface {
	StoreName(ctx context.Context, storeID string) (string, error)
	ActorName(ctx context.Context, actorID string) (string, error)
}

// Logger is satisfied by echo.Logger.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
