package workflow

import (
	"context"
	"fmt"
	"sync"

	"storeops-borrow/internal/domain/audit"
)

type sentNotification struct {
	StoreID, Title, Body, Exclude string
	Data                          map[string]string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) NotifyStore(_ context.Context, storeID, title, body string, data map[string]string, exclude string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{StoreID: storeID, Title: title, Body: body, Exclude: exclude, Data: data})
	return n.err
}

func (n *recordingNotifier) byEvent(event string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Data["event"] == event {
			out = append(out, s)
		}
	}
	return out
}

type recordedAudit struct {
	StoreID   string
	Action    audit.ActionType
	EntityRef string
	Payload   map[string]any
	ActorID   string
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []recordedAudit
	err     error
}

func (a *recordingAudit) Record(_ context.Context, storeID string, action audit.ActionType, ref string, payload map[string]any, actorID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, recordedAudit{StoreID: storeID, Action: action, EntityRef: ref, Payload: payload, ActorID: actorID})
	return a.err
}

func (a *recordingAudit) byAction(action audit.ActionType) []recordedAudit {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []recordedAudit
	for _, e := range a.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type mapDirectory struct {
	stores, actors map[string]string
	err            error
}

func (d mapDirectory) StoreName(_ context.Context, id string) (string, error) {
	return d.stores[id], d.err
}

func (d mapDirectory) ActorName(_ context.Context, id string) (string, error) {
	return d.actors[id], d.err
}

type captureLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *captureLogger) Infof(string, ...interface{}) {}

func (l *captureLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func (l *captureLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}
