package workflow

import (
	"context"
	"fmt"
	"strings"

	"storeops-borrow/internal/domain/audit"
	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/internal/usecase/approval"
	"storeops-borrow/internal/usecase/confirmation"
	"storeops-borrow/internal/usecase/photo"
	"storeops-borrow/internal/usecase/request"
)

const (
	EventCreated      = "borrow_created"
	EventApproved     = "borrow_approved"
	EventRejected     = "borrow_rejected"
	EventPosConfirmed = "borrow_pos_confirmed"
	EventCompleted    = "borrow_completed"
	EventPhoto        = "borrow_photo_uploaded"
)

type Deps struct {
	Borrows       borrow.Repository
	Requests      *request.Usecase
	Approvals     *approval.Usecase
	Confirmations *confirmation.Usecase
	Photos        *photo.Usecase
	Notifier      Notifier
	Audit         AuditRecorder
	Directory     Directory
	Dispatcher    *Dispatcher
	Log           Logger
}

// Orchestrator commits each state change first and only then queues notification and
// audit side effects. A failed side effect is logged; it never changes the result.
type Orchestrator struct {
	borrows       borrow.Repository
	requests      *request.Usecase
	approvals     *approval.Usecase
	confirmations *confirmation.Usecase
	photos        *photo.Usecase
	notifier      Notifier
	audit         AuditRecorder
	directory     Directory
	dispatch      *Dispatcher
	log           Logger
}

func NewOrchestrator(d Deps) *Orchestrator {
	return &Orchestrator{
		borrows:       d.Borrows,
		requests:      d.Requests,
		approvals:     d.Approvals,
		confirmations: d.Confirmations,
		photos:        d.Photos,
		notifier:      d.Notifier,
		audit:         d.Audit,
		directory:     d.Directory,
		dispatch:      d.Dispatcher,
		log:           d.Log,
	}
}

func (o *Orchestrator) Create(ctx context.Context, in request.CreateInput) (*borrow.Borrow, error) {
	b, err := o.requests.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	o.log.Infof("borrow %s created %s -> %s by %s", b.ID, b.FromStoreID, b.ToStoreID, b.RequestedBy)

	snap := *b
	o.notify(EventCreated, &snap, snap.ToStoreID, snap.RequestedBy, func(ctx context.Context) (string, string) {
		return "New borrow request",
			fmt.Sprintf("%s wants to borrow %d item(s)", o.storeLabel(ctx, snap.FromStoreID), len(snap.Items))
	})
	o.record(EventCreated, snap.FromStoreID, audit.ActionBorrowCreated, &snap, snap.RequestedBy, map[string]any{
		"fromStoreId": snap.FromStoreID,
		"toStoreId":   snap.ToStoreID,
		"itemCount":   len(snap.Items),
	})
	return b, nil
}

func (o *Orchestrator) Approve(ctx context.Context, in approval.ApproveInput) (*borrow.Borrow, error) {
	b, err := o.approvals.Approve(ctx, in)
	if err != nil {
		return nil, err
	}
	o.log.Infof("borrow %s approved by %s", b.ID, in.ActorID)

	snap := *b
	o.notify(EventApproved, &snap, snap.FromStoreID, in.ActorID, func(ctx context.Context) (string, string) {
		return "Borrow request approved",
			fmt.Sprintf("%s approved your borrow request", o.storeLabel(ctx, snap.ToStoreID))
	})
	o.record(EventApproved, snap.ToStoreID, audit.ActionBorrowApproved, &snap, in.ActorID, map[string]any{
		"status": snap.Status,
	})
	return b, nil
}

func (o *Orchestrator) Reject(ctx context.Context, in approval.RejectInput) (*borrow.Borrow, error) {
	b, err := o.approvals.Reject(ctx, in)
	if err != nil {
		return nil, err
	}
	o.log.Infof("borrow %s rejected by %s", b.ID, in.ActorID)

	snap := *b
	reason := ""
	if snap.RejectionReason != nil {
		reason = *snap.RejectionReason
	}
	o.notify(EventRejected, &snap, snap.FromStoreID, in.ActorID, func(ctx context.Context) (string, string) {
		body := fmt.Sprintf("%s rejected your borrow request", o.storeLabel(ctx, snap.ToStoreID))
		if reason != "" {
			body += ": " + reason
		}
		return "Borrow request rejected", body
	})
	o.record(EventRejected, snap.ToStoreID, audit.ActionBorrowRejected, &snap, in.ActorID, map[string]any{
		"status": snap.Status,
		"reason": reason,
	})
	return b, nil
}

// ConfirmPos fires the completion fan-out only from the call whose write completed the borrow.
func (o *Orchestrator) ConfirmPos(ctx context.Context, in confirmation.ConfirmInput) (*borrow.Borrow, error) {
	res, err := o.confirmations.Confirm(ctx, in)
	if err != nil {
		return nil, err
	}
	snap := *res.Borrow
	side := borrow.Side(in.Side)

	if !res.Completed {
		o.log.Infof("borrow %s %s pos confirmed by %s", snap.ID, side, in.ActorID)
		store := snap.StoreOf(side)
		o.notify(EventPosConfirmed, &snap, store, in.ActorID, func(context.Context) (string, string) {
			return "POS adjustment recorded",
				fmt.Sprintf("%s side POS stock adjustment confirmed; waiting for the other store", side)
		})
		o.record(EventPosConfirmed, store, audit.ActionBorrowPosConfirmed, &snap, in.ActorID, map[string]any{
			"side":   string(side),
			"status": snap.Status,
		})
		return res.Borrow, nil
	}

	o.log.Infof("borrow %s completed by %s confirmation from %s", snap.ID, side, in.ActorID)
	for _, store := range []string{snap.FromStoreID, snap.ToStoreID} {
		o.notify(EventCompleted, &snap, store, "", func(context.Context) (string, string) {
			return "Borrow completed", "Both stores have adjusted their POS stock for this borrow"
		})
	}
	o.record(EventCompleted, snap.StoreOf(side), audit.ActionBorrowCompleted, &snap, in.ActorID, map[string]any{
		"side":        string(side),
		"completedAt": snap.CompletedAt,
	})
	return res.Borrow, nil
}

// UploadPhoto is audited only; no store is notified.
func (o *Orchestrator) UploadPhoto(ctx context.Context, in photo.UploadInput) (*borrow.Borrow, error) {
	b, err := o.photos.Upload(ctx, in)
	if err != nil {
		return nil, err
	}
	snap := *b
	side := borrow.Side(in.Side)
	o.record(EventPhoto, snap.StoreOf(side), audit.ActionBorrowPhotoUploaded, &snap, in.ActorID, map[string]any{
		"side":     string(side),
		"photoUrl": strings.TrimSpace(in.PhotoURL),
	})
	return b, nil
}

func (o *Orchestrator) List(ctx context.Context, f borrow.ListFilter) ([]borrow.Borrow, error) {
	return o.borrows.List(ctx, f)
}

func (o *Orchestrator) notify(event string, b *borrow.Borrow, storeID, excludeActorID string, message func(ctx context.Context) (title, body string)) {
	o.dispatch.Submit(Task{
		Name: fmt.Sprintf("notify %s %s -> %s", event, b.ID, storeID),
		Run: func(ctx context.Context) error {
			title, body := message(ctx)
			data := map[string]string{"event": event, "borrowId": b.ID, "status": string(b.Status)}
			return o.notifier.NotifyStore(ctx, storeID, title, body, data, excludeActorID)
		},
	})
}

func (o *Orchestrator) record(event, storeID string, action audit.ActionType, b *borrow.Borrow, actorID string, payload map[string]any) {
	o.dispatch.Submit(Task{
		Name: fmt.Sprintf("audit %s %s", event, b.ID),
		Run: func(ctx context.Context) error {
			return o.audit.Record(ctx, storeID, action, EntityRef(b.ID), payload, actorID)
		},
	})
}

func EntityRef(borrowID string) string { return "borrow:" + borrowID }

// storeLabel prefers the display name and falls back to the id.
func (o *Orchestrator) storeLabel(ctx context.Context, storeID string) string {
	name, err := o.directory.StoreName(ctx, storeID)
	if err != nil {
		o.log.Errorf("resolve store name %s: %v", storeID, err)
	}
	if name == "" {
		return storeID
	}
	return name
}
