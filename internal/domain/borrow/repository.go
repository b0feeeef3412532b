package borrow

import (
	"context"
	"time"
)

type Approval struct {
	ActorID        string
	At             time.Time
	LenderPhotoURL *string
}

type Rejection struct {
	ActorID string
	At      time.Time
	Reason  *string
}

type Repository interface {
	Create(ctx context.Context, b *Borrow) error
	CreateItems(ctx context.Context, items []Item) error
	// Delete is only used as compensation when item persistence fails right after Create.
	Delete(ctx context.Context, id string) error

	// GetByID loads the borrow with its items; ErrNotFound when missing.
	GetByID(ctx context.Context, id string) (*Borrow, error)
	List(ctx context.Context, f ListFilter) ([]Borrow, error)

	// Conditional writes. Each returns ErrPreconditionFailed when no row matched its guard.
	Approve(ctx context.Context, id string, a Approval) error
	Reject(ctx context.Context, id string, r Rejection) error
	ApplyConfirmation(ctx context.Context, id string, c Confirmation) error
	SetPhoto(ctx context.Context, id string, side Side, url string, at time.Time) error
}
