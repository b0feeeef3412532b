package borrowmock

import (
	"context"
	"errors"
	"time"

	domain "storeops-borrow/internal/domain/borrow"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("borrowmock: method not implemented")

// Repo is a function-backed mock that satisfies borrow.Repository.
// Writes default to success; reads default to errUnimplemented.
type Repo struct {
	CreateFn            func(ctx context.Context, b *domain.Borrow) error
	CreateItemsFn       func(ctx context.Context, items []domain.Item) error
	DeleteFn            func(ctx context.Context, id string) error
	GetByIDFn           func(ctx context.Context, id string) (*domain.Borrow, error)
	ListFn              func(ctx context.Context, f domain.ListFilter) ([]domain.Borrow, error)
	ApproveFn           func(ctx context.Context, id string, a domain.Approval) error
	RejectFn            func(ctx context.Context, id string, r domain.Rejection) error
	ApplyConfirmationFn func(ctx context.Context, id string, c domain.Confirmation) error
	SetPhotoFn          func(ctx context.Context, id string, side domain.Side, url string, at time.Time) error
}

func (m *Repo) Create(ctx context.Context, b *domain.Borrow) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) CreateItems(ctx context.Context, items []domain.Item) error {
	if m.CreateItemsFn != nil {
		return m.CreateItemsFn(ctx, items)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Borrow, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Borrow, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, errUnimplemented
}

func (m *Repo) Approve(ctx context.Context, id string, a domain.Approval) error {
	if m.ApproveFn != nil {
		return m.ApproveFn(ctx, id, a)
	}
	return nil
}

func (m *Repo) Reject(ctx context.Context, id string, r domain.Rejection) error {
	if m.RejectFn != nil {
		return m.RejectFn(ctx, id, r)
	}
	return nil
}

func (m *Repo) ApplyConfirmation(ctx context.Context, id string, c domain.Confirmation) error {
	if m.ApplyConfirmationFn != nil {
		return m.ApplyConfirmationFn(ctx, id, c)
	}
	return nil
}

func (m *Repo) SetPhoto(ctx context.Context, id string, side domain.Side, url string, at time.Time) error {
	if m.SetPhotoFn != nil {
		return m.SetPhotoFn(ctx, id, side, url, at)
	}
	return nil
}
