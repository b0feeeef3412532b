package uowmock

import (
	"context"
	"errors"

	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinBorrowTxFn func(ctx context.Context, borrowID string, fn func(r uow.Repos, b *borrow.Borrow) error) error
}

// Passthrough builds a UoW that runs callbacks directly against repos, loading the
// borrow through repos.Borrows.GetByID for WithinBorrowTx.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinBorrowTxFn: func(ctx context.Context, borrowID string, fn func(r uow.Repos, b *borrow.Borrow) error) error {
			b, err := repos.Borrows.GetByID(ctx, borrowID)
			if err != nil {
				return err
			}
			return fn(repos, b)
		},
	}
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinBorrowTx(fn func(context.Context, string, func(uow.Repos, *borrow.Borrow) error) error) *UoW {
	m.WithinBorrowTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinBorrowTx(ctx context.Context, borrowID string, fn func(r uow.Repos, b *borrow.Borrow) error) error {
	if m.WithinBorrowTxFn != nil {
		return m.WithinBorrowTxFn(ctx, borrowID, fn)
	}
	return errUnimplemented
}
