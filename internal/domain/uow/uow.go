package uow

import (
	"context"

	"storeops-borrow/internal/domain/borrow"
)

type Repos struct {
	Borrows borrow.Repository
}

type UnitOfWork interface {
	// load the borrow inside the tx first, then pass it in
	WithinBorrowTx(ctx context.Context, borrowID string, fn func(r Repos, b *borrow.Borrow) error) error
}
