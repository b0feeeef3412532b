package confirmation

import (
	"context"
	"errors"
	"strings"
	"time"

	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/internal/domain/uow"
	"storeops-borrow/pkg/retry"
)

type Usecase struct {
	uow      uow.UnitOfWork
	now      func() time.Time
	retryOpt []retry.Option
}

func NewUsecase(tx uow.UnitOfWork, opts ...retry.Option) *Usecase {
	return &Usecase{
		uow:      tx,
		now:      func() time.Time { return time.Now().UTC() },
		retryOpt: opts,
	}
}

func isConflict(err error) bool { return errors.Is(err, borrow.ErrConcurrencyConflict) }

// Confirm records one side's POS acknowledgement.
//
// Each attempt reads the row, plans the transition from what it saw and writes it with a
// guard on that same observation. If the other side committed in between, the guard misses,
// the attempt reports a concurrency conflict and is retried against the fresh row. Exactly
// one writer can therefore observe the move to completed.
func (u *Usecase) Confirm(ctx context.Context, in ConfirmInput) (*Result, error) {
	side, err := borrow.ParseSide(in.Side)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.BorrowID) == "" {
		return nil, borrow.NewInvalidArgumentError("borrow id is required")
	}
	if strings.TrimSpace(in.ActorID) == "" {
		return nil, borrow.NewInvalidArgumentError("actor is required")
	}

	var res *Result
	attempt := func(ctx context.Context) error {
		res = nil
		return u.uow.WithinBorrowTx(ctx, in.BorrowID, func(r uow.Repos, b *borrow.Borrow) error {
			plan, err := b.PlanConfirmation(side, in.ActorID, u.now())
			if err != nil {
				return err
			}
			if err := r.Borrows.ApplyConfirmation(ctx, b.ID, plan); err != nil {
				if errors.Is(err, borrow.ErrPreconditionFailed) {
					return borrow.ErrConcurrencyConflict
				}
				return err
			}
			fresh, err := r.Borrows.GetByID(ctx, b.ID)
			if err != nil {
				return err
			}
			res = &Result{Borrow: fresh, Completed: plan.Completes()}
			return nil
		})
	}

	opts := append([]retry.Option{retry.On(isConflict)}, u.retryOpt...)
	if err := retry.WithBackoff(ctx, attempt, opts...); err != nil {
		return nil, err
	}
	return res, nil
}
