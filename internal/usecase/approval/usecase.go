package approval

import (
	"context"
	"errors"
	"strings"
	"time"

	"storeops-borrow/internal/domain/borrow"
)

type Usecase struct {
	repo borrow.Repository
	now  func() time.Time
}

func NewUsecase(r borrow.Repository) *Usecase {
	return &Usecase{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// Approve moves a pending borrow to approved. The write itself is guarded on
// status = pending_approval, so of two racing approve/reject calls only one lands.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*borrow.Borrow, error) {
	if err := requireIDs(in.BorrowID, in.ActorID); err != nil {
		return nil, err
	}
	err := u.repo.Approve(ctx, in.BorrowID, borrow.Approval{
		ActorID:        in.ActorID,
		At:             u.now(),
		LenderPhotoURL: nonEmpty(in.LenderPhotoURL),
	})
	if err != nil {
		return nil, u.classify(ctx, in.BorrowID, err)
	}
	return u.repo.GetByID(ctx, in.BorrowID)
}

func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*borrow.Borrow, error) {
	if err := requireIDs(in.BorrowID, in.ActorID); err != nil {
		return nil, err
	}
	err := u.repo.Reject(ctx, in.BorrowID, borrow.Rejection{
		ActorID: in.ActorID,
		At:      u.now(),
		Reason:  nonEmpty(in.Reason),
	})
	if err != nil {
		return nil, u.classify(ctx, in.BorrowID, err)
	}
	return u.repo.GetByID(ctx, in.BorrowID)
}

// classify turns a missed guard into NotFound or StateConflict by looking at the row.
func (u *Usecase) classify(ctx context.Context, borrowID string, err error) error {
	if !errors.Is(err, borrow.ErrPreconditionFailed) {
		return err
	}
	if _, gerr := u.repo.GetByID(ctx, borrowID); gerr != nil {
		return gerr
	}
	return borrow.ErrNotPending
}

func requireIDs(borrowID, actorID string) error {
	if strings.TrimSpace(borrowID) == "" {
		return borrow.NewInvalidArgumentError("borrow id is required")
	}
	if strings.TrimSpace(actorID) == "" {
		return borrow.NewInvalidArgumentError("actor is required")
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
