package photo

import (
	"context"
	"errors"
	"strings"
	"time"

	"storeops-borrow/internal/domain/borrow"
)

type UploadInput struct {
	BorrowID string
	Side     string
	PhotoURL string
	ActorID  string
}

type Usecase struct {
	repo borrow.Repository
	now  func() time.Time
}

func NewUsecase(r borrow.Repository) *Usecase {
	return &Usecase{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// Upload attaches an already-stored photo URL to one side of the borrow.
// Photos may be replaced at any status except rejected.
func (u *Usecase) Upload(ctx context.Context, in UploadInput) (*borrow.Borrow, error) {
	side, err := borrow.ParseSide(in.Side)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSpace(in.PhotoURL)
	switch {
	case strings.TrimSpace(in.BorrowID) == "":
		return nil, borrow.NewInvalidArgumentError("borrow id is required")
	case url == "":
		return nil, borrow.NewInvalidArgumentError("photoUrl is required")
	case strings.TrimSpace(in.ActorID) == "":
		return nil, borrow.NewInvalidArgumentError("actor is required")
	}

	err = u.repo.SetPhoto(ctx, in.BorrowID, side, url, u.now())
	if err != nil && !errors.Is(err, borrow.ErrPreconditionFailed) {
		return nil, err
	}

	b, gerr := u.repo.GetByID(ctx, in.BorrowID)
	if gerr != nil {
		return nil, gerr
	}
	// MySQL also reports 0 affected rows when the same URL is written twice
	if err != nil && b.Status == borrow.StatusRejected {
		return nil, borrow.ErrRejected
	}
	return b, nil
}
