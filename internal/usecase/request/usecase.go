package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/pkg/id"
)

type Usecase struct {
	repo borrow.Repository
	now  func() time.Time
}

func NewUsecase(r borrow.Repository) *Usecase {
	return &Usecase{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// Create persists a pending borrow and then its items. The two writes are not one tx;
// if the items fail, the borrow row is deleted again before the error is returned.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*borrow.Borrow, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	now := u.now()
	b := &borrow.Borrow{
		ID:               id.NewID32(),
		FromStoreID:      strings.TrimSpace(in.FromStoreID),
		ToStoreID:        strings.TrimSpace(in.ToStoreID),
		Status:           borrow.StatusPendingApproval,
		RequestedBy:      in.ActorID,
		Notes:            in.Notes,
		BorrowerPhotoURL: in.BorrowerPhotoURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := u.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create borrow: %w", err)
	}

	items := make([]borrow.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, borrow.Item{
			BorrowID:    b.ID,
			ProductName: strings.TrimSpace(it.ProductName),
			Category:    it.Category,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	if err := u.repo.CreateItems(ctx, items); err != nil {
		// the caller's ctx may already be done; cleanup must still run
		if derr := u.repo.Delete(context.WithoutCancel(ctx), b.ID); derr != nil {
			return nil, errors.Join(fmt.Errorf("create borrow items: %w", err), fmt.Errorf("compensating delete %s: %w", b.ID, derr))
		}
		return nil, fmt.Errorf("create borrow items: %w", err)
	}

	b.Items = items
	return b, nil
}

func validate(in CreateInput) error {
	from, to := strings.TrimSpace(in.FromStoreID), strings.TrimSpace(in.ToStoreID)
	switch {
	case from == "" || to == "":
		return borrow.NewInvalidArgumentError("fromStoreId and toStoreId are required")
	case from == to:
		return borrow.NewInvalidArgumentError("cannot borrow from the same store")
	case strings.TrimSpace(in.ActorID) == "":
		return borrow.NewInvalidArgumentError("actor is required")
	case len(in.Items) == 0:
		return borrow.NewInvalidArgumentError("at least one item is required")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return borrow.NewInvalidArgumentError(fmt.Sprintf("items[%d]: productName is required", i))
		}
		if it.Quantity <= 0 {
			return borrow.NewInvalidArgumentError(fmt.Sprintf("items[%d]: quantity must be greater than 0", i))
		}
	}
	return nil
}
