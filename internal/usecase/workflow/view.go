package workflow

import (
	"context"

	"storeops-borrow/internal/domain/borrow"
)

// BorrowView is a borrow with display names resolved for the detail screen.
type BorrowView struct {
	borrow.Borrow
	FromStoreName              string `json:"fromStoreName"`
	ToStoreName                string `json:"toStoreName"`
	RequestedByName            string `json:"requestedByName"`
	ApprovedByName             string `json:"approvedByName"`
	RejectedByName             string `json:"rejectedByName"`
	BorrowerPosConfirmedByName string `json:"borrowerPosConfirmedByName"`
	LenderPosConfirmedByName   string `json:"lenderPosConfirmedByName"`
}

// Get never fails on a directory lookup; unresolved names stay empty.
func (o *Orchestrator) Get(ctx context.Context, borrowID string) (*BorrowView, error) {
	b, err := o.borrows.GetByID(ctx, borrowID)
	if err != nil {
		return nil, err
	}
	v := &BorrowView{Borrow: *b}
	v.FromStoreName = o.lookup(ctx, o.directory.StoreName, &b.FromStoreID)
	v.ToStoreName = o.lookup(ctx, o.directory.StoreName, &b.ToStoreID)
	v.RequestedByName = o.lookup(ctx, o.directory.ActorName, &b.RequestedBy)
	v.ApprovedByName = o.lookup(ctx, o.directory.ActorName, b.ApprovedBy)
	v.RejectedByName = o.lookup(ctx, o.directory.ActorName, b.RejectedBy)
	v.BorrowerPosConfirmedByName = o.lookup(ctx, o.directory.ActorName, b.BorrowerPosConfirmedBy)
	v.LenderPosConfirmedByName = o.lookup(ctx, o.directory.ActorName, b.LenderPosConfirmedBy)
	return v, nil
}

func (o *Orchestrator) lookup(ctx context.Context, fn func(context.Context, string) (string, error), id *string) string {
	if id == nil || *id == "" {
		return ""
	}
	name, err := fn(ctx, *id)
	if err != nil {
		o.log.Errorf("directory lookup %s: %v", *id, err)
		return ""
	}
	return name
}
