package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	borrowDomain "storeops-borrow/internal/domain/borrow"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type BorrowRepository struct{ db *gorm.DB }

func NewBorrowRepository(db *gorm.DB) *BorrowRepository { return &BorrowRepository{db: db} }

func (r *BorrowRepository) Create(ctx context.Context, b *borrowDomain.Borrow) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BorrowRepository) CreateItems(ctx context.Context, items []borrowDomain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *BorrowRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("borrow_id = ?", id).Delete(&borrowDomain.Item{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&borrowDomain.Borrow{}).Error
	})
}

func (r *BorrowRepository) GetByID(ctx context.Context, id string) (*borrowDomain.Borrow, error) {
	var out borrowDomain.Borrow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, borrowDomain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get borrow %s: %w", id, err)
	}
	if err := r.db.WithContext(ctx).
		Where("borrow_id = ?", id).
		Order("id ASC").
		Find(&out.Items).Error; err != nil {
		return nil, fmt.Errorf("get borrow items %s: %w", id, err)
	}
	return &out, nil
}

func (r *BorrowRepository) List(ctx context.Context, f borrowDomain.ListFilter) ([]borrowDomain.Borrow, error) {
	q := r.db.WithContext(ctx).Model(&borrowDomain.Borrow{})
	if f.StoreID != "" {
		q = q.Where("from_store_id = ? OR to_store_id = ?", f.StoreID, f.StoreID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	limit, offset := listWindow(f.Limit, f.Offset)

	var out []borrowDomain.Borrow
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list borrows: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, b := range out {
		ids = append(ids, b.ID)
	}
	var items []borrowDomain.Item
	if err := r.db.WithContext(ctx).Where("borrow_id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list borrow items: %w", err)
	}
	byBorrow := make(map[string][]borrowDomain.Item, len(out))
	for _, it := range items {
		byBorrow[it.BorrowID] = append(byBorrow[it.BorrowID], it)
	}
	for i := range out {
		out[i].Items = byBorrow[out[i].ID]
	}
	return out, nil
}

// Approve only succeeds while the row is still pending approval.
func (r *BorrowRepository) Approve(ctx context.Context, id string, a borrowDomain.Approval) error {
	updates := map[string]any{
		"status":      borrowDomain.StatusApproved,
		"approved_by": a.ActorID,
		"approved_at": a.At,
		"updated_at":  a.At,
	}
	if a.LenderPhotoURL != nil {
		updates["lender_photo_url"] = *a.LenderPhotoURL
	}
	return r.updateWhere(ctx, updates, "id = ? AND status = ?", id, borrowDomain.StatusPendingApproval)
}

func (r *BorrowRepository) Reject(ctx context.Context, id string, rj borrowDomain.Rejection) error {
	updates := map[string]any{
		"status":      borrowDomain.StatusRejected,
		"rejected_by": rj.ActorID,
		"rejected_at": rj.At,
		"updated_at":  rj.At,
	}
	if rj.Reason != nil {
		updates["rejection_reason"] = *rj.Reason
	}
	return r.updateWhere(ctx, updates, "id = ? AND status = ?", id, borrowDomain.StatusPendingApproval)
}

// ApplyConfirmation writes one side's flag guarded on the status and both flags as they were
// when c was planned; a concurrent confirmation of the other side makes the guard miss.
func (r *BorrowRepository) ApplyConfirmation(ctx context.Context, id string, c borrowDomain.Confirmation) error {
	cols := confirmationColumns(c.Side)
	other := confirmationColumns(c.Side.Other())

	updates := map[string]any{
		cols.flag:    true,
		cols.by:      c.ActorID,
		cols.at:      c.At,
		"status":     c.To,
		"updated_at": c.At,
	}
	if c.Completes() {
		updates["completed_at"] = c.At
	}
	return r.updateWhere(ctx, updates,
		"id = ? AND status = ? AND "+cols.flag+" = ? AND "+other.flag+" = ?",
		id, c.From, false, c.OtherConfirmed)
}

func (r *BorrowRepository) SetPhoto(ctx context.Context, id string, side borrowDomain.Side, url string, at time.Time) error {
	col := "lender_photo_url"
	if side == borrowDomain.SideBorrower {
		col = "borrower_photo_url"
	}
	return r.updateWhere(ctx, map[string]any{col: url, "updated_at": at},
		"id = ? AND status <> ?", id, borrowDomain.StatusRejected)
}

func (r *BorrowRepository) updateWhere(ctx context.Context, updates map[string]any, query string, args ...any) error {
	res := r.db.WithContext(ctx).
		Model(&borrowDomain.Borrow{}).
		Where(query, args...).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return borrowDomain.ErrPreconditionFailed
	}
	return nil
}

type sideColumns struct{ flag, by, at string }

func confirmationColumns(side borrowDomain.Side) sideColumns {
	if side == borrowDomain.SideBorrower {
		return sideColumns{"borrower_pos_confirmed", "borrower_pos_confirmed_by", "borrower_pos_confirmed_at"}
	}
	return sideColumns{"lender_pos_confirmed", "lender_pos_confirmed_by", "lender_pos_confirmed_at"}
}

// listWindow defaults a missing limit and clamps an oversized one to the max page.
func listWindow(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
