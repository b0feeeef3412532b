package borrow

import (
	"time"
)

type Side string

const (
	SideBorrower Side = "borrower"
	SideLender   Side = "lender"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBorrower, SideLender:
		return Side(s), nil
	}
	return "", NewInvalidArgumentError("side must be borrower or lender")
}

func (s Side) Other() Side {
	if s == SideBorrower {
		return SideLender
	}
	return SideBorrower
}

// Table: borrows. Items live in borrow_items and are loaded separately.
type Borrow struct {
	ID          string `gorm:"column:id;primaryKey;size:32" json:"id"`
	FromStoreID string `gorm:"column:from_store_id;size:64;not null;index:idx_borrows_from_store" json:"fromStoreId"`
	ToStoreID   string `gorm:"column:to_store_id;size:64;not null;index:idx_borrows_to_store" json:"toStoreId"`
	Status      Status `gorm:"column:status;size:32;not null;default:'pending_approval';index" json:"status"`
	RequestedBy string `gorm:"column:requested_by;size:64;not null" json:"requestedBy"`

	Notes            *string `gorm:"column:notes;type:text" json:"notes"`
	BorrowerPhotoURL *string `gorm:"column:borrower_photo_url;type:text" json:"borrowerPhotoUrl"`
	LenderPhotoURL   *string `gorm:"column:lender_photo_url;type:text" json:"lenderPhotoUrl"`

	ApprovedBy *string    `gorm:"column:approved_by;size:64" json:"approvedBy"`
	ApprovedAt *time.Time `gorm:"column:approved_at" json:"approvedAt"`

	RejectedBy      *string    `gorm:"column:rejected_by;size:64" json:"rejectedBy"`
	RejectedAt      *time.Time `gorm:"column:rejected_at" json:"rejectedAt"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text" json:"rejectionReason"`

	BorrowerPosConfirmed   bool       `gorm:"column:borrower_pos_confirmed;not null;default:false" json:"borrowerPosConfirmed"`
	BorrowerPosConfirmedBy *string    `gorm:"column:borrower_pos_confirmed_by;size:64" json:"borrowerPosConfirmedBy"`
	BorrowerPosConfirmedAt *time.Time `gorm:"column:borrower_pos_confirmed_at" json:"borrowerPosConfirmedAt"`
	LenderPosConfirmed     bool       `gorm:"column:lender_pos_confirmed;not null;default:false" json:"lenderPosConfirmed"`
	LenderPosConfirmedBy   *string    `gorm:"column:lender_pos_confirmed_by;size:64" json:"lenderPosConfirmedBy"`
	LenderPosConfirmedAt   *time.Time `gorm:"column:lender_pos_confirmed_at" json:"lenderPosConfirmedAt"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Items []Item `gorm:"-" json:"items"`
}

func (Borrow) TableName() string { return "borrows" }

// Table: borrow_items
type Item struct {
	ID          uint64  `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	BorrowID    string  `gorm:"column:borrow_id;size:32;not null;index" json:"-"`
	ProductName string  `gorm:"column:product_name;size:255;not null" json:"productName"`
	Category    *string `gorm:"column:category;size:128" json:"category"`
	Quantity    int     `gorm:"column:quantity;not null" json:"quantity"`
	Unit        *string `gorm:"column:unit;size:32" json:"unit"`
	Notes       *string `gorm:"column:notes;type:text" json:"notes"`
}

func (Item) TableName() string { return "borrow_items" }

// StoreOf returns the store acting as the given side.
func (b *Borrow) StoreOf(side Side) string {
	if side == SideBorrower {
		return b.FromStoreID
	}
	return b.ToStoreID
}

func (b *Borrow) Confirmed(side Side) bool {
	if side == SideBorrower {
		return b.BorrowerPosConfirmed
	}
	return b.LenderPosConfirmed
}

// ListFilter selects borrows where StoreID is either side.
type ListFilter struct {
	StoreID string
	Status  *Status
	Limit   int
	Offset  int
}
