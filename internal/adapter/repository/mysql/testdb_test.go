package mysql

import (
	"testing"
	"time"

	"storeops-borrow/internal/domain/audit"
	"storeops-borrow/internal/domain/borrow"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// tables owned by the surrounding dashboard, migrated here only so lookups have rows to read
type storeRow struct {
	ID   string `gorm:"primaryKey;column:id"`
	Name string `gorm:"column:name"`
}

func (storeRow) TableName() string { return "stores" }

type userRow struct {
	ID   string `gorm:"primaryKey;column:id"`
	Name string `gorm:"column:name"`
}

func (userRow) TableName() string { return "users" }

// openTestDB creates an in-memory sqlite DB on a single connection so every session sees the same data.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&borrow.Borrow{}, &borrow.Item{}, &audit.Entry{}, &storeRow{}, &userRow{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func strp(s string) *string { return &s }

func makeBorrow(id, from, to string) *borrow.Borrow {
	return &borrow.Borrow{
		ID:          id,
		FromStoreID: from,
		ToStoreID:   to,
		Status:      borrow.StatusPendingApproval,
		RequestedBy: "U0",
	}
}

func makeItems(borrowID string) []borrow.Item {
	return []borrow.Item{
		{BorrowID: borrowID, ProductName: "Beer 620ml", Quantity: 24, Unit: strp("bottle")},
		{BorrowID: borrowID, ProductName: "Ice", Quantity: 2, Category: strp("frozen")},
	}
}

// seedBorrow inserts a borrow with items in the given status.
func seedBorrow(t *testing.T, db *gorm.DB, id string, mutate func(b *borrow.Borrow)) *borrow.Borrow {
	t.Helper()
	b := makeBorrow(id, "S1", "S2")
	b.CreatedAt = time.Now().UTC()
	if mutate != nil {
		mutate(b)
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed borrow: %v", err)
	}
	items := makeItems(id)
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("seed items: %v", err)
	}
	return b
}
