package mysql

import (
	"context"

	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinBorrowTx(ctx context.Context, borrowID string, fn func(r uow.Repos, b *borrow.Borrow) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{Borrows: &BorrowRepository{db: tx}}
		b, err := r.Borrows.GetByID(ctx, borrowID)
		if err != nil {
			return err
		}
		return fn(r, b)
	})
}
