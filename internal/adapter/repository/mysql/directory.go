package mysql

import (
	"context"

	"gorm.io/gorm"
)

// DirectoryRepository reads display names from the stores and users tables owned by the
// surrounding dashboard. Unknown ids resolve to "".
type DirectoryRepository struct{ db *gorm.DB }

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository { return &DirectoryRepository{db: db} }

func (r *DirectoryRepository) StoreName(ctx context.Context, storeID string) (string, error) {
	return r.lookup(ctx, "stores", "name", storeID)
}

func (r *DirectoryRepository) ActorName(ctx context.Context, actorID string) (string, error) {
	return r.lookup(ctx, "users", "name", actorID)
}

func (r *DirectoryRepository) lookup(ctx context.Context, table, column, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	var names []string
	err := r.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		Limit(1).
		Pluck(column, &names).Error
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}
