package mysql

import (
	"context"
	"encoding/json"
	"fmt"

	"storeops-borrow/internal/domain/audit"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

// Record appends one audit fact; payload is stored as JSON.
func (r *AuditRepository) Record(ctx context.Context, storeID string, action audit.ActionType, entityRef string, payload map[string]any, actorID string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	return r.db.WithContext(ctx).Create(&audit.Entry{
		StoreID:    storeID,
		ActionType: action,
		EntityRef:  entityRef,
		Payload:    string(raw),
		ActorID:    actorID,
	}).Error
}
