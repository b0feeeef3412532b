package audit

import "time"

type ActionType string

const (
	ActionBorrowCreated       ActionType = "borrow_created"
	ActionBorrowApproved      ActionType = "borrow_approved"
	ActionBorrowRejected      ActionType = "borrow_rejected"
	ActionBorrowPosConfirmed  ActionType = "borrow_pos_confirmed"
	ActionBorrowCompleted     ActionType = "borrow_completed"
	ActionBorrowPhotoUploaded ActionType = "borrow_photo_uploaded"
)

// Table: borrow_audit_logs. Rows are append-only.
type Entry struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoreID    string     `gorm:"column:store_id;size:64;not null;index" json:"store_id"`
	ActionType ActionType `gorm:"column:action_type;size:64;not null;index" json:"action_type"`
	EntityRef  string     `gorm:"column:entity_ref;size:128;not null;index" json:"entity_ref"`
	Payload    string     `gorm:"column:payload;type:text" json:"payload"`
	ActorID    string     `gorm:"column:actor_id;size:64;not null" json:"actor_id"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "borrow_audit_logs" }
