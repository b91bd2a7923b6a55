package company

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryAction identifies the kind of change recorded in the audit trail
type HistoryAction string

const (
	HistoryActionCreated HistoryAction = "created"
	HistoryActionUpdated HistoryAction = "updated"
	HistoryActionDeleted HistoryAction = "deleted"
	HistoryActionCascade HistoryAction = "cascade"
)

// HistoryEntry is one audit record for a company mutation
type HistoryEntry struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID     `bson:"company_id" json:"company_id"`
	Action    HistoryAction          `bson:"action" json:"action"`
	Changes   map[string]interface{} `bson:"changes,omitempty" json:"changes,omitempty"`
	User      string                 `bson:"user,omitempty" json:"user,omitempty"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
}

// HistoryRepository persists the company audit trail
type HistoryRepository interface {
	Record(ctx context.Context, entry *HistoryEntry) error
	FindByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]HistoryEntry, error)
}
