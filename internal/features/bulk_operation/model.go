package bulk_operation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BulkOperationStatus string

const (
	BulkStatusPending   BulkOperationStatus = "pending"
	BulkStatusRunning   BulkOperationStatus = "running"
	BulkStatusCompleted BulkOperationStatus = "completed"
	BulkStatusFailed    BulkOperationStatus = "failed"
)

type BulkOperationType string

const (
	BulkTypeUpdate  BulkOperationType = "update"
	BulkTypeDelete  BulkOperationType = "delete"
	BulkTypeArchive BulkOperationType = "archive"
	BulkTypeAssign  BulkOperationType = "assign"
	BulkTypeExport  BulkOperationType = "export"
)

// BulkOperation is one batched mutation across a set of record ids. Individual
// record failures accumulate in Errors while the operation still completes;
// Failed is reserved for a batch that could not start at all.
type BulkOperation struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Type        BulkOperationType   `json:"type" bson:"type"`
	Module      string              `json:"module" bson:"module"`
	RecordIDs   []string            `json:"record_ids" bson:"record_ids"`
	Payload     map[string]any      `json:"payload,omitempty" bson:"payload,omitempty"`
	Status      BulkOperationStatus `json:"status" bson:"status"`
	Progress    int                 `json:"progress" bson:"progress"` // 0-100
	Errors      []BulkError         `json:"errors,omitempty" bson:"errors,omitempty"`
	CreatedBy   string              `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// BulkError records one record's failure inside a batch
type BulkError struct {
	RecordID string `json:"record_id" bson:"record_id"`
	Error    string `json:"error" bson:"error"`
}

// BulkReport is the aggregate outcome of a batch: every id accounted for
// exactly once, failures carried as data rather than thrown.
type BulkReport struct {
	Success int         `json:"success"`
	Failed  int         `json:"failed"`
	Errors  []BulkError `json:"errors,omitempty"`
}
