package sync

import (
	"encoding/json"
	"time"

	"board-sync/internal/features/sheets"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderField holds a record's 0-based position among the retained rows of its table.
const OrderField = "order"

// Record is one document to be written to a synced collection.
type Record map[string]interface{}

// TableSpec is one synchronization unit: where to read, where to write, how to map.
type TableSpec struct {
	Name       string
	Range      sheets.RangeRef
	Collection string
	Mapping    Mapping
}

type SyncStatus string

const (
	StatusSuccess    SyncStatus = "success"
	StatusFailure    SyncStatus = "failure"
	StatusInProgress SyncStatus = "in_progress"
)

// SyncResult aggregates per-table counts. Counts is keyed by table name.
type SyncResult struct {
	Status  SyncStatus
	Counts  map[string]int
	Message string
}

// MarshalJSON renders {"status":"success","noticesCount":2,...}.
func (r SyncResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Counts)+2)
	out["status"] = r.Status
	for name, n := range r.Counts {
		out[name+"Count"] = n
	}
	if r.Message != "" {
		out["message"] = r.Message
	}
	return json.Marshal(out)
}

// SyncRun is the persisted log of one sync run.
type SyncRun struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Trigger   string             `json:"trigger" bson:"trigger"` // "http", "cron", "cli"
	StartTime time.Time          `json:"start_time" bson:"start_time"`
	EndTime   time.Time          `json:"end_time" bson:"end_time"`
	Status    SyncStatus         `json:"status" bson:"status"`
	Counts    map[string]int     `json:"counts" bson:"counts"`
	Error     string             `json:"error,omitempty" bson:"error,omitempty"`
	ErrorKind string             `json:"error_kind,omitempty" bson:"error_kind,omitempty"`
}
