package email

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	To       []string
	Subject  string
	HtmlBody string
}

// Failure is a dead-letter record of a notification that could not be sent. It is
// never retried automatically.
type Failure struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Source     string             `bson:"source" json:"source"` // outbox collection name
	DocumentID interface{}        `bson:"documentId,omitempty" json:"documentId,omitempty"`
	To         []string           `bson:"to" json:"to"`
	Subject    string             `bson:"subject" json:"subject"`
	ErrorMsg   string             `bson:"errorMessage" json:"errorMessage"`
	FailedAt   time.Time          `bson:"failedAt" json:"failedAt"`
}
