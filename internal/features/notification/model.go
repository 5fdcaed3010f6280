package notification

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AttendanceMail is a one-shot outbox document. When subject or html are set they are
// sent as-is; otherwise they are formatted from the attendance fields.
type AttendanceMail struct {
	ID          interface{} `bson:"_id"`
	To          string      `bson:"to,omitempty"`
	Subject     string      `bson:"subject,omitempty"`
	Html        string      `bson:"html,omitempty"`
	StudentName string      `bson:"studentName,omitempty"`
	Status      string      `bson:"status,omitempty"`
	Timestamp   Timestamp   `bson:"timestamp,omitempty"`
}

// ChatMessage is a persistent chat entry; the notification path only reads it.
type ChatMessage struct {
	ID        interface{} `bson:"_id"`
	Name      string      `bson:"name,omitempty"`
	Message   string      `bson:"message,omitempty"`
	Timestamp Timestamp   `bson:"timestamp,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// Timestamp accepts the shapes writers put in outbox documents: a BSON date, an epoch
// in milliseconds, or a date string. Anything it cannot read becomes the zero time,
// which the mail formats as the send time.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	ts.Time = time.Time{}
	v := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.DateTime:
		if ms, ok := v.DateTimeOK(); ok {
			ts.Time = time.UnixMilli(ms)
		}
	case bsontype.Timestamp:
		if sec, _, ok := v.TimestampOK(); ok {
			ts.Time = time.Unix(int64(sec), 0)
		}
	case bsontype.Int64:
		if ms, ok := v.Int64OK(); ok {
			ts.Time = time.UnixMilli(ms)
		}
	case bsontype.Int32:
		if ms, ok := v.Int32OK(); ok {
			ts.Time = time.UnixMilli(int64(ms))
		}
	case bsontype.Double:
		if ms, ok := v.DoubleOK(); ok {
			ts.Time = time.UnixMilli(int64(ms))
		}
	case bsontype.String:
		if s, ok := v.StringValueOK(); ok {
			ts.Time = parseTimestamp(strings.TrimSpace(s))
		}
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
