package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"carteira/internal/core"
)

// RecordChangedMessage announces a successful store mutation. It carries
// identity only; consumers re-read the record if they need its content.
// Years lists the calendar years of the record's date before and after the
// change, and is empty for undated records.
type RecordChangedMessage struct {
	EventID   uuid.UUID    `json:"event_id"`
	Op        string       `json:"op"`
	Entity    string       `json:"entity"`
	OwnerID   core.OwnerID `json:"owner_id"`
	RecordID  int64        `json:"record_id,omitempty"`
	Years     []int        `json:"years,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewRecordChangedMessage stamps a fresh event id and the current time.
func NewRecordChangedMessage(op, entity string, owner core.OwnerID, id int64) *RecordChangedMessage {
	return &RecordChangedMessage{
		EventID:   uuid.New(),
		Op:        op,
		Entity:    entity,
		OwnerID:   owner,
		RecordID:  id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes a delivery body.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
