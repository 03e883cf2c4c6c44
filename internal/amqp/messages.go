package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mood event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// MoodEventMessage announces a change to one mood entry. It carries only the
// ID and version; consumers load the entry itself from the database.
type MoodEventMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMoodEventMessage(id int64, action string, version int64) *MoodEventMessage {
	return &MoodEventMessage{
		ID:        id,
		Action:    action,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *MoodEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MoodEventMessageFromJSON decodes a message and rejects unknown actions.
func MoodEventMessageFromJSON(data []byte) (*MoodEventMessage, error) {
	var msg MoodEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown mood event action %q", msg.Action)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid mood entry id %d", msg.ID)
	}
	return &msg, nil
}
