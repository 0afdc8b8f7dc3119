package amqp

import (
	"encoding/json"
	"time"

	"ledgerly/internal/notify"
)

// ReminderMessage is the wire form of a daily reminder.
type ReminderMessage struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	FireAt    time.Time `json:"fire_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReminderMessage(r notify.Reminder) *ReminderMessage {
	return &ReminderMessage{
		Title:     r.Title,
		Body:      r.Body,
		FireAt:    r.FireAt,
		Timestamp: time.Now(),
	}
}

func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
