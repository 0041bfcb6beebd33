package ws

import (
	"time"
)

type EventType string

const (
	EventPresence EventType = "presence.event"
	EventAlert    EventType = "alert.raised"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// AlertData is the payload of EventAlert.
type AlertData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
