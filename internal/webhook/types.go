package webhook

import (
	"time"
)

type Config struct {
	URL         string
	Secret      string
	MaxAttempts int
	Timeout     time.Duration
	QueueSize   int
}

func DefaultConfig(url, secret string) Config {
	return Config{
		URL:         url,
		Secret:      secret,
		MaxAttempts: 3,
		Timeout:     5 * time.Second,
		QueueSize:   64,
	}
}

// EventPayload is the JSON body of every delivery.
type EventPayload struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventPresence = "presence.event"
	EventAlert    = "alert.raised"
)

type job struct {
	eventType string
	payload   []byte
	attempts  int
}
