package model

import (
	"time"

	"github.com/google/uuid"
)

type OutboxMessage struct {
	ID        uuid.UUID  `db:"id"`
	Topic     string     `db:"topic"`
	Payload   []byte     `db:"payload"`
	CreatedAt time.Time  `db:"created_at"`
	Sent      bool       `db:"sent"`
	SentAt    *time.Time `db:"sent_at"`
}

// PingRecordedEvent is the payload published to the pings.recorded topic
// after the manual-ping workflow commits.
type PingRecordedEvent struct {
	PingID    int64     `json:"pid"`
	WebsiteID int64     `json:"wid"`
	UserID    int64     `json:"uid"`
	TxHash    string    `json:"tx_hash"`
	IsUp      bool      `json:"is_up"`
	Region    string    `json:"region"`
	FeePaid   float64   `json:"fee_paid"`
	CreatedAt time.Time `json:"created_at"`
}
