package model

import (
	"time"

	"github.com/google/uuid"
)

// Report is a complaint about a recorded ping (wrong verdict, abuse).
// Reports live in Elasticsearch so moderators can full-text search reasons.
type Report struct {
	ID        string    `json:"rid"`
	PingID    int64     `json:"pid"`
	UserID    int64     `json:"uid"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReport(pingID, userID int64, reason string) *Report {
	return &Report{
		ID:        uuid.New().String(),
		PingID:    pingID,
		UserID:    userID,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

type ReportCreateRequest struct {
	PingID int64  `json:"pid" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type ReportSearchResult struct {
	Report Report  `json:"report"`
	Score  float64 `json:"score"`
}
