package model

import (
	"time"

	"github.com/google/uuid"
)

// APIKey lets a validator agent submit automated pings without a JWT.
// Only the bcrypt hash of the key is stored.
type APIKey struct {
	ID        uuid.UUID  `db:"id"         json:"id"`
	UserID    int64      `db:"uid"        json:"uid"`
	Name      string     `db:"name"       json:"name"`
	KeyHash   []byte     `db:"key_hash"   json:"-"`
	Revoked   bool       `db:"revoked"    json:"revoked"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type APIKeyCreateRequest struct {
	Name string `json:"name" binding:"required"`
	TTL  string `json:"ttl"`
}

type APIKeyCreateResponse struct {
	Key string `json:"key"` // shown once, never stored in the clear
}
