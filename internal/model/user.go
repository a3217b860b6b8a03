package model

import (
	"time"
)

const (
	RoleOwner     = "owner"
	RoleValidator = "validator"
	RoleVisitor   = "visitor"
)

const (
	UserUIDKey   = "uid"
	UserEmailKey = "email"
	UserNameKey  = "name"
	UserRoleKey  = "role"
)

// User is an account that can own websites, run an agent and pay for pings.
// AgentURL may be empty, in which case the user cannot be a dispatch target.
type User struct {
	ID             int64     `db:"uid"            json:"uid"`
	Name           string    `db:"name"           json:"name"`
	Email          string    `db:"email"          json:"email"`
	HashedPassword []byte    `db:"password"       json:"-"`
	Role           string    `db:"role"           json:"role"`
	WalletAddress  string    `db:"wallet_address" json:"wallet_address"`
	AgentURL       string    `db:"agent_url"      json:"agent_url"`
	CreatedAt      time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"     json:"updated_at"`
}

type UserIDPathParam struct {
	ID int64 `uri:"user_id" binding:"required" example:"31"`
}

// UserUpdateRequest carries the mutable user fields. Nil means "leave as is".
type UserUpdateRequest struct {
	Name          *string `json:"name"`
	WalletAddress *string `json:"wallet_address"`
	AgentURL      *string `json:"agent_url"`
}
