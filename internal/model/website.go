package model

import (
	"time"
)

const (
	WebsiteStatusUnknown = "unknown"
	WebsiteStatusUp      = "up"
	WebsiteStatusDown    = "down"
)

const DefaultPageSize = 20

// Website is a monitored resource owned by a user.
type Website struct {
	ID            int64     `db:"wid"             json:"wid"`
	OwnerID       int64     `db:"uid"             json:"uid"`
	URL           string    `db:"url"             json:"url"`
	Category      string    `db:"category"        json:"category"`
	Status        string    `db:"status"          json:"status"`
	IsPublic      bool      `db:"is_public"       json:"is_public"`
	AlertsEnabled bool      `db:"alerts_enabled"  json:"alerts_enabled"`
	CreatedAt     time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"      json:"updated_at"`
}

type WebsiteIDPathParam struct {
	ID int64 `uri:"website_id" binding:"required" example:"7"`
}

type WebsiteCreateRequest struct {
	URL           string `json:"url" binding:"required,url"`
	Category      string `json:"category"`
	IsPublic      bool   `json:"is_public"`
	AlertsEnabled bool   `json:"alerts_enabled"`
}

// WebsiteUpdateRequest carries the mutable website fields. Nil means "leave as is".
type WebsiteUpdateRequest struct {
	URL           *string `json:"url"`
	Category      *string `json:"category"`
	Status        *string `json:"status"`
	IsPublic      *bool   `json:"is_public"`
	AlertsEnabled *bool   `json:"alerts_enabled"`
}

type WebsiteQueryParams struct {
	OwnerID  int64  `form:"uid"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

type WebsiteListResponse struct {
	Websites   []Website `json:"websites"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int       `json:"total_count"`
}
