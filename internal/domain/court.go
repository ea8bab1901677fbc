package domain

import (
	"strings"
	"time"
)

type Court struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Address        *string   `json:"address"`
	City           *string   `json:"city"`
	District       *string   `json:"district"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	InstagramURL   *string   `json:"instagram_url"`
	TikTokURL      *string   `json:"tiktok_url"`
	ImageURLs      []string  `json:"image_urls"`       // replaced as a whole, never merged
	AdminCreatedBy *string   `json:"admin_created_by"` // admin who last wrote the record
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CourtFields is the validated, writable part of a court.
type CourtFields struct {
	Name         string
	Address      *string
	City         *string
	District     *string
	Latitude     *float64
	Longitude    *float64
	InstagramURL *string
	TikTokURL    *string
}

// CourtUpdate describes one write against an existing court.
// Nil Fields leaves the scalar columns alone; nil ImageURLs leaves the image list alone.
type CourtUpdate struct {
	Fields          *CourtFields
	ImageURLs       []string
	AdminCreatedBy  string
	ExpectedVersion *int64
}

type CourtSummary struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	City     *string `json:"city,omitempty"`
	District *string `json:"district,omitempty"`
}

// Label renders "name — city — district", skipping empty parts.
func (c CourtSummary) Label() string {
	var parts []string
	for _, p := range []*string{c.City, c.District} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return c.Name
	}
	return c.Name + " — " + strings.Join(parts, " — ")
}
