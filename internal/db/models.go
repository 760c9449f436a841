package db

import (
	"time"

	"gorm.io/datatypes"
)

// Influencer mirrors the influencers table. Field names match
// dataset.Influencer so rows copy across by name.
type Influencer struct {
	ID            string `gorm:"primaryKey;size:64"`
	Name          string `gorm:"size:255"`
	Category      string `gorm:"size:64;index"`
	FollowerCount int64
	Platform      string `gorm:"size:64"`

	// Metadata holds free-form platform attributes (handle, profile url...).
	Metadata datatypes.JSONMap `gorm:"type:json"`
}

// Post mirrors the posts table.
type Post struct {
	ID           string `gorm:"primaryKey;size:64"`
	InfluencerID string `gorm:"size:64;index"`
	Platform     string `gorm:"size:64"`
	URL          string
	Caption      string
	Likes        int64
	Comments     int64
	Reach        int64
	PostedAt     time.Time
}

// TrackingEvent mirrors the tracking_events table, one row per
// attributed order.
type TrackingEvent struct {
	ID           string `gorm:"primaryKey;size:64"`
	InfluencerID string `gorm:"size:64;index"`
	Campaign     string `gorm:"size:128;index"`
	Source       string `gorm:"size:64;index"`
	Product      string `gorm:"size:128"`
	Orders       int64
	Revenue      float64
	OccurredAt   time.Time
}

// Payout mirrors the payouts table. Total is stored as total_payout,
// the column name used by the CSV exports.
type Payout struct {
	InfluencerID string `gorm:"size:64;index"`
	Basis        string `gorm:"size:32"`
	Rate         float64
	Orders       int64
	Total        float64 `gorm:"column:total_payout"`
}
