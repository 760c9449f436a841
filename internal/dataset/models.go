package dataset

import "time"

// Dataset names, used in load errors, Tables.Missing and Options.Required.
const (
	Influencers = "influencers"
	Posts       = "posts"
	Tracking    = "tracking"
	Payouts     = "payouts"
)

// Influencer is one row of the influencers dataset. ID is the join key
// for every other dataset.
type Influencer struct {
	ID            string `validate:"required"`
	Name          string
	Category      string
	FollowerCount int64 `validate:"gte=0"`
	Platform      string

	// Metadata carries any platform columns beyond the known ones
	// (handle, profile url, ...). Never used for joins.
	Metadata map[string]any
}

// Post is one piece of published content. Posts carry engagement
// signals only; revenue reaches them through TrackingEvent.Source.
type Post struct {
	ID           string `validate:"required"`
	InfluencerID string `validate:"required"`
	Platform     string
	URL          string
	Caption      string
	Likes        int64 `validate:"gte=0"`
	Comments     int64 `validate:"gte=0"`
	Reach        int64 `validate:"gte=0"`
	PostedAt     time.Time
}

// TrackingEvent is one attributed conversion.
type TrackingEvent struct {
	ID           string `validate:"required"`
	InfluencerID string `validate:"required"`
	Campaign     string
	// Source is the post id the conversion is attributed to, if known.
	Source     string
	Product    string
	Orders     int64   `validate:"gte=0"`
	Revenue    float64 `validate:"gte=0"`
	OccurredAt time.Time
}

// Payout is the total cost of one influencer for the whole analysis
// period. It is not per post and not per event.
type Payout struct {
	InfluencerID string `validate:"required"`
	Basis        string
	Rate         float64 `validate:"gte=0"`
	Orders       int64   `validate:"gte=0"`
	Total        float64 `validate:"gte=0"`
}

// Tables is the loader output: four typed tables plus what was missing.
type Tables struct {
	Influencers []Influencer
	Posts       []Post
	Tracking    []TrackingEvent
	Payouts     []Payout

	// Missing lists optional datasets that could not be found.
	Missing []string
	// DuplicatePayouts counts payout rows folded into an earlier row for
	// the same influencer.
	DuplicatePayouts int
}

// MergePayouts folds duplicate payout rows so that every influencer has
// exactly one total. Totals and orders are summed; the first row's basis
// and rate are kept.
func (t *Tables) MergePayouts() {
	index := make(map[string]int, len(t.Payouts))
	merged := make([]Payout, 0, len(t.Payouts))
	for _, p := range t.Payouts {
		if i, ok := index[p.InfluencerID]; ok {
			merged[i].Total += p.Total
			merged[i].Orders += p.Orders
			t.DuplicatePayouts++
			continue
		}
		index[p.InfluencerID] = len(merged)
		merged = append(merged, p)
	}
	t.Payouts = merged
}
