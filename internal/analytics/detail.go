package analytics

import (
	"cmp"
	"slices"
	"time"
)

// InfluencerDetail drills into one influencer under the current filter.
type InfluencerDetail struct {
	Summary InfluencerSummary `json:"summary"`
	Records []RecordRow       `json:"records"`
	Posts   []ContentItem     `json:"posts"`
}

// RecordRow is one selected tracking event of the influencer.
type RecordRow struct {
	TrackingID string    `json:"tracking_id"`
	Campaign   string    `json:"campaign"`
	Product    string    `json:"product,omitempty"`
	PostID     string    `json:"post_id,omitempty"`
	Orders     int64     `json:"orders"`
	Revenue    float64   `json:"revenue"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BuildInfluencerDetail returns the influencer's summary, its selected
// records (newest first) and its ranked posts. ok is false when the
// influencer does not survive f.
func BuildInfluencerDetail(d *Dataset, f Filter, id string) (InfluencerDetail, bool) {
	a := newAggregate(d, f)
	i := slices.IndexFunc(a.influencers, func(s InfluencerSummary) bool { return s.ID == id })
	if i < 0 {
		return InfluencerDetail{}, false
	}

	detail := InfluencerDetail{
		Summary: a.influencers[i],
		Records: []RecordRow{},
		Posts:   []ContentItem{},
	}
	for _, r := range a.sel.Records {
		if r.InfluencerID != id {
			continue
		}
		detail.Records = append(detail.Records, RecordRow{
			TrackingID: r.TrackingID,
			Campaign:   r.Campaign,
			Product:    r.Product,
			PostID:     r.PostID,
			Orders:     r.Orders,
			Revenue:    r.Revenue,
			OccurredAt: r.OccurredAt,
		})
	}
	slices.SortStableFunc(detail.Records, func(x, y RecordRow) int {
		return cmp.Or(y.OccurredAt.Compare(x.OccurredAt), cmp.Compare(x.TrackingID, y.TrackingID))
	})

	// Every post of the influencer, not just the page-wide top N.
	for _, p := range a.rankContent() {
		if p.InfluencerID == id {
			detail.Posts = append(detail.Posts, p)
		}
	}
	return detail, true
}
