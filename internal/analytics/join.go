package analytics

import (
	"sort"
	"time"

	"influencerroi/internal/dataset"
)

// MergedRecord is one tracking event with its influencer, its attributed
// post (when Source resolves) and its influencer's payout attached.
type MergedRecord struct {
	TrackingID string
	Campaign   string
	Product    string
	Orders     int64
	Revenue    float64
	OccurredAt time.Time

	InfluencerID   string
	InfluencerName string
	Category       string
	FollowerCount  int64
	Platform       string

	// Payout is the influencer's whole-period total repeated on every one
	// of its records for display. Totals must go through
	// PayoutBook.DistinctSum, never a sum over records.
	Payout float64

	HasPost        bool
	PostID         string
	Likes          int64
	Comments       int64
	Reach          int64
	EngagementRate float64
}

// PostRecord is a post joined to its influencer, for the content view.
type PostRecord struct {
	Post           dataset.Post
	Influencer     dataset.Influencer
	EngagementRate float64
}

// JoinReport counts what the joins dropped or could not resolve. Rows
// with unknown influencers are dropped silently from every view; the
// counts are what gets surfaced.
type JoinReport struct {
	LoadedInfluencers int `json:"loaded_influencers"`
	LoadedPosts       int `json:"loaded_posts"`
	LoadedTracking    int `json:"loaded_tracking"`
	LoadedPayouts     int `json:"loaded_payouts"`

	DroppedTracking int `json:"dropped_tracking"`
	DroppedPosts    int `json:"dropped_posts"`
	DroppedPayouts  int `json:"dropped_payouts"`
	// UnresolvedSources counts kept tracking events whose source names a
	// post that does not exist.
	UnresolvedSources int `json:"unresolved_sources"`
	DuplicatePayouts  int `json:"duplicate_payouts"`

	Missing []string `json:"missing,omitempty"`
}

// Dataset is the joined, read-only input to every view. It is built once
// per load and shared by all requests.
type Dataset struct {
	Influencers []dataset.Influencer
	Records     []MergedRecord
	Posts       []PostRecord
	Payouts     PayoutBook
	Report      JoinReport

	influencerIdx map[string]int
	campaigns     []string
	categories    []string
	missing       map[string]bool
}

// Join builds the Dataset from loaded tables. Tracking events and posts
// are inner-joined to influencers; payouts become a per-influencer lookup
// rather than a joined column.
func Join(t *dataset.Tables) *Dataset {
	d := &Dataset{
		influencerIdx: make(map[string]int, len(t.Influencers)),
		missing:       make(map[string]bool, len(t.Missing)),
	}
	for _, m := range t.Missing {
		d.missing[m] = true
	}

	d.Influencers = append([]dataset.Influencer(nil), t.Influencers...)
	sort.SliceStable(d.Influencers, func(i, j int) bool { return d.Influencers[i].ID < d.Influencers[j].ID })
	for i, inf := range d.Influencers {
		d.influencerIdx[inf.ID] = i
	}

	d.Report = JoinReport{
		LoadedInfluencers: len(t.Influencers),
		LoadedPosts:       len(t.Posts),
		LoadedTracking:    len(t.Tracking),
		LoadedPayouts:     len(t.Payouts),
		DuplicatePayouts:  t.DuplicatePayouts,
		Missing:           append([]string(nil), t.Missing...),
	}

	payouts := make([]dataset.Payout, 0, len(t.Payouts))
	for _, p := range t.Payouts {
		if _, ok := d.influencerIdx[p.InfluencerID]; !ok {
			d.Report.DroppedPayouts++
			continue
		}
		payouts = append(payouts, p)
	}
	d.Payouts = NewPayoutBook(payouts)

	postByID := make(map[string]dataset.Post, len(t.Posts))
	for _, p := range t.Posts {
		inf, ok := d.Influencer(p.InfluencerID)
		if !ok {
			d.Report.DroppedPosts++
			continue
		}
		postByID[p.ID] = p
		d.Posts = append(d.Posts, PostRecord{
			Post:           p,
			Influencer:     inf,
			EngagementRate: EngagementRate(p.Likes, p.Comments, p.Reach),
		})
	}

	campaigns := make(map[string]bool)
	for _, ev := range t.Tracking {
		inf, ok := d.Influencer(ev.InfluencerID)
		if !ok {
			d.Report.DroppedTracking++
			continue
		}
		rec := MergedRecord{
			TrackingID:     ev.ID,
			Campaign:       ev.Campaign,
			Product:        ev.Product,
			Orders:         ev.Orders,
			Revenue:        ev.Revenue,
			OccurredAt:     ev.OccurredAt,
			InfluencerID:   inf.ID,
			InfluencerName: inf.Name,
			Category:       inf.Category,
			FollowerCount:  inf.FollowerCount,
			Platform:       inf.Platform,
			Payout:         d.Payouts.Of(inf.ID),
		}
		if ev.Source != "" {
			// A post credited to a different influencer is not this
			// event's post.
			if p, ok := postByID[ev.Source]; ok && p.InfluencerID == inf.ID {
				rec.HasPost = true
				rec.PostID = p.ID
				rec.Likes = p.Likes
				rec.Comments = p.Comments
				rec.Reach = p.Reach
				rec.EngagementRate = EngagementRate(p.Likes, p.Comments, p.Reach)
			} else {
				d.Report.UnresolvedSources++
			}
		}
		campaigns[rec.Campaign] = true
		d.Records = append(d.Records, rec)
	}

	for c := range campaigns {
		d.campaigns = append(d.campaigns, c)
	}
	sort.Strings(d.campaigns)

	categories := make(map[string]bool)
	for _, inf := range d.Influencers {
		if !categories[inf.Category] {
			categories[inf.Category] = true
			d.categories = append(d.categories, inf.Category)
		}
	}
	sort.Strings(d.categories)

	return d
}

// Influencer returns the influencer with the given id.
func (d *Dataset) Influencer(id string) (dataset.Influencer, bool) {
	i, ok := d.influencerIdx[id]
	if !ok {
		return dataset.Influencer{}, false
	}
	return d.Influencers[i], true
}

// Campaigns returns every campaign present in the merged records, sorted.
func (d *Dataset) Campaigns() []string { return append([]string(nil), d.campaigns...) }

// Categories returns every influencer category, sorted.
func (d *Dataset) Categories() []string { return append([]string(nil), d.categories...) }

// FollowerBounds returns the smallest and largest follower counts.
func (d *Dataset) FollowerBounds() (lo, hi int64) {
	for i, inf := range d.Influencers {
		if i == 0 || inf.FollowerCount < lo {
			lo = inf.FollowerCount
		}
		if inf.FollowerCount > hi {
			hi = inf.FollowerCount
		}
	}
	return lo, hi
}

// Has reports whether the named source dataset was loaded.
func (d *Dataset) Has(name string) bool { return !d.missing[name] }
