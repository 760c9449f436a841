package analytics

import (
	"testing"

	"influencerroi/internal/dataset"
)

// sampleTables is a small campaign with one influencer of every shape:
// paid and profitable (1), break-even (2), spread across campaigns (3),
// unpaid with no sales (4), plus rows for an unknown influencer (9).
func sampleTables() *dataset.Tables {
	return &dataset.Tables{
		Influencers: []dataset.Influencer{
			{ID: "3", Name: "Cara", Category: "fitness", FollowerCount: 200000, Platform: "Instagram"},
			{ID: "1", Name: "Asha", Category: "fitness", FollowerCount: 50000, Platform: "Instagram"},
			{ID: "2", Name: "Ben", Category: "nutrition", FollowerCount: 12000, Platform: "YouTube"},
			{ID: "4", Name: "Dev", Category: "beauty", FollowerCount: 3000, Platform: "TikTok"},
		},
		Posts: []dataset.Post{
			{ID: "P1", InfluencerID: "1", Likes: 100, Comments: 20, Reach: 2000, Caption: "Morning whey"},
			{ID: "P2", InfluencerID: "2", Likes: 50, Comments: 10, Reach: 1000},
			{ID: "P3", InfluencerID: "3", Likes: 400, Comments: 100, Reach: 10000},
			{ID: "P4", InfluencerID: "9", Likes: 1, Comments: 1, Reach: 10},
		},
		Tracking: []dataset.TrackingEvent{
			{ID: "T1", InfluencerID: "1", Campaign: "X", Source: "P1", Orders: 2, Revenue: 500},
			{ID: "T2", InfluencerID: "2", Campaign: "Y", Source: "P2", Orders: 1, Revenue: 60},
			{ID: "T3", InfluencerID: "3", Campaign: "X", Source: "P3", Orders: 3, Revenue: 300},
			{ID: "T4", InfluencerID: "3", Campaign: "Y", Orders: 1, Revenue: 100},
			{ID: "T5", InfluencerID: "9", Campaign: "X", Orders: 5, Revenue: 1000},
			{ID: "T6", InfluencerID: "2", Campaign: "Y", Source: "P404", Orders: 1, Revenue: 40},
		},
		Payouts: []dataset.Payout{
			{InfluencerID: "1", Basis: "post", Rate: 200, Total: 200},
			{InfluencerID: "2", Basis: "order", Rate: 50, Total: 100},
			{InfluencerID: "3", Basis: "post", Rate: 100, Total: 200},
			{InfluencerID: "9", Total: 50},
		},
	}
}

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	return Join(sampleTables())
}

func int64Ptr(v int64) *int64 { return &v }
