package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencerroi/internal/dataset"
)

func TestJoin_DropsUnknownInfluencers(t *testing.T) {
	d := sampleDataset(t)

	assert.Equal(t, JoinReport{
		LoadedInfluencers: 4,
		LoadedPosts:       4,
		LoadedTracking:    6,
		LoadedPayouts:     4,
		DroppedTracking:   1,
		DroppedPosts:      1,
		DroppedPayouts:    1,
		UnresolvedSources: 1,
	}, d.Report)

	assert.Len(t, d.Records, 5)
	assert.Len(t, d.Posts, 3)
	for _, r := range d.Records {
		assert.NotEqual(t, "9", r.InfluencerID)
	}
	_, ok := d.Payouts.Lookup("9")
	assert.False(t, ok)
}

func TestJoin_BroadcastsPayoutAndAttachesPosts(t *testing.T) {
	d := sampleDataset(t)

	var cara []MergedRecord
	for _, r := range d.Records {
		if r.InfluencerID == "3" {
			cara = append(cara, r)
		}
	}
	require.Len(t, cara, 2)
	for _, r := range cara {
		assert.Equal(t, 200.0, r.Payout, "every record carries the influencer's whole payout")
		assert.Equal(t, "Cara", r.InfluencerName)
	}

	assert.True(t, cara[0].HasPost)
	assert.Equal(t, "P3", cara[0].PostID)
	assert.InDelta(t, 0.05, cara[0].EngagementRate, 1e-12)
	assert.False(t, cara[1].HasPost, "no source")
}

func TestJoin_SourceOwnedByAnotherInfluencerIsUnresolved(t *testing.T) {
	tables := &dataset.Tables{
		Influencers: []dataset.Influencer{{ID: "1"}, {ID: "2"}},
		Posts:       []dataset.Post{{ID: "P1", InfluencerID: "1", Reach: 10}},
		Tracking:    []dataset.TrackingEvent{{ID: "T1", InfluencerID: "2", Campaign: "X", Source: "P1", Revenue: 5}},
	}
	d := Join(tables)

	require.Len(t, d.Records, 1)
	assert.False(t, d.Records[0].HasPost)
	assert.Equal(t, 1, d.Report.UnresolvedSources)
}

func TestDataset_Options(t *testing.T) {
	d := sampleDataset(t)

	assert.Equal(t, []string{"X", "Y"}, d.Campaigns())
	assert.Equal(t, []string{"beauty", "fitness", "nutrition"}, d.Categories())

	lo, hi := d.FollowerBounds()
	assert.Equal(t, int64(3000), lo)
	assert.Equal(t, int64(200000), hi)

	ids := make([]string, len(d.Influencers))
	for i, inf := range d.Influencers {
		ids[i] = inf.ID
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
}

func TestDataset_Has(t *testing.T) {
	tables := sampleTables()
	tables.Missing = []string{dataset.Payouts}
	d := Join(tables)

	assert.False(t, d.Has(dataset.Payouts))
	assert.True(t, d.Has(dataset.Posts))
	assert.Equal(t, []string{dataset.Payouts}, d.Report.Missing)
}

func TestPayoutBook_DistinctSum(t *testing.T) {
	book := NewPayoutBook([]dataset.Payout{
		{InfluencerID: "a", Total: 100},
		{InfluencerID: "b", Total: 40},
	})

	ids := make(InfluencerSet)
	for _, id := range []string{"a", "a", "a", "b", "c"} {
		ids.Add(id)
	}
	assert.Equal(t, 140.0, book.DistinctSum(ids))
	assert.Equal(t, 0.0, book.DistinctSum(InfluencerSet{}))
	assert.Equal(t, 0.0, book.Of("c"))
}
