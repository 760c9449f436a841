package report

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencerroi/internal/analytics"
	"influencerroi/internal/dataset"
)

func init() {
	color.NoColor = true
}

func dashboard(t *testing.T, f analytics.Filter) *analytics.Dashboard {
	t.Helper()
	d := analytics.Join(&dataset.Tables{
		Influencers: []dataset.Influencer{
			{ID: "1", Name: "Asha", Category: "fitness", FollowerCount: 50000},
			{ID: "2", Name: "Ben", Category: "nutrition", FollowerCount: 12000},
		},
		Posts: []dataset.Post{{ID: "P1", InfluencerID: "1", Likes: 100, Comments: 20, Reach: 2000}},
		Tracking: []dataset.TrackingEvent{
			{ID: "T1", InfluencerID: "1", Campaign: "X", Source: "P1", Revenue: 500},
			{ID: "T2", InfluencerID: "2", Campaign: "Y", Revenue: 50},
		},
		Payouts: []dataset.Payout{
			{InfluencerID: "1", Basis: "post", Total: 200},
			{InfluencerID: "2", Basis: "order", Total: 100},
		},
	})
	return analytics.Build(d, f)
}

func TestWrite_AllViews(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dashboard(t, analytics.DefaultFilter())))

	out := buf.String()
	for _, want := range []string{"OVERVIEW", "CAMPAIGNS", "INFLUENCERS", "CONTENT", "FINANCIALS"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "revenue 550.00")
	assert.Contains(t, out, "payout 300.00")
	assert.Contains(t, out, "Top influencers by revenue")
	assert.Contains(t, out, "6.00%")
}

func TestWrite_FlagsUnderperformers(t *testing.T) {
	f := analytics.DefaultFilter()
	f.Threshold = 0

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dashboard(t, f), "financials"))

	out := buf.String()
	assert.Contains(t, out, "underperformers 1 (ROI < 0)")
	assert.Contains(t, out, "UNDERPERFORMER")
	assert.NotContains(t, out, "OVERVIEW")
}

func TestWrite_EmptySelection(t *testing.T) {
	f := analytics.DefaultFilter()
	f.Categories = []string{"beauty"}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dashboard(t, f), "overview", "campaigns"))

	out := buf.String()
	assert.Contains(t, out, "ROAS n/a")
	assert.Contains(t, out, "(no influencers match)")
	assert.Contains(t, out, "(no campaigns match)")
}

func TestWrite_UnknownView(t *testing.T) {
	err := Write(&bytes.Buffer{}, dashboard(t, analytics.DefaultFilter()), "trends")
	assert.ErrorContains(t, err, "trends")
}
