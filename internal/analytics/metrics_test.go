package analytics

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROASAndROI_Identity(t *testing.T) {
	cases := []struct {
		revenue, payout float64
	}{
		{500, 200},
		{30, 100},
		{0, 50},
		{1234.56, 0.01},
		{10, 10},
	}
	for _, tc := range cases {
		roas := ROAS(tc.revenue, tc.payout)
		roi := ROI(tc.revenue, tc.payout)
		require.True(t, roas.Valid)
		require.True(t, roi.Valid)

		assert.InDelta(t, roas.Value, roi.Value+1, 1e-9, "ROAS = ROI + 1")
		assert.InDelta(t, tc.revenue, roi.Value*tc.payout+tc.payout, 1e-6, "revenue = ROI*payout + payout")
	}
}

func TestROASAndROI_ZeroPayoutIsUndefined(t *testing.T) {
	assert.False(t, ROAS(500, 0).Valid)
	assert.False(t, ROI(500, 0).Valid)
	assert.False(t, ROAS(0, 0).Valid)
}

func TestEngagementRate(t *testing.T) {
	tests := []struct {
		name                   string
		likes, comments, reach int64
		want                   float64
	}{
		{"example", 100, 20, 2000, 0.06},
		{"zero reach", 100, 20, 0, 0},
		{"no interactions", 0, 0, 500, 0},
		{"all reached interacted", 90, 10, 100, 1},
		{"interactions beyond reach", 300, 50, 100, 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EngagementRate(tt.likes, tt.comments, tt.reach)
			assert.InDelta(t, tt.want, got, 1e-12)
			if tt.likes+tt.comments <= tt.reach {
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 1.0)
			}
		})
	}
}

func TestBaselineROAS(t *testing.T) {
	baseline := BaselineROAS([]Ratio{Defined(1), Defined(2), Undefined(), Defined(3)})
	require.True(t, baseline.Valid)
	assert.InDelta(t, 2.0, baseline.Value, 1e-12)

	assert.False(t, BaselineROAS(nil).Valid)
	assert.False(t, BaselineROAS([]Ratio{Undefined()}).Valid)
}

func TestIncrementalROAS(t *testing.T) {
	campaigns := []Ratio{Defined(0.5), Defined(2.5), Defined(3)}
	baseline := BaselineROAS(campaigns)

	var sum float64
	for _, c := range campaigns {
		iroas := IncrementalROAS(c, baseline)
		require.True(t, iroas.Valid)
		sum += iroas.Value
	}
	assert.InDelta(t, 0, sum, 1e-9, "iROAS averages to zero around the baseline")

	atBaseline := IncrementalROAS(Defined(baseline.Value), baseline)
	assert.Equal(t, 0.0, atBaseline.Value)

	assert.False(t, IncrementalROAS(Undefined(), baseline).Valid)
	assert.False(t, IncrementalROAS(Defined(1), Undefined()).Valid)
}

func TestCPMAndCPE(t *testing.T) {
	assert.InDelta(t, 100.0, CPM(200, 2000), 1e-12)
	assert.Equal(t, 0.0, CPM(200, 0))
	assert.InDelta(t, 200.0/120, CPE(200, 120), 1e-12)
	assert.Equal(t, 0.0, CPE(200, 0))
}

func TestRatio_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Ratio `json:"a"`
		B Ratio `json:"b"`
	}{Defined(2.5), Undefined()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2.5,"b":null}`, string(b))

	var back struct {
		A Ratio `json:"a"`
		B Ratio `json:"b"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Defined(2.5), back.A)
	assert.False(t, back.B.Valid)
}

func TestRatio_String(t *testing.T) {
	assert.Equal(t, "1.50", Defined(1.5).String())
	assert.Equal(t, "n/a", Undefined().String())
}
