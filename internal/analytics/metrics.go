package analytics

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/montanaflynn/stats"
)

// Ratio is a derived metric that may be undefined, e.g. ROAS with zero
// payout. Undefined ratios marshal to JSON null and never compare as zero.
type Ratio struct {
	Value float64
	Valid bool
}

// Defined wraps a computed value.
func Defined(v float64) Ratio { return Ratio{Value: v, Valid: true} }

// Undefined is the null ratio.
func Undefined() Ratio { return Ratio{} }

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Ratio{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Defined(v)
	return nil
}

// String formats the ratio with two decimals, or "n/a" when undefined.
func (r Ratio) String() string {
	if !r.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// EngagementRate is (likes + comments) / reach, 0 when reach is 0.
func EngagementRate(likes, comments, reach int64) float64 {
	if reach <= 0 {
		return 0
	}
	return float64(likes+comments) / float64(reach)
}

// ROAS is revenue / payout, undefined when payout is 0.
func ROAS(revenue, payout float64) Ratio {
	if payout == 0 {
		return Undefined()
	}
	return Defined(revenue / payout)
}

// ROI is (revenue - payout) / payout, undefined when payout is 0.
func ROI(revenue, payout float64) Ratio {
	if payout == 0 {
		return Undefined()
	}
	return Defined((revenue - payout) / payout)
}

// BaselineROAS is the mean of the defined campaign ROAS values. Campaigns
// with undefined ROAS are skipped; no defined value gives an undefined
// baseline.
func BaselineROAS(campaignROAS []Ratio) Ratio {
	values := make(stats.Float64Data, 0, len(campaignROAS))
	for _, r := range campaignROAS {
		if r.Valid {
			values = append(values, r.Value)
		}
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return Undefined()
	}
	return Defined(mean)
}

// IncrementalROAS is campaign ROAS minus the baseline.
func IncrementalROAS(campaignROAS, baseline Ratio) Ratio {
	if !campaignROAS.Valid || !baseline.Valid {
		return Undefined()
	}
	return Defined(campaignROAS.Value - baseline.Value)
}

// CPM is payout per thousand reach, 0 when reach is 0.
func CPM(payout float64, reach int64) float64 {
	if reach <= 0 {
		return 0
	}
	return payout / (float64(reach) / 1000)
}

// CPE is payout per engagement (likes + comments), 0 without engagement.
func CPE(payout float64, engagements int64) float64 {
	if engagements <= 0 {
		return 0
	}
	return payout / float64(engagements)
}
