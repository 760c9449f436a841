package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"

	"influencerroi/internal/dataset"
)

// Filter is the immutable set of user selections for one dashboard run.
// Empty Campaigns or Categories mean "all". A nil MaxFollowers is
// unbounded. Build it with NewFilter so the slices are owned copies.
type Filter struct {
	Campaigns    []string
	Categories   []string
	MinFollowers int64 `validate:"gte=0"`
	MaxFollowers *int64

	// Threshold is the ROI below which an influencer is flagged as an
	// underperformer on the financial review.
	Threshold float64

	LeaderboardSize int `validate:"gte=1,lte=100"`
	LeaderboardBy   LeaderboardKey
	ContentSort     SortKey
	ContentLimit    int `validate:"gte=1,lte=100"`
}

// MaxListSize is the largest LeaderboardSize or ContentLimit a filter accepts.
const MaxListSize = 100

// DefaultFilter selects everything and uses the original dashboard's
// leaderboard and content sizes.
func DefaultFilter() Filter {
	return Filter{LeaderboardSize: 5, ContentLimit: 5}
}

// NewFilter returns a copy of f whose slices are not shared with the caller.
func NewFilter(f Filter) Filter {
	f.Campaigns = append([]string(nil), f.Campaigns...)
	f.Categories = append([]string(nil), f.Categories...)
	if f.MaxFollowers != nil {
		max := *f.MaxFollowers
		f.MaxFollowers = &max
	}
	return f
}

var filterValidate = newFilterValidator()

func newFilterValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f := sl.Current().Interface().(Filter)
		if f.MaxFollowers != nil && *f.MaxFollowers < f.MinFollowers {
			sl.ReportError(f.MaxFollowers, "MaxFollowers", "MaxFollowers", "gtefield", "MinFollowers")
		}
		if math.IsNaN(f.Threshold) || math.IsInf(f.Threshold, 0) {
			sl.ReportError(f.Threshold, "Threshold", "Threshold", "finite", "")
		}
		if !f.LeaderboardBy.Valid() {
			sl.ReportError(f.LeaderboardBy, "LeaderboardBy", "LeaderboardBy", "oneof", "revenue roi")
		}
		if !f.ContentSort.Valid() {
			sl.ReportError(f.ContentSort, "ContentSort", "ContentSort", "oneof", "revenue likes engagement_rate")
		}
	}, Filter{})
	return v
}

// Validate checks the filter before it is applied.
func (f Filter) Validate() error {
	err := filterValidate.Struct(f)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return fmt.Errorf("invalid filter: %s failed %s %s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("invalid filter: %w", err)
}

// Selection is what survives a filter: the merged records, and the
// influencers whose payout counts toward totals.
type Selection struct {
	Records     []MergedRecord
	Influencers []dataset.Influencer
	IDs         InfluencerSet

	// CampaignRestricted is false when the campaign filter selects every
	// campaign in the data, i.e. it removes nothing.
	CampaignRestricted bool
}

// Apply runs the filter predicates over the full dataset. It reads d and
// returns fresh slices; nothing in d is modified, so every run starts from
// the complete merged set.
//
// An influencer survives when it matches the category and follower
// predicates and, if the campaign filter removes anything, has at least
// one record in a selected campaign.
func (f Filter) Apply(d *Dataset) Selection {
	campaigns := toSet(f.Campaigns)
	categories := toSet(f.Categories)

	restricted := len(campaigns) > 0 && !coversAll(campaigns, d.campaigns)

	matchesInfluencer := func(inf dataset.Influencer) bool {
		if len(categories) > 0 && !categories[inf.Category] {
			return false
		}
		if inf.FollowerCount < f.MinFollowers {
			return false
		}
		if f.MaxFollowers != nil && inf.FollowerCount > *f.MaxFollowers {
			return false
		}
		return true
	}

	sel := Selection{IDs: make(InfluencerSet), CampaignRestricted: restricted}
	withRecords := make(InfluencerSet)

	for _, rec := range d.Records {
		if restricted && !campaigns[rec.Campaign] {
			continue
		}
		inf, _ := d.Influencer(rec.InfluencerID)
		if !matchesInfluencer(inf) {
			continue
		}
		sel.Records = append(sel.Records, rec)
		withRecords.Add(rec.InfluencerID)
	}

	for _, inf := range d.Influencers {
		if !matchesInfluencer(inf) {
			continue
		}
		if restricted && !withRecords.Has(inf.ID) {
			continue
		}
		sel.Influencers = append(sel.Influencers, inf)
		sel.IDs.Add(inf.ID)
	}

	return sel
}

// Campaigns returns the campaigns present in the selected records, sorted.
func (s Selection) Campaigns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.Records {
		if !seen[r.Campaign] {
			seen[r.Campaign] = true
			out = append(out, r.Campaign)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func coversAll(selected map[string]bool, all []string) bool {
	for _, v := range all {
		if !selected[v] {
			return false
		}
	}
	return true
}
