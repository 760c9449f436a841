package analytics

import (
	"sort"

	"influencerroi/internal/dataset"
)

// InfluencerSet is a set of influencer ids.
type InfluencerSet map[string]struct{}

func (s InfluencerSet) Add(id string) { s[id] = struct{}{} }

func (s InfluencerSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s InfluencerSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PayoutBook is the per-influencer payout lookup. Payout is a whole-period
// total per influencer, so it must be summed once per distinct influencer
// no matter how many merged records that influencer has.
type PayoutBook struct {
	byInfluencer map[string]dataset.Payout
}

// NewPayoutBook indexes payouts by influencer. Callers pass merged payouts
// (one row per influencer); a repeated id keeps the first row.
func NewPayoutBook(payouts []dataset.Payout) PayoutBook {
	b := PayoutBook{byInfluencer: make(map[string]dataset.Payout, len(payouts))}
	for _, p := range payouts {
		if _, ok := b.byInfluencer[p.InfluencerID]; !ok {
			b.byInfluencer[p.InfluencerID] = p
		}
	}
	return b
}

// Lookup returns the payout row for an influencer.
func (b PayoutBook) Lookup(id string) (dataset.Payout, bool) {
	p, ok := b.byInfluencer[id]
	return p, ok
}

// Of returns the influencer's total payout, 0 when none is recorded.
func (b PayoutBook) Of(id string) float64 {
	return b.byInfluencer[id].Total
}

// DistinctSum is the only way views total payout: each influencer in the
// set contributes its payout exactly once. Summation runs in id order so
// results are bit-for-bit reproducible.
func (b PayoutBook) DistinctSum(ids InfluencerSet) float64 {
	var total float64
	for _, id := range ids.Sorted() {
		total += b.Of(id)
	}
	return total
}
