package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"influencerroi/internal/dataset"
)

// Totals are the headline numbers of the overview.
type Totals struct {
	Revenue     float64 `json:"revenue"`
	Orders      int64   `json:"orders"`
	Payout      float64 `json:"payout"`
	ROAS        Ratio   `json:"roas"`
	ROI         Ratio   `json:"roi"`
	Influencers int     `json:"influencers"`
	Campaigns   int     `json:"campaigns"`
	Records     int     `json:"records"`
}

// InfluencerSummary aggregates one surviving influencer.
type InfluencerSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Platform      string  `json:"platform,omitempty"`
	FollowerCount int64   `json:"follower_count"`
	Revenue       float64 `json:"revenue"`
	Orders        int64   `json:"orders"`
	Payout        float64 `json:"payout"`
	ROAS          Ratio   `json:"roas"`
	ROI           Ratio   `json:"roi"`
	IROAS         Ratio   `json:"iroas"`

	Posts             int     `json:"posts"`
	Reach             int64   `json:"reach"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
}

// CampaignSummary aggregates one campaign. Payout is summed once per
// distinct influencer that has at least one record in the campaign.
type CampaignSummary struct {
	Campaign    string  `json:"campaign"`
	Revenue     float64 `json:"revenue"`
	Orders      int64   `json:"orders"`
	Payout      float64 `json:"payout"`
	Influencers int     `json:"influencers"`
	ROAS        Ratio   `json:"roas"`
	ROI         Ratio   `json:"roi"`
	IROAS       Ratio   `json:"iroas"`
}

// Overview is the landing view.
type Overview struct {
	Totals       Totals              `json:"totals"`
	Leaderboard  []InfluencerSummary `json:"leaderboard"`
	RankedBy     LeaderboardKey      `json:"ranked_by"`
	TopCampaigns []CampaignSummary   `json:"top_campaigns"`
	Notices      []string            `json:"notices"`
}

// CampaignView is the campaign deep-dive.
type CampaignView struct {
	Baseline  Ratio             `json:"baseline_roas"`
	Campaigns []CampaignSummary `json:"campaigns"`
}

// ScatterPoint is one influencer on the ROI vs reach scatter.
type ScatterPoint struct {
	InfluencerID   string  `json:"influencer_id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Platform       string  `json:"platform,omitempty"`
	FollowerCount  int64   `json:"follower_count"`
	Revenue        float64 `json:"revenue"`
	Payout         float64 `json:"payout"`
	ROAS           Ratio   `json:"roas"`
	ROI            Ratio   `json:"roi"`
	IROAS          Ratio   `json:"iroas"`
	EngagementRate float64 `json:"avg_engagement_rate"`
}

// ScatterView is the influencer scatter.
type ScatterView struct {
	Points []ScatterPoint `json:"points"`
}

// ContentItem is one ranked post.
type ContentItem struct {
	PostID         string   `json:"post_id"`
	InfluencerID   string   `json:"influencer_id"`
	InfluencerName string   `json:"influencer_name"`
	Platform       string   `json:"platform,omitempty"`
	Caption        string   `json:"caption,omitempty"`
	URL            string   `json:"url,omitempty"`
	Campaigns      []string `json:"campaigns"`
	Revenue        float64  `json:"revenue"`
	Orders         int64    `json:"orders"`
	Likes          int64    `json:"likes"`
	Comments       int64    `json:"comments"`
	Reach          int64    `json:"reach"`
	EngagementRate float64  `json:"engagement_rate"`
	CPM            float64  `json:"cpm"`
	CPE            float64  `json:"cpe"`
}

// ContentView is the content insights ranking. Available is false when
// the posts dataset was not loaded.
type ContentView struct {
	Available bool          `json:"available"`
	SortBy    SortKey       `json:"sort_by"`
	Total     int           `json:"total"`
	Posts     []ContentItem `json:"posts"`
}

// FinancialRow is one influencer's payout against its revenue.
type FinancialRow struct {
	InfluencerID     string  `json:"influencer_id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Basis            string  `json:"basis,omitempty"`
	Rate             float64 `json:"rate"`
	Payout           float64 `json:"payout"`
	Revenue          float64 `json:"revenue"`
	ROAS             Ratio   `json:"roas"`
	ROI              Ratio   `json:"roi"`
	IsUnderperformer bool    `json:"is_underperformer"`
}

// FinancialView is the financial review.
type FinancialView struct {
	Threshold        float64        `json:"threshold"`
	TotalPayout      float64        `json:"total_payout"`
	TotalRevenue     float64        `json:"total_revenue"`
	Underperformers  int            `json:"underperformers"`
	Rows             []FinancialRow `json:"rows"`
	PayoutsAvailable bool           `json:"payouts_available"`
	Notices          []string       `json:"notices"`
}

// Dashboard holds every view for one filter.
type Dashboard struct {
	Overview   Overview      `json:"overview"`
	Campaigns  CampaignView  `json:"campaigns"`
	Scatter    ScatterView   `json:"scatter"`
	Content    ContentView   `json:"content"`
	Financials FinancialView `json:"financials"`
}

// Build applies f to d and computes all five views. d is only read.
func Build(d *Dataset, f Filter) *Dashboard {
	a := newAggregate(d, f)
	return &Dashboard{
		Overview:   a.overview(),
		Campaigns:  a.campaignView(),
		Scatter:    a.scatter(),
		Content:    a.content(),
		Financials: a.financials(),
	}
}

// BuildOverview computes the overview only.
func BuildOverview(d *Dataset, f Filter) Overview { return newAggregate(d, f).overview() }

// BuildCampaigns computes the campaign deep-dive only.
func BuildCampaigns(d *Dataset, f Filter) CampaignView { return newAggregate(d, f).campaignView() }

// BuildScatter computes the influencer scatter only.
func BuildScatter(d *Dataset, f Filter) ScatterView { return newAggregate(d, f).scatter() }

// BuildContent computes the content insights only.
func BuildContent(d *Dataset, f Filter) ContentView { return newAggregate(d, f).content() }

// BuildFinancials computes the financial review only.
func BuildFinancials(d *Dataset, f Filter) FinancialView { return newAggregate(d, f).financials() }

// aggregate is the per-request working state: the selection plus the
// per-campaign and per-influencer sums every view draws from.
type aggregate struct {
	d   *Dataset
	f   Filter
	sel Selection

	campaigns   []CampaignSummary
	baseline    Ratio
	influencers []InfluencerSummary
}

func newAggregate(d *Dataset, f Filter) *aggregate {
	a := &aggregate{d: d, f: f, sel: f.Apply(d)}
	a.campaigns, a.baseline = a.summarizeCampaigns()
	a.influencers = a.summarizeInfluencers()
	return a
}

func (a *aggregate) summarizeCampaigns() ([]CampaignSummary, Ratio) {
	type acc struct {
		revenue float64
		orders  int64
		ids     InfluencerSet
	}
	byCampaign := make(map[string]*acc)
	for _, r := range a.sel.Records {
		c, ok := byCampaign[r.Campaign]
		if !ok {
			c = &acc{ids: make(InfluencerSet)}
			byCampaign[r.Campaign] = c
		}
		c.revenue += r.Revenue
		c.orders += r.Orders
		c.ids.Add(r.InfluencerID)
	}

	out := make([]CampaignSummary, 0, len(byCampaign))
	for _, name := range a.sel.Campaigns() {
		c := byCampaign[name]
		payout := a.d.Payouts.DistinctSum(c.ids)
		out = append(out, CampaignSummary{
			Campaign:    name,
			Revenue:     c.revenue,
			Orders:      c.orders,
			Payout:      payout,
			Influencers: len(c.ids),
			ROAS:        ROAS(c.revenue, payout),
			ROI:         ROI(c.revenue, payout),
		})
	}

	roas := make([]Ratio, len(out))
	for i, c := range out {
		roas[i] = c.ROAS
	}
	baseline := BaselineROAS(roas)
	for i := range out {
		out[i].IROAS = IncrementalROAS(out[i].ROAS, baseline)
	}
	return out, baseline
}

func (a *aggregate) summarizeInfluencers() []InfluencerSummary {
	type acc struct {
		revenue float64
		orders  int64
	}
	byInfluencer := make(map[string]*acc, len(a.sel.Influencers))
	credited := make(map[string]bool)
	for _, r := range a.sel.Records {
		c, ok := byInfluencer[r.InfluencerID]
		if !ok {
			c = &acc{}
			byInfluencer[r.InfluencerID] = c
		}
		c.revenue += r.Revenue
		c.orders += r.Orders
		if r.HasPost {
			credited[r.PostID] = true
		}
	}

	type postAcc struct {
		count      int
		reach      int64
		engagement float64
	}
	// Same post set as the content view: under a campaign filter only
	// posts credited in a selected campaign count.
	posts := make(map[string]*postAcc)
	for _, p := range a.d.Posts {
		if !a.sel.IDs.Has(p.Influencer.ID) {
			continue
		}
		if a.sel.CampaignRestricted && !credited[p.Post.ID] {
			continue
		}
		c, ok := posts[p.Influencer.ID]
		if !ok {
			c = &postAcc{}
			posts[p.Influencer.ID] = c
		}
		c.count++
		c.reach += p.Post.Reach
		c.engagement += p.EngagementRate
	}

	out := make([]InfluencerSummary, 0, len(a.sel.Influencers))
	for _, inf := range a.sel.Influencers {
		s := InfluencerSummary{
			ID:            inf.ID,
			Name:          inf.Name,
			Category:      inf.Category,
			Platform:      inf.Platform,
			FollowerCount: inf.FollowerCount,
			Payout:        a.d.Payouts.Of(inf.ID),
		}
		if c, ok := byInfluencer[inf.ID]; ok {
			s.Revenue = c.revenue
			s.Orders = c.orders
		}
		if p, ok := posts[inf.ID]; ok {
			s.Posts = p.count
			s.Reach = p.reach
			s.AvgEngagementRate = p.engagement / float64(p.count)
		}
		s.ROAS = ROAS(s.Revenue, s.Payout)
		s.ROI = ROI(s.Revenue, s.Payout)
		s.IROAS = IncrementalROAS(s.ROAS, a.baseline)
		out = append(out, s)
	}
	return out
}

func (a *aggregate) totals() Totals {
	t := Totals{
		Influencers: len(a.sel.Influencers),
		Campaigns:   len(a.campaigns),
		Records:     len(a.sel.Records),
	}
	for _, r := range a.sel.Records {
		t.Revenue += r.Revenue
		t.Orders += r.Orders
	}
	t.Payout = a.d.Payouts.DistinctSum(a.sel.IDs)
	t.ROAS = ROAS(t.Revenue, t.Payout)
	t.ROI = ROI(t.Revenue, t.Payout)
	return t
}

func (a *aggregate) notices() []string {
	notices := []string{}
	if !a.d.Has(dataset.Payouts) {
		notices = append(notices, "Payout data not loaded: payout is 0 and ROAS/ROI are unavailable.")
	}
	if !a.d.Has(dataset.Posts) {
		notices = append(notices, "Post data not loaded: content insights are unavailable.")
	}
	r := a.d.Report
	if dropped := r.DroppedTracking + r.DroppedPosts + r.DroppedPayouts; dropped > 0 {
		notices = append(notices, fmt.Sprintf(
			"%d rows reference unknown influencers and are excluded (tracking %d, posts %d, payouts %d).",
			dropped, r.DroppedTracking, r.DroppedPosts, r.DroppedPayouts))
	}
	return notices
}

func (a *aggregate) overview() Overview {
	leaderboard := slices.Clone(a.influencers)
	slices.SortFunc(leaderboard, leaderboardOrder[a.f.LeaderboardBy])
	if len(leaderboard) > a.f.LeaderboardSize {
		leaderboard = leaderboard[:a.f.LeaderboardSize]
	}

	top := slices.Clone(a.campaigns)
	slices.SortFunc(top, func(x, y CampaignSummary) int {
		return cmp.Or(compareRatioDesc(x.ROAS, y.ROAS), cmp.Compare(x.Campaign, y.Campaign))
	})
	if len(top) > a.f.LeaderboardSize {
		top = top[:a.f.LeaderboardSize]
	}

	return Overview{
		Totals:       a.totals(),
		Leaderboard:  leaderboard,
		RankedBy:     a.f.LeaderboardBy,
		TopCampaigns: top,
		Notices:      a.notices(),
	}
}

func (a *aggregate) campaignView() CampaignView {
	return CampaignView{Baseline: a.baseline, Campaigns: slices.Clone(a.campaigns)}
}

func (a *aggregate) scatter() ScatterView {
	points := make([]ScatterPoint, 0, len(a.influencers))
	for _, s := range a.influencers {
		points = append(points, ScatterPoint{
			InfluencerID:   s.ID,
			Name:           s.Name,
			Category:       s.Category,
			Platform:       s.Platform,
			FollowerCount:  s.FollowerCount,
			Revenue:        s.Revenue,
			Payout:         s.Payout,
			ROAS:           s.ROAS,
			ROI:            s.ROI,
			IROAS:          s.IROAS,
			EngagementRate: s.AvgEngagementRate,
		})
	}
	return ScatterView{Points: points}
}

// content ranks posts of surviving influencers. Revenue and orders come
// from the selected records attributed to the post. With a restricted
// campaign filter only posts credited in a selected campaign remain.
func (a *aggregate) content() ContentView {
	v := ContentView{
		Available: a.d.Has(dataset.Posts),
		SortBy:    a.f.ContentSort,
		Posts:     a.rankContent(),
	}
	v.Total = len(v.Posts)
	if len(v.Posts) > a.f.ContentLimit {
		v.Posts = v.Posts[:a.f.ContentLimit]
	}
	return v
}

// rankContent returns every selected post in the filter's sort order.
func (a *aggregate) rankContent() []ContentItem {
	posts := []ContentItem{}
	if !a.d.Has(dataset.Posts) {
		return posts
	}

	type acc struct {
		revenue   float64
		orders    int64
		campaigns map[string]bool
	}
	attributed := make(map[string]*acc)
	for _, r := range a.sel.Records {
		if !r.HasPost {
			continue
		}
		c, ok := attributed[r.PostID]
		if !ok {
			c = &acc{campaigns: make(map[string]bool)}
			attributed[r.PostID] = c
		}
		c.revenue += r.Revenue
		c.orders += r.Orders
		c.campaigns[r.Campaign] = true
	}

	for _, p := range a.d.Posts {
		if !a.sel.IDs.Has(p.Influencer.ID) {
			continue
		}
		c, credited := attributed[p.Post.ID]
		if a.sel.CampaignRestricted && !credited {
			continue
		}
		payout := a.d.Payouts.Of(p.Influencer.ID)
		item := ContentItem{
			PostID:         p.Post.ID,
			InfluencerID:   p.Influencer.ID,
			InfluencerName: p.Influencer.Name,
			Platform:       cmp.Or(p.Post.Platform, p.Influencer.Platform),
			Caption:        p.Post.Caption,
			URL:            p.Post.URL,
			Campaigns:      []string{},
			Likes:          p.Post.Likes,
			Comments:       p.Post.Comments,
			Reach:          p.Post.Reach,
			EngagementRate: p.EngagementRate,
			CPM:            CPM(payout, p.Post.Reach),
			CPE:            CPE(payout, p.Post.Likes+p.Post.Comments),
		}
		if credited {
			item.Revenue = c.revenue
			item.Orders = c.orders
			for name := range c.campaigns {
				item.Campaigns = append(item.Campaigns, name)
			}
			slices.Sort(item.Campaigns)
		}
		posts = append(posts, item)
	}

	slices.SortFunc(posts, contentOrder[a.f.ContentSort])
	return posts
}

// financials lists surviving influencers by payout, highest first.
// An undefined ROI is never an underperformer.
func (a *aggregate) financials() FinancialView {
	v := FinancialView{
		Threshold:        a.f.Threshold,
		TotalPayout:      a.d.Payouts.DistinctSum(a.sel.IDs),
		PayoutsAvailable: a.d.Has(dataset.Payouts),
		Rows:             make([]FinancialRow, 0, len(a.influencers)),
		Notices:          []string{},
	}
	if !v.PayoutsAvailable {
		v.Notices = append(v.Notices, "Payout data not loaded: financial review shows revenue only.")
	}
	for _, s := range a.influencers {
		row := FinancialRow{
			InfluencerID:     s.ID,
			Name:             s.Name,
			Category:         s.Category,
			Payout:           s.Payout,
			Revenue:          s.Revenue,
			ROAS:             s.ROAS,
			ROI:              s.ROI,
			IsUnderperformer: s.ROI.Valid && s.ROI.Value < a.f.Threshold,
		}
		if p, ok := a.d.Payouts.Lookup(s.ID); ok {
			row.Basis = p.Basis
			row.Rate = p.Rate
		}
		if row.IsUnderperformer {
			v.Underperformers++
		}
		v.TotalRevenue += s.Revenue
		v.Rows = append(v.Rows, row)
	}
	slices.SortFunc(v.Rows, func(x, y FinancialRow) int {
		return cmp.Or(cmp.Compare(y.Payout, x.Payout), cmp.Compare(x.InfluencerID, y.InfluencerID))
	})
	return v
}
