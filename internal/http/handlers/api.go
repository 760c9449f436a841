package handlers

import (
	"time"

	"github.com/valyala/fasthttp"

	"influencerroi/internal/analytics"
)

// viewAPI builds one view for the request's filter and writes it as JSON.
func viewAPI[V any](m *Metrics, view string, build func(analytics.Filter) V) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		f, ok := MustFilter(ctx)
		if !ok {
			return
		}
		start := time.Now()
		v := build(f)
		m.ObserveBuild(view, start)
		jsonResponse(ctx, v)
	}
}

func OverviewAPI(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return viewAPI(m, "overview", func(f analytics.Filter) analytics.Overview {
		return analytics.BuildOverview(ds, f)
	})
}

func CampaignsAPI(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return viewAPI(m, "campaigns", func(f analytics.Filter) analytics.CampaignView {
		return analytics.BuildCampaigns(ds, f)
	})
}

func InfluencersAPI(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return viewAPI(m, "influencers", func(f analytics.Filter) analytics.ScatterView {
		return analytics.BuildScatter(ds, f)
	})
}

func ContentAPI(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return viewAPI(m, "content", func(f analytics.Filter) analytics.ContentView {
		return analytics.BuildContent(ds, f)
	})
}

func FinancialsAPI(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return viewAPI(m, "financials", func(f analytics.Filter) analytics.FinancialView {
		return analytics.BuildFinancials(ds, f)
	})
}

type filterOptions struct {
	Campaigns       []string        `json:"campaigns"`
	Categories      []string        `json:"categories"`
	MinFollowers    int64           `json:"min_followers"`
	MaxFollowers    int64           `json:"max_followers"`
	SortKeys        []string        `json:"sort_keys"`
	LeaderboardKeys []string        `json:"leaderboard_keys"`
	Defaults        filterDefaults  `json:"defaults"`
	Datasets        map[string]bool `json:"datasets"`
}

type filterDefaults struct {
	Threshold       float64 `json:"threshold"`
	LeaderboardSize int     `json:"top"`
	ContentLimit    int     `json:"limit"`
}

// FilterOptions lists the values the filter controls can take.
func FilterOptions(ds *analytics.Dataset, defaults analytics.Filter) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		lo, hi := ds.FollowerBounds()
		jsonResponse(ctx, filterOptions{
			Campaigns:    ds.Campaigns(),
			Categories:   ds.Categories(),
			MinFollowers: lo,
			MaxFollowers: hi,
			SortKeys: []string{
				analytics.SortByRevenue.String(),
				analytics.SortByLikes.String(),
				analytics.SortByEngagement.String(),
			},
			LeaderboardKeys: []string{
				analytics.LeaderboardByRevenue.String(),
				analytics.LeaderboardByROI.String(),
			},
			Defaults: filterDefaults{
				Threshold:       defaults.Threshold,
				LeaderboardSize: defaults.LeaderboardSize,
				ContentLimit:    defaults.ContentLimit,
			},
			Datasets: datasetAvailability(ds),
		})
	}
}

// LoadReport returns the counts of loaded, dropped and unresolved rows.
func LoadReport(ds *analytics.Dataset) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, ds.Report)
	}
}
