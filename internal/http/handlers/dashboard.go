package handlers

import (
	"bytes"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"influencerroi/internal/analytics"
	"influencerroi/internal/dataset"
	httpctx "influencerroi/internal/http/ctx"
	ui "influencerroi/web"
)

type LayoutData struct {
	Title        string
	Breadcrumb   string
	ActivePage   string
	PageTemplate string
	Path         string
	Query        string
	Form         FilterForm
	Report       analytics.JoinReport

	Overview   *analytics.Overview
	Campaigns  *analytics.CampaignView
	Scatter    *analytics.ScatterView
	Content    *analytics.ContentView
	Financials *analytics.FinancialView
}

// FilterForm is the filter control state rendered on every page.
type FilterForm struct {
	Campaigns    []Option
	Categories   []Option
	MinFollowers string
	MaxFollowers string
	LowerBound   int64
	UpperBound   int64
	Threshold    string
	SortKeys     []Option
	RankKeys     []Option
}

type Option struct {
	Value    string
	Selected bool
}

func getLayoutData(ctx *fasthttp.RequestCtx, ds *analytics.Dataset, f analytics.Filter, activePage, breadcrumb string) LayoutData {
	lo, hi := ds.FollowerBounds()
	form := FilterForm{
		Campaigns:  options(ds.Campaigns(), f.Campaigns),
		Categories: options(ds.Categories(), f.Categories),
		LowerBound: lo,
		UpperBound: hi,
		Threshold:  strconv.FormatFloat(f.Threshold, 'f', -1, 64),
		SortKeys: options(
			[]string{analytics.SortByRevenue.String(), analytics.SortByLikes.String(), analytics.SortByEngagement.String()},
			[]string{f.ContentSort.String()},
		),
		RankKeys: options(
			[]string{analytics.LeaderboardByRevenue.String(), analytics.LeaderboardByROI.String()},
			[]string{f.LeaderboardBy.String()},
		),
	}
	if f.MinFollowers > 0 {
		form.MinFollowers = strconv.FormatInt(f.MinFollowers, 10)
	}
	if f.MaxFollowers != nil {
		form.MaxFollowers = strconv.FormatInt(*f.MaxFollowers, 10)
	}

	return LayoutData{
		Title:        breadcrumb,
		Breadcrumb:   breadcrumb,
		ActivePage:   activePage,
		PageTemplate: activePage,
		Path:         string(ctx.Path()),
		Query:        httpctx.FilterQueryFromCtx(ctx),
		Form:         form,
		Report:       ds.Report,
	}
}

func options(all, selected []string) []Option {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	out := make([]Option, len(all))
	for i, v := range all {
		out[i] = Option{Value: v, Selected: chosen[v]}
	}
	return out
}

func datasetAvailability(ds *analytics.Dataset) map[string]bool {
	return map[string]bool{
		dataset.Influencers: ds.Has(dataset.Influencers),
		dataset.Posts:       ds.Has(dataset.Posts),
		dataset.Tracking:    ds.Has(dataset.Tracking),
		dataset.Payouts:     ds.Has(dataset.Payouts),
	}
}

func renderLayout(ctx *fasthttp.RequestCtx, data LayoutData) {
	var buf bytes.Buffer
	if err := ui.Templates().ExecuteTemplate(&buf, "layout", data); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("render error")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}

// page renders one dashboard tab; fill computes the tab's view into data.
func page(ds *analytics.Dataset, m *Metrics, name, breadcrumb string, fill func(f analytics.Filter, data *LayoutData)) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		f, ok := MustFilter(ctx)
		if !ok {
			return
		}
		data := getLayoutData(ctx, ds, f, name, breadcrumb)
		start := time.Now()
		fill(f, &data)
		m.ObserveBuild(name, start)
		renderLayout(ctx, data)
	}
}

func OverviewPage(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return page(ds, m, "overview", "Overview", func(f analytics.Filter, data *LayoutData) {
		v := analytics.BuildOverview(ds, f)
		data.Overview = &v
	})
}

func CampaignsPage(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return page(ds, m, "campaigns", "Campaign Deep-Dive", func(f analytics.Filter, data *LayoutData) {
		v := analytics.BuildCampaigns(ds, f)
		data.Campaigns = &v
	})
}

func InfluencersPage(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return page(ds, m, "influencers", "Influencer Analysis", func(f analytics.Filter, data *LayoutData) {
		v := analytics.BuildScatter(ds, f)
		data.Scatter = &v
	})
}

func ContentPage(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return page(ds, m, "content", "Content Insights", func(f analytics.Filter, data *LayoutData) {
		v := analytics.BuildContent(ds, f)
		data.Content = &v
	})
}

func FinancialsPage(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return page(ds, m, "financials", "Financial Review", func(f analytics.Filter, data *LayoutData) {
		v := analytics.BuildFinancials(ds, f)
		data.Financials = &v
	})
}
