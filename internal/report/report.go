// Package report prints dashboard views as coloured terminal tables.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"influencerroi/internal/analytics"
)

// Views lists the printable views in display order.
var Views = []string{"overview", "campaigns", "influencers", "content", "financials"}

var (
	heading = color.New(color.Bold, color.FgCyan)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	muted   = color.New(color.FgHiBlack)
	warn    = color.New(color.FgYellow)
)

// Write prints the named views of d to w. An empty list prints all views.
func Write(w io.Writer, d *analytics.Dashboard, views ...string) error {
	if len(views) == 0 {
		views = Views
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		var err error
		switch v {
		case "overview":
			err = writeOverview(w, d.Overview)
		case "campaigns":
			err = writeCampaigns(w, d.Campaigns)
		case "influencers":
			err = writeInfluencers(w, d.Scatter)
		case "content":
			err = writeContent(w, d.Content)
		case "financials":
			err = writeFinancials(w, d.Financials)
		default:
			return fmt.Errorf("unknown view %q (supported: %s)", v, strings.Join(Views, ", "))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeNotices(w io.Writer, notices []string) {
	for _, n := range notices {
		fmt.Fprintf(w, "%s %s\n", warn.Sprint("!"), n)
	}
}

func writeOverview(w io.Writer, o analytics.Overview) error {
	fmt.Fprintln(w, heading.Sprint("OVERVIEW"))
	writeNotices(w, o.Notices)
	fmt.Fprintf(w, "  revenue %s  orders %d  payout %s  ROAS %s  ROI %s\n",
		money(o.Totals.Revenue), o.Totals.Orders, money(o.Totals.Payout),
		signed(o.Totals.ROAS, 1), signed(o.Totals.ROI, 0))

	fmt.Fprintf(w, "\n  Top influencers by %s\n", o.RankedBy)
	if len(o.Leaderboard) == 0 {
		fmt.Fprintln(w, muted.Sprint("  (no influencers match)"))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tID\tNAME\tCATEGORY\tREVENUE\tPAYOUT\tROI")
	for i, s := range o.Leaderboard {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, s.ID, s.Name, s.Category, money(s.Revenue), money(s.Payout), signed(s.ROI, 0))
	}
	return tw.Flush()
}

func writeCampaigns(w io.Writer, v analytics.CampaignView) error {
	fmt.Fprintln(w, heading.Sprint("CAMPAIGNS"))
	fmt.Fprintf(w, "  baseline ROAS %s\n", v.Baseline)
	if len(v.Campaigns) == 0 {
		fmt.Fprintln(w, muted.Sprint("  (no campaigns match)"))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  CAMPAIGN\tREVENUE\tPAYOUT\tINFLUENCERS\tROAS\tIROAS")
	for _, c := range v.Campaigns {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\t%s\n",
			c.Campaign, money(c.Revenue), money(c.Payout), c.Influencers, c.ROAS, signed(c.IROAS, 0))
	}
	return tw.Flush()
}

func writeInfluencers(w io.Writer, v analytics.ScatterView) error {
	fmt.Fprintln(w, heading.Sprint("INFLUENCERS"))
	if len(v.Points) == 0 {
		fmt.Fprintln(w, muted.Sprint("  (no influencers match)"))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tFOLLOWERS\tREVENUE\tROI\tENGAGEMENT")
	for _, p := range v.Points {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\t%s\t%.2f%%\n",
			p.InfluencerID, p.Name, p.FollowerCount, money(p.Revenue), signed(p.ROI, 0), p.EngagementRate*100)
	}
	return tw.Flush()
}

func writeContent(w io.Writer, v analytics.ContentView) error {
	fmt.Fprintln(w, heading.Sprint("CONTENT"))
	if !v.Available {
		fmt.Fprintln(w, warn.Sprint("  post data not loaded"))
		return nil
	}
	if len(v.Posts) == 0 {
		fmt.Fprintln(w, muted.Sprint("  (no posts match)"))
		return nil
	}
	fmt.Fprintf(w, "  top %d of %d by %s\n", len(v.Posts), v.Total, v.SortBy)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  POST\tINFLUENCER\tREVENUE\tLIKES\tENGAGEMENT\tCPM\tCPE")
	for _, p := range v.Posts {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%.2f%%\t%s\t%s\n",
			p.PostID, p.InfluencerName, money(p.Revenue), p.Likes, p.EngagementRate*100, money(p.CPM), money(p.CPE))
	}
	return tw.Flush()
}

func writeFinancials(w io.Writer, v analytics.FinancialView) error {
	fmt.Fprintln(w, heading.Sprint("FINANCIALS"))
	writeNotices(w, v.Notices)
	fmt.Fprintf(w, "  payout %s  revenue %s  underperformers %d (ROI < %g)\n",
		money(v.TotalPayout), money(v.TotalRevenue), v.Underperformers, v.Threshold)
	if len(v.Rows) == 0 {
		fmt.Fprintln(w, muted.Sprint("  (no influencers match)"))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tBASIS\tPAYOUT\tREVENUE\tROI\t")
	for _, r := range v.Rows {
		flag := ""
		if r.IsUnderperformer {
			flag = bad.Sprint("UNDERPERFORMER")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.InfluencerID, r.Name, r.Basis, money(r.Payout), money(r.Revenue), r.ROI, flag)
	}
	return tw.Flush()
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// signed colours a ratio green at or above pivot and red below it.
func signed(r analytics.Ratio, pivot float64) string {
	if !r.Valid {
		return muted.Sprint(r.String())
	}
	if r.Value >= pivot {
		return good.Sprint(r.String())
	}
	return bad.Sprint(r.String())
}
