package middleware

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"influencerroi/internal/analytics"
	httpctx "influencerroi/internal/http/ctx"
)

// Filter returns middleware that parses the dashboard filter from the query
// string, validates it and sets it on the context. Invalid input is a 400.
func Filter(defaults analytics.Filter) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			f, err := FilterFromArgs(ctx.QueryArgs(), defaults)
			if err != nil {
				ctx.SetStatusCode(fasthttp.StatusBadRequest)
				ctx.SetBodyString(err.Error())
				return
			}
			if err := f.Validate(); err != nil {
				ctx.SetStatusCode(fasthttp.StatusBadRequest)
				ctx.SetBodyString(err.Error())
				return
			}

			httpctx.SetFilter(ctx, f)
			httpctx.SetFilterQuery(ctx, FilterQuery(f, defaults))
			next(ctx)
		}
	}
}

// FilterFromArgs reads campaign, category, min_followers, max_followers,
// threshold, rank, top, sort and limit. Campaign and category may repeat
// or be comma separated. Absent args keep the defaults.
func FilterFromArgs(args *fasthttp.Args, defaults analytics.Filter) (analytics.Filter, error) {
	f := analytics.NewFilter(defaults)

	if v := multi(args, "campaign"); v != nil {
		f.Campaigns = v
	}
	if v := multi(args, "category"); v != nil {
		f.Categories = v
	}

	if s := peek(args, "min_followers"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid min_followers %q", s)
		}
		f.MinFollowers = n
	}
	if s := peek(args, "max_followers"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid max_followers %q", s)
		}
		f.MaxFollowers = &n
	}
	if s := peek(args, "threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return f, fmt.Errorf("invalid threshold %q", s)
		}
		f.Threshold = v
	}
	if s := peek(args, "top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("invalid top %q", s)
		}
		f.LeaderboardSize = n
	}
	if s := peek(args, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("invalid limit %q", s)
		}
		f.ContentLimit = n
	}
	if args.Has("rank") {
		k, err := analytics.ParseLeaderboardKey(peek(args, "rank"))
		if err != nil {
			return f, err
		}
		f.LeaderboardBy = k
	}
	if args.Has("sort") {
		k, err := analytics.ParseSortKey(peek(args, "sort"))
		if err != nil {
			return f, err
		}
		f.ContentSort = k
	}
	return f, nil
}

// FilterQuery encodes the parts of f that differ from defaults, in a fixed
// order, for links between pages.
func FilterQuery(f, defaults analytics.Filter) string {
	var q fasthttp.Args
	for _, c := range f.Campaigns {
		q.Add("campaign", c)
	}
	for _, c := range f.Categories {
		q.Add("category", c)
	}
	if f.MinFollowers != defaults.MinFollowers {
		q.Add("min_followers", strconv.FormatInt(f.MinFollowers, 10))
	}
	if f.MaxFollowers != nil {
		q.Add("max_followers", strconv.FormatInt(*f.MaxFollowers, 10))
	}
	if f.Threshold != defaults.Threshold {
		q.Add("threshold", strconv.FormatFloat(f.Threshold, 'f', -1, 64))
	}
	if f.LeaderboardSize != defaults.LeaderboardSize {
		q.Add("top", strconv.Itoa(f.LeaderboardSize))
	}
	if f.LeaderboardBy != defaults.LeaderboardBy {
		q.Add("rank", f.LeaderboardBy.String())
	}
	if f.ContentSort != defaults.ContentSort {
		q.Add("sort", f.ContentSort.String())
	}
	if f.ContentLimit != defaults.ContentLimit {
		q.Add("limit", strconv.Itoa(f.ContentLimit))
	}
	return q.String()
}

func peek(args *fasthttp.Args, key string) string {
	return strings.TrimSpace(string(args.Peek(key)))
}

// multi collects every value of key, splitting on commas. It returns nil
// when the key is absent and an empty slice for "all".
func multi(args *fasthttp.Args, key string) []string {
	raw := args.PeekMulti(key)
	if len(raw) == 0 {
		return nil
	}
	out := []string{}
	for _, b := range raw {
		for _, part := range strings.Split(string(b), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
