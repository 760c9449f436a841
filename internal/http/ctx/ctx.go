package ctx

import (
	"github.com/valyala/fasthttp"

	"influencerroi/internal/analytics"
)

const (
	FilterKey = "filter"
	QueryKey  = "filterQuery"
)

func SetFilter(ctx *fasthttp.RequestCtx, f analytics.Filter) {
	ctx.SetUserValue(FilterKey, f)
}

func FilterFromCtx(ctx *fasthttp.RequestCtx) (analytics.Filter, bool) {
	v := ctx.UserValue(FilterKey)
	if v == nil {
		return analytics.Filter{}, false
	}
	f, ok := v.(analytics.Filter)
	return f, ok
}

// SetFilterQuery stores the normalized query string of the filter so pages
// can keep it on navigation links.
func SetFilterQuery(ctx *fasthttp.RequestCtx, q string) {
	ctx.SetUserValue(QueryKey, q)
}

func FilterQueryFromCtx(ctx *fasthttp.RequestCtx) string {
	s, _ := ctx.UserValue(QueryKey).(string)
	return s
}
