package handlers

import (
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"influencerroi/internal/analytics"
)

func InfluencerDetail(ds *analytics.Dataset, m *Metrics) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		f, ok := MustFilter(ctx)
		if !ok {
			return
		}
		idVal := ctx.UserValue("id")
		if idVal == nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "id required")
			return
		}
		id, ok := idVal.(string)
		if !ok || strings.TrimSpace(id) == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid id")
			return
		}

		if _, known := ds.Influencer(id); !known {
			errResponse(ctx, fasthttp.StatusNotFound, "influencer not found")
			return
		}

		start := time.Now()
		detail, ok := analytics.BuildInfluencerDetail(ds, f, id)
		m.ObserveBuild("influencer_detail", start)
		if !ok {
			errResponse(ctx, fasthttp.StatusNotFound, "influencer not in current selection")
			return
		}
		jsonResponse(ctx, detail)
	}
}
