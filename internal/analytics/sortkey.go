package analytics

import (
	"cmp"
	"fmt"
	"strings"
)

// SortKey selects the content ranking.
type SortKey int

const (
	SortByRevenue SortKey = iota
	SortByLikes
	SortByEngagement
)

var sortKeyNames = map[SortKey]string{
	SortByRevenue:    "revenue",
	SortByLikes:      "likes",
	SortByEngagement: "engagement_rate",
}

// ParseSortKey accepts the key names plus the column names of the original
// export ("post_revenue", "engagement").
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "revenue", "post_revenue":
		return SortByRevenue, nil
	case "likes":
		return SortByLikes, nil
	case "engagement", "engagement_rate":
		return SortByEngagement, nil
	}
	return 0, fmt.Errorf("unknown content sort key %q (supported: revenue, likes, engagement_rate)", s)
}

func (k SortKey) String() string {
	if n, ok := sortKeyNames[k]; ok {
		return n
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

func (k SortKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	_, ok := sortKeyNames[k]
	return ok
}

// contentOrder ranks descending by the key, ties broken by post id.
var contentOrder = map[SortKey]func(a, b ContentItem) int{
	SortByRevenue: func(a, b ContentItem) int {
		return cmp.Or(cmp.Compare(b.Revenue, a.Revenue), cmp.Compare(a.PostID, b.PostID))
	},
	SortByLikes: func(a, b ContentItem) int {
		return cmp.Or(cmp.Compare(b.Likes, a.Likes), cmp.Compare(a.PostID, b.PostID))
	},
	SortByEngagement: func(a, b ContentItem) int {
		return cmp.Or(cmp.Compare(b.EngagementRate, a.EngagementRate), cmp.Compare(a.PostID, b.PostID))
	},
}

// LeaderboardKey selects the overview leaderboard ranking.
type LeaderboardKey int

const (
	LeaderboardByRevenue LeaderboardKey = iota
	LeaderboardByROI
)

var leaderboardKeyNames = map[LeaderboardKey]string{
	LeaderboardByRevenue: "revenue",
	LeaderboardByROI:     "roi",
}

// ParseLeaderboardKey parses "revenue" (default) or "roi".
func ParseLeaderboardKey(s string) (LeaderboardKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "revenue":
		return LeaderboardByRevenue, nil
	case "roi":
		return LeaderboardByROI, nil
	}
	return 0, fmt.Errorf("unknown leaderboard key %q (supported: revenue, roi)", s)
}

func (k LeaderboardKey) String() string {
	if n, ok := leaderboardKeyNames[k]; ok {
		return n
	}
	return fmt.Sprintf("LeaderboardKey(%d)", int(k))
}

func (k LeaderboardKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Valid reports whether k is a known leaderboard key.
func (k LeaderboardKey) Valid() bool {
	_, ok := leaderboardKeyNames[k]
	return ok
}

// leaderboardOrder ranks descending by the key, ties broken by influencer
// id. Undefined ROI sorts after every defined value.
var leaderboardOrder = map[LeaderboardKey]func(a, b InfluencerSummary) int{
	LeaderboardByRevenue: func(a, b InfluencerSummary) int {
		return cmp.Or(cmp.Compare(b.Revenue, a.Revenue), cmp.Compare(a.ID, b.ID))
	},
	LeaderboardByROI: func(a, b InfluencerSummary) int {
		return cmp.Or(compareRatioDesc(a.ROI, b.ROI), cmp.Compare(a.ID, b.ID))
	},
}

// compareRatioDesc orders defined ratios high to low, undefined last.
func compareRatioDesc(a, b Ratio) int {
	switch {
	case a.Valid && b.Valid:
		return cmp.Compare(b.Value, a.Value)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	}
	return 0
}
