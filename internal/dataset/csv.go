package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Paths locates the four CSV exports.
type Paths struct {
	Influencers string
	Posts       string
	Tracking    string
	Payouts     string
}

// LoadCSV reads the four datasets from CSV files. A missing file is a
// DataLoadError unless opts marks that dataset optional, in which case the
// table stays empty and the name is recorded in Tables.Missing.
func LoadCSV(paths Paths, opts Options) (*Tables, error) {
	out := &Tables{}

	steps := []struct {
		name string
		path string
		read func(*table, *Tables) error
	}{
		{Influencers, paths.Influencers, readInfluencers},
		{Posts, paths.Posts, readPosts},
		{Tracking, paths.Tracking, readTracking},
		{Payouts, paths.Payouts, readPayouts},
	}

	for _, s := range steps {
		t, err := openTable(s.name, s.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !opts.IsRequired(s.name) {
				out.Missing = append(out.Missing, s.name)
				continue
			}
			return nil, err
		}
		if err := s.read(t, out); err != nil {
			return nil, err
		}
	}

	out.MergePayouts()
	return out, nil
}

// table is a parsed CSV file with a normalised header index.
type table struct {
	dataset string
	path    string
	header  []string
	index   map[string]int
	rows    [][]string
}

func openTable(dataset, path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Dataset: dataset, Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &DataLoadError{Dataset: dataset, Path: path, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, &DataLoadError{Dataset: dataset, Path: path, Err: fmt.Errorf("csv: read header: %w", err)}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &DataLoadError{Dataset: dataset, Path: path, Err: fmt.Errorf("csv: read rows: %w", err)}
	}

	t := &table{dataset: dataset, path: path, rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		key := normalizeHeader(h)
		t.header = append(t.header, key)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// col returns the index of the first alias present in the header, or -1.
func (t *table) col(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := t.index[a]; ok {
			return i
		}
	}
	return -1
}

func (t *table) require(aliases ...string) (int, error) {
	if i := t.col(aliases...); i >= 0 {
		return i, nil
	}
	return -1, &DataLoadError{
		Dataset: t.dataset,
		Path:    t.path,
		Err:     fmt.Errorf("missing required column %q", aliases[0]),
	}
}

// requireAll resolves one index per alias group, in order.
func (t *table) requireAll(groups ...[]string) ([]int, error) {
	idx := make([]int, 0, len(groups))
	for _, g := range groups {
		i, err := t.require(g...)
		if err != nil {
			return nil, err
		}
		idx = append(idx, i)
	}
	return idx, nil
}

func (t *table) rowErr(row int, err error) error {
	return &DataLoadError{Dataset: t.dataset, Path: t.path, Row: row, Err: err}
}

// cells reads typed values out of one record; the first failure sticks.
type cells struct {
	rec []string
	err error
}

func (c *cells) str(i int) string {
	if i < 0 || i >= len(c.rec) {
		return ""
	}
	return strings.TrimSpace(c.rec[i])
}

func (c *cells) float(i int, name string) float64 {
	s := c.str(i)
	if s == "" || c.err != nil {
		return 0
	}
	f, err := cast.ToFloat64E(s)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		err = fmt.Errorf("%q is not a finite number", s)
	}
	if err != nil {
		c.err = fmt.Errorf("column %s: %w", name, err)
		return 0
	}
	return f
}

func (c *cells) count(i int, name string) int64 {
	f := c.float(i, name)
	if c.err != nil {
		return 0
	}
	if f != math.Trunc(f) {
		c.err = fmt.Errorf("column %s: %q is not a whole number", name, c.str(i))
		return 0
	}
	return int64(f)
}

func (c *cells) when(i int, name string) time.Time {
	s := c.str(i)
	if s == "" || c.err != nil {
		return time.Time{}
	}
	ts, err := cast.ToTimeE(s)
	if err != nil {
		c.err = fmt.Errorf("column %s: %w", name, err)
		return time.Time{}
	}
	return ts
}

func readInfluencers(t *table, out *Tables) error {
	idx, err := t.requireAll(
		[]string{"id", "influencer_id"},
		[]string{"name"},
		[]string{"category"},
		[]string{"follower_count", "followers"},
	)
	if err != nil {
		return err
	}
	id, name, category, followers := idx[0], idx[1], idx[2], idx[3]
	platform := t.col("platform")

	known := map[int]bool{id: true, name: true, category: true, followers: true, platform: true}
	seen := make(map[string]bool, len(t.rows))

	for n, rec := range t.rows {
		c := &cells{rec: rec}
		inf := Influencer{
			ID:            c.str(id),
			Name:          c.str(name),
			Category:      c.str(category),
			FollowerCount: c.count(followers, "follower_count"),
			Platform:      c.str(platform),
		}
		for i, h := range t.header {
			if known[i] {
				continue
			}
			if v := c.str(i); v != "" {
				if inf.Metadata == nil {
					inf.Metadata = make(map[string]any)
				}
				inf.Metadata[h] = v
			}
		}
		if c.err != nil {
			return t.rowErr(n+1, c.err)
		}
		if err := Validate(inf); err != nil {
			return t.rowErr(n+1, err)
		}
		if seen[inf.ID] {
			return t.rowErr(n+1, fmt.Errorf("duplicate influencer id %q", inf.ID))
		}
		seen[inf.ID] = true
		out.Influencers = append(out.Influencers, inf)
	}
	return nil
}

func readPosts(t *table, out *Tables) error {
	idx, err := t.requireAll(
		[]string{"post_id", "id"},
		[]string{"influencer_id"},
		[]string{"likes"},
		[]string{"comments"},
		[]string{"reach"},
	)
	if err != nil {
		return err
	}
	id, influencer, likes, comments, reach := idx[0], idx[1], idx[2], idx[3], idx[4]
	platform := t.col("platform")
	url := t.col("url")
	caption := t.col("caption")
	date := t.col("date", "posted_at", "timestamp")

	seen := make(map[string]bool, len(t.rows))
	for n, rec := range t.rows {
		c := &cells{rec: rec}
		p := Post{
			ID:           c.str(id),
			InfluencerID: c.str(influencer),
			Platform:     c.str(platform),
			URL:          c.str(url),
			Caption:      c.str(caption),
			Likes:        c.count(likes, "likes"),
			Comments:     c.count(comments, "comments"),
			Reach:        c.count(reach, "reach"),
			PostedAt:     c.when(date, "date"),
		}
		if c.err != nil {
			return t.rowErr(n+1, c.err)
		}
		if err := Validate(p); err != nil {
			return t.rowErr(n+1, err)
		}
		if seen[p.ID] {
			return t.rowErr(n+1, fmt.Errorf("duplicate post id %q", p.ID))
		}
		seen[p.ID] = true
		out.Posts = append(out.Posts, p)
	}
	return nil
}

func readTracking(t *table, out *Tables) error {
	idx, err := t.requireAll(
		[]string{"influencer_id"},
		[]string{"campaign"},
		[]string{"revenue"},
	)
	if err != nil {
		return err
	}
	influencer, campaign, revenue := idx[0], idx[1], idx[2]
	id := t.col("id", "tracking_id", "order_id")
	source := t.col("source", "post_id")
	product := t.col("product")
	orders := t.col("orders")
	date := t.col("date", "timestamp")

	for n, rec := range t.rows {
		c := &cells{rec: rec}
		ev := TrackingEvent{
			ID:           c.str(id),
			InfluencerID: c.str(influencer),
			Campaign:     c.str(campaign),
			Source:       c.str(source),
			Product:      c.str(product),
			Orders:       c.count(orders, "orders"),
			Revenue:      c.float(revenue, "revenue"),
			OccurredAt:   c.when(date, "date"),
		}
		if id < 0 {
			ev.ID = strconv.Itoa(n + 1)
		}
		if c.err != nil {
			return t.rowErr(n+1, c.err)
		}
		if err := Validate(ev); err != nil {
			return t.rowErr(n+1, err)
		}
		out.Tracking = append(out.Tracking, ev)
	}
	return nil
}

func readPayouts(t *table, out *Tables) error {
	idx, err := t.requireAll(
		[]string{"influencer_id"},
		[]string{"total_payout", "total", "payout"},
	)
	if err != nil {
		return err
	}
	influencer, total := idx[0], idx[1]
	basis := t.col("basis")
	rate := t.col("rate")
	orders := t.col("orders")

	for n, rec := range t.rows {
		c := &cells{rec: rec}
		p := Payout{
			InfluencerID: c.str(influencer),
			Basis:        c.str(basis),
			Rate:         c.float(rate, "rate"),
			Orders:       c.count(orders, "orders"),
			Total:        c.float(total, "total_payout"),
		}
		if c.err != nil {
			return t.rowErr(n+1, c.err)
		}
		if err := Validate(p); err != nil {
			return t.rowErr(n+1, err)
		}
		out.Payouts = append(out.Payouts, p)
	}
	return nil
}
