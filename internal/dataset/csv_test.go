package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	influencersCSV = "ID,name,category,follower_count,platform,handle\n" +
		"1,Asha,fitness,50000,Instagram,@asha\n" +
		"2,Ben,nutrition,12000,YouTube,\n"
	postsCSV = "post_id,influencer_id,platform,date,url,caption,reach,likes,comments\n" +
		"P1,1,Instagram,2025-05-01,https://example.com/p1,Morning whey,2000,100,20\n" +
		"P2,2,YouTube,2025-05-03,https://example.com/p2,Meal prep,0,5,1\n"
	trackingCSV = "source,campaign,influencer_id,user_id,product,date,orders,revenue\n" +
		"P1,X,1,u1,Whey,2025-05-02,2,500\n" +
		"P2,Y,2,u2,Oats,2025-05-04,1,80.5\n"
	payoutsCSV = "influencer_id,basis,rate,orders,total_payout\n" +
		"1,post,200,2,200\n" +
		"2,order,10,1,10\n"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixturePaths(t *testing.T, files map[string]string) Paths {
	t.Helper()
	dir := t.TempDir()
	paths := Paths{
		Influencers: filepath.Join(dir, "influencers.csv"),
		Posts:       filepath.Join(dir, "posts.csv"),
		Tracking:    filepath.Join(dir, "tracking_data.csv"),
		Payouts:     filepath.Join(dir, "payouts.csv"),
	}
	for name, content := range files {
		writeFixture(t, dir, name, content)
	}
	return paths
}

func allFixtures() map[string]string {
	return map[string]string{
		"influencers.csv":   influencersCSV,
		"posts.csv":         postsCSV,
		"tracking_data.csv": trackingCSV,
		"payouts.csv":       payoutsCSV,
	}
}

func TestLoadCSV_AllDatasets(t *testing.T) {
	tables, err := LoadCSV(fixturePaths(t, allFixtures()), Options{})
	require.NoError(t, err)

	require.Len(t, tables.Influencers, 2)
	asha := tables.Influencers[0]
	assert.Equal(t, "1", asha.ID)
	assert.Equal(t, "fitness", asha.Category)
	assert.Equal(t, int64(50000), asha.FollowerCount)
	assert.Equal(t, "Instagram", asha.Platform)
	assert.Equal(t, map[string]any{"handle": "@asha"}, asha.Metadata)
	assert.Nil(t, tables.Influencers[1].Metadata)

	require.Len(t, tables.Posts, 2)
	assert.Equal(t, "P1", tables.Posts[0].ID)
	assert.Equal(t, int64(2000), tables.Posts[0].Reach)
	assert.Equal(t, 2025, tables.Posts[0].PostedAt.Year())

	require.Len(t, tables.Tracking, 2)
	assert.Equal(t, "1", tables.Tracking[0].ID, "row number stands in for a missing id column")
	assert.Equal(t, "P1", tables.Tracking[0].Source)
	assert.InDelta(t, 80.5, tables.Tracking[1].Revenue, 1e-9)

	require.Len(t, tables.Payouts, 2)
	assert.InDelta(t, 200.0, tables.Payouts[0].Total, 1e-9)
	assert.Empty(t, tables.Missing)
}

func TestLoadCSV_MissingRequiredFile(t *testing.T) {
	files := allFixtures()
	delete(files, "payouts.csv")

	_, err := LoadCSV(fixturePaths(t, files), Options{})
	require.Error(t, err)

	var loadErr *DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, Payouts, loadErr.Dataset)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadCSV_MissingOptionalFile(t *testing.T) {
	files := allFixtures()
	delete(files, "posts.csv")

	tables, err := LoadCSV(fixturePaths(t, files), Options{Required: []string{Influencers, Tracking, Payouts}})
	require.NoError(t, err)
	assert.Equal(t, []string{Posts}, tables.Missing)
	assert.Empty(t, tables.Posts)
	assert.Len(t, tables.Tracking, 2)
}

func TestLoadCSV_MalformedRows(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		row     int
	}{
		{"non numeric followers", "influencers.csv", "id,name,category,follower_count\n1,A,fit,lots\n", 1},
		{"negative reach", "posts.csv", "post_id,influencer_id,likes,comments,reach\nP1,1,1,1,-5\n", 1},
		{"fractional likes", "posts.csv", "post_id,influencer_id,likes,comments,reach\nP1,1,1.5,1,5\n", 1},
		{"missing influencer id", "tracking_data.csv", "influencer_id,campaign,revenue\n1,X,10\n,X,10\n", 2},
		{"negative payout", "payouts.csv", "influencer_id,total_payout\n1,-1\n", 1},
		{"duplicate influencer", "influencers.csv", "id,name,category,follower_count\n1,A,fit,1\n1,B,fit,2\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := allFixtures()
			files[tt.file] = tt.content

			_, err := LoadCSV(fixturePaths(t, files), Options{})
			require.Error(t, err)

			var loadErr *DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.row, loadErr.Row)
		})
	}
}

func TestLoadCSV_MissingColumn(t *testing.T) {
	files := allFixtures()
	files["tracking_data.csv"] = "influencer_id,revenue\n1,10\n"

	_, err := LoadCSV(fixturePaths(t, files), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "campaign"`)
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	files := allFixtures()
	files["posts.csv"] = ""

	_, err := LoadCSV(fixturePaths(t, files), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestLoadCSV_DuplicatePayoutsMerged(t *testing.T) {
	files := allFixtures()
	files["payouts.csv"] = "influencer_id,basis,total_payout\n1,post,150\n2,post,10\n1,bonus,50\n"

	tables, err := LoadCSV(fixturePaths(t, files), Options{})
	require.NoError(t, err)

	require.Len(t, tables.Payouts, 2)
	assert.InDelta(t, 200.0, tables.Payouts[0].Total, 1e-9)
	assert.Equal(t, "post", tables.Payouts[0].Basis)
	assert.Equal(t, 1, tables.DuplicatePayouts)
}

func TestDataLoadError_Message(t *testing.T) {
	err := &DataLoadError{Dataset: Posts, Path: "posts.csv", Row: 3, Err: errors.New("bad")}
	assert.Equal(t, "load posts (posts.csv) row 3: bad", err.Error())

	err = &DataLoadError{Dataset: Posts, Path: "posts.csv", Err: errors.New("bad")}
	assert.Equal(t, "load posts (posts.csv): bad", err.Error())
}
