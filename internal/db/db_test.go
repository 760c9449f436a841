package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"influencerroi/internal/dataset"
)

func setupTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "roi.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models...))
	return gdb
}

func seed(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	posted := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, gdb.Create(&[]Influencer{
		{ID: "1", Name: "Asha", Category: "fitness", FollowerCount: 50000, Platform: "Instagram",
			Metadata: datatypes.JSONMap{"handle": "@asha"}},
		{ID: "2", Name: "Ben", Category: "nutrition", FollowerCount: 12000, Platform: "YouTube"},
	}).Error)
	require.NoError(t, gdb.Create(&[]Post{
		{ID: "P1", InfluencerID: "1", Likes: 100, Comments: 20, Reach: 2000, PostedAt: posted},
	}).Error)
	require.NoError(t, gdb.Create(&[]TrackingEvent{
		{ID: "T1", InfluencerID: "1", Campaign: "X", Source: "P1", Orders: 2, Revenue: 500},
		{ID: "T2", InfluencerID: "2", Campaign: "Y", Orders: 1, Revenue: 80},
	}).Error)
	require.NoError(t, gdb.Create(&[]Payout{
		{InfluencerID: "1", Basis: "post", Total: 150},
		{InfluencerID: "1", Basis: "bonus", Total: 50},
		{InfluencerID: "2", Basis: "order", Total: 10},
	}).Error)
}

func TestLoad_AllTables(t *testing.T) {
	gdb := setupTestDB(t, &Influencer{}, &Post{}, &TrackingEvent{}, &Payout{})
	seed(t, gdb)

	tables, err := Load(gdb, dataset.Options{})
	require.NoError(t, err)

	require.Len(t, tables.Influencers, 2)
	assert.Equal(t, "Asha", tables.Influencers[0].Name)
	assert.Equal(t, "@asha", tables.Influencers[0].Metadata["handle"])
	assert.Equal(t, int64(12000), tables.Influencers[1].FollowerCount)

	require.Len(t, tables.Posts, 1)
	assert.Equal(t, int64(2000), tables.Posts[0].Reach)

	require.Len(t, tables.Tracking, 2)
	assert.Equal(t, "P1", tables.Tracking[0].Source)

	require.Len(t, tables.Payouts, 2)
	assert.InDelta(t, 200.0, tables.Payouts[0].Total, 1e-9)
	assert.Equal(t, 1, tables.DuplicatePayouts)
}

func TestLoad_MissingRequiredTable(t *testing.T) {
	gdb := setupTestDB(t, &Influencer{}, &Post{}, &TrackingEvent{})

	_, err := Load(gdb, dataset.Options{})
	require.Error(t, err)

	var loadErr *dataset.DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, dataset.Payouts, loadErr.Dataset)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestLoad_MissingOptionalTable(t *testing.T) {
	gdb := setupTestDB(t, &Influencer{}, &TrackingEvent{}, &Payout{})

	tables, err := Load(gdb, dataset.Options{Required: []string{dataset.Influencers, dataset.Tracking, dataset.Payouts}})
	require.NoError(t, err)
	assert.Equal(t, []string{dataset.Posts}, tables.Missing)
}

func TestLoad_InvalidRow(t *testing.T) {
	gdb := setupTestDB(t, &Influencer{}, &Post{}, &TrackingEvent{}, &Payout{})
	require.NoError(t, gdb.Create(&Influencer{ID: "1", Name: "Asha", FollowerCount: -1}).Error)

	_, err := Load(gdb, dataset.Options{})
	require.Error(t, err)

	var loadErr *dataset.DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, 1, loadErr.Row)
}

func TestConnect_RejectsNonPostgresURL(t *testing.T) {
	_, err := Connect("")
	assert.Error(t, err)

	_, err = Connect("mysql://localhost/roi")
	assert.EqualError(t, err, "APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
}
