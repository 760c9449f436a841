package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"influencerroi/internal/dataset"
)

// ErrTableNotFound is wrapped into the DataLoadError for a required table
// that does not exist.
var ErrTableNotFound = errors.New("table not found")

// Connect opens a GORM connection using APP_DATABASE_URL (PostgreSQL URL).
// The dashboard only reads, so no migrations are run.
func Connect(databaseURL string) (*gorm.DB, error) {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	return gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
}

// Load reads the four tables into dataset.Tables. Missing tables follow the
// same required/optional rules as the CSV loader.
func Load(gdb *gorm.DB, opts dataset.Options) (*dataset.Tables, error) {
	out := &dataset.Tables{}

	if err := loadTable[Influencer](gdb, dataset.Influencers, "influencers", "id", opts, &out.Influencers, &out.Missing); err != nil {
		return nil, err
	}
	if err := loadTable[Post](gdb, dataset.Posts, "posts", "id", opts, &out.Posts, &out.Missing); err != nil {
		return nil, err
	}
	if err := loadTable[TrackingEvent](gdb, dataset.Tracking, "tracking_events", "id", opts, &out.Tracking, &out.Missing); err != nil {
		return nil, err
	}
	if err := loadTable[Payout](gdb, dataset.Payouts, "payouts", "influencer_id", opts, &out.Payouts, &out.Missing); err != nil {
		return nil, err
	}

	out.MergePayouts()
	return out, nil
}

// loadTable reads every row of one table as R and copies it into the
// matching dataset record type D.
func loadTable[R any, D any](gdb *gorm.DB, name, table, orderBy string, opts dataset.Options, dst *[]D, missing *[]string) error {
	if !gdb.Migrator().HasTable(table) {
		if opts.IsRequired(name) {
			return &dataset.DataLoadError{Dataset: name, Path: table, Err: ErrTableNotFound}
		}
		*missing = append(*missing, name)
		return nil
	}

	var rows []R
	if err := gdb.Table(table).Order(orderBy).Find(&rows).Error; err != nil {
		return &dataset.DataLoadError{Dataset: name, Path: table, Err: fmt.Errorf("query: %w", err)}
	}

	records := make([]D, 0, len(rows))
	if err := copier.Copy(&records, &rows); err != nil {
		return &dataset.DataLoadError{Dataset: name, Path: table, Err: fmt.Errorf("copy rows: %w", err)}
	}
	for i := range records {
		if err := dataset.Validate(records[i]); err != nil {
			return &dataset.DataLoadError{Dataset: name, Path: table, Row: i + 1, Err: err}
		}
	}

	*dst = records
	return nil
}
