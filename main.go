package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"influencerroi/internal/analytics"
	"influencerroi/internal/config"
	"influencerroi/internal/dataset"
	"influencerroi/internal/db"
	"influencerroi/internal/http/handlers"
	appmw "influencerroi/internal/http/middleware"
	"influencerroi/internal/logger"
	"influencerroi/internal/report"
	ui "influencerroi/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	rootCmd := &cobra.Command{
		Use:   "influencerroi",
		Short: "Influencer marketing ROI dashboard",
		Long: `influencerroi loads influencer, post, tracking and payout exports,
joins them and serves ROI views (overview, campaigns, influencers,
content, financials) over HTTP or prints them to the terminal.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, log)
		},
	}
	rootCmd.AddCommand(serveCmd(cfg, log))
	rootCmd.AddCommand(reportCmd(cfg, log))

	if err := rootCmd.Execute(); err != nil {
		log.Error("exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func serveCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func reportCmd(cfg *config.Config, log *zap.Logger) *cobra.Command {
	var (
		views        []string
		campaigns    []string
		categories   []string
		minFollowers int64
		maxFollowers int64
		threshold    float64
		sortKey      string
		rankKey      string
		top          int
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print dashboard views to the terminal",
		Long: `Load the datasets once, apply the filter flags and print the
selected views as tables.

Examples:
  influencerroi report
  influencerroi report --view overview --view financials --threshold 0.5
  influencerroi report --campaign summer --category fitness --sort likes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cfg, log)
			if err != nil {
				return err
			}

			f := cfg.DefaultFilter()
			f.Campaigns = campaigns
			f.Categories = categories
			f.MinFollowers = minFollowers
			if maxFollowers >= 0 {
				f.MaxFollowers = &maxFollowers
			}
			if cmd.Flags().Changed("threshold") {
				f.Threshold = threshold
			}
			if cmd.Flags().Changed("top") {
				f.LeaderboardSize = top
			}
			if cmd.Flags().Changed("limit") {
				f.ContentLimit = limit
			}
			if f.ContentSort, err = analytics.ParseSortKey(sortKey); err != nil {
				return err
			}
			if f.LeaderboardBy, err = analytics.ParseLeaderboardKey(rankKey); err != nil {
				return err
			}
			f = analytics.NewFilter(f)
			if err := f.Validate(); err != nil {
				return err
			}

			return report.Write(cmd.OutOrStdout(), analytics.Build(ds, f), views...)
		},
	}

	cmd.Flags().StringSliceVar(&views, "view", nil, "views to print (overview, campaigns, influencers, content, financials); default all")
	cmd.Flags().StringSliceVar(&campaigns, "campaign", nil, "campaigns to include; default all")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "influencer categories to include; default all")
	cmd.Flags().Int64Var(&minFollowers, "min-followers", 0, "minimum follower count")
	cmd.Flags().Int64Var(&maxFollowers, "max-followers", -1, "maximum follower count; negative means unbounded")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "ROI below which an influencer is an underperformer")
	cmd.Flags().StringVar(&sortKey, "sort", "revenue", "content sort key: revenue, likes, engagement_rate")
	cmd.Flags().StringVar(&rankKey, "rank", "revenue", "leaderboard ranking: revenue, roi")
	cmd.Flags().IntVar(&top, "top", 5, "leaderboard size")
	cmd.Flags().IntVar(&limit, "limit", 5, "number of posts in content insights")

	return cmd
}

// loadDataset runs the loader selected by APP_DATA_SOURCE and joins the
// result. Load errors are returned as is so the user sees which dataset failed.
func loadDataset(cfg *config.Config, log *zap.Logger) (*analytics.Dataset, error) {
	var (
		tables *dataset.Tables
		err    error
	)
	switch cfg.DataSource {
	case "csv":
		tables, err = dataset.LoadCSV(cfg.Paths(), cfg.LoadOptions())
	case "postgres":
		gdb, cerr := db.Connect(cfg.DatabaseURL)
		if cerr != nil {
			return nil, fmt.Errorf("connect database: %w", cerr)
		}
		tables, err = db.Load(gdb, cfg.LoadOptions())
	default:
		return nil, fmt.Errorf("unknown APP_DATA_SOURCE %q (supported: csv, postgres)", cfg.DataSource)
	}
	if err != nil {
		return nil, err
	}

	ds := analytics.Join(tables)
	r := ds.Report
	log.Info("datasets loaded",
		zap.String("source", cfg.DataSource),
		zap.Int("influencers", r.LoadedInfluencers),
		zap.Int("posts", r.LoadedPosts),
		zap.Int("tracking", r.LoadedTracking),
		zap.Int("payouts", r.LoadedPayouts),
		zap.Strings("missing", r.Missing),
	)
	if r.DroppedTracking+r.DroppedPosts+r.DroppedPayouts+r.UnresolvedSources > 0 {
		log.Warn("rows dropped by joins",
			zap.Int("tracking", r.DroppedTracking),
			zap.Int("posts", r.DroppedPosts),
			zap.Int("payouts", r.DroppedPayouts),
			zap.Int("unresolved_sources", r.UnresolvedSources),
		)
	}
	if r.DuplicatePayouts > 0 {
		log.Warn("duplicate payout rows summed", zap.Int("rows", r.DuplicatePayouts))
	}
	return ds, nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ds, err := loadDataset(cfg, log)
	if err != nil {
		return err
	}

	metrics := handlers.NewMetrics()
	metrics.RecordLoad(ds.Report)

	filter := appmw.Filter(cfg.DefaultFilter())

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.PrometheusHandler(metrics))

	r.ServeFS("/static/{filepath:*}", ui.StaticFS())

	r.GET("/", filter(handlers.OverviewPage(ds, metrics)))
	r.GET("/campaigns", filter(handlers.CampaignsPage(ds, metrics)))
	r.GET("/influencers", filter(handlers.InfluencersPage(ds, metrics)))
	r.GET("/content", filter(handlers.ContentPage(ds, metrics)))
	r.GET("/financials", filter(handlers.FinancialsPage(ds, metrics)))

	r.GET("/v1/overview", filter(handlers.OverviewAPI(ds, metrics)))
	r.GET("/v1/campaigns", filter(handlers.CampaignsAPI(ds, metrics)))
	r.GET("/v1/influencers", filter(handlers.InfluencersAPI(ds, metrics)))
	r.GET("/v1/influencers/{id}", filter(handlers.InfluencerDetail(ds, metrics)))
	r.GET("/v1/content", filter(handlers.ContentAPI(ds, metrics)))
	r.GET("/v1/financials", filter(handlers.FinancialsAPI(ds, metrics)))
	r.GET("/v1/filters", handlers.FilterOptions(ds, cfg.DefaultFilter()))
	r.GET("/v1/load-report", handlers.LoadReport(ds))

	server := &fasthttp.Server{
		Handler: handlers.RequestLogger(log)(r.Handler),
		Name:    "influencerroi",
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("influencerroi listening", zap.String("addr", cfg.ListenAddr))
		return server.ListenAndServe(cfg.ListenAddr)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-quit:
			log.Info("received signal, shutting down", zap.String("signal", sig.String()))
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
