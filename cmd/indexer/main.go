// Command indexer runs the Hive-style block indexer: checkpoint replay,
// range backfill, and live tail into a PostgreSQL store. Subcommands are
// organized the way a multi-binary cobra CLI typically groups them, with
// a godotenv + viper bootstrap ahead of flag parsing.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hiveio/hive-indexer/internal/adapter"
	"github.com/hiveio/hive-indexer/internal/cachemaint"
	"github.com/hiveio/hive-indexer/internal/healthz"
	"github.com/hiveio/hive-indexer/internal/metrics"
	"github.com/hiveio/hive-indexer/internal/projector"
	"github.com/hiveio/hive-indexer/internal/store"
	"github.com/hiveio/hive-indexer/internal/syncer"
	appconfig "github.com/hiveio/hive-indexer/pkg/config"
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{Use: "indexer"}
	root.PersistentFlags().String("env", "", "named config environment to merge over default.yaml")

	root.AddCommand(runCmd())
	root.AddCommand(backfillCmd())
	root.AddCommand(statusCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// pipeline bundles everything wireSyncer constructs, so callers can shut
// it down in the right order (servers before the pool they read from).
type pipeline struct {
	syncer  *syncer.Syncer
	gateway *store.Gateway
	metrics *metrics.Metrics
	cfg     *appconfig.Config
}

// wireSyncer loads config and constructs the full pipeline: store,
// adapter, projector, cache maintainer, and the syncer that drives them.
func wireSyncer(ctx context.Context, cmd *cobra.Command) (*pipeline, error) {
	env, _ := cmd.Flags().GetString("env")
	cfg, err := appconfig.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := buildLogger(cfg.Logging.Level)
	sugar := zap.NewNop().Sugar()
	if zl, err := zap.NewProduction(); err == nil {
		sugar = zl.Sugar()
	}

	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}
	gateway := store.New(pool, logger)

	endpoint := "https://api.hive.blog"
	if len(cfg.Adapter.Endpoints) > 0 {
		endpoint = cfg.Adapter.Endpoints[0]
	}
	timeout, err := time.ParseDuration(cfg.Adapter.HTTPTimeout)
	if err != nil {
		timeout = 10 * time.Second
	}
	idleTimeout, err := time.ParseDuration(cfg.Adapter.IdleTimeout)
	if err != nil {
		idleTimeout = 90 * time.Second
	}
	httpAdapter := adapter.NewPooledHTTPAdapter(endpoint, timeout, timeout*time.Duration(cfg.Adapter.MaxRetries), cfg.Adapter.MaxIdleConns, idleTimeout, logger)

	proj := projector.New(gateway, logger)
	maint := cachemaint.New(gateway, httpAdapter, logger, sugar)

	syncCfg := syncer.Config{
		TrailBlocks:    cfg.Sync.TrailBlocks,
		LiveRetrySleep: time.Duration(cfg.Sync.LiveRetryMS) * time.Millisecond,
		WallClockWarn:  time.Duration(cfg.Sync.WallClockWarnS) * time.Second,
		ChunkSize:      cfg.Sync.ChunkSize,
		RangeWindow:    cfg.Sync.RangeWindow,
		CheckpointDir:  cfg.Sync.CheckpointDir,
	}
	s := syncer.New(gateway, httpAdapter, proj, maint, syncCfg, logger)
	m := metrics.New(logger)
	s.SetMetrics(m)
	return &pipeline{syncer: s, gateway: gateway, metrics: m, cfg: cfg}, nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run checkpoint replay, range backfill, and live tail",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := wireSyncer(ctx, cmd)
			if err != nil {
				return err
			}
			defer p.gateway.Close()

			metricsSrv := p.metrics.StartServer(p.cfg.HTTP.MetricsAddr)
			defer metricsSrv.Shutdown(ctx)

			healthzSrv := &http.Server{Addr: p.cfg.HTTP.HealthzAddr, Handler: healthz.NewRouter(p.syncer)}
			go healthzSrv.ListenAndServe()
			defer healthzSrv.Shutdown(ctx)

			go p.metrics.RunCollector(ctx, p.syncer, 15*time.Second)

			p.syncer.Start(ctx)
			<-ctx.Done()
			p.syncer.Stop()
			return nil
		},
	}
}

func backfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "run checkpoint replay and range backfill once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := wireSyncer(ctx, cmd)
			if err != nil {
				return err
			}
			defer p.gateway.Close()
			return p.syncer.Backfill(ctx)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "print the current sync status as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := wireSyncer(ctx, cmd)
			if err != nil {
				return err
			}
			defer p.gateway.Close()
			out, err := json.Marshal(p.syncer.Status(ctx))
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
