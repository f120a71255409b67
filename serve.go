package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/dialog"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/embedding"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/menu"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/order"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/repo"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/retrieval"
	"github.com/Chative-core-poc-v1/orderbot/internal/api"
	"github.com/Chative-core-poc-v1/orderbot/internal/core"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/orderbot/pkg/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dialog hook over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.requireAPIKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register(prometheus.DefaultRegisterer)

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Parser:  &cfg.Parser,
		Answer:  &cfg.Answer,
	})
	if err != nil {
		return err
	}
	queryEmbedder := embedding.NewGenAIEmbedder(cms.Client, cfg.Embedding.Model, embedding.TaskQuery)

	store, closeStore, err := openCatalogStore(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeStore()

	catalogTTL, err := time.ParseDuration(cfg.Catalog.TTL)
	if err != nil {
		return fmt.Errorf("invalid CATALOG_TTL %q: %w", cfg.Catalog.TTL, err)
	}
	cache := menu.NewCache(store, catalogTTL)
	if _, err := cache.Get(ctx, false); err != nil {
		// the first turn retries the load
		logx.Warn().Err(err).Msg("menu catalog not loaded at startup")
	}

	var answerer *dialog.Answerer
	if idx, err := retrieval.Load(cfg.Retrieval.IndexPath); err != nil {
		logx.Warn().Err(err).Str("path", cfg.Retrieval.IndexPath).Msg("knowledge index unavailable, questions will get an apology")
	} else {
		answerer = dialog.NewAnswerer(queryEmbedder, idx, cms.Answer, cfg.Retrieval.TopK)
	}

	var redisCfg pkgredis.Config
	if err := envconfig.Process("redis", &redisCfg); err != nil {
		return fmt.Errorf("process redis config: %w", err)
	}
	rdb, err := redisCfg.New(ctx)
	if err != nil {
		return fmt.Errorf("initialise redis client: %w", err)
	}
	defer rdb.Close()

	sinkTTL, err := time.ParseDuration(cfg.Sink.TTL)
	if err != nil {
		return fmt.Errorf("invalid ORDER_SINK_TTL %q: %w", cfg.Sink.TTL, err)
	}

	engine, err := dialog.NewEngine(dialog.Config{
		Catalog:    cache,
		Parser:     order.NewParser(cms.Parser),
		Builder:    order.NewBuilder(menu.NewResolver(queryEmbedder), cfg.Match.DishCutoff, cfg.Match.DrinkCutoff),
		Answerer:   answerer,
		Classifier: dialog.NewClassifier(cms.Parser),
		Sink:       repo.NewRedisOrderSink(rdb, sinkTTL),
	})
	if err != nil {
		return err
	}
	runner, err := graph.NewRunner(ctx, engine)
	if err != nil {
		return err
	}

	if core.ParseEnvironment(cfg.Env).IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.Register(r, runner, prometheus.DefaultGatherer)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", cfg.HTTP.Addr).Msg("hook server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logx.Info().Msg("shutting down hook server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openCatalogStore opens the configured catalog backend.
func openCatalogStore(ctx context.Context, cfg model.CatalogConfig) (model.CatalogStore, func(), error) {
	switch cfg.Driver {
	case "sqlite", "":
		store, err := repo.OpenSQLiteCatalog(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "file", "yaml":
		return repo.NewFileCatalogStore(cfg.Path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown CATALOG_DRIVER %q", cfg.Driver)
	}
}
