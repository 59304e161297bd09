package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jask/restopick/internal/config"
	"github.com/jask/restopick/internal/database"
	"github.com/jask/restopick/internal/database/repository"
	"github.com/jask/restopick/internal/export"
	"github.com/jask/restopick/internal/logger"
	"github.com/jask/restopick/internal/recommend"
	"github.com/jask/restopick/internal/service"
	"github.com/jask/restopick/internal/tui"
)

func main() {
	clearHistory := flag.Bool("clear-history", false, "delete submission history and local feedback, then exit")
	writeConfig := flag.Bool("write-config", false, "write the effective configuration to the config file and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve client metrics on this address (e.g. :9100)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *writeConfig {
		if err := config.Save(cfg); err != nil {
			log.Fatalf("write config: %v", err)
		}
		fmt.Println("config written")
		return
	}

	zl, err := logger.New(cfg.Log.Env, cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	ctx = logger.ContextWithLogger(ctx, zl)

	db, err := database.Prepare(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if *clearHistory {
		maintenance := &service.MaintenanceService{DB: db}
		if err := maintenance.ClearHistory(ctx); err != nil {
			log.Fatalf("clear history: %v", err)
		}
		fmt.Println("history cleared")
		return
	}

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	reg := prometheus.NewRegistry()
	client, err := recommend.New(cfg.API.BaseURL,
		recommend.WithTimeout(cfg.API.Timeout),
		recommend.WithLogger(zl.Named("recommend")),
		recommend.WithPrometheus(reg),
	)
	if err != nil {
		log.Fatalf("backend client: %v", err)
	}
	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, reg, zl)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// repositories
	history := repository.NewSubmissionRepo(db)
	filters := repository.NewSavedFilterRepo(db)
	feedback := repository.NewFeedbackRepo(db)

	recommender := &service.RecommendService{Client: client, History: history}
	rater := &service.FeedbackService{Client: client, Store: feedback}
	past := &service.HistoryService{Submissions: history, Feedback: feedback}

	app := tui.New(ctx, tui.Deps{
		Recommender:      recommender,
		Feedback:         rater,
		Exporter:         &export.Exporter{Dir: cfg.Export.Dir},
		Filters:          filters,
		History:          past,
		Log:              zl.Named("tui"),
		CurrencySymbol:   cfg.UI.CurrencySymbol,
		DefaultMinRating: cfg.UI.MinRating,
		OnCardsRendered: func(n int) {
			zl.Debug("cards rendered", zap.Int("count", n))
		},
	})

	zl.Info("starting", zap.String("backend", cfg.API.BaseURL), zap.String("db", cfg.Database.Path))
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, zl *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zl.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("metrics server", zap.Error(err))
		}
	}()
	return srv
}
