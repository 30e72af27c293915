package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"go-sales-cockpit/internal/api"
	"go-sales-cockpit/internal/api/handler"
	"go-sales-cockpit/internal/config"
	"go-sales-cockpit/internal/extract"
	"go-sales-cockpit/internal/pipeline"
	"go-sales-cockpit/internal/registry"
	"go-sales-cockpit/internal/store"
	"go-sales-cockpit/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if err := store.InitDB(cfg.TrackingDB); err != nil {
		log.Error("tracking store init failed", slog.Any("error", err))
		os.Exit(1)
	}

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Error("registry load failed", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Error("database open failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	extractor, err := extract.New(db, cfg.MasterDB, log)
	if err != nil {
		log.Error("extractor init failed", slog.Any("error", err))
		os.Exit(1)
	}

	out := utils.NewOutputManager(cfg.OutputDir)
	runner := &pipeline.Runner{
		Extractor: extractor,
		Output:    out,
		Log:       log,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler.NewReportHandler(reg, runner, out)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Info("report API listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
