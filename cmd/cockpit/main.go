package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"go-sales-cockpit/internal/config"
	"go-sales-cockpit/internal/extract"
	"go-sales-cockpit/internal/model"
	"go-sales-cockpit/internal/pipeline"
	"go-sales-cockpit/internal/registry"
	"go-sales-cockpit/internal/store"
	"go-sales-cockpit/pkg/utils"
)

// Exit codes for batch callers.
const (
	exitOK = iota
	exitFailed
	exitUsage
	exitEmpty
)

func main() {
	os.Exit(run())
}

func run() int {
	event := flag.String("event", "", "logical event name from the registry")
	from := flag.String("from", "", "start date, inclusive (YYYY-MM-DD)")
	to := flag.String("to", "", "end date, inclusive (YYYY-MM-DD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if *event == "" || *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "usage: cockpit -event <name> -from <YYYY-MM-DD> -to <YYYY-MM-DD>")
		return exitUsage
	}

	window, err := model.ParseWindow(*from, *to)
	if err != nil {
		log.Error("invalid date range", slog.Any("error", err))
		return exitUsage
	}

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		log.Error("registry load failed", slog.Any("error", err))
		return exitFailed
	}
	ev, err := reg.Validate(*event, window)
	if err != nil {
		log.Error("event validation failed", slog.Any("error", err))
		return exitUsage
	}

	if err := store.InitDB(cfg.TrackingDB); err != nil {
		log.Error("tracking store init failed", slog.Any("error", err))
		return exitFailed
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Error("database open failed", slog.Any("error", err))
		return exitFailed
	}
	defer db.Close()

	extractor, err := extract.New(db, cfg.MasterDB, log)
	if err != nil {
		log.Error("extractor init failed", slog.Any("error", err))
		return exitUsage
	}
	runner := &pipeline.Runner{
		Extractor: extractor,
		Output:    utils.NewOutputManager(cfg.OutputDir),
		Log:       log,
	}

	runID := uuid.New().String()
	if err := store.SaveRun(model.ReportRun{
		ID:        runID,
		Event:     ev.Name,
		Database:  ev.Database,
		StartDate: window.StartISO(),
		EndDate:   window.EndISO(),
	}); err != nil {
		log.Error("run save failed", slog.Any("error", err))
		return exitFailed
	}

	res, err := runner.Run(context.Background(), runID, ev.Database, window)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyResult) {
			log.Warn("no funnel data for the requested period",
				slog.String("run_id", runID),
				slog.String("event", ev.Name))
			return exitEmpty
		}
		log.Error("pipeline failed", slog.String("run_id", runID), slog.Any("error", err))
		return exitFailed
	}

	for _, f := range res.Artifacts {
		fmt.Println(f)
	}
	return exitOK
}
