package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"feriaocr/pkg/cache"
	"feriaocr/pkg/config"
	"feriaocr/pkg/log"
	"feriaocr/pkg/output"
	"feriaocr/pkg/pipeline"
	"feriaocr/pkg/store"
)

// Main: scans a directory of sign photos, extracts product/unit/price from
// each and writes resultados.<ext>; optional watch mode keeps going.
func main() {
	cfgPath := flag.String("config", "", "Path to a yaml/json/toml config file")
	dryRun := flag.Bool("dry-run", false, "Extract and log only; no results file, DB writes or archiving")
	watch := flag.Bool("watch", false, "Watch the input directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default from config)")
	force := flag.Bool("force", false, "Reprocess files already stored in the database")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "config")
	}
	log.NewLogger(log.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if *workers > 0 {
		cfg.Workers = *workers
		if err := cfg.Validate(); err != nil {
			log.Fatal(log.Fields{"error": err.Error()}, "config")
		}
	}
	if err := cfg.PrepareDirs(); err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "config")
	}
	sink, err := output.NewSink(cfg.Format)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "config")
	}

	pool, err := pipeline.NewEnginePool(cfg, cfg.Workers)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "ocr engine")
	}
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c *cache.Cache
	if cfg.Redis.URL != "" {
		if c, err = cache.New(ctx, cfg.Redis.URL, cfg.Redis.TTL); err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "redis unavailable, continuing without cache")
			c = nil
		}
		defer c.Close()
	}

	var st *store.Store
	if cfg.Database.DSN != "" && !*dryRun {
		if st, err = store.Open(cfg.Database.DSN); err != nil {
			log.Fatal(log.Fields{"error": err.Error()}, "database")
		}
		defer st.Close()
	}

	r := &runner{
		cfg:    cfg,
		proc:   pipeline.New(pipeline.OptionsFromConfig(cfg), c),
		pool:   pool,
		store:  st,
		sink:   sink,
		runID:  uuid.NewString(),
		dryRun: *dryRun,
		force:  *force,
	}
	if err := r.preload(ctx); err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "preload")
	}

	files := listImageFiles(cfg.InputDir)
	log.Info(log.Fields{"files": len(files), "workers": cfg.Workers, "run_id": r.runID, "dir": cfg.InputDir}, "scanning")
	r.runWorkerPool(ctx, files, cfg.Workers)
	if err := r.flush(); err != nil {
		log.Error(log.Fields{"error": err.Error()}, "write results")
	}

	if *watch {
		if err := r.watchDirectory(ctx, cfg.InputDir, cfg.Workers); err != nil {
			log.Fatal(log.Fields{"error": err.Error()}, "watch failed")
		}
	}
}
