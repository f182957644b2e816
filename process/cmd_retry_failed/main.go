package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"feriaocr/models"
	"feriaocr/pkg/config"
	"feriaocr/pkg/log"
	"feriaocr/pkg/pipeline"
	"feriaocr/pkg/store"
)

// Re-runs extraction for stored rows that failed or came out empty, looking
// for the photo in the input and archive directories.
func main() {
	cfgPath := flag.String("config", "", "config file")
	threshold := flag.Float64("threshold", -1, "override match.threshold for this retry")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "config")
	}
	log.NewLogger(log.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if *threshold >= 0 {
		cfg.Match.Threshold = *threshold
	}
	if cfg.Database.DSN == "" {
		log.Fatal(nil, "database.dsn not set")
	}
	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "open db")
	}
	defer st.Close()

	pool, err := pipeline.NewEnginePool(cfg, 1)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "ocr engine")
	}
	defer pool.Close()
	ctx := context.Background()
	engine, err := pool.Get(ctx)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "ocr engine")
	}
	defer pool.Put(engine)

	rows, err := st.Retryable(ctx)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "query")
	}
	proc := pipeline.New(pipeline.OptionsFromConfig(cfg), nil)
	runID := uuid.NewString()
	fixed := 0
	for _, row := range rows {
		path := locate(cfg, row)
		if path == "" {
			log.Warn(log.Fields{"file": row.FileName}, "photo not found")
			continue
		}
		res, err := proc.Process(ctx, engine, path)
		if err != nil || res.Record.Status != "ok" {
			log.Info(log.Fields{"file": row.FileName, "status": res.Record.Status}, "still unresolved")
			continue
		}
		row.RunID = runID
		row.SHA256 = res.SHA256
		row.Product, row.Unit, row.Price = res.Record.Product, res.Record.Unit, res.Record.Price
		row.Status = res.Record.Status
		row.FailedReason = ""
		row.Lines = strings.Join(res.Lines, "\n")
		row.Regions = res.Regions
		if err := st.Save(ctx, &row); err != nil {
			log.Error(log.Fields{"file": row.FileName, "error": err.Error()}, "update")
			continue
		}
		fixed++
		fmt.Printf("updated file=%s producto=%q unidad=%q precio=%q\n", row.FileName, row.Product, row.Unit, row.Price)
	}
	log.Info(log.Fields{"candidates": len(rows), "fixed": fixed}, "retry finished")
}

func locate(cfg *config.Config, row models.Extraction) string {
	candidates := []string{row.ArchivePath, filepath.Join(cfg.InputDir, row.FileName)}
	if cfg.ArchiveDir != "" {
		candidates = append(candidates, filepath.Join(cfg.ArchiveDir, row.FileName))
	}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
