package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"feriaocr/pkg/config"
	"feriaocr/pkg/store"
	"feriaocr/process/report"
)

func main() {
	cfgPath := flag.String("config", "", "config file")
	days := flag.Int("days", 30, "report on extractions from the last N days")
	top := flag.Int("top", 20, "number of products to list")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.Database.DSN == "" {
		fmt.Fprintln(os.Stderr, "database.dsn not set; export FERIA_DATABASE_DSN and retry")
		os.Exit(2)
	}
	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open db:", err)
		os.Exit(1)
	}
	defer st.Close()

	since := time.Now().AddDate(0, 0, -*days)
	if err := report.Run(context.Background(), os.Stdout, st, since, *top); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
