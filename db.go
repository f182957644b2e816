package main

import (
	"feriaocr/pkg/config"
	"feriaocr/pkg/log"
	"feriaocr/pkg/store"
)

// mustOpenStore connects to the configured database. It returns nil when no
// DSN is configured; the server then runs without history.
func mustOpenStore(cfg *config.Config) *store.Store {
	if cfg.Database.DSN == "" {
		return nil
	}
	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "failed to connect postgres database")
	}
	return st
}
