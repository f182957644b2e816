package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"feriaocr/pkg/cache"
	"feriaocr/pkg/config"
	"feriaocr/pkg/log"
	"feriaocr/pkg/pipeline"
)

const devSecret = "dev-insecure-secret-change"

func main() {
	cfg, err := config.Load(os.Getenv("FERIA_CONFIG"))
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "config")
	}
	log.NewLogger(log.Options{Level: cfg.Log.Level, File: cfg.Log.File})

	// Support a lightweight migrate command: `./feriaocr migrate`
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		st := mustOpenStore(cfg)
		if st == nil {
			log.Fatal(nil, "database.dsn not set")
		}
		if err := st.Migrate(); err != nil {
			log.Fatal(log.Fields{"error": err.Error()}, "migrate")
		}
		fmt.Println("migration completed")
		return
	}

	secret := cfg.Server.JWTSecret
	if secret == "" {
		log.Warn(nil, "server.jwt_secret not set, using development secret")
		secret = devSecret
	}

	pool, err := pipeline.NewEnginePool(cfg, cfg.Workers)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "ocr engine")
	}
	defer pool.Close()

	var c *cache.Cache
	if cfg.Redis.URL != "" {
		if c, err = cache.New(context.Background(), cfg.Redis.URL, cfg.Redis.TTL); err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "redis unavailable, continuing without cache")
			c = nil
		}
		defer c.Close()
	}

	srv := &server{
		proc:      pipeline.New(pipeline.OptionsFromConfig(cfg), c),
		pool:      pool,
		store:     mustOpenStore(cfg),
		cache:     c,
		secret:    []byte(secret),
		maxUpload: cfg.Server.MaxUploadMB << 20,
	}
	if srv.store != nil {
		defer srv.store.Close()
	}

	r := gin.Default()
	setupRoutes(r, srv)
	log.Info(log.Fields{"port": cfg.Server.Port, "engines": pool.Size()}, "listening")
	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "server")
	}
}
