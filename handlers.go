package main

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"feriaocr/models"
	"feriaocr/pkg/cache"
	"feriaocr/pkg/log"
	"feriaocr/pkg/ocr"
	"feriaocr/pkg/output"
	"feriaocr/pkg/pipeline"
	"feriaocr/pkg/store"
)

// server carries the handler dependencies. store and cache may be nil.
type server struct {
	proc      *pipeline.Processor
	pool      *ocr.Pool
	store     *store.Store
	cache     *cache.Cache
	secret    []byte
	maxUpload int64
}

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/healthz", s.healthHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware(s.secret))
	authGroup.POST("/extract", s.extractHandler)
	authGroup.GET("/extractions", s.listExtractionsHandler)
	authGroup.GET("/extractions/:file", s.getExtractionHandler)
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"engines": s.pool.Size(),
		"db":      s.store != nil,
		"cache":   s.cache != nil,
	})
}

type extractResponse struct {
	output.Record
	Lines   []string `json:"lineas"`
	Regions int      `json:"regiones"`
	Cached  bool     `json:"cache"`
}

// extractHandler reads one uploaded sign photo (multipart field "image") and
// returns the extracted fields.
func (s *server) extractHandler(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image missing"})
		return
	}
	if s.maxUpload > 0 && file.Size > s.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	name := filepath.Base(file.Filename)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .jpg, .jpeg and .png are accepted"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read failed"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read failed"})
		return
	}

	ctx := c.Request.Context()
	engine, err := s.pool.Get(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ocr busy"})
		return
	}
	res, err := s.proc.ProcessBytes(ctx, engine, name, data)
	s.pool.Put(engine)

	client, _ := c.Get("client")
	l := log.With(log.Fields{"file": name, "client": client})
	if s.store != nil {
		row := &models.Extraction{
			RunID:        "api",
			FileName:     name,
			SHA256:       res.SHA256,
			Product:      res.Record.Product,
			Unit:         res.Record.Unit,
			Price:        res.Record.Price,
			Status:       res.Record.Status,
			FailedReason: res.Record.Error,
			Lines:        strings.Join(res.Lines, "\n"),
			Regions:      res.Regions,
		}
		if err := s.store.Save(ctx, row); err != nil {
			l.WithError(err).Error("store")
		}
	}

	body := extractResponse{Record: res.Record, Lines: res.Lines, Regions: res.Regions, Cached: res.Cached}
	if err != nil {
		l.WithError(err).Warn("extraction failed")
		if errors.Is(err, pipeline.ErrUnreadableImage) {
			c.JSON(http.StatusUnprocessableEntity, body)
			return
		}
		c.JSON(http.StatusInternalServerError, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *server) listExtractionsHandler(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled (no database)"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	rows, total, err := s.store.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": rows})
}

func (s *server) getExtractionHandler(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history disabled (no database)"})
		return
	}
	row, err := s.store.ByFileName(c.Request.Context(), c.Param("file"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, row)
}
