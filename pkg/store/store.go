package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"feriaocr/models"
	"feriaocr/pkg/log"
)

// ErrNotFound is returned when no extraction matches a lookup.
var ErrNotFound = errors.New("extraction not found")

// Store persists extractions in PostgreSQL.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema unless DB_AUTO_MIGRATE is
// false, 0 or no.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	s := New(db)
	if shouldMigrate() {
		if err := s.Migrate(); err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "migration warning (extractions)")
		}
	}
	return s, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func shouldMigrate() bool {
	v := strings.ToLower(os.Getenv("DB_AUTO_MIGRATE"))
	return v != "false" && v != "0" && v != "no"
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.Extraction{})
}

// Save inserts e, or overwrites the existing row for the same file name.
func (s *Store) Save(ctx context.Context, e *models.Extraction) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "file_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "run_id", "sha256", "product", "unit", "price",
			"status", "failed_reason", "lines", "regions", "archive_path",
		}),
	}).Create(e).Error
}

// Processed returns the stored extractions keyed by file name, leaving out
// failed ones so they are retried.
func (s *Store) Processed(ctx context.Context) (map[string]models.Extraction, error) {
	var rows []models.Extraction
	err := s.db.WithContext(ctx).
		Where("status <> ?", "error").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Extraction, len(rows))
	for _, r := range rows {
		out[r.FileName] = r
	}
	return out, nil
}

// List returns extractions newest first together with the total count.
func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]models.Extraction, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Extraction{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Extraction
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ByFileName returns the stored extraction for name.
func (s *Store) ByFileName(ctx context.Context, name string) (*models.Extraction, error) {
	var e models.Extraction
	err := s.db.WithContext(ctx).Where("file_name = ?", name).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Retryable returns extractions that failed or produced no field, oldest
// first.
func (s *Store) Retryable(ctx context.Context) ([]models.Extraction, error) {
	var rows []models.Extraction
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{"error", "empty"}).
		Order("id").
		Find(&rows).Error
	return rows, err
}

// Count is one bucket of a Summary.
type Count struct {
	Key string
	N   int64
}

// Summary aggregates extractions created since a point in time.
type Summary struct {
	ByStatus  []Count
	ByProduct []Count
}

// Summarize counts extractions per status and per product created at or
// after since.
func (s *Store) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	var sum Summary
	base := s.db.WithContext(ctx).Model(&models.Extraction{}).Where("created_at >= ?", since).Session(&gorm.Session{})
	if err := base.Select("status AS key, COUNT(*) AS n").Group("status").Order("n DESC").Scan(&sum.ByStatus).Error; err != nil {
		return sum, err
	}
	if err := base.Select("product AS key, COUNT(*) AS n").Where("product <> ''").Group("product").Order("n DESC, product").Scan(&sum.ByProduct).Error; err != nil {
		return sum, err
	}
	return sum, nil
}
