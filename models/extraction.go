package models

import (
	"time"

	"gorm.io/gorm"
)

// Column widths for the free-text fields; BeforeSave clips to them.
const (
	productSize = 128
	unitSize    = 32
	priceSize   = 32
	reasonSize  = 255
)

// Extraction is the stored result of reading one sign photo. FileName is
// unique so reprocessing a file replaces its previous row.
type Extraction struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	RunID     string `gorm:"size:36;index"`
	FileName  string `gorm:"size:255;not null;uniqueIndex"`
	SHA256    string `gorm:"column:sha256;size:64;index"`
	Product   string `gorm:"size:128"`
	Unit      string `gorm:"size:32"`
	Price     string `gorm:"size:32"`
	Status    string `gorm:"size:16;index;not null"`
	// Failed rows keep their reason so a reviewer can look at the photo again.
	FailedReason string `gorm:"size:255"`
	Lines        string `gorm:"type:text"` // recognised lines, newline separated
	Regions      int
	ArchivePath  string `gorm:"size:512"`
}

// BeforeSave clips fields that carry raw OCR text. An unresolved product is
// the whole recognised line and has no natural length bound.
func (e *Extraction) BeforeSave(*gorm.DB) error {
	e.Product = clip(e.Product, productSize)
	e.Unit = clip(e.Unit, unitSize)
	e.Price = clip(e.Price, priceSize)
	e.FailedReason = clip(e.FailedReason, reasonSize)
	return nil
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
