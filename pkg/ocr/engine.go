package ocr

import "image"

// PageSegMode mirrors tesseract's page segmentation modes.
type PageSegMode int

const (
	PSMAuto        PageSegMode = 3
	PSMSingleBlock PageSegMode = 6
	PSMSingleLine  PageSegMode = 7
	PSMSparseText  PageSegMode = 11
)

// DefaultModes are the passes run on every region.
var DefaultModes = []PageSegMode{PSMSingleBlock, PSMSingleLine}

// Word is one recognised token with its layout position.
type Word struct {
	Text       string
	Confidence float64 // 0-100
	Box        image.Rectangle
	Block      int
	Paragraph  int
	Line       int
}

// Engine recognises words in a PNG-encoded image. Implementations need not be
// safe for concurrent use; see Pool.
type Engine interface {
	Recognize(png []byte, mode PageSegMode) ([]Word, error)
	Close() error
}
