package ocr

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"
)

// EngineOptions configures a Tesseract engine.
type EngineOptions struct {
	Languages      []string
	TessdataPrefix string
}

var tessdataDirs = []string{
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
	"/usr/share/tessdata",
	"/usr/local/share/tessdata",
	"/opt/homebrew/share/tessdata",
}

// LocateTessdata returns the directory holding <lang>.traineddata for every
// language. prefix wins over TESSDATA_PREFIX, which wins over the usual
// install locations.
func LocateTessdata(prefix string, langs []string) (string, error) {
	if len(langs) == 0 {
		return "", fmt.Errorf("%w: no languages configured", ErrEngineUnavailable)
	}
	dirs := tessdataDirs
	if env := os.Getenv("TESSDATA_PREFIX"); env != "" {
		dirs = append([]string{env}, dirs...)
	}
	if prefix != "" {
		dirs = []string{prefix}
	}
	for _, d := range dirs {
		if hasLanguages(d, langs) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: traineddata for %v not found in %v", ErrEngineUnavailable, langs, dirs)
}

func hasLanguages(dir string, langs []string) bool {
	for _, l := range langs {
		if _, err := os.Stat(filepath.Join(dir, l+".traineddata")); err != nil {
			return false
		}
	}
	return true
}

// Tesseract is an Engine backed by one gosseract client.
type Tesseract struct {
	client *gosseract.Client
}

func NewTesseract(opts EngineOptions) (*Tesseract, error) {
	dir, err := LocateTessdata(opts.TessdataPrefix, opts.Languages)
	if err != nil {
		return nil, err
	}
	client := gosseract.NewClient()
	client.SetTessdataPrefix(dir)
	if err := client.SetLanguage(opts.Languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return &Tesseract{client: client}, nil
}

func (t *Tesseract) Recognize(png []byte, mode PageSegMode) ([]Word, error) {
	if err := t.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return nil, fmt.Errorf("set psm %d: %w", mode, err)
	}
	if err := t.client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("recognize psm %d: %w", mode, err)
	}
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			Box:        b.Box,
			Block:      b.BlockNum,
			Paragraph:  b.ParNum,
			Line:       b.LineNum,
		})
	}
	return words, nil
}

func (t *Tesseract) Close() error {
	return t.client.Close()
}
