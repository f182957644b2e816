package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"feriaocr/pkg/config"
	"feriaocr/pkg/ocr"
	"feriaocr/pkg/pipeline"
)

// Dumps the raw words tesseract returns for the whole photo under every
// configured page segmentation mode, before any confidence filtering.
func main() {
	path := flag.String("path", "", "image path")
	cfgPath := flag.String("config", "", "config file")
	flag.Parse()
	if *path == "" {
		log.Fatal("--path is required")
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	opts := pipeline.OptionsFromConfig(cfg)

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	img, err := pipeline.DecodeImage(data)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	defer img.Close()
	png, err := ocr.Preprocess(img, opts.OCR.Preprocess)
	if err != nil {
		log.Fatalf("preprocess: %v", err)
	}

	engine, err := ocr.NewTesseract(ocr.EngineOptions{Languages: cfg.OCR.Languages, TessdataPrefix: cfg.OCR.TessdataPrefix})
	if err != nil {
		log.Fatalf("ocr engine: %v", err)
	}
	defer engine.Close()

	for _, mode := range opts.OCR.Modes {
		words, err := engine.Recognize(png, mode)
		fmt.Printf("psm=%d words=%d err=%v\n", mode, len(words), err)
		for _, w := range words {
			mark := " "
			if w.Confidence < opts.OCR.MinConfidence {
				mark = "x"
			}
			fmt.Printf(" %s b%d p%d l%d %5.1f %q\n", mark, w.Block, w.Paragraph, w.Line, w.Confidence, w.Text)
		}
		fmt.Println(strings.Repeat("-", 50))
	}
}
