package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"feriaocr/pkg/config"
	"feriaocr/pkg/fields"
	"feriaocr/pkg/ocr"
	"feriaocr/pkg/pipeline"
	"feriaocr/pkg/region"
	"feriaocr/pkg/vocab"
)

// Prints what each stage sees for a single photo: the lines of every sign
// region, the fields read from them, the product match scores and the voted
// result.
func main() {
	f := flag.String("file", "", "image file to OCR")
	cfgPath := flag.String("config", "", "config file")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	opts := pipeline.OptionsFromConfig(cfg)

	pool, err := pipeline.NewEnginePool(cfg, 1)
	if err != nil {
		log.Fatalf("ocr engine: %v", err)
	}
	defer pool.Close()
	engine, err := pool.Get(context.Background())
	if err != nil {
		log.Fatalf("ocr engine: %v", err)
	}

	data, err := os.ReadFile(*f)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	img, err := pipeline.DecodeImage(data)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	defer img.Close()

	agg := ocr.NewAggregator(opts.OCR)
	ex := fields.NewExtractor(opts.Products, opts.Units, opts.UnitTokens, opts.Threshold)
	var resolver vocab.Resolver

	regions := region.Locate(img, opts.Region)
	defer region.CloseAll(regions)
	var triples []fields.Triple
	for i, r := range regions {
		fmt.Printf("== region %d whole=%v size=%dx%d\n", i, r.Whole, r.Mat.Cols(), r.Mat.Rows())
		lines, err := agg.Lines(engine, r.Mat)
		if err != nil {
			fmt.Printf("   ocr: %v\n", err)
			if !errors.Is(err, ocr.ErrNoText) {
				continue
			}
		}
		for _, l := range lines {
			fmt.Printf("   %q\n", l)
		}
		t := ex.Extract(lines)
		triples = append(triples, t)
		fmt.Printf("   -> producto=%q unidad=%q precio=%q\n", t.Product, t.Unit, t.Price)
		for _, l := range lines {
			term, score := resolver.Match(l, opts.Products)
			if term != "" {
				fmt.Printf("      match %q ~ %q %.1f\n", l, term, score)
			}
		}
	}
	final := fields.Vote(triples)
	fmt.Printf("final producto=%q unidad=%q precio=%q\n", final.Product, final.Unit, final.Price)
}
