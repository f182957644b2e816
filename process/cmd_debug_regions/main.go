package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"feriaocr/pkg/config"
	"feriaocr/pkg/ocr"
	"feriaocr/pkg/pipeline"
	"feriaocr/pkg/region"
)

// Dumps the rectified sign regions of one photo, and what the OCR engine
// would receive for each, as PNGs for tuning region and preprocessing
// settings.
func main() {
	in := flag.String("file", "", "image file")
	out := flag.String("out", "debug_regions", "output directory")
	cfgPath := flag.String("config", "", "config file")
	minArea := flag.Float64("min-area", 0, "override region.min_area_fraction")
	flag.Parse()
	if *in == "" {
		fail("-file required")
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fail(err.Error())
	}
	opts := pipeline.OptionsFromConfig(cfg)
	if *minArea > 0 {
		opts.Region.MinAreaFraction = *minArea
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		fail(err.Error())
	}
	img, err := pipeline.DecodeImage(data)
	if err != nil {
		fail(err.Error())
	}
	defer img.Close()
	if err := os.MkdirAll(*out, 0o755); err != nil {
		fail(err.Error())
	}

	base := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	regions := region.Locate(img, opts.Region)
	defer region.CloseAll(regions)
	for i, r := range regions {
		name := filepath.Join(*out, fmt.Sprintf("%s_r%d.png", base, i))
		if ok := gocv.IMWrite(name, r.Mat); !ok {
			fail("write " + name)
		}
		png, err := ocr.Preprocess(r.Mat, opts.OCR.Preprocess)
		if err != nil {
			fail(err.Error())
		}
		pre := filepath.Join(*out, fmt.Sprintf("%s_r%d_ocr.png", base, i))
		if err := os.WriteFile(pre, png, 0o644); err != nil {
			fail(err.Error())
		}
		fmt.Printf("region=%d whole=%v corners=%v area=%.0f size=%dx%d -> %s\n",
			i, r.Whole, r.Corners, r.Area, r.Mat.Cols(), r.Mat.Rows(), name)
	}

	thumb, err := imaging.Open(*in, imaging.AutoOrientation(true))
	if err == nil {
		thumb = imaging.Fit(thumb, 800, 800, imaging.Lanczos)
		_ = imaging.Save(thumb, filepath.Join(*out, base+"_thumb.jpg"))
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
