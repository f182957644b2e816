package ocr

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// PreprocessOptions controls contrast enhancement and upscaling before OCR.
type PreprocessOptions struct {
	CLAHEClip float64
	Scale     float64
}

// Preprocess converts a region to grayscale, equalises it with CLAHE, softens
// it with a 3x3 blur and upscales it, returning the result as PNG bytes.
func Preprocess(src gocv.Mat, opts PreprocessOptions) ([]byte, error) {
	if src.Empty() {
		return nil, errors.New("preprocess: empty image")
	}
	if opts.CLAHEClip <= 0 {
		opts.CLAHEClip = 4.0
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}

	gray := gocv.NewMat()
	defer gray.Close()
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	}

	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe := gocv.NewCLAHEWithParams(opts.CLAHEClip, image.Pt(8, 8))
	clahe.Apply(gray, &enhanced)
	clahe.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(enhanced, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderDefault)

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(blurred, &scaled, image.Point{}, opts.Scale, opts.Scale, gocv.InterpolationCubic)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, scaled)
	if err != nil {
		return nil, fmt.Errorf("preprocess: encode: %w", err)
	}
	defer buf.Close()
	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
