package ocr

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"

	"feriaocr/pkg/log"
)

// Options configures an Aggregator.
type Options struct {
	Modes         []PageSegMode
	MinConfidence float64
	Preprocess    PreprocessOptions
}

func DefaultOptions() Options {
	return Options{
		Modes:         DefaultModes,
		MinConfidence: 50,
		Preprocess:    PreprocessOptions{CLAHEClip: 4.0, Scale: 2},
	}
}

// Aggregator runs one OCR pass per page segmentation mode over a region and
// merges the recognised lines. It holds no per-call state.
type Aggregator struct {
	opts Options
}

func NewAggregator(opts Options) *Aggregator {
	if len(opts.Modes) == 0 {
		opts.Modes = DefaultModes
	}
	return &Aggregator{opts: opts}
}

// Lines returns the distinct lines recognised in region, in the order they
// were first seen across passes. A pass that fails is logged and skipped;
// the call fails only when every pass does. ErrNoText is returned when the
// passes ran but nothing survived the confidence filter.
func (a *Aggregator) Lines(engine Engine, region gocv.Mat) ([]string, error) {
	png, err := Preprocess(region, a.opts.Preprocess)
	if err != nil {
		return nil, err
	}
	return a.LinesFromPNG(engine, png)
}

// LinesFromPNG is Lines for an already preprocessed image.
func (a *Aggregator) LinesFromPNG(engine Engine, png []byte) ([]string, error) {
	var (
		out     []string
		seen    = map[string]struct{}{}
		lastErr error
		ok      int
	)
	for _, mode := range a.opts.Modes {
		words, err := engine.Recognize(png, mode)
		if err != nil {
			lastErr = err
			log.Warn(log.Fields{"psm": int(mode), "error": err.Error()}, "ocr pass failed")
			continue
		}
		ok++
		lines := collectLines(words, a.opts.MinConfidence)
		log.Debug(log.Fields{"psm": int(mode), "words": len(words), "lines": len(lines), "text": snippet(strings.Join(lines, " | "), 120)}, "ocr pass")
		for _, l := range lines {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	if ok == 0 {
		return nil, fmt.Errorf("all %d ocr passes failed: %w", len(a.opts.Modes), lastErr)
	}
	if len(out) == 0 {
		return nil, ErrNoText
	}
	return out, nil
}

type lineKey struct{ block, par, line int }

// collectLines drops low-confidence words and joins the rest by layout line,
// keeping the order in which lines first appear.
func collectLines(words []Word, minConfidence float64) []string {
	var order []lineKey
	groups := map[lineKey][]string{}
	for _, w := range words {
		if w.Confidence < minConfidence {
			continue
		}
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		k := lineKey{w.Block, w.Paragraph, w.Line}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], text)
	}
	out := make([]string, 0, len(order))
	for _, k := range order {
		if l := normalizeOCRText(strings.Join(groups[k], " ")); l != "" {
			out = append(out, l)
		}
	}
	return out
}
