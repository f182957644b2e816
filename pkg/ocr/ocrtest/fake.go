// Package ocrtest provides an in-memory ocr.Engine for tests.
package ocrtest

import (
	"strings"
	"sync"

	"feriaocr/pkg/ocr"
)

// Fake returns canned words. Sequence, when set, answers calls in order;
// otherwise words come per page segmentation mode, and modes with no entry
// yield Default.
type Fake struct {
	mu       sync.Mutex
	Sequence [][]ocr.Word
	Words    map[ocr.PageSegMode][]ocr.Word
	Default  []ocr.Word
	Errs     map[ocr.PageSegMode]error
	Calls    int
	Closed   bool
}

// Lines builds a Fake that reports each line as its own layout line with high
// confidence, for every mode.
func Lines(lines ...string) *Fake {
	return &Fake{Default: Words(90, lines...)}
}

// Words splits lines into words, one layout line per input line.
func Words(conf float64, lines ...string) []ocr.Word {
	var out []ocr.Word
	for i, l := range lines {
		for _, w := range strings.Fields(l) {
			out = append(out, ocr.Word{Text: w, Confidence: conf, Block: 1, Paragraph: 1, Line: i + 1})
		}
	}
	return out
}

func (f *Fake) Recognize(_ []byte, mode ocr.PageSegMode) ([]ocr.Word, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if err := f.Errs[mode]; err != nil {
		return nil, err
	}
	if n := f.Calls - 1; n < len(f.Sequence) {
		return f.Sequence[n], nil
	}
	if w, ok := f.Words[mode]; ok {
		return w, nil
	}
	return f.Default, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
