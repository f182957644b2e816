package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"feriaocr/pkg/cache"
	"feriaocr/pkg/config"
	"feriaocr/pkg/fields"
	"feriaocr/pkg/log"
	"feriaocr/pkg/ocr"
	"feriaocr/pkg/output"
	"feriaocr/pkg/region"
	"feriaocr/pkg/vocab"
)

// Options collects everything a Processor needs besides the OCR engine.
type Options struct {
	Region     region.Options
	OCR        ocr.Options
	Products   vocab.Vocabulary
	Units      vocab.Vocabulary
	UnitTokens []string
	Threshold  float64
}

func DefaultOptions() Options {
	return Options{
		Region:    region.DefaultOptions(),
		OCR:       ocr.DefaultOptions(),
		Products:  vocab.New(vocab.DefaultProducts...),
		Units:     vocab.New(vocab.DefaultUnits...),
		Threshold: 60,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	modes := make([]ocr.PageSegMode, 0, len(cfg.OCR.PSMModes))
	for _, m := range cfg.OCR.PSMModes {
		modes = append(modes, ocr.PageSegMode(m))
	}
	return Options{
		Region: region.Options{
			MinAreaFraction: cfg.Region.MinAreaFraction,
			MaxCandidates:   cfg.Region.MaxCandidates,
		},
		OCR: ocr.Options{
			Modes:         modes,
			MinConfidence: cfg.OCR.MinConfidence,
			Preprocess:    ocr.PreprocessOptions{CLAHEClip: cfg.OCR.CLAHEClip, Scale: cfg.OCR.Scale},
		},
		Products:   cfg.Products(),
		Units:      cfg.Units(),
		UnitTokens: cfg.Vocab.UnitTokens,
		Threshold:  cfg.Match.Threshold,
	}
}

// NewEnginePool builds one tesseract engine per worker.
func NewEnginePool(cfg *config.Config, size int) (*ocr.Pool, error) {
	opts := ocr.EngineOptions{Languages: cfg.OCR.Languages, TessdataPrefix: cfg.OCR.TessdataPrefix}
	return ocr.NewPool(size, func() (ocr.Engine, error) {
		return ocr.NewTesseract(opts)
	})
}

// Result is the outcome for one image.
type Result struct {
	Record  output.Record
	Lines   []string
	Regions int
	SHA256  string
	Cached  bool
}

// Cache stores results between runs. *cache.Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (cache.Entry, bool, error)
	Set(ctx context.Context, key string, e cache.Entry) error
}

// Fingerprint identifies every setting that can change what an image
// extracts to, so cached results never outlive a settings change.
func (o Options) Fingerprint() string {
	raw, _ := jsoniter.Marshal(struct {
		Region     region.Options
		OCR        ocr.Options
		Products   []string
		Units      []string
		UnitTokens []string
		Threshold  float64
	}{o.Region, o.OCR, o.Products.Terms(), o.Units.Terms(), o.UnitTokens, o.Threshold})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

// Processor runs the full extraction for single images. It is safe for
// concurrent use as long as each caller passes its own engine.
type Processor struct {
	opts      Options
	agg       *ocr.Aggregator
	extractor *fields.Extractor
	cache     Cache
	prefix    string
}

// New builds a Processor. c may be nil.
func New(opts Options, c Cache) *Processor {
	return &Processor{
		opts:      opts,
		agg:       ocr.NewAggregator(opts.OCR),
		extractor: fields.NewExtractor(opts.Products, opts.Units, opts.UnitTokens, opts.Threshold),
		cache:     c,
		prefix:    opts.Fingerprint() + ":",
	}
}

// Process reads the file at path and extracts its fields. It always returns a
// Result whose Record names the file; failures are reported through
// Record.Status and the returned error.
func (p *Processor) Process(ctx context.Context, engine ocr.Engine, path string) (Result, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(name, "", err), fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return p.ProcessBytes(ctx, engine, name, data)
}

// ProcessBytes is Process for an image already in memory.
func (p *Processor) ProcessBytes(ctx context.Context, engine ocr.Engine, name string, data []byte) (Result, error) {
	start := time.Now()
	hash := cache.Key(data)
	l := log.With(log.Fields{"file": name})

	if p.cache != nil {
		if e, ok, err := p.cache.Get(ctx, p.prefix+hash); err != nil {
			l.WithError(err).Warn("cache lookup failed")
		} else if ok {
			l.WithField("producto", e.Triple.Product).Debug("cache hit")
			return Result{
				Record:  record(name, e.Triple),
				Lines:   e.Lines,
				Regions: e.Regions,
				SHA256:  hash,
				Cached:  true,
			}, nil
		}
	}

	img, err := DecodeImage(data)
	if err != nil {
		return failed(name, hash, err), err
	}
	defer img.Close()

	regions := region.Locate(img, p.opts.Region)
	defer region.CloseAll(regions)

	var (
		triples  []fields.Triple
		allLines []string
		seen     = map[string]struct{}{}
		ocrErr   error
	)
	for i := range regions {
		if err := ctx.Err(); err != nil {
			return failed(name, hash, err), err
		}
		lines, err := p.agg.Lines(engine, regions[i].Mat)
		if err != nil && !errors.Is(err, ocr.ErrNoText) {
			ocrErr = err
			l.WithError(err).WithField("region", i).Warn("region ocr failed")
			continue
		}
		triples = append(triples, p.extractor.Extract(lines))
		for _, ln := range lines {
			if _, dup := seen[ln]; !dup {
				seen[ln] = struct{}{}
				allLines = append(allLines, ln)
			}
		}
	}
	if len(triples) == 0 && ocrErr != nil {
		return failed(name, hash, ocrErr), ocrErr
	}

	final := fields.Vote(triples)
	res := Result{
		Record:  record(name, final),
		Lines:   allLines,
		Regions: len(regions),
		SHA256:  hash,
	}
	if p.cache != nil {
		e := cache.Entry{Triple: final, Lines: allLines, Regions: len(regions)}
		if err := p.cache.Set(ctx, p.prefix+hash, e); err != nil {
			l.WithError(err).Warn("cache store failed")
		}
	}
	l.WithFields(log.Fields{
		"regions":  len(regions),
		"whole":    regions[0].Whole,
		"lines":    len(allLines),
		"producto": final.Product,
		"unidad":   final.Unit,
		"precio":   final.Price,
		"took":     time.Since(start).String(),
	}).Info("extracted")
	return res, nil
}

func record(name string, t fields.Triple) output.Record {
	status := output.StatusOK
	if t.Empty() {
		status = output.StatusEmpty
	}
	return output.Record{File: name, Product: t.Product, Unit: t.Unit, Price: t.Price, Status: status}
}

func failed(name, hash string, err error) Result {
	return Result{
		Record: output.Record{File: name, Status: output.StatusError, Error: err.Error()},
		SHA256: hash,
	}
}
