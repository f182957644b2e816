package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"feriaocr/models"
	"feriaocr/pkg/config"
	"feriaocr/pkg/log"
	"feriaocr/pkg/ocr"
	"feriaocr/pkg/output"
	"feriaocr/pkg/pipeline"
	"feriaocr/pkg/store"
)

// runner holds the state shared by the workers of one batch run.
type runner struct {
	cfg    *config.Config
	proc   *pipeline.Processor
	pool   *ocr.Pool
	store  *store.Store
	sink   output.Sink
	runID  string
	dryRun bool
	force  bool

	// onDone, when set, runs after each file has been recorded.
	onDone func(name string)

	mu      sync.Mutex
	flushMu sync.Mutex
	records map[string]output.Record
	stored  map[string]models.Extraction
}

// preload fetches already stored results so finished files are skipped
// without a query per file.
func (r *runner) preload(ctx context.Context) error {
	r.records = make(map[string]output.Record, 256)
	r.stored = map[string]models.Extraction{}
	if r.store == nil || r.force {
		return nil
	}
	done, err := r.store.Processed(ctx)
	if err != nil {
		return err
	}
	r.stored = done
	log.Info(log.Fields{"stored": len(done)}, "preloaded")
	return nil
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// runWorkerPool processes names with workers goroutines and returns once all
// names from initial and every extra channel are done.
func (r *runner) runWorkerPool(ctx context.Context, initial []string, workers int, extraCh ...<-chan string) {
	if workers < 1 {
		workers = 1
	}
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for name := range fileCh {
				rec := r.processSingleFile(ctx, worker, name)
				r.mu.Lock()
				r.records[name] = rec
				r.mu.Unlock()
				if r.onDone != nil {
					r.onDone(name)
				}
			}
		}(i)
	}

	var feeders sync.WaitGroup
	feeders.Add(1)
	go func() {
		defer feeders.Done()
		for _, f := range initial {
			select {
			case fileCh <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	for _, ch := range extraCh {
		feeders.Add(1)
		go func(c <-chan string) {
			defer feeders.Done()
			for n := range c {
				fileCh <- n
			}
		}(ch)
	}
	feeders.Wait()
	close(fileCh)
	wg.Wait()
}

// processSingleFile extracts one file and persists the outcome. It always
// returns a record for the file.
func (r *runner) processSingleFile(ctx context.Context, worker int, name string) output.Record {
	l := log.With(log.Fields{"file": name, "run_id": r.runID, "worker": worker})

	if e, ok := r.stored[name]; ok {
		l.Debug("SKIP already stored")
		return output.Record{File: name, Product: e.Product, Unit: e.Unit, Price: e.Price, Status: e.Status}
	}

	if r.cfg.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.FileTimeout)
		defer cancel()
	}
	engine, err := r.pool.Get(ctx)
	if err != nil {
		l.WithError(err).Error("no ocr engine")
		return output.Record{File: name, Status: output.StatusError, Error: err.Error()}
	}
	src := filepath.Join(r.cfg.InputDir, name)
	res, err := r.proc.Process(ctx, engine, src)
	r.pool.Put(engine)
	if err != nil {
		l.WithError(err).Error("extraction failed")
	}
	if r.dryRun {
		l.WithFields(log.Fields{"producto": res.Record.Product, "unidad": res.Record.Unit, "precio": res.Record.Price}).Info("dry-run")
		return res.Record
	}

	var archived string
	if r.cfg.ArchiveDir != "" && res.Record.Status != output.StatusError {
		if dst, err := moveToProcessed(src, r.cfg.ArchiveDir); err != nil {
			l.WithError(err).Warn("failed to archive")
		} else {
			archived = dst
		}
	}
	if r.store != nil {
		row := toModel(r.runID, res, archived)
		if err := r.store.Save(ctx, row); err != nil {
			l.WithError(err).Error("store")
		}
	}
	return res.Record
}

func toModel(runID string, res pipeline.Result, archived string) *models.Extraction {
	return &models.Extraction{
		RunID:        runID,
		FileName:     res.Record.File,
		SHA256:       res.SHA256,
		Product:      res.Record.Product,
		Unit:         res.Record.Unit,
		Price:        res.Record.Price,
		Status:       res.Record.Status,
		FailedReason: truncate(res.Record.Error, 255),
		Lines:        strings.Join(res.Lines, "\n"),
		Regions:      res.Regions,
		ArchivePath:  archived,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// snapshot returns all records sorted by file name.
func (r *runner) snapshot() []output.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]output.Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// flush rewrites the results file with every record seen so far.
func (r *runner) flush() error {
	if r.dryRun {
		return nil
	}
	r.flushMu.Lock()
	defer r.flushMu.Unlock()
	recs := r.snapshot()
	path, err := output.WriteFile(r.cfg.OutputDir, r.sink, recs)
	if err != nil {
		return err
	}
	log.Info(log.Fields{"path": path, "records": len(recs), "run_id": r.runID}, "results written")
	return nil
}
