package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feriaocr/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "images", cfg.InputDir)
	assert.Equal(t, "outputs", cfg.OutputDir)
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, 60.0, cfg.Match.Threshold)
	assert.Equal(t, 50.0, cfg.OCR.MinConfidence)
	assert.Equal(t, []int{6, 7}, cfg.OCR.PSMModes)
	assert.Equal(t, []string{"spa", "eng"}, cfg.OCR.Languages)
	assert.Equal(t, 0.01, cfg.Region.MinAreaFraction)
	assert.Equal(t, 5, cfg.Region.MaxCandidates)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.LessOrEqual(t, cfg.Workers, config.MaxWorkers)
	assert.True(t, cfg.Products().Contains("cebolla"))
	assert.True(t, cfg.Units().Contains("c/u"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FERIA_FORMAT", "json")
	t.Setenv("FERIA_MATCH_THRESHOLD", "75")
	t.Setenv("FERIA_WORKERS", "3")
	t.Setenv("FERIA_FILE_TIMEOUT", "30s")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 75.0, cfg.Match.Threshold)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.FileTimeout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feria.yaml")
	body := "format: excel\nvocab:\n  products: [papa, camote]\nregion:\n  min_area_fraction: 0.05\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "excel", cfg.Format)
	assert.Equal(t, []string{"papa", "camote"}, cfg.Products().Terms())
	assert.Equal(t, 0.05, cfg.Region.MinAreaFraction)
}

func TestLoad_RejectsUnsupportedFormat(t *testing.T) {
	t.Setenv("FERIA_FORMAT", "xml")
	_, err := config.Load("")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoad_RejectsBadThreshold(t *testing.T) {
	t.Setenv("FERIA_MATCH_THRESHOLD", "150")
	_, err := config.Load("")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestPrepareDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		InputDir:   dir,
		OutputDir:  filepath.Join(dir, "out", "nested"),
		ArchiveDir: filepath.Join(dir, "archive"),
	}
	require.NoError(t, cfg.PrepareDirs())
	assert.DirExists(t, cfg.OutputDir)
	assert.DirExists(t, cfg.ArchiveDir)

	cfg.InputDir = filepath.Join(dir, "missing")
	assert.ErrorIs(t, cfg.PrepareDirs(), config.ErrInvalidConfig)
}

func TestValidate_WorkersCap(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Workers = config.MaxWorkers
	assert.NoError(t, cfg.Validate())
	cfg.Workers = config.MaxWorkers + 1
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
	cfg.Workers = 0
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
}

func TestLoad_WorkersAboveCap(t *testing.T) {
	t.Setenv("FERIA_WORKERS", "65")
	_, err := config.Load("")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
