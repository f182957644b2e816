package ocr_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feriaocr/pkg/ocr"
	"feriaocr/pkg/ocr/ocrtest"
)

func TestPoolGetPut(t *testing.T) {
	var made []*ocrtest.Fake
	p, err := ocr.NewPool(2, func() (ocr.Engine, error) {
		f := ocrtest.Lines("x")
		made = append(made, f)
		return f, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Size())

	ctx := context.Background()
	a, err := p.Get(ctx)
	require.NoError(t, err)
	b, err := p.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = p.Get(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	p.Put(a)
	c, err := p.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, a, c)

	p.Put(b)
	p.Put(c)
	require.NoError(t, p.Close())
	for _, f := range made {
		assert.True(t, f.Closed)
	}
}

func TestPoolFactoryFailureClosesBuilt(t *testing.T) {
	first := ocrtest.Lines()
	calls := 0
	_, err := ocr.NewPool(3, func() (ocr.Engine, error) {
		calls++
		if calls == 2 {
			return nil, ocr.ErrEngineUnavailable
		}
		return first, nil
	})
	assert.ErrorIs(t, err, ocr.ErrEngineUnavailable)
	assert.True(t, first.Closed)
}

func TestLocateTessdata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spa.traineddata"), []byte("x"), 0o644))

	got, err := ocr.LocateTessdata(dir, []string{"spa"})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = ocr.LocateTessdata(dir, []string{"spa", "eng"})
	assert.True(t, errors.Is(err, ocr.ErrEngineUnavailable))

	_, err = ocr.LocateTessdata(dir, nil)
	assert.ErrorIs(t, err, ocr.ErrEngineUnavailable)
}
