package main

import (
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const archiveMaxBytes = 1_000_000

// moveToProcessed moves src into archiveDir and returns the new path. Photos
// above archiveMaxBytes are downscaled on the way; anything that cannot be
// decoded is moved as is.
func moveToProcessed(src, archiveDir string) (string, error) {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(archiveDir, filepath.Base(src))

	fi, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if fi.Size() <= archiveMaxBytes {
		return dst, moveFile(src, dst)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return dst, moveFile(src, dst)
	}
	// encoded size roughly follows pixel area
	scale := math.Sqrt(float64(archiveMaxBytes) / float64(fi.Size()))
	scale = math.Max(0.1, math.Min(scale, 0.95))
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	img = imaging.Resize(img, w, 0, imaging.Lanczos)
	if err := imaging.Save(img, dst, imaging.JPEGQuality(85)); err != nil {
		return dst, moveFile(src, dst)
	}
	_ = os.Remove(src)

	if fi2, err := os.Stat(dst); err == nil && fi2.Size() > archiveMaxBytes {
		if img2, err := imaging.Open(dst); err == nil {
			img2 = imaging.Resize(img2, int(float64(img2.Bounds().Dx())*0.8), 0, imaging.Lanczos)
			_ = imaging.Save(img2, dst, imaging.JPEGQuality(85))
		}
	}
	return dst, nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
