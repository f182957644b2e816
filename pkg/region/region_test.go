package region

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func blank(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func TestLocateFallsBackToWholeImage(t *testing.T) {
	img := blank(120, 160)
	defer img.Close()

	regions := Locate(img, DefaultOptions())
	defer CloseAll(regions)

	require.Len(t, regions, 1)
	r := regions[0]
	assert.True(t, r.Whole)
	assert.Equal(t, img.Rows(), r.Mat.Rows())
	assert.Equal(t, img.Cols(), r.Mat.Cols())

	assert.Equal(t, img.ToBytes(), r.Mat.ToBytes())
}

func TestLocateFindsRectangle(t *testing.T) {
	img := blank(200, 200)
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(40, 50, 160, 130), color.RGBA{255, 255, 255, 0}, -1)

	regions := Locate(img, DefaultOptions())
	defer CloseAll(regions)

	require.Len(t, regions, 1)
	r := regions[0]
	assert.False(t, r.Whole)
	assert.InDelta(t, 120, r.Mat.Cols(), 4)
	assert.InDelta(t, 80, r.Mat.Rows(), 4)
}

func TestLocateIgnoresSmallQuads(t *testing.T) {
	img := blank(200, 200)
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(10, 10, 20, 20), color.RGBA{255, 255, 255, 0}, -1)

	regions := Locate(img, Options{MinAreaFraction: 0.05, MaxCandidates: 5})
	defer CloseAll(regions)

	require.Len(t, regions, 1)
	assert.True(t, regions[0].Whole)
}

func TestOrderCorners(t *testing.T) {
	got := orderCorners([]image.Point{{90, 85}, {10, 10}, {12, 80}, {95, 5}})
	assert.Equal(t, [4]image.Point{{10, 10}, {95, 5}, {90, 85}, {12, 80}}, got)
}

func TestOutputSizeUsesLongestEdges(t *testing.T) {
	c := [4]image.Point{{0, 0}, {100, 0}, {90, 50}, {0, 60}}
	size := outputSize(c)
	assert.Equal(t, 100, size.X)
	assert.Equal(t, 60, size.Y)
}
