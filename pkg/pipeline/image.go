package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ErrUnreadableImage is returned when a file cannot be decoded as an image.
var ErrUnreadableImage = errors.New("unreadable image")

// DecodeImage decodes a JPEG or PNG, applies its EXIF orientation and returns
// it as a BGR Mat owned by the caller.
func DecodeImage(data []byte) (gocv.Mat, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return imageToMat(img)
}

func imageToMat(img image.Image) (gocv.Mat, error) {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return gocv.Mat{}, fmt.Errorf("%w: empty image", ErrUnreadableImage)
	}

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, nrgba.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
