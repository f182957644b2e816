package ocr

import "errors"

// ErrEngineUnavailable is returned when tesseract or its language data cannot
// be found.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// ErrNoText is returned when no pass produced a usable line.
var ErrNoText = errors.New("no text recognised")
