package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeSaveClipsLongOCRText(t *testing.T) {
	e := &Extraction{
		FileName:     "largo.jpg",
		Product:      strings.Repeat("ñame morado ", 40),
		Unit:         strings.Repeat("bandeja ", 10),
		Price:        strings.Repeat("9", 50),
		FailedReason: strings.Repeat("x", 300),
	}
	require.NoError(t, e.BeforeSave(nil))

	assert.Equal(t, productSize, utf8.RuneCountInString(e.Product))
	assert.True(t, utf8.ValidString(e.Product))
	assert.True(t, strings.HasPrefix(e.Product, "ñame morado"))
	assert.Equal(t, unitSize, utf8.RuneCountInString(e.Unit))
	assert.Len(t, e.Price, priceSize)
	assert.Len(t, e.FailedReason, reasonSize)
	assert.Equal(t, "largo.jpg", e.FileName)
}

func TestBeforeSaveKeepsShortValues(t *testing.T) {
	e := &Extraction{Product: "cebolla", Unit: "kilo", Price: "1200"}
	require.NoError(t, e.BeforeSave(nil))
	assert.Equal(t, "cebolla", e.Product)
	assert.Equal(t, "kilo", e.Unit)
	assert.Equal(t, "1200", e.Price)
}
