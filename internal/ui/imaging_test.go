package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestEncodeProfilePhoto_Downscales(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"Landscape", 1200, 600, 300, 150},
		{"Portrait", 400, 800, 150, 300},
		{"Square", 900, 900, 300, 300},
		{"AlreadySmall", 120, 80, 120, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataURL, err := EncodeProfilePhoto(pngOf(t, tt.w, tt.h))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(dataURL, config.ProfilePhotoPrefix))

			img, err := DecodeProfilePhoto(dataURL)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestEncodeProfilePhoto_RejectsGarbage(t *testing.T) {
	_, err := EncodeProfilePhoto(strings.NewReader("not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPhotoDecode)
}

func TestDecodeProfilePhoto_Errors(t *testing.T) {
	_, err := DecodeProfilePhoto("data:image/png;base64,AAAA")
	assert.Error(t, err, "wrong prefix")

	_, err = DecodeProfilePhoto(config.ProfilePhotoPrefix + "%%%")
	assert.Error(t, err, "bad base64")
}

func TestFitWithin_ExtremeAspect(t *testing.T) {
	w, h := fitWithin(3000, 2, 300)
	assert.Equal(t, 300, w)
	assert.Equal(t, 1, h, "never collapses to zero")
}
