package ui

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/tartampluch/go-medreminder/internal/config"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// EncodeProfilePhoto decodes a picked image, shrinks it to fit a
// ProfilePhotoMaxPx square keeping its aspect ratio and returns it as a JPEG
// data URL. Smaller images keep their size.
func EncodeProfilePhoto(r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrPhotoDecode, err)
	}

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), config.ProfilePhotoMaxPx)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: config.ProfilePhotoQuality}); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrPhotoEncode, err)
	}
	return config.ProfilePhotoPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeProfilePhoto reverses EncodeProfilePhoto for display.
func DecodeProfilePhoto(dataURL string) (image.Image, error) {
	payload, ok := strings.CutPrefix(dataURL, config.ProfilePhotoPrefix)
	if !ok {
		return nil, fmt.Errorf("%s: missing %q prefix", config.ErrPhotoDecode, config.ProfilePhotoPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPhotoDecode, err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPhotoDecode, err)
	}
	return img, nil
}

// fitWithin scales w x h down to fit a limit x limit box.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, clampMin(h * limit / w)
	}
	return clampMin(w * limit / h), limit
}

func clampMin(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
