package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/plusone-alumni/plusone/internal/models"
)

const (
	MaxPhotoBytes     = 5 << 20
	maxPhotoEdge      = 512
	maxPhotoPixels    = 40_000_000
	photoJPEGQuality  = 85
	photoDataURLStart = "data:image/jpeg;base64,"
)

// PreparePhoto turns an uploaded image into an inline profile photo: decoded,
// scaled down to fit maxPhotoEdge and re-encoded as a JPEG data URL.
func PreparePhoto(r io.Reader, now time.Time) (models.Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return models.Photo{}, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxPhotoBytes {
		return models.Photo{}, ErrPhotoTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.Photo{}, ErrPhotoUnsupported
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPhotoPixels {
		return models.Photo{}, ErrPhotoUnsupported
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return models.Photo{}, ErrPhotoUnsupported
	}

	dst := scaleToFit(src, maxPhotoEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: photoJPEGQuality}); err != nil {
		return models.Photo{}, fmt.Errorf("encoding photo: %w", err)
	}

	return models.Photo{
		Storage: models.PhotoStorageInline,
		Key:     fmt.Sprintf("upload-%d", now.UnixMilli()),
		URL:     photoDataURLStart + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// scaleToFit keeps aspect ratio. Images already within bounds are copied onto
// an opaque canvas so transparent areas encode as white.
func scaleToFit(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxEdge || h > maxEdge {
		if w >= h {
			h = max(1, h*maxEdge/w)
			w = maxEdge
		} else {
			w = max(1, w*maxEdge/h)
			h = maxEdge
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
