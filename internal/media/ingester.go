// Package media handles image ingestion and content moderation for uploads.
package media

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"pawgram/internal/config"
	"pawgram/internal/models"
)

const thumbnailWidth = 400

// StoredImage describes a successfully ingested upload.
type StoredImage struct {
	ImageURL     string
	ThumbnailURL string
}

// Ingester decodes, scales and stores uploaded images on local disk under
// uuid names. Ingestion is all-or-nothing: any failure leaves no partial
// files behind.
type Ingester struct {
	dir     string
	baseURL string
}

// NewIngester creates the media directory if needed and returns an Ingester.
func NewIngester(cfg *config.Config) (*Ingester, error) {
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media dir: %w", err)
	}
	return &Ingester{dir: cfg.MediaDir, baseURL: cfg.MediaBaseURL}, nil
}

// Ingest decodes the upload, writes the full image and a scaled thumbnail,
// and returns their public URLs. Undecodable payloads are a validation error.
func (i *Ingester) Ingest(src image.Image) (*StoredImage, error) {
	name := uuid.NewString()
	imagePath := filepath.Join(i.dir, name+".jpg")
	thumbPath := filepath.Join(i.dir, name+"_thumb.jpg")

	if err := writeJPEG(imagePath, src); err != nil {
		return nil, fmt.Errorf("storing image: %w", err)
	}
	if err := writeJPEG(thumbPath, scale(src, thumbnailWidth)); err != nil {
		os.Remove(imagePath)
		return nil, fmt.Errorf("storing thumbnail: %w", err)
	}

	return &StoredImage{
		ImageURL:     i.baseURL + "/" + name + ".jpg",
		ThumbnailURL: i.baseURL + "/" + name + "_thumb.jpg",
	}, nil
}

// Decode parses an uploaded payload into an image. jpeg, png, gif and webp
// are accepted.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, models.NewValidationError("The uploaded file is not a valid image")
	}
	return img, nil
}

func scale(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() <= width {
		return src
	}
	height := bounds.Dy() * width / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
