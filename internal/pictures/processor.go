package pictures

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const (
	DefaultMaxSize = 1024
	DefaultQuality = 80
)

// NewPictureName returns a fresh file name for a complementary picture.
func NewPictureName() string {
	return uuid.NewString() + ".jpg"
}

// Compress decodes a JPEG or PNG picture, scales it to fit within a
// maxSize square keeping the aspect ratio and writes it as JPEG. Pictures
// already within bounds are only re-encoded.
func Compress(r io.Reader, w io.Writer, maxSize uint, quality int) error {
	img, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("decode picture: %w", err)
	}
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	thumb := resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)
	if err := jpeg.Encode(w, thumb, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode picture: %w", err)
	}
	return nil
}

// Rotate turns the picture clockwise by 90, 180 or 270 degrees and writes it
// as JPEG.
func Rotate(r io.Reader, w io.Writer, degrees int) error {
	degrees = ((degrees % 360) + 360) % 360
	if degrees%90 != 0 {
		return fmt.Errorf("rotate picture: unsupported angle %d", degrees)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("decode picture: %w", err)
	}
	rotated := rotate(img, degrees)
	if err := jpeg.Encode(w, rotated, &jpeg.Options{Quality: DefaultQuality}); err != nil {
		return fmt.Errorf("encode picture: %w", err)
	}
	return nil
}

func rotate(img image.Image, degrees int) image.Image {
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
	if degrees == 0 {
		return src
	}

	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if degrees == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(x, y)
			switch degrees {
			case 90:
				dst.SetRGBA(h-1-y, x, c)
			case 180:
				dst.SetRGBA(w-1-x, h-1-y, c)
			case 270:
				dst.SetRGBA(y, w-1-x, c)
			}
		}
	}
	return dst
}
