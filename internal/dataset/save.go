package dataset

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"
)

// SaveOption configures Save.
type SaveOption func(*saveOptions)

type saveOptions struct {
	overwrite   bool
	compression tiff.CompressionType
}

// Overwrite controls whether an existing file at the destination is replaced.
func Overwrite(overwrite bool) SaveOption {
	return func(o *saveOptions) { o.overwrite = overwrite }
}

// Compress selects deflate compression (true) or uncompressed strips.
func Compress(deflate bool) SaveOption {
	return func(o *saveOptions) {
		o.compression = tiff.Uncompressed
		if deflate {
			o.compression = tiff.Deflate
		}
	}
}

// Save writes the dataset as a single-page grayscale TIFF. The declared type
// must be Uint8 or Uint16. Arrays with more than two dimensions are written as
// a vertical stack of their 2-D planes.
//
// The image is written to a temporary file next to path and renamed into place.
func (h *Handle) Save(path string, opts ...SaveOption) error {
	if h.closed {
		return ErrClosed
	}
	o := saveOptions{compression: tiff.Deflate}
	for _, opt := range opts {
		opt(&o)
	}

	if !o.overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	img, err := h.raster()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating output for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	encErr := tiff.Encode(tmp, img, &tiff.Options{Compression: o.compression})
	closeErr := tmp.Close()
	if err = errors.Join(encErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// planeSize returns the raster width and height for the dataset shape.
func (h *Handle) planeSize() (int, int) {
	switch len(h.shape) {
	case 0:
		return 1, 1
	case 1:
		return h.shape[0], 1
	default:
		width := h.shape[len(h.shape)-1]
		return width, h.Len() / width
	}
}

func (h *Handle) raster() (image.Image, error) {
	width, height := h.planeSize()
	rect := image.Rect(0, 0, width, height)

	switch h.dtype {
	case Uint8:
		img := image.NewGray(rect)
		err := h.Blocks(func(off int, block []float64) error {
			for i, v := range block {
				img.Pix[off+i] = uint8(Uint8.cast(v))
			}
			return nil
		})
		return img, err
	case Uint16:
		img := image.NewGray16(rect)
		err := h.Blocks(func(off int, block []float64) error {
			for i, v := range block {
				u := uint16(Uint16.cast(v))
				img.Pix[2*(off+i)] = uint8(u >> 8)
				img.Pix[2*(off+i)+1] = uint8(u)
			}
			return nil
		})
		return img, err
	default:
		return nil, fmt.Errorf("%w: cannot write %v as TIFF, change the type to uint8 or uint16 first", ErrUnsupportedDType, h.dtype)
	}
}
