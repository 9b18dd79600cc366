package dataset

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
)

// imageSource decodes a raster image on first access. The header is read
// eagerly to learn the shape, the pixels only when a block is requested.
type imageSource struct {
	path   string
	width  int
	height int
	deep   bool
	pix    []float64
}

func openImage(path string) (BlockSource, []int, DType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, Invalid, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, nil, Invalid, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	deep := is16Bit(cfg.ColorModel)
	dtype := Uint8
	if deep {
		dtype = Uint16
	}
	src := &imageSource{path: path, width: cfg.Width, height: cfg.Height, deep: deep}
	return src, []int{cfg.Height, cfg.Width}, dtype, nil
}

func is16Bit(m color.Model) bool {
	switch m {
	case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model:
		return true
	default:
		return false
	}
}

func (s *imageSource) Len() int { return s.width * s.height }

func (s *imageSource) ReadAt(dst []float64, off int) (int, error) {
	if off >= s.Len() {
		return 0, io.EOF
	}
	if s.pix == nil {
		if err := s.decode(); err != nil {
			return 0, err
		}
	}
	return copy(dst, s.pix[off:]), nil
}

func (s *imageSource) decode() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("%w: decoded %dx%d, header said %dx%d", ErrCorrupt, b.Dx(), b.Dy(), s.width, s.height)
	}

	pix := make([]float64, 0, s.Len())
	switch m := img.(type) {
	case *image.Gray:
		for y := range s.height {
			row := m.Pix[y*m.Stride : y*m.Stride+s.width]
			for _, v := range row {
				pix = append(pix, float64(v))
			}
		}
	case *image.Gray16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pix = append(pix, float64(m.Gray16At(x, y).Y))
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pix = append(pix, s.luminance(img.At(x, y)))
			}
		}
	}
	s.pix = pix
	return nil
}

func (s *imageSource) luminance(c color.Color) float64 {
	if s.deep {
		return float64(color.Gray16Model.Convert(c).(color.Gray16).Y)
	}
	return float64(color.GrayModel.Convert(c).(color.Gray).Y)
}

func (s *imageSource) Close() error {
	s.pix = nil
	return nil
}
