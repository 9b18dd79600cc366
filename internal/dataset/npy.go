package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sbinet/npyio/npy"
)

// npyHeader is the parsed header of a .npy file.
type npyHeader struct {
	dtype  DType
	order  binary.ByteOrder
	shape  []int
	offset int64
}

// npySource streams samples straight from the file.
type npySource struct {
	f      *os.File
	r      *io.SectionReader
	hdr    npyHeader
	n      int
	raw    []byte
	closed bool
}

func openNPY(path string) (BlockSource, []int, DType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, Invalid, err
	}

	hdr, err := readNPYHeader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, Invalid, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, Invalid, err
	}
	n, err := elementCount(hdr.shape)
	if err != nil {
		_ = f.Close()
		return nil, nil, Invalid, err
	}
	size := int64(hdr.dtype.Size())
	if int64(n) > (math.MaxInt64-hdr.offset)/size {
		_ = f.Close()
		return nil, nil, Invalid, fmt.Errorf("%w: shape %v is too large", ErrCorrupt, hdr.shape)
	}
	need := hdr.offset + int64(n)*size
	if info.Size() < need {
		_ = f.Close()
		return nil, nil, Invalid, fmt.Errorf("%w: expected %d bytes, file has %d", ErrCorrupt, need, info.Size())
	}

	src := &npySource{
		f:   f,
		r:   io.NewSectionReader(f, hdr.offset, need-hdr.offset),
		hdr: hdr,
		n:   n,
	}
	return src, hdr.shape, hdr.dtype, nil
}

// readNPYHeader decodes the header with npyio and leaves f positioned at the
// first data byte, which becomes the data offset.
func readNPYHeader(f *os.File) (npyHeader, error) {
	var hdr npyHeader

	r, err := npy.NewReader(f)
	if err != nil {
		return hdr, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	descr := r.Header.Descr
	if descr.Fortran {
		return hdr, fmt.Errorf("%w: fortran-ordered arrays", ErrUnsupportedFormat)
	}

	hdr.dtype, hdr.order, err = parseNPYDescr(descr.Type)
	if err != nil {
		return hdr, err
	}
	hdr.shape = append([]int(nil), descr.Shape...)

	hdr.offset, err = f.Seek(0, io.SeekCurrent)
	if err != nil {
		return hdr, err
	}
	return hdr, nil
}

func (s *npySource) Len() int { return s.n }

func (s *npySource) ReadAt(dst []float64, off int) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if off >= s.n {
		return 0, io.EOF
	}
	count := min(len(dst), s.n-off)
	size := s.hdr.dtype.Size()
	if cap(s.raw) < count*size {
		s.raw = make([]byte, count*size)
	}
	raw := s.raw[:count*size]
	if _, err := s.r.ReadAt(raw, int64(off)*int64(size)); err != nil {
		return 0, err
	}
	decodeSamples(dst[:count], raw, s.hdr.dtype, s.hdr.order)
	return count, nil
}

func (s *npySource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

func decodeSamples(dst []float64, raw []byte, d DType, order binary.ByteOrder) {
	size := d.Size()
	for i := range dst {
		b := raw[i*size : (i+1)*size]
		switch d {
		case Uint8:
			dst[i] = float64(b[0])
		case Int8:
			dst[i] = float64(int8(b[0]))
		case Uint16:
			dst[i] = float64(order.Uint16(b))
		case Int16:
			dst[i] = float64(int16(order.Uint16(b)))
		case Uint32:
			dst[i] = float64(order.Uint32(b))
		case Int32:
			dst[i] = float64(int32(order.Uint32(b)))
		case Uint64:
			dst[i] = float64(order.Uint64(b))
		case Int64:
			dst[i] = float64(int64(order.Uint64(b)))
		case Float32:
			dst[i] = float64(math.Float32frombits(order.Uint32(b)))
		case Float64:
			dst[i] = math.Float64frombits(order.Uint64(b))
		}
	}
}

func parseNPYDescr(descr string) (DType, binary.ByteOrder, error) {
	if len(descr) < 3 {
		return Invalid, nil, fmt.Errorf("%w: descr %q", ErrUnsupportedDType, descr)
	}
	var order binary.ByteOrder
	switch descr[0] {
	case '<', '|', '=':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	default:
		return Invalid, nil, fmt.Errorf("%w: descr %q", ErrUnsupportedDType, descr)
	}

	kinds := map[string]DType{
		"u1": Uint8, "i1": Int8, "u2": Uint16, "i2": Int16,
		"u4": Uint32, "i4": Int32, "u8": Uint64, "i8": Int64,
		"f4": Float32, "f8": Float64,
	}
	d, ok := kinds[descr[1:]]
	if !ok {
		return Invalid, nil, fmt.Errorf("%w: descr %q", ErrUnsupportedDType, descr)
	}
	return d, order, nil
}
