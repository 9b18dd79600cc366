package dataset

import "io"

// BlockSource delivers the samples of a dataset as float64 values.
//
// ReadAt fills dst with the samples starting at element offset off and
// returns the number of samples written. It returns io.EOF only when no
// samples remain at off.
type BlockSource interface {
	Len() int
	ReadAt(dst []float64, off int) (int, error)
	Close() error
}

// memSource is a fully materialized BlockSource.
type memSource struct {
	data []float64
}

func (m *memSource) Len() int { return len(m.data) }

func (m *memSource) ReadAt(dst []float64, off int) (int, error) {
	if off >= len(m.data) {
		return 0, io.EOF
	}
	return copy(dst, m.data[off:]), nil
}

func (m *memSource) Close() error {
	m.data = nil
	return nil
}

// materialize reads every sample of src into memory.
func materialize(src BlockSource) (*memSource, error) {
	data := make([]float64, src.Len())
	for off := 0; off < len(data); {
		n, err := src.ReadAt(data[off:], off)
		off += n
		if err != nil && off < len(data) {
			return nil, err
		}
		if n == 0 && err == nil {
			return nil, io.ErrNoProgress
		}
	}
	return &memSource{data: data}, nil
}
