package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeNPY writes data as a version 1.0 .npy file with the given descr.
func writeNPY(t *testing.T, dir, name, descr string, shape []int, data any) string {
	t.Helper()

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	shapeText := "(" + strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeText += ","
	}
	shapeText += ")"

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeText)

	order := binary.ByteOrder(binary.LittleEndian)
	if strings.HasPrefix(descr, ">") {
		order = binary.BigEndian
	}
	var payload bytes.Buffer
	require.NoError(t, binary.Write(&payload, order, data))

	return writeRawNPY(t, dir, name, header, payload.Bytes())
}

// writeRawNPY writes a version 1.0 .npy file with a literal header dictionary.
func writeRawNPY(t *testing.T, dir, name, header string, payload []byte) string {
	t.Helper()

	// Pad so that the data starts on a 64-byte boundary, newline terminated.
	total := 10 + len(header) + 1
	header += strings.Repeat(" ", (64-total%64)%64) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	buf.Write(payload)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// collect reads every sample of h.
func collect(t *testing.T, h *Handle) []float64 {
	t.Helper()
	var out []float64
	require.NoError(t, h.Blocks(func(off int, block []float64) error {
		require.Equal(t, len(out), off)
		out = append(out, block...)
		return nil
	}))
	return out
}
