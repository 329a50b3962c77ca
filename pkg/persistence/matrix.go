// Package persistence stores feature vector matrices on disk.
//
// A matrix file is a sequence of CRC-checked frames: one header frame with the
// shape, then one frame per row holding one byte (0 or 1) per column. The
// whole stream may additionally be zstd-compressed; readers detect this from
// the zstd magic number, so callers never have to say which form they hold.
package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/sanonone/kektorgraph/pkg/bitset"
	"github.com/sanonone/kektorgraph/pkg/vector"
)

// rowsHint caps the row capacity reserved from a matrix header.
const rowsHint = 4096

// Compression selects how a matrix file is compressed.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

var (
	// ErrShapeMismatch indicates a row frame whose width differs from the header,
	// or a file whose row count differs from the header.
	ErrShapeMismatch = errors.New("matrix shape mismatch")
	// ErrUnexpectedFrame indicates a frame with the wrong opcode.
	ErrUnexpectedFrame = errors.New("unexpected frame")
	// ErrUnknownCompression is returned for an unsupported Compression value.
	ErrUnknownCompression = errors.New("unknown compression")
	// ErrInvalidCell indicates a row byte that is neither 0 nor 1.
	ErrInvalidCell = bitset.ErrInvalidCell
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// ParseCompression validates a compression name. The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownCompression)
	}
}

// WriteMatrix encodes m to w.
func WriteMatrix(w io.Writer, m *vector.Matrix, c Compression) error {
	switch c {
	case "", CompressionNone:
		bw := bufio.NewWriter(w)
		if err := writeFrames(bw, m); err != nil {
			return err
		}
		return bw.Flush()

	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		if err := writeFrames(enc, m); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("%q: %w", c, ErrUnknownCompression)
	}
}

func writeFrames(w io.Writer, m *vector.Matrix) error {
	fw := NewFrameWriter(w)

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], uint32(m.Len()))
	binary.LittleEndian.PutUint32(header[4:8], uint32(m.Cols))
	if err := fw.WriteFrame(OpMatrixHeader, header); err != nil {
		return fmt.Errorf("failed to write matrix header: %w", err)
	}

	for i, row := range m.Rows {
		cells := row.Bytes()
		if len(cells) != m.Cols {
			return fmt.Errorf("row %d has %d columns, want %d: %w", i, len(cells), m.Cols, ErrShapeMismatch)
		}
		if err := fw.WriteFrame(OpMatrixRow, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return nil
}

// ReadMatrix decodes a matrix written by WriteMatrix, compressed or not.
func ReadMatrix(r io.Reader) (*vector.Matrix, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err == nil && bytes.Equal(magic, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		return readFrames(bufio.NewReader(dec))
	}
	return readFrames(br)
}

func readFrames(r io.Reader) (*vector.Matrix, error) {
	op, payload, err := ReadFrameLimit(r, 8)
	if err != nil {
		if err == io.EOF {
			return nil, ErrIncompleteFrame
		}
		return nil, fmt.Errorf("matrix header: %w", err)
	}
	if op != OpMatrixHeader || len(payload) != 8 {
		return nil, fmt.Errorf("matrix header: %w", ErrUnexpectedFrame)
	}
	rows := int(binary.LittleEndian.Uint32(payload[0:4]))
	cols := int(binary.LittleEndian.Uint32(payload[4:8]))

	if cols > MaxFramePayload {
		return nil, fmt.Errorf("matrix header declares %d columns: %w", cols, ErrFrameTooLarge)
	}

	// The header is not trusted as an allocation size; rows grow as frames arrive.
	m := &vector.Matrix{Cols: cols, Rows: make([]*bitset.BitSet, 0, min(rows, rowsHint))}
	for i := 0; i < rows; i++ {
		op, payload, err := ReadFrameLimit(r, cols)
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("row %d: %w", i, ErrIncompleteFrame)
			}
			if errors.Is(err, ErrFrameTooLarge) {
				return nil, fmt.Errorf("row %d wider than %d columns: %w: %w", i, cols, ErrShapeMismatch, err)
			}
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if op != OpMatrixRow {
			return nil, fmt.Errorf("row %d: %w", i, ErrUnexpectedFrame)
		}
		if len(payload) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(payload), cols, ErrShapeMismatch)
		}
		row, err := bitset.FromBytes(payload)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		m.Rows = append(m.Rows, row)
	}

	if _, _, err := ReadFrameLimit(r, cols); err != io.EOF {
		return nil, fmt.Errorf("trailing data after %d rows: %w", rows, ErrShapeMismatch)
	}
	return m, nil
}

// SaveMatrix writes m to path.
func SaveMatrix(path string, m *vector.Matrix, c Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matrix file: %w", err)
	}
	if err := WriteMatrix(f, m, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadMatrix reads a matrix from path.
func LoadMatrix(path string) (*vector.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open matrix file: %w", err)
	}
	defer f.Close()

	m, err := ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
