package persistence

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Constants for the framed binary format.
const (
	// MagicByte marks the start of every frame.
	MagicByte = 0xA5

	// HeaderSize is the fixed frame header:
	// 1 byte (Magic) + 1 byte (OpCode) + 4 bytes (Length) + 4 bytes (CRC32) = 10 bytes.
	HeaderSize = 10

	// OpMatrixHeader carries the matrix shape: rows uint32, cols uint32.
	OpMatrixHeader = 0x10
	// OpMatrixRow carries one row, one byte (0 or 1) per column.
	OpMatrixRow = 0x11

	// MaxFramePayload bounds the length field accepted by ReadFrame.
	MaxFramePayload = 1 << 28
)

var (
	// ErrInvalidMagic indicates the stream lost synchronization or is not a matrix file.
	ErrInvalidMagic = errors.New("invalid magic byte")
	// ErrChecksumMismatch indicates corruption within a frame payload.
	ErrChecksumMismatch = errors.New("crc32 checksum mismatch")
	// ErrIncompleteFrame indicates the file ended inside a frame.
	ErrIncompleteFrame = errors.New("incomplete frame")
	// ErrFrameTooLarge indicates a length field above the reader's limit.
	ErrFrameTooLarge = errors.New("frame payload too large")
)

// FrameWriter writes binary frames to an io.Writer.
type FrameWriter struct {
	w io.Writer
}

// NewFrameWriter creates a writer that wraps an underlying io.Writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame encodes the payload into a binary frame and writes it.
// Frame Format: [Magic(1)][OpCode(1)][Length(4)][CRC(4)][Payload(N)]
func (fw *FrameWriter) WriteFrame(op byte, payload []byte) error {
	header := make([]byte, HeaderSize)
	header[0] = MagicByte
	header[1] = op
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[6:10], crc32.ChecksumIEEE(payload))

	if _, err := fw.w.Write(header); err != nil {
		return err
	}
	if _, err := fw.w.Write(payload); err != nil {
		return err
	}
	return nil
}

// ReadFrame reads the next frame, validating the magic byte and the CRC32.
// It returns the opcode and payload. io.EOF is returned only when the stream
// ends exactly on a frame boundary.
func ReadFrame(r io.Reader) (byte, []byte, error) {
	return ReadFrameLimit(r, MaxFramePayload)
}

// ReadFrameLimit is ReadFrame with a caller-chosen payload bound. Lengths above
// maxLen are rejected before any payload buffer is allocated.
func ReadFrameLimit(r io.Reader, maxLen int) (byte, []byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, ErrIncompleteFrame
	}

	if header[0] != MagicByte {
		return 0, nil, ErrInvalidMagic
	}

	op := header[1]
	length := binary.LittleEndian.Uint32(header[2:6])
	expectedCRC := binary.LittleEndian.Uint32(header[6:10])
	if uint64(length) > uint64(maxLen) {
		return 0, nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, ErrIncompleteFrame
	}

	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return 0, nil, ErrChecksumMismatch
	}
	return op, payload, nil
}
