package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Read decodes a checkpoint from r.
//
// The data section is verified against the stored SHA-256 checksum and the
// header is validated before any tensor is decoded.
func Read(r io.Reader) (Header, map[string]*mat.Dense, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return Header{}, nil, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, fixed[0:4], MagicBytes)
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return Header{}, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return Header{}, nil, ErrHeaderTooLarge
	}
	if dataSize > math.MaxInt32*8 {
		return Header{}, nil, &ValidationError{Type: "out_of_bounds", Details: fmt.Sprintf("data size %d", dataSize)}
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read header JSON: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if pad := padding(int64(FixedHeaderSize) + int64(headerSize)); pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return Header{}, nil, fmt.Errorf("failed to read padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := VerifyChecksum(headerBytes, data, stored); err != nil {
		return Header{}, nil, err
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return Header{}, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return Header{}, nil, fmt.Errorf("validation failed: %w", err)
	}

	tensors := make(map[string]*mat.Dense, len(header.Tensors))
	for _, meta := range header.Tensors {
		tensors[meta.Name] = decodeFloat64s(data[meta.Offset:meta.Offset+meta.Size], meta.Shape[0], meta.Shape[1])
	}
	return header, tensors, nil
}

// ReadFile reads a checkpoint from path.
func ReadFile(path string) (Header, map[string]*mat.Dense, error) {
	//nolint:gosec // G304: checkpoint path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Read(file)
}

// Tensor returns the named tensor or an error wrapping ErrTensorNotFound.
func Tensor(tensors map[string]*mat.Dense, name string) (*mat.Dense, error) {
	m, ok := tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return m, nil
}

func decodeFloat64s(b []byte, rows, cols int) *mat.Dense {
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return mat.NewDense(rows, cols, values)
}
