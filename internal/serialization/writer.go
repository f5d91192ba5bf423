package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Producer identifies the writer in Header.Producer.
const Producer = "xnn/0.1.0"

// Write encodes tensors and header to w.
//
// Tensors are stored in name order; header.Tensors is rebuilt from the map,
// and FormatVersion, Producer and CreatedAt are filled in when unset.
func Write(w io.Writer, header Header, tensors map[string]*mat.Dense) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var data []byte
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		m := tensors[name]
		r, c := m.Dims()
		offset := int64(len(data))
		data = appendFloat64s(data, m)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  DTypeFloat64,
			Shape:  []int{r, c},
			Offset: offset,
			Size:   int64(len(data)) - offset,
		})
	}

	header.FormatVersion = FormatVersion
	if header.Producer == "" {
		header.Producer = Producer
	}
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if len(header.History) > 0 {
		flags |= FlagHasHistory
	}

	checksum := Checksum(headerJSON, data)

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}
	if pad := padding(int64(FixedHeaderSize + len(headerJSON))); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// WriteFile writes a checkpoint to path, replacing any existing file.
func WriteFile(path string, header Header, tensors map[string]*mat.Dense) (err error) {
	//nolint:gosec // G304: checkpoint path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return Write(file, header, tensors)
}

func appendFloat64s(dst []byte, m *mat.Dense) []byte {
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(m.At(i, j)))
		}
	}
	return dst
}
