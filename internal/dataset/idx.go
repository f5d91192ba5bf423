package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// IDX magic numbers for unsigned-byte payloads.
const (
	idxImagesMagic = 2051 // 0x00000803: images, 3 dimensions
	idxLabelsMagic = 2049 // 0x00000801: labels, 1 dimension

	maxIDXImagePixels = 1 << 24       // rows*cols of a single image
	maxIDXBytes       = math.MaxInt32 // payload decoded from one file
)

// ReadIDXImages reads an image file in IDX format.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// Gzip-compressed files are detected and decompressed transparently. At most
// maxSamples images are decoded (0 = all).
func ReadIDXImages(path string, maxSamples int) (*Images, error) {
	r, closeFn, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return DecodeIDXImages(r, maxSamples)
}

// DecodeIDXImages decodes an uncompressed IDX image stream.
func DecodeIDXImages(r io.Reader, maxSamples int) (*Images, error) {
	var header [4]uint32 // magic, count, rows, cols
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read IDX header: %w", err)
	}
	if header[0] != idxImagesMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header[0], idxImagesMagic)
	}

	count, rows, cols := uint64(header[1]), uint64(header[2]), uint64(header[3])
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: IDX images of %d×%d", ErrShape, rows, cols)
	}
	if rows*cols > maxIDXImagePixels {
		return nil, fmt.Errorf("%w: IDX image of %d×%d exceeds %d pixels", ErrShape, rows, cols, maxIDXImagePixels)
	}
	if maxSamples > 0 && count > uint64(maxSamples) {
		count = uint64(maxSamples)
	}
	size := count * rows * cols
	if size > maxIDXBytes {
		return nil, fmt.Errorf("%w: %d IDX images of %d×%d exceed %d bytes", ErrShape, count, rows, cols, maxIDXBytes)
	}

	n := int(count)
	pixels, err := readPayload(r, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %d images: %v", ErrTruncatedFile, n, err)
	}

	data := make([]float32, len(pixels))
	for i, p := range pixels {
		data[i] = float32(p)
	}
	return NewImages(n, 1, int(rows), int(cols), data)
}

// ReadIDXLabels reads a label file in IDX format.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(path string, maxSamples int) ([]int, error) {
	r, closeFn, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return DecodeIDXLabels(r, maxSamples)
}

// DecodeIDXLabels decodes an uncompressed IDX label stream.
func DecodeIDXLabels(r io.Reader, maxSamples int) ([]int, error) {
	var header [2]uint32 // magic, count
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read IDX header: %w", err)
	}
	if header[0] != idxLabelsMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header[0], idxLabelsMagic)
	}

	n := int(header[1])
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}

	raw, err := readPayload(r, n)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %d labels: %v", ErrTruncatedFile, n, err)
	}

	labels := make([]int, n)
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}

// readPayload reads exactly size bytes. The buffer grows with the data
// actually present, so a header claiming more than the stream holds fails
// without allocating the claimed size.
func readPayload(r io.Reader, size int) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(size)))
	if err != nil {
		return nil, err
	}
	if len(buf) < size {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}

// openIDX opens path and unwraps gzip compression when the stream starts
// with the gzip magic bytes.
func openIDX(path string) (io.Reader, func(), error) {
	//nolint:gosec // G304: dataset path comes from the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if magic[0] != 0x1f || magic[1] != 0x8b {
		return br, func() { _ = file.Close() }, nil
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
	}
	return gz, func() {
		_ = gz.Close()
		_ = file.Close()
	}, nil
}
