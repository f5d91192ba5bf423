// Package dataset holds image samples in NCHW layout and decodes them from
// the IDX files used by MNIST.
//
// The training core consumes *Images and []int labels; everything that
// touches files lives here so the core performs no I/O.
package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Common errors.
var (
	ErrShape         = errors.New("dataset: data length does not match shape")
	ErrLabelCount    = errors.New("dataset: label count does not match sample count")
	ErrInvalidSplit  = errors.New("dataset: invalid validation split")
	ErrInvalidMagic  = errors.New("dataset: invalid IDX magic number")
	ErrTruncatedFile = errors.New("dataset: IDX payload truncated")
)

// Images is a dense batch of samples laid out as count × channels × rows × cols.
//
// Pixel values are kept as decoded (0-255 for MNIST); normalization is the
// job of the Flatten layer.
type Images struct {
	N, C, H, W int
	Data       []float32
}

// NewImages wraps data with the given NCHW shape.
func NewImages(n, c, h, w int, data []float32) (*Images, error) {
	if n < 0 || c <= 0 || h <= 0 || w <= 0 {
		return nil, fmt.Errorf("%w: shape (%d, %d, %d, %d)", ErrShape, n, c, h, w)
	}
	if len(data) != n*c*h*w {
		return nil, fmt.Errorf("%w: got %d values for shape (%d, %d, %d, %d)", ErrShape, len(data), n, c, h, w)
	}
	return &Images{N: n, C: c, H: h, W: w, Data: data}, nil
}

// Len returns the number of samples.
func (im *Images) Len() int {
	if im == nil {
		return 0
	}
	return im.N
}

// SampleSize returns the number of values in one sample.
func (im *Images) SampleSize() int {
	return im.C * im.H * im.W
}

// Raw returns the float32 values of sample i without copying.
func (im *Images) Raw(i int) []float32 {
	size := im.SampleSize()
	return im.Data[i*size : (i+1)*size]
}

// Sample returns sample i as a (C*H) × W matrix.
//
// Channels are stacked vertically, so for single-channel images the matrix
// is exactly rows × cols.
func (im *Images) Sample(i int) *mat.Dense {
	if i < 0 || i >= im.N {
		panic(fmt.Sprintf("Images.Sample: index %d out of range [0, %d)", i, im.N))
	}
	raw := im.Raw(i)
	data := make([]float64, len(raw))
	for j, v := range raw {
		data[j] = float64(v)
	}
	return mat.NewDense(im.C*im.H, im.W, data)
}

// Slice returns samples [from, to) sharing the underlying storage.
func (im *Images) Slice(from, to int) *Images {
	if from < 0 || to > im.N || from > to {
		panic(fmt.Sprintf("Images.Slice: bounds [%d, %d) out of range [0, %d]", from, to, im.N))
	}
	size := im.SampleSize()
	return &Images{
		N:    to - from,
		C:    im.C,
		H:    im.H,
		W:    im.W,
		Data: im.Data[from*size : to*size],
	}
}

// Split is one part of a dataset produced by SplitTail.
type Split struct {
	Images *Images
	Labels []int
}

// SplitTail holds out the trailing fraction of the samples for validation.
//
// No shuffling is performed: the first int((1-fraction)*N) samples are the
// training part and the remainder is the validation part. A fraction of 0
// returns everything as training data and an empty validation part.
func SplitTail(x *Images, y []int, fraction float64) (train, val Split, err error) {
	if x.Len() != len(y) {
		return Split{}, Split{}, fmt.Errorf("%w: %d samples, %d labels", ErrLabelCount, x.Len(), len(y))
	}
	if !(fraction >= 0 && fraction < 1) {
		return Split{}, Split{}, fmt.Errorf("%w: %v not in [0, 1)", ErrInvalidSplit, fraction)
	}
	if fraction == 0 {
		return Split{Images: x, Labels: y}, Split{Images: x.Slice(x.N, x.N)}, nil
	}

	at := int((1 - fraction) * float64(x.N))
	train = Split{Images: x.Slice(0, at), Labels: y[:at]}
	val = Split{Images: x.Slice(at, x.N), Labels: y[at:]}
	return train, val, nil
}
