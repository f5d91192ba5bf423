package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "XNNC"
	FormatVersion   = 1
	HeaderAlignment = 64   // tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64   // 0x40
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // checksum position in the fixed header
)

// DTypeFloat64 is the only element type stored in the data section.
const DTypeFloat64 = "float64"

// Flags for the fixed header.
const (
	FlagHasMetadata uint32 = 1 << 0 // custom metadata included
	FlagHasHistory  uint32 = 1 << 1 // training history included
)

// Layer kinds recorded in LayerMeta.Kind.
const (
	KindFlatten = "flatten"
	KindDense   = "dense"
)

// Header represents the JSON header of a checkpoint.
type Header struct {
	FormatVersion int               `json:"format_version"`
	Producer      string            `json:"producer"`   // version of the tool that wrote the file
	ModelType     string            `json:"model_type"` // e.g. "Network"
	CreatedAt     time.Time         `json:"created_at"`
	Layers        []LayerMeta       `json:"layers"`
	Tensors       []TensorMeta      `json:"tensors"`
	History       []EpochMeta       `json:"history,omitempty"`
	Metadata      map[string]string `json:"metadata"`
}

// LayerMeta describes one layer in forward order.
//
// Weights and biases of a dense layer are stored as the tensors named
// WeightName and BiasName.
type LayerMeta struct {
	Kind         string  `json:"kind"` // KindFlatten or KindDense
	Name         string  `json:"name"`
	In           int     `json:"in,omitempty"`
	Out          int     `json:"out,omitempty"`
	Activation   string  `json:"activation,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Momentum     float64 `json:"momentum,omitempty"`
	TrainBias    bool    `json:"train_bias,omitempty"`
	Gradient     string  `json:"gradient,omitempty"`
	Normalize    float64 `json:"normalize,omitempty"`
	WeightName   string  `json:"weight,omitempty"`
	BiasName     string  `json:"bias,omitempty"`
}

// EpochMeta carries the metrics of one training epoch. Epoch is the index
// within the training run that produced it.
type EpochMeta struct {
	Epoch     int     `json:"epoch"`
	TrainSize int     `json:"train_size"`
	Loss      float64 `json:"loss"`
	Accuracy  float64 `json:"accuracy"`
	Validated bool    `json:"validated"`
	Seconds   float64 `json:"seconds"`
}

// TensorMeta describes a tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "layers.1.weight"
	DType  string `json:"dtype"`  // always DTypeFloat64
	Shape  []int  `json:"shape"`  // rows, cols
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// padding returns the number of zero bytes needed after pos to reach the
// next HeaderAlignment boundary.
func padding(pos int64) int64 {
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
