// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/pkg/errors"
)

// MaxElementsToPrint is the number of elements of a tensor included in its String representation.
const MaxElementsToPrint = 5

// Tensor is a constant tensor: the payload of a Constant node "value" attribute, or a graph initializer.
//
// The data is stored either in one of the typed lists, or in RawData: the two encodings are mutually
// exclusive. RawData is a flat little-endian dump of the elements, so its length must be a multiple of
// the element size.
//
// As in ONNX, the typed list used depends on the DType: Float32 uses FloatData, Float64 uses DoubleData,
// Int64 uses Int64Data, Uint32/Uint64 use Uint64Data, String uses StringData and all other (smaller)
// types, including Float16 and BFloat16 bit patterns, use Int32Data.
type Tensor struct {
	Name  string
	DType dtypes.DType
	Dims  []int64

	FloatData  []float32
	DoubleData []float64
	Int32Data  []int32
	Int64Data  []int64
	Uint64Data []uint64
	StringData [][]byte

	RawData []byte
}

// NewInt64Tensor returns an Int64 tensor with the given dims and values stored in the typed list.
func NewInt64Tensor(name string, dims []int64, values ...int64) *Tensor {
	return &Tensor{Name: name, DType: dtypes.Int64, Dims: slices.Clone(dims), Int64Data: slices.Clone(values)}
}

// NewRawTensor returns a tensor whose data is stored in the raw (little-endian) encoding.
func NewRawTensor(name string, dtype dtypes.DType, dims []int64, raw []byte) *Tensor {
	return &Tensor{Name: name, DType: dtype, Dims: slices.Clone(dims), RawData: slices.Clone(raw)}
}

// Int64s returns the typed int64 list. It is empty if the data is stored in another encoding.
func (t *Tensor) Int64s() []int64 { return t.Int64Data }

// Raw returns the raw data buffer. It is empty if the data is stored in a typed list.
func (t *Tensor) Raw() []byte { return t.RawData }

// HasRawData returns whether the data is stored in the raw encoding.
func (t *Tensor) HasRawData() bool { return len(t.RawData) > 0 }

// Shape returns the shape of the tensor.
func (t *Tensor) Shape() shapes.Shape {
	dims := make([]int, len(t.Dims))
	for ii, dim := range t.Dims {
		dims[ii] = int(dim)
	}
	return shapes.MakeSymbolic(t.DType, dims, nil)
}

// NumElements returns the number of elements given by the dimensions (1 for scalars).
func (t *Tensor) NumElements() int64 {
	n := int64(1)
	for _, dim := range t.Dims {
		n *= dim
	}
	return n
}

// NumBytes returns the size of the stored payload in bytes.
func (t *Tensor) NumBytes() int {
	switch {
	case t.HasRawData():
		return len(t.RawData)
	case len(t.StringData) > 0:
		var n int
		for _, s := range t.StringData {
			n += len(s)
		}
		return n
	}
	return 4*len(t.FloatData) + 8*len(t.DoubleData) + 4*len(t.Int32Data) + 8*len(t.Int64Data) + 8*len(t.Uint64Data)
}

// CheckRawData returns an error if the raw data length is not a multiple of the element size.
// It is a no-op for tensors without raw data.
func (t *Tensor) CheckRawData() error {
	if !t.HasRawData() {
		return nil
	}
	size := t.DType.Size()
	if size == 0 {
		return errors.Errorf("tensor %q of type %s cannot be stored as raw data", t.Name, t.DType)
	}
	if len(t.RawData)%size != 0 {
		return errors.Errorf("tensor %q raw data has %d bytes, which is not a multiple of the %s element size (%d bytes)",
			t.Name, len(t.RawData), t.DType, size)
	}
	return nil
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	t2 := &Tensor{
		Name:       t.Name,
		DType:      t.DType,
		Dims:       slices.Clone(t.Dims),
		FloatData:  slices.Clone(t.FloatData),
		DoubleData: slices.Clone(t.DoubleData),
		Int32Data:  slices.Clone(t.Int32Data),
		Int64Data:  slices.Clone(t.Int64Data),
		Uint64Data: slices.Clone(t.Uint64Data),
		RawData:    slices.Clone(t.RawData),
	}
	for _, s := range t.StringData {
		t2.StringData = append(t2.StringData, slices.Clone(s))
	}
	return t2
}

// String implements fmt.Stringer. It prints the shape and a summary of the payload, e.g.: `(INT64)[1] {7}`.
func (t *Tensor) String() string {
	if t == nil {
		return "<nil tensor>"
	}
	var payload string
	switch {
	case t.HasRawData():
		payload = fmt.Sprintf("raw[%d bytes]", len(t.RawData))
	case len(t.FloatData) > 0:
		payload = formatElements(t.FloatData)
	case len(t.DoubleData) > 0:
		payload = formatElements(t.DoubleData)
	case len(t.Int32Data) > 0:
		payload = formatElements(t.Int32Data)
	case len(t.Int64Data) > 0:
		payload = formatElements(t.Int64Data)
	case len(t.Uint64Data) > 0:
		payload = formatElements(t.Uint64Data)
	case len(t.StringData) > 0:
		payload = formatElements(t.StringData)
	default:
		payload = "{}"
	}
	return fmt.Sprintf("%s %s", t.Shape(), payload)
}

func formatElements[T any](values []T) string {
	parts := make([]string, 0, min(len(values), MaxElementsToPrint)+1)
	for ii, v := range values {
		if ii == MaxElementsToPrint {
			parts = append(parts, "...")
			break
		}
		if b, ok := any(v).([]byte); ok {
			parts = append(parts, fmt.Sprintf("%q", b))
			continue
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
