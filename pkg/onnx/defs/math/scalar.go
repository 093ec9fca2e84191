// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package math holds the schemas of the math operators (the softmax family) and the helpers
// shared by their inference functions.
package math

import (
	"encoding/binary"
	stdmath "math"

	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/onnx/defs"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

var (
	// ErrUnsupportedElementType is matched by errors extracting scalars from tensors of unsupported types.
	ErrUnsupportedElementType = errors.New("unsupported element type")

	// ErrEmptyTensor is matched by errors extracting scalars from tensors with no stored values.
	ErrEmptyTensor = errors.New("empty tensor")

	// ErrMalformedRawTensor is matched by errors extracting scalars from tensors whose raw data is
	// not a whole number of elements.
	ErrMalformedRawTensor = errors.New("malformed raw tensor data")
)

// ScalarValueFromTensor returns the first element of t converted to T.
//
// A nil tensor yields T's zero value. The element types FLOAT, DOUBLE, INT32, INT64, FLOAT16 and
// BFLOAT16 are supported, stored either in their typed list or as little-endian raw data. Failures
// are *defs.InferenceError of the shape inference kind, matching ErrUnsupportedElementType,
// ErrEmptyTensor or ErrMalformedRawTensor.
func ScalarValueFromTensor[T constraints.Integer | constraints.Float](t *ir.Tensor) (T, error) {
	var zero T
	if t == nil {
		return zero, nil
	}
	switch t.DType {
	case dtypes.Float32:
		v, err := firstElement(t, t.FloatData, func(b []byte) float32 {
			return stdmath.Float32frombits(binary.LittleEndian.Uint32(b))
		})
		return T(v), err
	case dtypes.Float64:
		v, err := firstElement(t, t.DoubleData, func(b []byte) float64 {
			return stdmath.Float64frombits(binary.LittleEndian.Uint64(b))
		})
		return T(v), err
	case dtypes.Int32:
		v, err := firstElement(t, t.Int32Data, func(b []byte) int32 {
			return int32(binary.LittleEndian.Uint32(b))
		})
		return T(v), err
	case dtypes.Int64:
		v, err := firstElement(t, t.Int64Data, func(b []byte) int64 {
			return int64(binary.LittleEndian.Uint64(b))
		})
		return T(v), err
	case dtypes.Float16, dtypes.BFloat16:
		// Half precision values are stored as bit patterns in Int32Data.
		toFloat32 := dtypes.Float16ToFloat32
		if t.DType == dtypes.BFloat16 {
			toFloat32 = dtypes.BFloat16ToFloat32
		}
		bits, err := firstElement(t, t.Int32Data, func(b []byte) int32 {
			return int32(binary.LittleEndian.Uint16(b))
		})
		return T(toFloat32(uint16(bits))), err
	}
	return zero, defs.WrapShapeInference(ErrUnsupportedElementType, "Unsupported input data type of %s", t.DType)
}

// firstElement returns the first element of the typed list, or, if the tensor is stored as raw data,
// the decoding of its first element.
func firstElement[S int32 | int64 | float32 | float64](t *ir.Tensor, typed []S, decode func([]byte) S) (S, error) {
	if t.HasRawData() {
		size := t.DType.Size()
		if len(t.RawData)%size != 0 {
			return 0, defs.WrapShapeInference(ErrMalformedRawTensor,
				"tensor %q of type %s has %d bytes of raw data, not a multiple of the element size %d",
				t.Name, t.DType, len(t.RawData), size)
		}
		return decode(t.RawData[:size]), nil
	}
	if len(typed) == 0 {
		return 0, defs.WrapShapeInference(ErrEmptyTensor, "tensor %q of type %s has no values", t.Name, t.DType)
	}
	return typed[0], nil
}
