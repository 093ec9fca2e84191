// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package math

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/onnx/defs"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// scalarTensors returns tensors of every supported type holding the value 7 as first element,
// in both the typed and raw encodings.
func scalarTensors() map[string]*ir.Tensor {
	raw32 := binary.LittleEndian.AppendUint32(nil, 7)
	raw64 := binary.LittleEndian.AppendUint64(nil, 7)
	rawF32 := binary.LittleEndian.AppendUint32(nil, stdmath.Float32bits(7))
	rawF64 := binary.LittleEndian.AppendUint64(nil, stdmath.Float64bits(7))
	f16 := float16.Fromfloat32(7).Bits()
	return map[string]*ir.Tensor{
		"float":        {DType: dtypes.Float32, FloatData: []float32{7, 1}},
		"double":       {DType: dtypes.Float64, DoubleData: []float64{7}},
		"int32":        {DType: dtypes.Int32, Int32Data: []int32{7}},
		"int64":        {DType: dtypes.Int64, Int64Data: []int64{7, 8}},
		"float16":      {DType: dtypes.Float16, Int32Data: []int32{int32(f16)}},
		"bfloat16":     {DType: dtypes.BFloat16, Int32Data: []int32{int32(stdmath.Float32bits(7) >> 16)}},
		"raw float":    ir.NewRawTensor("", dtypes.Float32, nil, rawF32),
		"raw double":   ir.NewRawTensor("", dtypes.Float64, nil, rawF64),
		"raw int32":    ir.NewRawTensor("", dtypes.Int32, nil, raw32),
		"raw int64":    ir.NewRawTensor("", dtypes.Int64, []int64{2}, append(raw64, raw64...)),
		"raw float16":  ir.NewRawTensor("", dtypes.Float16, nil, binary.LittleEndian.AppendUint16(nil, f16)),
		"raw bfloat16": ir.NewRawTensor("", dtypes.BFloat16, nil, binary.LittleEndian.AppendUint16(nil, uint16(stdmath.Float32bits(7)>>16))),
	}
}

func testScalarValue[T float32 | float64 | int32 | int64 | int | uint8](t *testing.T) {
	for name, tensor := range scalarTensors() {
		v, err := ScalarValueFromTensor[T](tensor)
		require.NoError(t, err, name)
		assert.Equal(t, T(7), v, name)
	}
	v, err := ScalarValueFromTensor[T](nil)
	require.NoError(t, err)
	assert.Equal(t, T(0), v)
}

func TestScalarValueFromTensor(t *testing.T) {
	t.Run("float32", testScalarValue[float32])
	t.Run("float64", testScalarValue[float64])
	t.Run("int32", testScalarValue[int32])
	t.Run("int64", testScalarValue[int64])
	t.Run("int", testScalarValue[int])
	t.Run("uint8", testScalarValue[uint8])

	t.Run("cast", func(t *testing.T) {
		v, err := ScalarValueFromTensor[int64](&ir.Tensor{DType: dtypes.Float32, FloatData: []float32{-2.75}})
		require.NoError(t, err)
		assert.Equal(t, int64(-2), v)
		f, err := ScalarValueFromTensor[float64](&ir.Tensor{DType: dtypes.Int64, Int64Data: []int64{-3}})
		require.NoError(t, err)
		assert.Equal(t, -3.0, f)
	})

	t.Run("unsupported", func(t *testing.T) {
		for _, dtype := range []dtypes.DType{dtypes.Bool, dtypes.Uint8, dtypes.String, dtypes.Complex64} {
			v, err := ScalarValueFromTensor[int64](&ir.Tensor{DType: dtype, Int32Data: []int32{1}})
			require.ErrorIs(t, err, ErrUnsupportedElementType)
			require.ErrorIs(t, err, defs.ErrShapeInference)
			assert.Zero(t, v)
		}
		_, err := ScalarValueFromTensor[int64](&ir.Tensor{DType: dtypes.Bool, Int32Data: []int32{1}})
		assert.Equal(t, "[ShapeInferenceError] Unsupported input data type of BOOL", err.Error())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ScalarValueFromTensor[int64](&ir.Tensor{Name: "axis", DType: dtypes.Int64})
		require.ErrorIs(t, err, ErrEmptyTensor)
		var inferenceErr *defs.InferenceError
		require.ErrorAs(t, err, &inferenceErr)
		assert.Equal(t, defs.ShapeInference, inferenceErr.Kind)
	})

	t.Run("malformed raw", func(t *testing.T) {
		_, err := ScalarValueFromTensor[int64](ir.NewRawTensor("axis", dtypes.Int64, nil, make([]byte, 7)))
		require.ErrorIs(t, err, ErrMalformedRawTensor)
		_, err = ScalarValueFromTensor[float32](ir.NewRawTensor("x", dtypes.Float32, nil, make([]byte, 6)))
		require.ErrorIs(t, err, ErrMalformedRawTensor)
	})
}
