// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

// DType is an enum that represents the element type of a tensor in the IR.
//
// The numeric values are the ones used by the ONNX TensorProto.DataType enum, so they can be
// stored and exchanged as is.
type DType int32

const (
	// InvalidDType (UNDEFINED in ONNX) is the zero value, used for unknown or unset types.
	InvalidDType DType = 0

	// Float32 (FLOAT) is a 32-bit IEEE float.
	Float32 DType = 1

	// Uint8 (UINT8) is an unsigned 8-bit integer.
	Uint8 DType = 2

	// Int8 (INT8) is a signed 8-bit integer.
	Int8 DType = 3

	// Uint16 (UINT16) is an unsigned 16-bit integer.
	Uint16 DType = 4

	// Int16 (INT16) is a signed 16-bit integer.
	Int16 DType = 5

	// Int32 (INT32) is a signed 32-bit integer.
	Int32 DType = 6

	// Int64 (INT64) is a signed 64-bit integer.
	Int64 DType = 7

	// String (STRING) holds variable length byte strings. It has no fixed element size.
	String DType = 8

	// Bool (BOOL) are two-state booleans, stored one per byte.
	Bool DType = 9

	// Float16 (FLOAT16) is the IEEE half-precision float.
	Float16 DType = 10

	// Float64 (DOUBLE) is a 64-bit IEEE float.
	Float64 DType = 11

	// Uint32 (UINT32) is an unsigned 32-bit integer.
	Uint32 DType = 12

	// Uint64 (UINT64) is an unsigned 64-bit integer.
	Uint64 DType = 13

	// Complex64 (COMPLEX64) is a pair of float32 (real, imag).
	Complex64 DType = 14

	// Complex128 (COMPLEX128) is a pair of float64 (real, imag).
	Complex128 DType = 15

	// BFloat16 (BFLOAT16) is the truncated 16-bit float: 1 bit sign, 8 bits exponent and 7 bits mantissa.
	BFloat16 DType = 16
)

// Aliases with the ONNX enum names.
const (
	UNDEFINED  = InvalidDType
	FLOAT      = Float32
	UINT8      = Uint8
	INT8       = Int8
	UINT16     = Uint16
	INT16      = Int16
	INT32      = Int32
	INT64      = Int64
	STRING     = String
	BOOL       = Bool
	FLOAT16    = Float16
	DOUBLE     = Float64
	UINT32     = Uint32
	UINT64     = Uint64
	COMPLEX64  = Complex64
	COMPLEX128 = Complex128
	BFLOAT16   = BFloat16
)

// onnxNames are the ONNX enum names, indexed by DType.
var onnxNames = [...]string{
	InvalidDType: "UNDEFINED",
	Float32:      "FLOAT",
	Uint8:        "UINT8",
	Int8:         "INT8",
	Uint16:       "UINT16",
	Int16:        "INT16",
	Int32:        "INT32",
	Int64:        "INT64",
	String:       "STRING",
	Bool:         "BOOL",
	Float16:      "FLOAT16",
	Float64:      "DOUBLE",
	Uint32:       "UINT32",
	Uint64:       "UINT64",
	Complex64:    "COMPLEX64",
	Complex128:   "COMPLEX128",
	BFloat16:     "BFLOAT16",
}

// typeStrNames are the names used inside type strings, like "tensor(float)".
var typeStrNames = [...]string{
	InvalidDType: "undefined",
	Float32:      "float",
	Uint8:        "uint8",
	Int8:         "int8",
	Uint16:       "uint16",
	Int16:        "int16",
	Int32:        "int32",
	Int64:        "int64",
	String:       "string",
	Bool:         "bool",
	Float16:      "float16",
	Float64:      "double",
	Uint32:       "uint32",
	Uint64:       "uint64",
	Complex64:    "complex64",
	Complex128:   "complex128",
	BFloat16:     "bfloat16",
}

// MapOfNames to their dtypes. It includes the ONNX enum names, the Go-style names and the
// names used in type strings. It is later initialized to include the lower-case version of the names.
var MapOfNames = map[string]DType{
	"InvalidDType": InvalidDType,
	"UNDEFINED":    InvalidDType,
	"Float32":      Float32,
	"FLOAT":        Float32,
	"Uint8":        Uint8,
	"UINT8":        Uint8,
	"Int8":         Int8,
	"INT8":         Int8,
	"Uint16":       Uint16,
	"UINT16":       Uint16,
	"Int16":        Int16,
	"INT16":        Int16,
	"Int32":        Int32,
	"INT32":        Int32,
	"Int64":        Int64,
	"INT64":        Int64,
	"String":       String,
	"STRING":       String,
	"Bool":         Bool,
	"BOOL":         Bool,
	"Float16":      Float16,
	"FLOAT16":      Float16,
	"Float64":      Float64,
	"DOUBLE":       Float64,
	"Uint32":       Uint32,
	"UINT32":       Uint32,
	"Uint64":       Uint64,
	"UINT64":       Uint64,
	"Complex64":    Complex64,
	"COMPLEX64":    Complex64,
	"Complex128":   Complex128,
	"COMPLEX128":   Complex128,
	"BFloat16":     BFloat16,
	"BFLOAT16":     BFloat16,
}
