// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the static type information attached to a value of the IR.
//
// A Shape holds the element type (DType) of a tensor and, when known, its rank and dimensions.
// Unlike shapes of concrete tensors, shapes in the IR may be partially known:
//
//   - The rank itself may be unknown (see Unranked): only the element type is known.
//   - A dimension may be unknown, or symbolic (e.g. "batch"), in which case its value is UnknownDim
//     and its name, if any, is stored in DimNames.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: is the index of a dimension on a multidimensional tensor. Negative axes count from the end.
//   - Dimension: the size of a tensor in one of its axes.
//   - DType: the element type of a tensor, see package dtypes.
//
// Example: `shapes.Make(dtypes.Float32, 2, 3)` is a rank-2 float tensor, printed as `(FLOAT)[2 3]`.
package shapes

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/pkg/errors"
)

// UnknownDim is the dimension value used for unknown or symbolic dimensions.
const UnknownDim = -1

// Shape represents the static type of a value in the IR: element type and, optionally, rank and dimensions.
//
// Use Make, MakeSymbolic or Unranked to create a new shape. The zero value is an invalid shape with unknown rank.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int

	// DimNames holds the symbolic names of the dimensions. It is either nil, or has one entry per axis,
	// with "" for axes that are not symbolic.
	DimNames []string

	ranked bool
}

// Make returns a ranked Shape with the given static dimensions.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: cloneDims(dimensions), ranked: true}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s, %v): cannot create a shape with a negative dimension, use MakeSymbolic for unknown dimensions",
				dtype, dimensions)
		}
	}
	return s
}

// MakeSymbolic returns a ranked Shape where some of the dimensions may be unknown (UnknownDim).
// names can be nil, or have one name per axis ("" for axes without a symbolic name).
func MakeSymbolic(dtype dtypes.DType, dimensions []int, names []string) Shape {
	if names != nil && len(names) != len(dimensions) {
		exceptions.Panicf("shapes.MakeSymbolic(%s): %d dimensions but %d names given", dtype, len(dimensions), len(names))
	}
	s := Shape{DType: dtype, Dimensions: cloneDims(dimensions), ranked: true}
	for ii, dim := range s.Dimensions {
		if dim < 0 {
			s.Dimensions[ii] = UnknownDim
		}
	}
	if slices.ContainsFunc(names, func(name string) bool { return name != "" }) {
		s.DimNames = slices.Clone(names)
	}
	return s
}

// cloneDims returns a copy of dims, with scalars always represented by a nil slice.
func cloneDims(dims []int) []int {
	if len(dims) == 0 {
		return nil
	}
	return slices.Clone(dims)
}

// Unranked returns a Shape where only the element type is known.
func Unranked(dtype dtypes.DType) Shape {
	return Shape{DType: dtype}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether the element type is known.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// HasRank returns whether the rank (and hence the list of dimensions) is known.
func (s Shape) HasRank() bool { return s.ranked }

// Rank of the shape, that is, the number of dimensions. It returns -1 if the rank is not known.
func (s Shape) Rank() int {
	if !s.ranked {
		return -1
	}
	return len(s.Dimensions)
}

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.ranked && len(s.Dimensions) == 0 }

// IsStatic returns whether the rank and all dimensions are known.
func (s Shape) IsStatic() bool {
	return s.ranked && !slices.Contains(s.Dimensions, UnknownDim)
}

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis, err := AdjustAxisToRank(axis, s.Rank())
	if err != nil {
		exceptions.Panicf("Shape.Dim(%d) for shape %s: %v", axis, s, err)
	}
	return s.Dimensions[adjustedAxis]
}

// DimName returns the symbolic name of the given axis, or "" if it has none.
func (s Shape) DimName(axis int) string {
	if s.DimNames == nil {
		return ""
	}
	adjustedAxis, err := AdjustAxisToRank(axis, s.Rank())
	if err != nil {
		exceptions.Panicf("Shape.DimName(%d) for shape %s: %v", axis, s, err)
	}
	return s.DimNames[adjustedAxis]
}

// Size returns the number of elements for this shape, the product of all dimensions.
// It returns -1 if the shape is not static.
func (s Shape) Size() int {
	if !s.IsStatic() {
		return -1
	}
	size := 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return size
}

// WithDType returns a copy of the shape with the given element type.
func (s Shape) WithDType(dtype dtypes.DType) Shape {
	s2 := s.Clone()
	s2.DType = dtype
	return s2
}

// Equal compares two shapes for equality: dtype, rank, dimensions and dimension names are compared.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType || s.ranked != s2.ranked {
		return false
	}
	return s.EqualDimensions(s2)
}

// EqualDimensions compares two shapes for equality of rank, dimensions and dimension names. Dtypes can be different.
func (s Shape) EqualDimensions(s2 Shape) bool {
	if s.ranked != s2.ranked {
		return false
	}
	if !slices.Equal(s.Dimensions, s2.Dimensions) {
		return false
	}
	if s.DimNames == nil && s2.DimNames == nil {
		return true
	}
	for axis := range s.Dimensions {
		if s.DimName(axis) != s2.DimName(axis) {
			return false
		}
	}
	return true
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.ranked = s.ranked
	s2.Dimensions = slices.Clone(s.Dimensions)
	s2.DimNames = slices.Clone(s.DimNames)
	return
}

// String implements fmt.Stringer, pretty-prints the shape.
//
// Examples: `(FLOAT)[2 3]`, `(INT64)` for a scalar, `(FLOAT)[batch 3]` and `(FLOAT)[?]` for unknown rank.
func (s Shape) String() string {
	if !s.ranked {
		return fmt.Sprintf("(%s)[?]", s.DType)
	}
	if len(s.Dimensions) == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	parts := make([]string, len(s.Dimensions))
	for axis, dim := range s.Dimensions {
		switch {
		case s.DimName(axis) != "":
			parts[axis] = s.DimName(axis)
		case dim == UnknownDim:
			parts[axis] = "?"
		default:
			parts[axis] = strconv.Itoa(dim)
		}
	}
	return fmt.Sprintf("(%s)[%s]", s.DType, strings.Join(parts, " "))
}

// AdjustAxisToRank returns a positive axis, adjusting negative numbers to the correct rank.
// Valid axes are in the range [-rank, rank-1].
func AdjustAxisToRank(axis, rank int) (int, error) {
	if rank < 0 {
		return -1, errors.Errorf("axis %d cannot be adjusted for a shape of unknown rank", axis)
	}
	if axis < -rank || axis >= rank {
		return -1, errors.Errorf("axis %d is out of range for the rank %d", axis, rank)
	}
	if axis < 0 {
		axis += rank
	}
	return axis, nil
}
