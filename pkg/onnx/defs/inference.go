// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package defs

import (
	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
)

// PropagateElemTypeFromInputToOutput sets the element type of output outputIdx to the one of input
// inputIdx. The output keeps its dimensions, if they are already known.
func PropagateElemTypeFromInputToOutput(ctx InferenceContext, inputIdx, outputIdx int) error {
	if inputIdx >= ctx.NumInputs() {
		return FailTypeInference("input %d expected to have type but instead is null", inputIdx)
	}
	input := ctx.InputType(inputIdx)
	if !input.Ok() {
		return FailTypeInference("element type of input %d unknown", inputIdx)
	}
	output := ctx.OutputType(outputIdx)
	if output.Ok() && output.DType != input.DType {
		return FailTypeInference("input %d element type %s doesn't match output %d element type %s",
			inputIdx, input.DType, outputIdx, output.DType)
	}
	if output.HasRank() {
		ctx.SetOutputType(outputIdx, output.WithDType(input.DType))
	} else {
		ctx.SetOutputType(outputIdx, shapes.Unranked(input.DType))
	}
	return nil
}

// HasInputShape returns whether input i has a known rank (and hence dimensions).
func HasInputShape(ctx InferenceContext, i int) bool {
	if i >= ctx.NumInputs() {
		return false
	}
	input := ctx.InputType(i)
	return input.Ok() && input.HasRank()
}

// HasNInputShapes returns whether the first n inputs have known shapes.
func HasNInputShapes(ctx InferenceContext, n int) bool {
	if ctx.NumInputs() < n {
		return false
	}
	for i := range n {
		if !HasInputShape(ctx, i) {
			return false
		}
	}
	return true
}

// GetIntAttribute returns the value of the integer attribute name, or defaultValue if it is not set.
// It fails if the attribute is set with another kind.
func GetIntAttribute(ctx InferenceContext, name string, defaultValue int64) (int64, error) {
	attr, found := ctx.Attribute(name)
	if !found {
		return defaultValue, nil
	}
	value, ok := attr.(ir.IntAttr)
	if !ok {
		return 0, FailShapeInference("attribute %q expected to be %s, got %s", name, ir.AttrKindInt, attr.Kind())
	}
	return int64(value), nil
}

// PropagateShapeFromInputToOutput copies the dimensions of input inputIdx to output outputIdx.
// The output element type is kept if known, otherwise the input's is used.
func PropagateShapeFromInputToOutput(ctx InferenceContext, inputIdx, outputIdx int) error {
	if !HasInputShape(ctx, inputIdx) {
		return FailShapeInference("input %d has no shape to propagate", inputIdx)
	}
	input := ctx.InputType(inputIdx)
	dtype := input.DType
	if output := ctx.OutputType(outputIdx); output.Ok() {
		dtype = output.DType
	}
	ctx.SetOutputType(outputIdx, input.WithDType(dtype))
	return nil
}

// ShapePreservingAxisInference returns an inference function for operators that take arity
// inputs, each producing an output of the same type and shape, and that have an axis attribute
// (attrName) defaulting to defaultAxis.
//
// The element types are always propagated. If input 0 has no shape, inference stops there
// successfully. Otherwise, the axis must be in [-r, r-1], where r is the rank of input 0, and the
// shapes are propagated unchanged.
func ShapePreservingAxisInference(attrName string, defaultAxis int64, arity int) InferenceFunction {
	return func(ctx InferenceContext) error {
		for i := range arity {
			if err := PropagateElemTypeFromInputToOutput(ctx, i, i); err != nil {
				return err
			}
		}
		if !HasNInputShapes(ctx, 1) {
			return nil
		}
		rank := int64(ctx.InputType(0).Rank())
		axis, err := GetIntAttribute(ctx, attrName, defaultAxis)
		if err != nil {
			return err
		}
		if axis < -rank || axis >= rank {
			return FailShapeInference("'%s' must be in [%d , %d]. Its actual value is: %d", attrName, -rank, rank-1, axis)
		}
		for i := range arity {
			if !HasInputShape(ctx, i) {
				continue
			}
			if err = PropagateShapeFromInputToOutput(ctx, i, i); err != nil {
				return err
			}
		}
		return nil
	}
}
