// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package defs

import (
	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
)

// InferenceContext is what an InferenceFunction sees of a node: its input types and shapes, its
// attributes, and the output types and shapes it can set.
//
// Types and shapes are given as shapes.Shape: an invalid shape (Ok() == false) means the type is
// unknown, and a shape without rank (HasRank() == false) means only the element type is known.
type InferenceContext interface {
	NumInputs() int
	NumOutputs() int

	// InputType returns the type and shape of input i. It is invalid if the input is absent.
	InputType(i int) shapes.Shape

	// OutputType returns the current type and shape of output i.
	OutputType(i int) shapes.Shape

	// SetOutputType sets the inferred type and shape of output i.
	SetOutputType(i int, shape shapes.Shape)

	// Attribute returns the attribute with the given name, if set on the node.
	Attribute(name string) (ir.Attribute, bool)
}

// nodeContext is the InferenceContext of an ir.Node. Outputs are buffered: they are only written to
// the node by commit.
type nodeContext struct {
	node    *ir.Node
	outputs []shapes.Shape
}

var _ InferenceContext = (*nodeContext)(nil)

func newNodeContext(node *ir.Node) *nodeContext {
	ctx := &nodeContext{node: node, outputs: make([]shapes.Shape, node.NumOutputs())}
	for ii, out := range node.Outputs() {
		ctx.outputs[ii] = out.Shape()
	}
	return ctx
}

func (ctx *nodeContext) NumInputs() int  { return ctx.node.NumInputs() }
func (ctx *nodeContext) NumOutputs() int { return len(ctx.outputs) }

func (ctx *nodeContext) InputType(i int) shapes.Shape {
	if i < 0 || i >= ctx.node.NumInputs() {
		return shapes.Invalid()
	}
	input := ctx.node.Input(i)
	if input.IsUndefined() {
		return shapes.Invalid()
	}
	return input.Shape()
}

func (ctx *nodeContext) OutputType(i int) shapes.Shape {
	if i < 0 || i >= len(ctx.outputs) {
		return shapes.Invalid()
	}
	return ctx.outputs[i]
}

func (ctx *nodeContext) SetOutputType(i int, shape shapes.Shape) {
	if i < 0 || i >= len(ctx.outputs) {
		return
	}
	ctx.outputs[i] = shape.Clone()
}

func (ctx *nodeContext) Attribute(name string) (ir.Attribute, bool) {
	return ctx.node.Attribute(name)
}

// commit writes the buffered output types to the node outputs.
func (ctx *nodeContext) commit() {
	for ii, out := range ctx.node.Outputs() {
		out.SetShape(ctx.outputs[ii])
	}
}
