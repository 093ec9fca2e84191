// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package versionconverter

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/core/dtypes"
	defsmath "github.com/gomlx/irconvert/pkg/onnx/defs/math"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Attributes that a Constant node may use instead of "value" to hold an integer.
const (
	attrValueInt  = "value_int"
	attrValueInts = "value_ints"
)

// AxisInputToAttribute converts nodes whose axis is given as an input in the initial version into
// nodes with a static "axis" attribute, as the target version requires.
//
// The axis input must be absent (the default axis is used), produced by a Constant node or fed by a
// graph initializer. The input slot is removed, and the Constant node or the initializer (with its
// graph input) is removed as well if nothing else uses it.
type AxisInputToAttribute struct {
	baseAdapter
	axisIndex   int
	defaultAxis int64
}

// NewAxisInputToAttribute returns an adapter that moves the axis from input slot axisIndex to
// the "axis" attribute. defaultAxis is used when the input is not given.
//
// It panics if axisIndex is negative.
func NewAxisInputToAttribute(opName string, initial, target ir.OpSetID, axisIndex int, defaultAxis int64) *AxisInputToAttribute {
	if axisIndex < 0 {
		exceptions.Panicf("AxisInputToAttribute(%s): axis input index must be >= 0, got %d", opName, axisIndex)
	}
	return &AxisInputToAttribute{
		baseAdapter: baseAdapter{name: opName, initial: initial, target: target},
		axisIndex:   axisIndex,
		defaultAxis: defaultAxis,
	}
}

// AxisIndex returns the input slot holding the axis in the initial version.
func (a *AxisInputToAttribute) AxisIndex() int { return a.axisIndex }

// DefaultAxis returns the axis used when the input is not given.
func (a *AxisInputToAttribute) DefaultAxis() int64 { return a.defaultAxis }

// Adapt implements Adapter.
//
// Errors match ErrUnsupportedElementType if the constant is not INT64, ErrEmptyTensor or
// ErrMalformedRawTensor if it can't be read, or ErrDynamicParameter if the axis is not a
// compile-time constant. The graph is not changed when an error is returned.
func (a *AxisInputToAttribute) Adapt(g *ir.Graph, node *ir.Node) (*ir.Node, error) {
	// Axis not given.
	if node.NumInputs() <= a.axisIndex || node.Input(a.axisIndex).IsUndefined() {
		if node.NumInputs() > a.axisIndex {
			node.RemoveInput(a.axisIndex)
		}
		node.SetI(ir.AttrAxis, a.defaultAxis)
		klog.V(2).Infof("%s: node %s uses the default axis %d", a, node.Describe(), a.defaultAxis)
		return a.ensureAxis(node), nil
	}

	axisValue := node.Input(a.axisIndex)
	producer := axisValue.Node()

	// Axis produced by a Constant node.
	if producer.Kind() == ir.KindConstant {
		axis, err := constantNodeAxis(producer)
		if err != nil {
			return nil, errors.WithMessagef(err, "%s: reading axis %s of node %s", a, axisValue, node.Describe())
		}
		node.SetI(ir.AttrAxis, axis)
		node.RemoveInput(a.axisIndex)
		if !axisValue.HasUses() {
			klog.V(2).Infof("%s: destroying unused constant %s", a, producer.Describe())
			producer.Destroy()
		}
		return a.ensureAxis(node), nil
	}

	// Axis fed by an initializer.
	if axisValue.IsGraphInput() {
		if initializer, found := g.InitializerByName(axisValue.UniqueName()); found {
			axis, err := int64FromTensor(initializer)
			if err != nil {
				return nil, errors.WithMessagef(err, "%s: reading axis initializer %s of node %s", a, axisValue, node.Describe())
			}
			node.SetI(ir.AttrAxis, axis)
			node.RemoveInput(a.axisIndex)
			if !axisValue.HasUses() {
				klog.V(2).Infof("%s: erasing unused initializer %s", a, axisValue)
				g.EraseInitializerAndInput(axisValue)
			}
			return a.ensureAxis(node), nil
		}
	}

	return nil, errors.Wrapf(ErrDynamicParameter, "%s: axis %s of node %s is produced by %s",
		a, axisValue, node.Describe(), producer.Describe())
}

// ensureAxis checks that the conversion left the node with an axis attribute.
func (a *AxisInputToAttribute) ensureAxis(node *ir.Node) *ir.Node {
	if _, found := node.I(ir.AttrAxis); !found {
		exceptions.Panicf("%s: axis attribute not created, this may be a bug", a)
	}
	return node
}

// constantNodeAxis reads the axis held by a Constant node, in its "value" tensor or, alternatively,
// in its "value_int" or "value_ints" attributes.
func constantNodeAxis(constant *ir.Node) (int64, error) {
	if t, found := constant.T(ir.AttrValue); found {
		return int64FromTensor(t)
	}
	if v, found := constant.I(attrValueInt); found {
		return v, nil
	}
	if values, found := constant.Is(attrValueInts); found && len(values) > 0 {
		return values[0], nil
	}
	return 0, errors.Errorf("constant %s has no integer value attribute", constant.Describe())
}

// int64FromTensor returns the first element of an INT64 tensor, from its typed values or its
// little-endian raw data.
func int64FromTensor(t *ir.Tensor) (int64, error) {
	if want := dtypes.FromGenericsType[int64](); t.DType != want {
		return 0, errors.Wrapf(ErrUnsupportedElementType, "axis tensor %q must be of type %s, got %s",
			t.Name, want, t.DType)
	}
	return defsmath.ScalarValueFromTensor[int64](t)
}
