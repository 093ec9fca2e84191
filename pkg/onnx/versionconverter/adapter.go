// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package versionconverter rewrites graphs written for one opset version into equivalent graphs
// valid under another.
//
// An Adapter converts the nodes of one operator between two adjacent versions of a domain. The
// Converter steps a model one version at a time, and for each node applies the adapter registered
// for (operator, from, to). Operators whose schema didn't change between the two versions pass
// through untouched.
package versionconverter

import (
	defsmath "github.com/gomlx/irconvert/pkg/onnx/defs/math"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/pkg/errors"
)

var (
	// ErrMalformedRawTensor is matched by errors reading a constant whose raw data is not a whole
	// number of elements.
	ErrMalformedRawTensor = defsmath.ErrMalformedRawTensor

	// ErrEmptyTensor is matched by errors reading a constant with no values.
	ErrEmptyTensor = defsmath.ErrEmptyTensor

	// ErrUnsupportedElementType is matched by errors reading a constant of the wrong element type.
	ErrUnsupportedElementType = defsmath.ErrUnsupportedElementType

	// ErrDynamicParameter is matched when a parameter that becomes a static attribute in the
	// target version is fed by a value that is not a compile-time constant.
	ErrDynamicParameter = errors.New("parameter is not a compile-time constant")

	// ErrNoAdapter is matched when an operator changed between two versions and no adapter was
	// registered to convert it.
	ErrNoAdapter = errors.New("no adapter")

	// ErrDuplicateAdapter is matched when registering a second adapter for the same
	// (operator, from, to) key.
	ErrDuplicateAdapter = errors.New("duplicate adapter")
)

// Adapter converts nodes of one operator from its InitialVersion to its TargetVersion.
//
// Adapt is only called on nodes of the adapter's operator whose graph is at the initial version.
// It mutates the graph in place and returns the converted node, which may be a different node if
// the adapter replaced it. Adapters must not keep references to nodes or values after returning.
type Adapter interface {
	// Name of the operator converted.
	Name() string

	InitialVersion() ir.OpSetID
	TargetVersion() ir.OpSetID

	Adapt(g *ir.Graph, node *ir.Node) (*ir.Node, error)
}

// baseAdapter holds the identification shared by all adapters.
type baseAdapter struct {
	name            string
	initial, target ir.OpSetID
}

func (a *baseAdapter) Name() string               { return a.name }
func (a *baseAdapter) InitialVersion() ir.OpSetID { return a.initial }
func (a *baseAdapter) TargetVersion() ir.OpSetID  { return a.target }

func (a *baseAdapter) String() string {
	return a.name + " " + a.initial.String() + " -> " + a.target.String()
}

// CompatibleAdapter converts nodes whose operator changed between the two versions in a way that
// doesn't affect them: the node is returned unchanged.
type CompatibleAdapter struct {
	baseAdapter
}

// NewCompatibleAdapter returns an adapter that accepts nodes of the operator as they are.
func NewCompatibleAdapter(opName string, initial, target ir.OpSetID) *CompatibleAdapter {
	return &CompatibleAdapter{baseAdapter{name: opName, initial: initial, target: target}}
}

// Adapt implements Adapter.
func (a *CompatibleAdapter) Adapt(_ *ir.Graph, node *ir.Node) (*ir.Node, error) {
	return node, nil
}

// Compile time checks.
var (
	_ Adapter = (*CompatibleAdapter)(nil)
	_ Adapter = (*AxisInputToAttribute)(nil)
)
