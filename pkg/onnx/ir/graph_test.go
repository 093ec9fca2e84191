// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"testing"

	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDFTGraph builds x -> DFT(x, undefined, axis) -> y, where axis is a Constant node.
func buildDFTGraph(t *testing.T) (g *Graph, dft, constant *Node) {
	g = NewGraph("dft")
	x := g.AddInput("x", shapes.MakeSymbolic(dtypes.Float32, []int{-1, 16, 1}, []string{"batch", "", ""}))
	constant = g.AddNode(KindConstant, 1)
	constant.SetT(AttrValue, NewInt64Tensor("", nil, 1))
	dft = g.AddNode("DFT", 1, x, g.Undefined(), constant.Output(0))
	g.RegisterOutput(dft.Output(0).SetUniqueName("y"))
	require.NoError(t, g.Validate())
	return
}

func TestGraphBuild(t *testing.T) {
	g, dft, constant := buildDFTGraph(t)
	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, []*Node{constant, dft}, g.Nodes())
	assert.Len(t, g.Inputs(), 1)
	assert.Equal(t, []*Value{dft.Output(0)}, g.Outputs())

	x, found := g.ValueByName("x")
	require.True(t, found)
	assert.True(t, x.IsGraphInput())
	assert.Equal(t, []Use{{User: dft, Offset: 0}}, x.Uses())
	assert.True(t, dft.Input(1).IsUndefined())
	assert.Equal(t, []Use{{User: dft, Offset: 2}}, constant.Output(0).Uses())

	// Graph outputs count as uses.
	assert.Equal(t, 1, dft.Output(0).NumUses())

	// Fresh names never collide.
	assert.NotEqual(t, constant.Output(0).UniqueName(), dft.Output(0).UniqueName())
	require.Panics(t, func() { constant.Output(0).SetUniqueName("x") })
	require.Panics(t, func() { g.AddInput("y", shapes.Make(dtypes.Float32)) })
}

func TestNodeRemoveInput(t *testing.T) {
	g := NewGraph("remove")
	a := g.AddInput("a", shapes.Make(dtypes.Float32))
	b := g.AddInput("b", shapes.Make(dtypes.Float32))
	n := g.AddNode("Sum", 1, a, b, a, b)
	require.NoError(t, g.Validate())

	n.RemoveInput(1)
	assert.Equal(t, []*Value{a, a, b}, n.Inputs())
	assert.Equal(t, []Use{{User: n, Offset: 0}, {User: n, Offset: 1}}, a.Uses())
	assert.Equal(t, []Use{{User: n, Offset: 2}}, b.Uses())
	require.NoError(t, g.Validate())

	old := n.ReplaceInput(0, b)
	assert.Equal(t, a, old)
	assert.Equal(t, []Use{{User: n, Offset: 1}}, a.Uses())
	assert.Len(t, b.Uses(), 2)
	require.NoError(t, g.Validate())

	n.RemoveAllInputs()
	assert.False(t, a.HasUses())
	assert.False(t, b.HasUses())
	require.NoError(t, g.Validate())
	require.Panics(t, func() { n.RemoveInput(0) })
}

func TestNodeDestroy(t *testing.T) {
	g, dft, constant := buildDFTGraph(t)

	// Outputs still used.
	require.Panics(t, func() { constant.Destroy() })
	require.Panics(t, func() { dft.Destroy() })

	dft.RemoveInput(2)
	assert.False(t, constant.Output(0).HasUses())
	constantOutputName := constant.Output(0).UniqueName()
	constant.Destroy()
	assert.True(t, constant.IsDestroyed())
	assert.Equal(t, []*Node{dft}, g.Nodes())
	_, found := g.ValueByName(constantOutputName)
	assert.False(t, found)
	require.NoError(t, g.Validate())

	// Any use of the destroyed handle panics.
	require.Panics(t, func() { _ = constant.Kind() })
	require.Panics(t, func() { constant.SetI(AttrAxis, 1) })
	require.Panics(t, func() { constant.Destroy() })
}

func TestInitializers(t *testing.T) {
	g := NewGraph("initializers")
	x := g.AddInput("x", shapes.Make(dtypes.Float32, 2, 3))
	axisInit := g.AddInitializer(NewInt64Tensor("axis_init", nil, 2))
	assert.True(t, axisInit.IsGraphInput())
	assert.Equal(t, shapes.Make(dtypes.Int64), axisInit.Shape())
	assert.Equal(t, []*Value{x, axisInit}, g.Inputs())
	require.Panics(t, func() { g.AddInitializer(NewInt64Tensor("axis_init", nil, 3)) })

	tensor, found := g.InitializerByName("axis_init")
	require.True(t, found)
	assert.Equal(t, []int64{2}, tensor.Int64s())

	n := g.AddNode("DFT", 1, x, g.Undefined(), axisInit)
	g.RegisterOutput(n.Output(0))
	require.NoError(t, g.Validate())

	// Still used: neither the initializer nor the input are removed.
	require.Panics(t, func() { g.EraseInitializerAndInput(axisInit) })
	_, found = g.InitializerByName("axis_init")
	assert.True(t, found)
	assert.Len(t, g.Inputs(), 2)

	// Not paired with an initializer: nothing is removed.
	n.RemoveInput(0)
	require.Panics(t, func() { g.EraseInitializerAndInput(x) })
	assert.Len(t, g.Inputs(), 2)

	n.RemoveInput(1)
	g.EraseInitializerAndInput(axisInit)
	_, found = g.InitializerByName("axis_init")
	assert.False(t, found)
	assert.Equal(t, []*Value{x}, g.Inputs())
	_, found = g.ValueByName("axis_init")
	assert.False(t, found)
	require.NoError(t, g.Validate())

	// Pairing with a previously declared input.
	w := g.AddInput("w", shapes.Invalid())
	assert.Equal(t, w, g.AddInitializer(NewInt64Tensor("w", []int64{2}, 1, 2)))
	assert.Equal(t, shapes.Make(dtypes.Int64, 2), w.Shape())
	assert.True(t, g.EraseInitializer("w"))
	assert.False(t, g.EraseInitializer("w"))
	assert.Len(t, g.Inputs(), 2)
}

func TestValidate(t *testing.T) {
	g, dft, _ := buildDFTGraph(t)

	// Corrupt the use-list.
	x := dft.Input(0)
	x.uses = nil
	require.ErrorContains(t, g.Validate(), "use-list")

	g, dft, constant := buildDFTGraph(t)
	g.nodes[0], g.nodes[1] = dft, constant
	require.ErrorContains(t, g.Validate(), "not defined before its use")

	g, _, _ = buildDFTGraph(t)
	g.initializers = append(g.initializers, NewInt64Tensor("orphan", nil, 1))
	require.ErrorContains(t, g.Validate(), "no paired graph input")

	g, _, _ = buildDFTGraph(t)
	g.AddInitializer(NewRawTensor("raw", dtypes.Int64, nil, []byte{1, 2, 3}))
	require.ErrorContains(t, g.Validate(), "not a multiple")
}

func TestInsertNodeBefore(t *testing.T) {
	g, dft, constant := buildDFTGraph(t)
	n := g.NewNode(KindConstant, 1)
	n.SetT(AttrValue, NewInt64Tensor("", nil, 0))
	g.InsertNodeBefore(n, dft)
	assert.Equal(t, []*Node{constant, n, dft}, g.Nodes())
	require.Panics(t, func() { g.AppendNode(n) })
	require.NoError(t, g.Validate())
}

func TestGraphString(t *testing.T) {
	g, dft, _ := buildDFTGraph(t)
	dft.SetI("onesided", 0)
	g.AddInitializer(NewInt64Tensor("axis_init", nil, 2))
	want := `graph dft (
  %x: (FLOAT)[batch 16 1]
  %axis_init: (INT64)
) initializers (
  %axis_init: (INT64) {2}
) {
  %0 = Constant[value=(INT64) {1}]()
  %y = DFT[onesided=0](%x, _, %0)
  return %y
}
`
	assert.Equal(t, want, g.String())
}
