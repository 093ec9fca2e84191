// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"testing"

	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpSetID(t *testing.T) {
	assert.Equal(t, "ai.onnx:13", DefaultOpSet(13).String())
	assert.Equal(t, "com.microsoft:1", NewOpSetID("com.microsoft", 1).String())
	assert.Equal(t, DefaultOpSet(20), NewOpSetID("ai.onnx", 20))

	assert.Equal(t, -1, DefaultOpSet(19).Compare(DefaultOpSet(20)))
	assert.Equal(t, 0, DefaultOpSet(19).Compare(NewOpSetID("ai.onnx", 19)))
	assert.Equal(t, 1, DefaultOpSet(20).Compare(DefaultOpSet(19)))
	require.Panics(t, func() { DefaultOpSet(1).Compare(NewOpSetID("com.microsoft", 1)) })
	assert.Equal(t, DefaultOpSet(19), DefaultOpSet(20).Next(-1))

	id, err := ParseOpSetID("19")
	require.NoError(t, err)
	assert.Equal(t, DefaultOpSet(19), id)
	id, err = ParseOpSetID("ai.onnx:13")
	require.NoError(t, err)
	assert.Equal(t, DefaultOpSet(13), id)
	id, err = ParseOpSetID("com.microsoft:1")
	require.NoError(t, err)
	assert.Equal(t, NewOpSetID("com.microsoft", 1), id)
	_, err = ParseOpSetID("ai.onnx:x")
	require.Error(t, err)
	_, err = ParseOpSetID("0")
	require.Error(t, err)
}

func TestTensor(t *testing.T) {
	typed := NewInt64Tensor("axis", []int64{1}, 7)
	assert.Equal(t, []int64{7}, typed.Int64s())
	assert.Empty(t, typed.Raw())
	assert.False(t, typed.HasRawData())
	assert.Equal(t, 8, typed.NumBytes())
	assert.Equal(t, int64(1), typed.NumElements())
	assert.Equal(t, "(INT64)[1] {7}", typed.String())
	require.NoError(t, typed.CheckRawData())

	raw := NewRawTensor("axis", dtypes.Int64, nil, []byte{3, 0, 0, 0, 0, 0, 0, 0})
	assert.Empty(t, raw.Int64s())
	assert.Equal(t, 8, raw.NumBytes())
	assert.Equal(t, "(INT64) raw[8 bytes]", raw.String())
	require.NoError(t, raw.CheckRawData())

	malformed := NewRawTensor("axis", dtypes.Int64, nil, make([]byte, 7))
	require.ErrorContains(t, malformed.CheckRawData(), "not a multiple")

	floats := &Tensor{DType: dtypes.Float32, Dims: []int64{6}, FloatData: []float32{1, 2, 3, 4, 5, 6}}
	assert.Equal(t, "(FLOAT)[6] {1, 2, 3, 4, 5, ...}", floats.String())
	assert.Equal(t, 24, floats.NumBytes())

	clone := floats.Clone()
	clone.FloatData[0] = 10
	assert.Equal(t, float32(1), floats.FloatData[0])
}

func TestAttributes(t *testing.T) {
	g := NewGraph("attributes")
	n := g.AddNode("Op", 1)
	n.SetI("axis", -1).SetIs("perm", []int64{1, 0}).SetF("alpha", 0.5).SetS("mode", "constant")
	n.SetSs("names", []string{"a", "b"}).SetFs("scales", []float32{1, 2})
	n.SetT(AttrValue, NewInt64Tensor("", nil, 3))
	assert.Equal(t, []string{"alpha", "axis", "mode", "names", "perm", "scales", "value"}, n.AttributeNames())

	axis, found := n.I("axis")
	require.True(t, found)
	assert.Equal(t, int64(-1), axis)
	perm, found := n.Is("perm")
	require.True(t, found)
	assert.Equal(t, []int64{1, 0}, perm)
	value, found := n.T(AttrValue)
	require.True(t, found)
	assert.Equal(t, []int64{3}, value.Int64s())

	// Typed accessors don't convert between kinds.
	_, found = n.I("alpha")
	assert.False(t, found)
	_, found = n.S("missing")
	assert.False(t, found)

	attr, found := n.Attribute("perm")
	require.True(t, found)
	assert.Equal(t, AttrKindInts, attr.Kind())
	assert.Equal(t, "[1, 0]", attr.String())
	assert.Equal(t, AttrKindInts, AttributeKindFromName("ints"))
	assert.Equal(t, AttrKindUndefined, AttributeKindFromName("graph"))

	assert.True(t, n.RemoveAttribute("perm"))
	assert.False(t, n.RemoveAttribute("perm"))
	assert.False(t, n.HasAttribute("perm"))
	assert.Equal(t, `Op[alpha=0.5, axis=-1, mode="constant", names=["a", "b"], scales=[1, 2], value=(INT64) {3}]()`,
		n.String()[len("%0 = "):])
}

func TestModelOpset(t *testing.T) {
	m := NewModel(NewGraph("main"), 20)
	version, found := m.OpsetVersion("ai.onnx")
	require.True(t, found)
	assert.Equal(t, int64(20), version)
	m.SetOpsetVersion("", 19)
	assert.Equal(t, DefaultOpSet(19), m.DefaultOpSetID())
	assert.Len(t, m.OpsetImports, 1)

	_, found = m.OpsetVersion("com.microsoft")
	assert.False(t, found)
	m.SetOpsetVersion("com.microsoft", 1)
	assert.Len(t, m.OpsetImports, 2)
}
