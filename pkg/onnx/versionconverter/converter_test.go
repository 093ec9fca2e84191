// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package versionconverter

import (
	"testing"

	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/gomlx/irconvert/pkg/onnx/ir/irtext"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spectrumModel = `
ir_version: 10
producer_name: versionconverter_test
opset_import:
  - {domain: "", version: 20}
graph:
  name: spectrum
  inputs:
    - {name: x, dtype: FLOAT, shape: [batch, 16, 1]}
  initializers:
    - {name: axis_init, dtype: INT64, int64_data: [0]}
  nodes:
    - op: Constant
      outputs: [c]
      attributes:
        value: {t: {dtype: INT64, int64_data: [1]}}
    - op: DFT
      inputs: [x, "", c]
      outputs: [y]
    - op: DFT
      inputs: [x, "", axis_init]
      outputs: [y2]
    - op: Softmax
      inputs: [y]
      outputs: [z]
      attributes:
        axis: {i: -1}
  outputs:
    - {name: z}
    - {name: y2}
`

const softmaxModel = `
opset_import:
  - {domain: ai.onnx, version: 10}
graph:
  name: softmax
  inputs:
    - {name: x, dtype: FLOAT, shape: [2, 3]}
  nodes:
    - op: Softmax
      inputs: [x]
      outputs: [y]
      attributes:
        axis: {i: 1}
    - op: Mystery
      inputs: [y]
      outputs: [z]
  outputs:
    - {name: z}
`

func loadModel(t *testing.T, text string) *ir.Model {
	model, err := irtext.Unmarshal([]byte(text))
	require.NoError(t, err)
	return model
}

type panickingAdapter struct {
	baseAdapter
}

func (a *panickingAdapter) Adapt(_ *ir.Graph, node *ir.Node) (*ir.Node, error) {
	panic(errors.Errorf("adapter for node %s is broken", node.Describe()))
}

func TestConverterRegister(t *testing.T) {
	c := New()
	dft := newDFTAdapter()
	require.NoError(t, c.Register(dft))
	require.ErrorIs(t, c.Register(newDFTAdapter()), ErrDuplicateAdapter)

	require.ErrorContains(t, c.Register(NewCompatibleAdapter("Softmax", ir.DefaultOpSet(10), ir.DefaultOpSet(12))), "adjacent")
	require.ErrorContains(t, c.Register(NewCompatibleAdapter("Softmax", ir.DefaultOpSet(10), ir.NewOpSetID("com.microsoft", 11))), "domains")

	adapter, found := c.Adapter("DFT", ir.NewOpSetID("ai.onnx", 20), ir.NewOpSetID("", 19))
	require.True(t, found)
	assert.Same(t, dft, adapter)
	_, found = c.Adapter("DFT", ir.DefaultOpSet(19), ir.DefaultOpSet(20))
	assert.False(t, found)

	require.NoError(t, c.Register(NewCompatibleAdapter("Add", ir.DefaultOpSet(7), ir.DefaultOpSet(6))))
	names := []string{}
	for _, adapter := range c.Adapters() {
		names = append(names, adapter.Name())
	}
	assert.Equal(t, []string{"Add", "DFT"}, names)
}

func TestDefaultConverter(t *testing.T) {
	c := DefaultConverter()
	require.NotNil(t, c.Schemas())
	assert.Len(t, c.Adapters(), 4)
	_, found := c.Adapter("LogSoftmax", ir.DefaultOpSet(10), ir.DefaultOpSet(11))
	assert.True(t, found)
}

func TestConvertVersion(t *testing.T) {
	t.Run("fold DFT axis", func(t *testing.T) {
		model := loadModel(t, spectrumModel)
		require.NoError(t, DefaultConverter().ConvertVersion(model, 18))
		assert.Equal(t, ir.DefaultOpSet(18), model.DefaultOpSetID())
		require.NoError(t, model.Graph.Validate())
		assert.Empty(t, model.Graph.Initializers())
		newGolden(t).Assert(t, "convert_dft_20_to_18", []byte(model.Graph.String()))
	})

	t.Run("same version", func(t *testing.T) {
		model := loadModel(t, spectrumModel)
		before := model.Graph.String()
		require.NoError(t, DefaultConverter().ConvertVersion(model, 20))
		assert.Equal(t, before, model.Graph.String())
	})

	t.Run("changed operator without adapter", func(t *testing.T) {
		model := loadModel(t, spectrumModel)
		err := DefaultConverter().ConvertVersion(model, 12)
		require.ErrorIs(t, err, ErrNoAdapter)
		assert.ErrorContains(t, err, "Softmax")
		assert.ErrorContains(t, err, "ai.onnx:13 to ai.onnx:12")
	})

	t.Run("compatible adapter", func(t *testing.T) {
		model := loadModel(t, softmaxModel)
		require.NoError(t, DefaultConverter().ConvertVersion(model, 12))
		version, found := model.OpsetVersion("")
		require.True(t, found)
		assert.Equal(t, int64(12), version)
		axis, found := model.Graph.Nodes()[0].I(ir.AttrAxis)
		require.True(t, found)
		assert.Equal(t, int64(1), axis)
	})

	t.Run("strict", func(t *testing.T) {
		model := loadModel(t, softmaxModel)
		err := DefaultConverter().Strict(true).ConvertVersion(model, 11)
		require.ErrorIs(t, err, ErrNoAdapter)
		assert.ErrorContains(t, err, "Mystery")
	})

	t.Run("adapter panic", func(t *testing.T) {
		c := DefaultConverter()
		require.NoError(t, c.Register(&panickingAdapter{baseAdapter{
			name: "Softmax", initial: ir.DefaultOpSet(20), target: ir.DefaultOpSet(19)}}))
		err := c.ConvertVersion(loadModel(t, spectrumModel), 19)
		require.Error(t, err)
		assert.ErrorContains(t, err, "is broken")
		assert.ErrorContains(t, err, "panicked")
	})

	t.Run("dynamic axis", func(t *testing.T) {
		model := loadModel(t, `
opset_import: [{domain: "", version: 20}]
graph:
  name: dynamic
  inputs:
    - {name: x, dtype: FLOAT, shape: [4, 8, 2]}
    - {name: axis, dtype: INT64, shape: []}
  nodes:
    - {op: DFT, inputs: [x, "", axis], outputs: [y]}
  outputs: [{name: y}]
`)
		err := DefaultConverter().ConvertVersion(model, 19)
		require.ErrorIs(t, err, ErrDynamicParameter)
	})

	t.Run("invalid requests", func(t *testing.T) {
		c := DefaultConverter()
		require.Error(t, c.ConvertVersion(&ir.Model{}, 19))
		require.ErrorContains(t, c.ConvertVersion(loadModel(t, spectrumModel), 0), "invalid target version")
		model := loadModel(t, spectrumModel)
		model.OpsetImports = []ir.OpSetID{ir.NewOpSetID("com.microsoft", 1)}
		require.ErrorContains(t, c.ConvertVersion(model, 19), "doesn't import the default domain")
	})
}
