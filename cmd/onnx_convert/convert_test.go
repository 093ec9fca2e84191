// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/gomlx/irconvert/pkg/onnx/defs"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/gomlx/irconvert/pkg/onnx/ir/irtext"
	"github.com/gomlx/irconvert/pkg/onnx/versionconverter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleModel = "testdata/spectrum.yaml"

func TestConvert(t *testing.T) {
	model, err := irtext.ReadFile(exampleModel)
	require.NoError(t, err)
	report, err := Convert(model, Options{Target: 19, Infer: true, Bindings: shapes.AxisBindings{"batch": 4}})
	require.NoError(t, err)

	assert.Equal(t, ir.DefaultOpSet(20), report.Initial)
	assert.Equal(t, ir.DefaultOpSet(19), report.Target)
	assert.Equal(t, 2, report.NodesBefore)
	assert.Equal(t, 2, report.NodesAfter)
	assert.Equal(t, [2]int{1, 0}, report.NumInitializers)
	assert.Equal(t, [2]int{8, 0}, report.InitializersSize)
	assert.True(t, report.InferenceRan)
	assert.Zero(t, report.NumInferenceFailures)

	nodes := model.Graph.Nodes()
	axis, found := nodes[0].I(ir.AttrAxis)
	require.True(t, found)
	assert.Equal(t, int64(1), axis)
	assert.Equal(t, "(FLOAT)[4 128 1]", nodes[1].Output(0).Shape().String())
	assert.Equal(t, "batch=4", report.Bindings)

	// Written and read back.
	outputPath := filepath.Join(t.TempDir(), "converted.yaml")
	require.NoError(t, irtext.WriteFile(outputPath, model))
	converted, err := irtext.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, model.Graph.String(), converted.Graph.String())
	assert.Equal(t, ir.DefaultOpSet(19), converted.DefaultOpSetID())

	var buf bytes.Buffer
	disableColors()
	Summary(&buf, report)
	Nodes(&buf, model.Graph)
	assert.Contains(t, buf.String(), "ai.onnx:19")
	assert.Contains(t, buf.String(), "LogSoftmax")
	assert.Contains(t, buf.String(), "8 B")
}

func TestConvertInferenceFailures(t *testing.T) {
	load := func() *ir.Model {
		model, err := irtext.ReadFile(exampleModel)
		require.NoError(t, err)
		model.Graph.Nodes()[1].SetI(ir.AttrAxis, 3)
		return model
	}

	report, err := Convert(load(), Options{Target: 19, Infer: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.NumInferenceFailures)

	report, err = Convert(load(), Options{Target: 19, Infer: true, Strict: true})
	require.ErrorIs(t, err, defs.ErrShapeInference)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.NumInferenceFailures)

	_, err = Convert(load(), Options{Target: 12})
	require.ErrorIs(t, err, versionconverter.ErrNoAdapter)
}
