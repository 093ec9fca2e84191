// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/gomlx/irconvert/pkg/onnx/defs"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/gomlx/irconvert/pkg/onnx/versionconverter"
	"github.com/pkg/errors"
)

// Options of one conversion.
type Options struct {
	// Target version of the default domain.
	Target int64

	// Infer runs shape inference on the converted graph.
	Infer bool

	// Strict makes unknown operators and inference failures errors.
	Strict bool

	// Bindings resolve symbolic dimensions of the graph inputs (e.g. "batch") before inference.
	Bindings shapes.AxisBindings
}

// Report describes the model before and after the conversion.
type Report struct {
	Graph            string
	Initial, Target  ir.OpSetID
	NodesBefore      int
	NodesAfter       int
	InitializersSize [2]int // Bytes before and after.
	NumInitializers  [2]int
	Bindings         string

	// InferenceRan is set if shape inference ran, in which case NumInferenceFailures counts the nodes
	// that failed it.
	InferenceRan         bool
	NumInferenceFailures int
}

func initializersSize(g *ir.Graph) (size int) {
	for _, t := range g.Initializers() {
		size += t.NumBytes()
	}
	return size
}

// Convert converts the model in place with the default converter, and optionally runs shape
// inference on the result.
func Convert(model *ir.Model, opts Options) (*Report, error) {
	if model.Graph == nil {
		return nil, errors.New("model has no graph")
	}
	g := model.Graph
	report := &Report{
		Graph:       g.Name(),
		Initial:     model.DefaultOpSetID(),
		Target:      ir.DefaultOpSet(opts.Target),
		NodesBefore: g.NumNodes(),
	}
	report.NumInitializers[0] = len(g.Initializers())
	report.InitializersSize[0] = initializersSize(g)

	converter := versionconverter.DefaultConverter().Strict(opts.Strict)
	if err := converter.ConvertVersion(model, opts.Target); err != nil {
		return nil, err
	}
	report.NodesAfter = g.NumNodes()
	report.NumInitializers[1] = len(g.Initializers())
	report.InitializersSize[1] = initializersSize(g)

	if len(opts.Bindings) > 0 {
		for _, input := range g.Inputs() {
			input.SetShape(input.Shape().Resolve(opts.Bindings))
		}
		report.Bindings = opts.Bindings.Key()
	}
	if opts.Infer {
		report.InferenceRan = true
		numFailed, err := defs.InferGraph(converter.Schemas(), g, model.OpsetImports, opts.Strict)
		report.NumInferenceFailures = numFailed
		if err != nil {
			return report, errors.WithMessage(err, "shape inference of the converted graph")
		}
	}
	return report, nil
}
