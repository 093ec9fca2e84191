// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package irtext

import (
	"bytes"
	"encoding/base64"
	"os"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadFile reads and parses the YAML model in filePath.
func ReadFile(filePath string) (*ir.Model, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model file %q", filePath)
	}
	model, err := Unmarshal(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "model file %q", filePath)
	}
	return model, nil
}

// Unmarshal parses a YAML model. Unknown fields are rejected, and the resulting graph is validated.
func Unmarshal(data []byte) (*ir.Model, error) {
	var doc modelDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML model")
	}

	model := &ir.Model{
		IRVersion:       doc.IRVersion,
		ProducerName:    doc.ProducerName,
		ProducerVersion: doc.ProducerVersion,
	}
	for _, opset := range doc.OpsetImport {
		model.OpsetImports = append(model.OpsetImports, ir.NewOpSetID(opset.Domain, opset.Version))
	}

	// Graph construction panics on inconsistent names (e.g. duplicates): they are reported as errors.
	var g *ir.Graph
	err := exceptions.TryCatch[error](func() { g = must.M1(buildGraph(&doc.Graph)) })
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid graph %q", doc.Graph.Name)
	}
	if err = g.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid graph %q", doc.Graph.Name)
	}
	model.Graph = g
	return model, nil
}

func buildGraph(doc *graphDoc) (*ir.Graph, error) {
	g := ir.NewGraph(doc.Name)
	for _, input := range doc.Inputs {
		if input.Name == "" {
			return nil, errors.New("graph inputs must have a name")
		}
		shape, err := decodeShape(&input)
		if err != nil {
			return nil, err
		}
		g.AddInput(input.Name, shape)
	}
	for ii := range doc.Initializers {
		t, err := decodeTensor(&doc.Initializers[ii])
		if err != nil {
			return nil, errors.WithMessagef(err, "initializer #%d", ii)
		}
		g.AddInitializer(t)
	}

	lookup := func(name string) (*ir.Value, error) {
		if name == "" {
			return g.Undefined(), nil
		}
		v, found := g.ValueByName(name)
		if !found {
			return nil, errors.Errorf("value %q used before being defined", name)
		}
		return v, nil
	}
	for ii, nd := range doc.Nodes {
		if nd.Op == "" {
			return nil, errors.Errorf("node #%d has no op", ii)
		}
		for outIdx, outputName := range nd.Outputs {
			if outputName == "" {
				return nil, errors.Errorf("node #%d (%s) output #%d has no name", ii, nd.Op, outIdx)
			}
		}
		inputs := make([]*ir.Value, len(nd.Inputs))
		for inIdx, inputName := range nd.Inputs {
			v, err := lookup(inputName)
			if err != nil {
				return nil, errors.WithMessagef(err, "node #%d (%s)", ii, nd.Op)
			}
			inputs[inIdx] = v
		}
		n := g.NewNodeWithOutputs(ir.Symbol(nd.Op), nd.Outputs...)
		n.SetName(nd.Name).SetDomain(nd.Domain)
		for _, v := range inputs {
			n.AddInput(v)
		}
		for attrName, ad := range nd.Attributes {
			attr, err := decodeAttribute(&ad)
			if err != nil {
				return nil, errors.WithMessagef(err, "node #%d (%s) attribute %q", ii, nd.Op, attrName)
			}
			n.SetAttribute(attrName, attr)
		}
		g.AppendNode(n)
	}

	for _, output := range doc.Outputs {
		v, err := lookup(output.Name)
		if err != nil {
			return nil, errors.WithMessage(err, "graph output")
		}
		if err = setShape(v, &output); err != nil {
			return nil, err
		}
		g.RegisterOutput(v)
	}
	for _, info := range doc.ValueInfo {
		v, found := g.ValueByName(info.Name)
		if !found {
			return nil, errors.Errorf("value_info for unknown value %q", info.Name)
		}
		if err := setShape(v, &info); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func setShape(v *ir.Value, doc *valueDoc) error {
	if doc.DType == "" && doc.Shape == nil {
		return nil
	}
	shape, err := decodeShape(doc)
	if err != nil {
		return err
	}
	v.SetShape(shape)
	return nil
}

func decodeDType(name string) (dtypes.DType, error) {
	dtype := dtypes.FromName(name)
	if dtype == dtypes.InvalidDType {
		return dtype, errors.Errorf("unknown dtype %q", name)
	}
	return dtype, nil
}

func decodeShape(doc *valueDoc) (shapes.Shape, error) {
	if doc.DType == "" {
		if doc.Shape != nil {
			return shapes.Invalid(), errors.Errorf("value %q has a shape but no dtype", doc.Name)
		}
		return shapes.Invalid(), nil
	}
	dtype, err := decodeDType(doc.DType)
	if err != nil {
		return shapes.Invalid(), errors.WithMessagef(err, "value %q", doc.Name)
	}
	if doc.Shape == nil {
		return shapes.Unranked(dtype), nil
	}
	dims := make([]int, len(*doc.Shape))
	names := make([]string, len(*doc.Shape))
	for ii, dim := range *doc.Shape {
		dims[ii], names[ii] = dim.Size, dim.Name
	}
	return shapes.MakeSymbolic(dtype, dims, names), nil
}

func decodeTensor(doc *tensorDoc) (*ir.Tensor, error) {
	dtype, err := decodeDType(doc.DType)
	if err != nil {
		return nil, errors.WithMessagef(err, "tensor %q", doc.Name)
	}
	t := &ir.Tensor{
		Name:       doc.Name,
		DType:      dtype,
		Dims:       doc.Dims,
		FloatData:  doc.FloatData,
		DoubleData: doc.DoubleData,
		Int32Data:  doc.Int32Data,
		Int64Data:  doc.Int64Data,
		Uint64Data: doc.Uint64Data,
	}
	for _, s := range doc.StringData {
		t.StringData = append(t.StringData, []byte(s))
	}
	if doc.RawData != "" {
		t.RawData, err = base64.StdEncoding.DecodeString(doc.RawData)
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %q has invalid base64 raw_data", doc.Name)
		}
	}
	for _, dim := range t.Dims {
		if dim < 0 {
			return nil, errors.Errorf("tensor %q has negative dimension in %v", doc.Name, t.Dims)
		}
	}
	return t, nil
}

func decodeAttribute(doc *attrDoc) (attr ir.Attribute, err error) {
	var count int
	if doc.I != nil {
		attr = ir.IntAttr(*doc.I)
		count++
	}
	if doc.Ints != nil {
		attr = ir.IntsAttr(*doc.Ints)
		count++
	}
	if doc.F != nil {
		attr = ir.FloatAttr(*doc.F)
		count++
	}
	if doc.Floats != nil {
		attr = ir.FloatsAttr(*doc.Floats)
		count++
	}
	if doc.S != nil {
		attr = ir.StringAttr(*doc.S)
		count++
	}
	if doc.Strings != nil {
		attr = ir.StringsAttr(*doc.Strings)
		count++
	}
	if doc.T != nil {
		var t *ir.Tensor
		t, err = decodeTensor(doc.T)
		if err != nil {
			return nil, err
		}
		attr = ir.TensorAttr{Value: t}
		count++
	}
	if count != 1 {
		return nil, errors.Errorf("attributes must have exactly one of i, ints, f, floats, s, strings or t, got %d", count)
	}
	return attr, nil
}
