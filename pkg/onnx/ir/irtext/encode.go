// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package irtext

import (
	"bytes"
	"encoding/base64"
	"os"

	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/gomlx/irconvert/pkg/support/sets"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Indent used when writing YAML documents.
const Indent = 2

// WriteFile writes the model in YAML format to filePath.
func WriteFile(filePath string, model *ir.Model) error {
	data, err := Marshal(model)
	if err != nil {
		return err
	}
	if err = os.WriteFile(filePath, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write model to %q", filePath)
	}
	return nil
}

// Marshal encodes the model as a YAML document.
func Marshal(model *ir.Model) ([]byte, error) {
	if model == nil || model.Graph == nil {
		return nil, errors.New("cannot marshal a model without a graph")
	}
	doc := modelDoc{
		IRVersion:       model.IRVersion,
		ProducerName:    model.ProducerName,
		ProducerVersion: model.ProducerVersion,
		Graph:           encodeGraph(model.Graph),
	}
	for _, opset := range model.OpsetImports {
		doc.OpsetImport = append(doc.OpsetImport, opsetDoc{Domain: opset.Domain, Version: opset.Version})
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(Indent)
	if err := encoder.Encode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to encode model as YAML")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode model as YAML")
	}
	return buf.Bytes(), nil
}

func encodeGraph(g *ir.Graph) graphDoc {
	doc := graphDoc{Name: g.Name()}
	for _, v := range g.Inputs() {
		doc.Inputs = append(doc.Inputs, encodeValue(v))
	}
	for _, t := range g.Initializers() {
		doc.Initializers = append(doc.Initializers, encodeTensor(t))
	}
	outputs := sets.Make[*ir.Value]()
	for _, v := range g.Outputs() {
		doc.Outputs = append(doc.Outputs, encodeValue(v))
		outputs.Insert(v)
	}
	for _, n := range g.Nodes() {
		nd := nodeDoc{
			Name:    n.Name(),
			Op:      string(n.Kind()),
			Domain:  n.Domain(),
			Inputs:  make([]string, n.NumInputs()),
			Outputs: make([]string, n.NumOutputs()),
		}
		for ii, v := range n.Inputs() {
			nd.Inputs[ii] = v.UniqueName()
		}
		for ii, v := range n.Outputs() {
			nd.Outputs[ii] = v.UniqueName()
			if v.Shape().Ok() && !outputs.Has(v) {
				doc.ValueInfo = append(doc.ValueInfo, encodeValue(v))
			}
		}
		for _, name := range n.AttributeNames() {
			attr, _ := n.Attribute(name)
			if nd.Attributes == nil {
				nd.Attributes = make(map[string]attrDoc)
			}
			nd.Attributes[name] = encodeAttribute(attr)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc
}

func encodeValue(v *ir.Value) valueDoc {
	doc := valueDoc{Name: v.UniqueName()}
	shape := v.Shape()
	if !shape.Ok() {
		return doc
	}
	doc.DType = shape.DType.String()
	if !shape.HasRank() {
		return doc
	}
	dims := make([]dimDoc, shape.Rank())
	for axis := range dims {
		dims[axis] = dimDoc{Size: shape.Dim(axis), Name: shape.DimName(axis)}
		if dims[axis].Name != "" {
			dims[axis].Size = shapes.UnknownDim
		}
	}
	doc.Shape = &dims
	return doc
}

func encodeTensor(t *ir.Tensor) tensorDoc {
	doc := tensorDoc{
		Name:       t.Name,
		DType:      t.DType.String(),
		Dims:       t.Dims,
		FloatData:  t.FloatData,
		DoubleData: t.DoubleData,
		Int32Data:  t.Int32Data,
		Int64Data:  t.Int64Data,
		Uint64Data: t.Uint64Data,
	}
	for _, s := range t.StringData {
		doc.StringData = append(doc.StringData, string(s))
	}
	if t.HasRawData() {
		doc.RawData = base64.StdEncoding.EncodeToString(t.RawData)
	}
	return doc
}

func encodeAttribute(attr ir.Attribute) (doc attrDoc) {
	switch a := attr.(type) {
	case ir.IntAttr:
		v := int64(a)
		doc.I = &v
	case ir.IntsAttr:
		v := []int64(a)
		doc.Ints = &v
	case ir.FloatAttr:
		v := float32(a)
		doc.F = &v
	case ir.FloatsAttr:
		v := []float32(a)
		doc.Floats = &v
	case ir.StringAttr:
		v := string(a)
		doc.S = &v
	case ir.StringsAttr:
		v := []string(a)
		doc.Strings = &v
	case ir.TensorAttr:
		t := encodeTensor(a.Value)
		doc.T = &t
	}
	return
}
