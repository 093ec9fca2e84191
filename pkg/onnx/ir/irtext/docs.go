// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package irtext reads and writes ir.Model as YAML documents.
//
// Example:
//
//	ir_version: 10
//	opset_import:
//	  - {domain: "", version: 20}
//	graph:
//	  name: dft
//	  inputs:
//	    - {name: x, dtype: FLOAT, shape: [batch, 16, 1]}
//	  initializers:
//	    - {name: axis_init, dtype: INT64, int64_data: [1]}
//	  nodes:
//	    - op: DFT
//	      inputs: [x, "", axis_init]
//	      outputs: [y]
//	      attributes:
//	        onesided: {i: 0}
//	  outputs:
//	    - {name: y, dtype: FLOAT}
//
// Dimensions in a shape are either integers or symbolic names ("?" for an unnamed unknown
// dimension). An omitted shape means unknown rank, while `shape: []` is a scalar. An empty input
// name refers to the graph's undefined value (an absent optional input).
package irtext

import (
	"github.com/gomlx/irconvert/pkg/core/shapes"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// UnknownDimName is how an unknown dimension without a symbolic name is written.
const UnknownDimName = "?"

type modelDoc struct {
	IRVersion       int64      `yaml:"ir_version"`
	ProducerName    string     `yaml:"producer_name,omitempty"`
	ProducerVersion string     `yaml:"producer_version,omitempty"`
	OpsetImport     []opsetDoc `yaml:"opset_import"`
	Graph           graphDoc   `yaml:"graph"`
}

type opsetDoc struct {
	Domain  string `yaml:"domain"`
	Version int64  `yaml:"version"`
}

type graphDoc struct {
	Name         string      `yaml:"name"`
	Inputs       []valueDoc  `yaml:"inputs,omitempty"`
	Initializers []tensorDoc `yaml:"initializers,omitempty"`
	Nodes        []nodeDoc   `yaml:"nodes,omitempty"`
	Outputs      []valueDoc  `yaml:"outputs,omitempty"`
	ValueInfo    []valueDoc  `yaml:"value_info,omitempty"`
}

type valueDoc struct {
	Name  string    `yaml:"name"`
	DType string    `yaml:"dtype,omitempty"`
	Shape *[]dimDoc `yaml:"shape,omitempty,flow"`
}

type nodeDoc struct {
	Name       string             `yaml:"name,omitempty"`
	Op         string             `yaml:"op"`
	Domain     string             `yaml:"domain,omitempty"`
	Inputs     []string           `yaml:"inputs,flow"`
	Outputs    []string           `yaml:"outputs,flow"`
	Attributes map[string]attrDoc `yaml:"attributes,omitempty"`
}

// attrDoc holds exactly one of its fields.
type attrDoc struct {
	I       *int64     `yaml:"i,omitempty"`
	Ints    *[]int64   `yaml:"ints,omitempty,flow"`
	F       *float32   `yaml:"f,omitempty"`
	Floats  *[]float32 `yaml:"floats,omitempty,flow"`
	S       *string    `yaml:"s,omitempty"`
	Strings *[]string  `yaml:"strings,omitempty,flow"`
	T       *tensorDoc `yaml:"t,omitempty"`
}

type tensorDoc struct {
	Name       string    `yaml:"name,omitempty"`
	DType      string    `yaml:"dtype"`
	Dims       []int64   `yaml:"dims,omitempty,flow"`
	FloatData  []float32 `yaml:"float_data,omitempty,flow"`
	DoubleData []float64 `yaml:"double_data,omitempty,flow"`
	Int32Data  []int32   `yaml:"int32_data,omitempty,flow"`
	Int64Data  []int64   `yaml:"int64_data,omitempty,flow"`
	Uint64Data []uint64  `yaml:"uint64_data,omitempty,flow"`
	StringData []string  `yaml:"string_data,omitempty,flow"`

	// RawData is base64 encoded.
	RawData string `yaml:"raw_data,omitempty"`
}

// dimDoc is one dimension of a shape: either a static size or a symbolic name.
type dimDoc struct {
	Size int
	Name string
}

// MarshalYAML implements yaml.Marshaler.
func (d dimDoc) MarshalYAML() (any, error) {
	switch {
	case d.Name != "":
		return d.Name, nil
	case d.Size == shapes.UnknownDim:
		return UnknownDimName, nil
	}
	return d.Size, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *dimDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: shape dimensions must be integers or names", node.Line)
	}
	if node.ShortTag() == "!!int" {
		if err := node.Decode(&d.Size); err != nil {
			return err
		}
		if d.Size < 0 {
			return errors.Errorf("line %d: negative dimension %d, use %q or a name for unknown dimensions",
				node.Line, d.Size, UnknownDimName)
		}
		return nil
	}
	d.Size = shapes.UnknownDim
	if node.Value != UnknownDimName {
		d.Name = node.Value
	}
	return nil
}
