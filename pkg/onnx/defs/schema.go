// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package defs holds the operator schema framework: OpSchema (built with chained methods),
// the Registry of versioned schemas, the InferenceContext given to type and shape inference
// functions, reusable inference helpers and the drivers InferNode and InferGraph.
package defs

import (
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/gomlx/irconvert/pkg/support/sets"
	"github.com/pkg/errors"
)

// AttrType is the type of an attribute declared in a schema.
type AttrType = ir.AttributeKind

// FormalParameterOption tells whether an input/output is required, optional or variadic.
type FormalParameterOption int

const (
	Single FormalParameterOption = iota
	Optional
	Variadic
)

// FormalParameter describes one input or output of an operator.
type FormalParameter struct {
	Name, Description string

	// TypeStr is either a type constraint parameter name (e.g. "T") or a concrete type
	// string (e.g. "tensor(int64)").
	TypeStr string

	Option         FormalParameterOption
	Differentiable bool
}

// AttributeDef describes an attribute of an operator.
type AttributeDef struct {
	Name, Description string
	Type              AttrType
	Required          bool

	// Default value, if not Required. It may be nil for optional attributes without default.
	Default ir.Attribute
}

// TypeConstraint binds a type parameter (e.g. "T") to the set of allowed type strings.
type TypeConstraint struct {
	Param       string
	AllowedStrs []string
	Description string

	allowed sets.Set[dtypes.DType]
}

// Allowed returns whether dtype is allowed by the constraint.
func (tc *TypeConstraint) Allowed(dtype dtypes.DType) bool { return tc.allowed.Has(dtype) }

// InferenceFunction infers the output types and shapes of a node.
type InferenceFunction func(ctx InferenceContext) error

// OpSchema describes one version of an operator: its documentation, attributes, inputs,
// outputs, type constraints and inference function.
//
// Schemas are built with chained methods, e.g.:
//
//	schema := defs.NewOpSchema("Softmax").SinceVersion(13).FillUsing(generator)
type OpSchema struct {
	name, domain, doc string
	sinceVersion      int64
	attributes        []*AttributeDef
	inputs, outputs   []FormalParameter
	typeConstraints   []*TypeConstraint
	inferenceFn       InferenceFunction
}

// NewOpSchema creates a schema for the operator name in the default domain, since version 1.
func NewOpSchema(name string) *OpSchema {
	return &OpSchema{name: name, sinceVersion: 1}
}

// Name of the operator.
func (s *OpSchema) Name() string { return s.name }

// Domain of the operator.
func (s *OpSchema) Domain() string { return s.domain }

// Doc returns the documentation of the operator.
func (s *OpSchema) Doc() string { return s.doc }

// Since returns the opset version in which this version of the operator was introduced.
func (s *OpSchema) Since() int64 { return s.sinceVersion }

// SetDoc sets the documentation.
func (s *OpSchema) SetDoc(doc string) *OpSchema {
	s.doc = doc
	return s
}

// SetDomain sets the domain of the operator.
func (s *OpSchema) SetDomain(domain string) *OpSchema {
	s.domain = ir.NormalizeDomain(domain)
	return s
}

// SinceVersion sets the opset version in which this version of the operator was introduced.
func (s *OpSchema) SinceVersion(version int64) *OpSchema {
	s.sinceVersion = version
	return s
}

// FillUsing applies a generator (a function that populates parts of the schema) and returns the schema.
func (s *OpSchema) FillUsing(generator func(*OpSchema)) *OpSchema {
	generator(s)
	return s
}

func (s *OpSchema) setAttr(attr *AttributeDef) *OpSchema {
	idx := slices.IndexFunc(s.attributes, func(a *AttributeDef) bool { return a.Name == attr.Name })
	if idx >= 0 {
		s.attributes[idx] = attr
	} else {
		s.attributes = append(s.attributes, attr)
	}
	return s
}

// Attr declares an optional attribute with a default value (defaultValue may be nil).
func (s *OpSchema) Attr(name, description string, attrType AttrType, defaultValue ir.Attribute) *OpSchema {
	return s.setAttr(&AttributeDef{Name: name, Description: description, Type: attrType, Default: defaultValue})
}

// AttrRequired declares a required attribute.
func (s *OpSchema) AttrRequired(name, description string, attrType AttrType) *OpSchema {
	return s.setAttr(&AttributeDef{Name: name, Description: description, Type: attrType, Required: true})
}

func setFormalParameter(params []FormalParameter, index int, param FormalParameter) []FormalParameter {
	if index < 0 {
		exceptions.Panicf("negative index %d for formal parameter %q", index, param.Name)
	}
	for len(params) <= index {
		params = append(params, FormalParameter{})
	}
	params[index] = param
	return params
}

// Input declares the input at the given index.
func (s *OpSchema) Input(index int, name, description, typeStr string, option FormalParameterOption, differentiable bool) *OpSchema {
	s.inputs = setFormalParameter(s.inputs, index, FormalParameter{
		Name: name, Description: description, TypeStr: typeStr, Option: option, Differentiable: differentiable})
	return s
}

// Output declares the output at the given index.
func (s *OpSchema) Output(index int, name, description, typeStr string, option FormalParameterOption, differentiable bool) *OpSchema {
	s.outputs = setFormalParameter(s.outputs, index, FormalParameter{
		Name: name, Description: description, TypeStr: typeStr, Option: option, Differentiable: differentiable})
	return s
}

// TypeConstraint declares the allowed type strings for the type parameter param.
func (s *OpSchema) TypeConstraint(param string, allowed []string, description string) *OpSchema {
	tc := &TypeConstraint{Param: param, AllowedStrs: slices.Clone(allowed), Description: description}
	idx := slices.IndexFunc(s.typeConstraints, func(other *TypeConstraint) bool { return other.Param == param })
	if idx >= 0 {
		s.typeConstraints[idx] = tc
	} else {
		s.typeConstraints = append(s.typeConstraints, tc)
	}
	return s
}

// TypeAndShapeInferenceFunction sets the inference function of the operator.
func (s *OpSchema) TypeAndShapeInferenceFunction(fn InferenceFunction) *OpSchema {
	s.inferenceFn = fn
	return s
}

// Attributes returns the declared attributes, sorted by name.
func (s *OpSchema) Attributes() []*AttributeDef {
	attrs := slices.Clone(s.attributes)
	slices.SortFunc(attrs, func(a, b *AttributeDef) int { return strings.Compare(a.Name, b.Name) })
	return attrs
}

// AttributeByName returns the declaration of the named attribute.
func (s *OpSchema) AttributeByName(name string) (*AttributeDef, bool) {
	idx := slices.IndexFunc(s.attributes, func(a *AttributeDef) bool { return a.Name == name })
	if idx < 0 {
		return nil, false
	}
	return s.attributes[idx], true
}

// Inputs returns the declared inputs.
func (s *OpSchema) Inputs() []FormalParameter { return slices.Clone(s.inputs) }

// Outputs returns the declared outputs.
func (s *OpSchema) Outputs() []FormalParameter { return slices.Clone(s.outputs) }

// TypeConstraints returns the declared type constraints.
func (s *OpSchema) TypeConstraints() []*TypeConstraint { return slices.Clone(s.typeConstraints) }

// TypeConstraintByParam returns the type constraint for the type parameter.
func (s *OpSchema) TypeConstraintByParam(param string) (*TypeConstraint, bool) {
	idx := slices.IndexFunc(s.typeConstraints, func(tc *TypeConstraint) bool { return tc.Param == param })
	if idx < 0 {
		return nil, false
	}
	return s.typeConstraints[idx], true
}

// InferenceFunction returns the inference function, or nil if none was set.
func (s *OpSchema) InferenceFunction() InferenceFunction { return s.inferenceFn }

// ParseTypeStr parses a concrete type string like "tensor(float)" into its element type.
func ParseTypeStr(typeStr string) (dtypes.DType, error) {
	inner, found := strings.CutPrefix(typeStr, "tensor(")
	if !found || !strings.HasSuffix(inner, ")") {
		return dtypes.InvalidDType, errors.Errorf("type string %q is not of the form \"tensor(<type>)\"", typeStr)
	}
	inner = strings.TrimSuffix(inner, ")")
	dtype := dtypes.FromName(inner)
	if dtype == dtypes.InvalidDType {
		return dtype, errors.Errorf("unknown element type %q in type string %q", inner, typeStr)
	}
	return dtype, nil
}

// Finalize checks the consistency of the schema and resolves the type constraints.
// It is called by Registry.Register.
func (s *OpSchema) Finalize() error {
	if s.name == "" {
		return errors.New("schema has no name")
	}
	if s.sinceVersion <= 0 {
		return errors.Errorf("schema %s: invalid since version %d", s.name, s.sinceVersion)
	}
	for _, tc := range s.typeConstraints {
		tc.allowed = sets.Make[dtypes.DType](len(tc.AllowedStrs))
		for _, typeStr := range tc.AllowedStrs {
			dtype, err := ParseTypeStr(typeStr)
			if err != nil {
				return errors.WithMessagef(err, "schema %s type constraint %q", s.name, tc.Param)
			}
			tc.allowed.Insert(dtype)
		}
	}
	for _, params := range [][]FormalParameter{s.inputs, s.outputs} {
		for ii, param := range params {
			if param.Name == "" {
				return errors.Errorf("schema %s: formal parameter #%d not declared", s.name, ii)
			}
			if param.Option == Variadic && ii != len(params)-1 {
				return errors.Errorf("schema %s: only the last formal parameter can be variadic, %q is #%d", s.name, param.Name, ii)
			}
			if _, found := s.TypeConstraintByParam(param.TypeStr); found {
				continue
			}
			if _, err := ParseTypeStr(param.TypeStr); err != nil {
				return errors.WithMessagef(err, "schema %s formal parameter %q has no type constraint", s.name, param.Name)
			}
		}
	}
	for _, attr := range s.attributes {
		if attr.Default != nil && attr.Default.Kind() != attr.Type {
			return errors.Errorf("schema %s attribute %q is declared %s but its default is %s",
				s.name, attr.Name, attr.Type, attr.Default.Kind())
		}
	}
	return nil
}

// AllowedTypes returns the element types allowed for the formal parameter, resolving type constraints.
func (s *OpSchema) AllowedTypes(param FormalParameter) sets.Set[dtypes.DType] {
	if tc, found := s.TypeConstraintByParam(param.TypeStr); found {
		return tc.allowed.Clone()
	}
	dtype, err := ParseTypeStr(param.TypeStr)
	if err != nil {
		return sets.Make[dtypes.DType]()
	}
	return sets.MakeWith(dtype)
}

// MinInputs returns the minimum number of inputs a node must have.
func (s *OpSchema) MinInputs() int {
	var n int
	for ii, param := range s.inputs {
		if param.Option == Single {
			n = ii + 1
		}
	}
	return n
}

// MaxInputs returns the maximum number of inputs a node may have, or -1 if unbounded.
func (s *OpSchema) MaxInputs() int {
	if len(s.inputs) > 0 && s.inputs[len(s.inputs)-1].Option == Variadic {
		return -1
	}
	return len(s.inputs)
}
