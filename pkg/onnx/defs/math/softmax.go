// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package math

import (
	"strings"

	"github.com/gomlx/irconvert/pkg/onnx/defs"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/pkg/errors"
)

// SoftmaxFamilySince is the opset version of the current Softmax, LogSoftmax and Hardmax schemas.
const SoftmaxFamilySince = 13

// SoftmaxFamilyTypes are the element types accepted by the softmax family.
var SoftmaxFamilyTypes = []string{"tensor(float16)", "tensor(float)", "tensor(double)", "tensor(bfloat16)"}

const softmaxFamilyDoc = `The operator computes the {description} values for the given input:

 {equation}

The "axis" attribute indicates the dimension along which {name} will be performed.
The output tensor has the same shape and contains the {name} values of the corresponding input.
`

const softmaxFamilyAxisDoc = `Describes the dimension {name} will be performed on.
Negative value means counting dimensions from the back.
Accepted range is [-r, r-1] where r = rank(input).`

// SoftmaxFamilyDocGenerator returns a schema generator for the operators of the softmax family:
// shape preserving operators with a single "axis" attribute (default -1), one input and one output
// of the same float type.
//
// name, description and equation are only used to render the documentation.
func SoftmaxFamilyDocGenerator(name, description, equation string) func(*defs.OpSchema) {
	return func(schema *defs.OpSchema) {
		replacer := strings.NewReplacer("{name}", name, "{description}", description, "{equation}", equation)
		schema.SetDoc(replacer.Replace(softmaxFamilyDoc)).
			Attr(ir.AttrAxis, replacer.Replace(softmaxFamilyAxisDoc), ir.AttrKindInt, ir.IntAttr(-1)).
			Input(0, "input", "The input tensor of rank >= axis.", "T", defs.Single, true).
			Output(0, "output", "The output values with the same shape as the input tensor.", "T", defs.Single, true).
			TypeConstraint("T", SoftmaxFamilyTypes, "Constrain input and output types to float tensors.").
			TypeAndShapeInferenceFunction(defs.ShapePreservingAxisInference(ir.AttrAxis, -1, 1))
	}
}

// legacySoftmaxFamilyGenerator fills the schemas of the softmax family before version 13, where the
// input is coerced to 2D at "axis", which defaults to 1.
func legacySoftmaxFamilyGenerator(name, description string) func(*defs.OpSchema) {
	return func(schema *defs.OpSchema) {
		replacer := strings.NewReplacer("{name}", name, "{description}", description,
			"{equation}", "the input is coerced into a 2D tensor [a_0 * ... * a_{axis-1}, a_axis * ... * a_{n-1}]")
		schema.SetDoc(replacer.Replace(softmaxFamilyDoc)).
			Attr(ir.AttrAxis, replacer.Replace(softmaxFamilyAxisDoc), ir.AttrKindInt, ir.IntAttr(1)).
			Input(0, "input", "The input tensor that's coerced into a 2D matrix.", "T", defs.Single, true).
			Output(0, "output", "The output values with the same shape as the input tensor.", "T", defs.Single, true).
			TypeConstraint("T", SoftmaxFamilyTypes[:3], "Constrain input and output types to float tensors.").
			TypeAndShapeInferenceFunction(defs.ShapePreservingAxisInference(ir.AttrAxis, 1, 1))
	}
}

type softmaxFamilyOp struct {
	name, description, equation string
}

var softmaxFamily = []softmaxFamilyOp{
	{"Softmax", "normalized exponential",
		"Softmax(input, axis) = Exp(input) / ReduceSum(Exp(input), axis=axis, keepdims=1)"},
	{"LogSoftmax", "log of softmax",
		"LogSoftmax(input, axis) = Log(Softmax(input, axis=axis))"},
	{"Hardmax", "hardmax (1 for the first maximum value, and 0 for all others)",
		"Hardmax(element in input, axis) = 1 if the element is the first maximum value along the specified axis, 0 otherwise"},
}

// RegisterSchemas registers Softmax, LogSoftmax and Hardmax: the current versions (since 13) and the
// legacy versions (since 1 and 11).
func RegisterSchemas(registry *defs.Registry) error {
	for _, op := range softmaxFamily {
		schemas := []*defs.OpSchema{
			defs.NewOpSchema(op.name).SinceVersion(1).FillUsing(legacySoftmaxFamilyGenerator(op.name, op.description)),
			defs.NewOpSchema(op.name).SinceVersion(11).FillUsing(legacySoftmaxFamilyGenerator(op.name, op.description)),
			defs.NewOpSchema(op.name).SinceVersion(SoftmaxFamilySince).
				FillUsing(SoftmaxFamilyDocGenerator(op.name, op.description, op.equation)),
		}
		for _, schema := range schemas {
			if err := registry.Register(schema); err != nil {
				return errors.WithMessagef(err, "registering %s-%d", op.name, schema.Since())
			}
		}
	}
	return nil
}
