// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// AttributeKind enumerates the kinds of attribute values. The numbering follows
// ONNX's AttributeProto.AttributeType.
type AttributeKind int

const (
	AttrKindUndefined AttributeKind = 0
	AttrKindFloat     AttributeKind = 1
	AttrKindInt       AttributeKind = 2
	AttrKindString    AttributeKind = 3
	AttrKindTensor    AttributeKind = 4
	AttrKindFloats    AttributeKind = 6
	AttrKindInts      AttributeKind = 7
	AttrKindStrings   AttributeKind = 8
)

var attributeKindNames = map[AttributeKind]string{
	AttrKindUndefined: "UNDEFINED",
	AttrKindFloat:     "FLOAT",
	AttrKindInt:       "INT",
	AttrKindString:    "STRING",
	AttrKindTensor:    "TENSOR",
	AttrKindFloats:    "FLOATS",
	AttrKindInts:      "INTS",
	AttrKindStrings:   "STRINGS",
}

// String implements fmt.Stringer.
func (k AttributeKind) String() string {
	if name, found := attributeKindNames[k]; found {
		return name
	}
	return fmt.Sprintf("AttributeKind(%d)", int(k))
}

// AttributeKindFromName converts names like "INT" or "int" to the AttributeKind.
// It returns AttrKindUndefined for unknown names.
func AttributeKindFromName(name string) AttributeKind {
	name = strings.ToUpper(name)
	for k, kName := range attributeKindNames {
		if kName == name {
			return k
		}
	}
	return AttrKindUndefined
}

// Attribute is a typed attribute value: one of FloatAttr, IntAttr, StringAttr, TensorAttr,
// FloatsAttr, IntsAttr or StringsAttr.
type Attribute interface {
	fmt.Stringer

	// Kind of the attribute value.
	Kind() AttributeKind

	// clone returns a copy that doesn't share mutable storage.
	clone() Attribute
}

type (
	// FloatAttr is a scalar float attribute.
	FloatAttr float32

	// IntAttr is a scalar integer attribute.
	IntAttr int64

	// StringAttr is a string attribute.
	StringAttr string

	// TensorAttr holds a constant tensor.
	TensorAttr struct{ Value *Tensor }

	// FloatsAttr is a list of floats.
	FloatsAttr []float32

	// IntsAttr is a list of integers.
	IntsAttr []int64

	// StringsAttr is a list of strings.
	StringsAttr []string
)

func (FloatAttr) Kind() AttributeKind   { return AttrKindFloat }
func (IntAttr) Kind() AttributeKind     { return AttrKindInt }
func (StringAttr) Kind() AttributeKind  { return AttrKindString }
func (TensorAttr) Kind() AttributeKind  { return AttrKindTensor }
func (FloatsAttr) Kind() AttributeKind  { return AttrKindFloats }
func (IntsAttr) Kind() AttributeKind    { return AttrKindInts }
func (StringsAttr) Kind() AttributeKind { return AttrKindStrings }

func (a FloatAttr) clone() Attribute  { return a }
func (a IntAttr) clone() Attribute    { return a }
func (a StringAttr) clone() Attribute { return a }
func (a TensorAttr) clone() Attribute {
	if a.Value == nil {
		return a
	}
	return TensorAttr{Value: a.Value.Clone()}
}
func (a FloatsAttr) clone() Attribute  { return slices.Clone(a) }
func (a IntsAttr) clone() Attribute    { return slices.Clone(a) }
func (a StringsAttr) clone() Attribute { return slices.Clone(a) }

func (a FloatAttr) String() string  { return strconv.FormatFloat(float64(a), 'g', -1, 32) }
func (a IntAttr) String() string    { return strconv.FormatInt(int64(a), 10) }
func (a StringAttr) String() string { return strconv.Quote(string(a)) }
func (a TensorAttr) String() string { return a.Value.String() }

func (a FloatsAttr) String() string {
	return formatList(a, func(v float32) string { return FloatAttr(v).String() })
}

func (a IntsAttr) String() string {
	return formatList(a, func(v int64) string { return strconv.FormatInt(v, 10) })
}

func (a StringsAttr) String() string { return formatList(a, strconv.Quote) }

func formatList[T any](values []T, format func(T) string) string {
	parts := make([]string, len(values))
	for ii, v := range values {
		parts[ii] = format(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
