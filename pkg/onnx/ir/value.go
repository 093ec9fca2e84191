// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/core/shapes"
)

// ValueID is a stable identifier of a Value within its Graph. It is never reused.
type ValueID int

// Use records that a Value is consumed by User at input slot Offset.
type Use struct {
	User   *Node
	Offset int
}

// Value is a typed, named edge of the graph: it is produced by exactly one node (graph inputs
// are produced by the graph's Param node) and consumed by zero or more uses.
type Value struct {
	graph  *Graph
	id     ValueID
	name   string
	node   *Node
	offset int
	uses   []Use
	shape  shapes.Shape
}

// ID returns the stable id of the value.
func (v *Value) ID() ValueID { return v.id }

// Graph that owns the value.
func (v *Value) Graph() *Graph { return v.graph }

// Node returns the producer of the value.
func (v *Value) Node() *Node { return v.node }

// Offset returns the index of the value in its producer's outputs.
func (v *Value) Offset() int { return v.offset }

// UniqueName of the value, unique within the graph. The undefined value has an empty name.
func (v *Value) UniqueName() string { return v.name }

// SetUniqueName renames the value. It panics if another value of the graph already uses the name.
func (v *Value) SetUniqueName(name string) *Value {
	if v.name == name {
		return v
	}
	if v.IsUndefined() {
		exceptions.Panicf("cannot rename the undefined value to %q", name)
	}
	if name == "" {
		exceptions.Panicf("cannot set an empty name to value %q", v.name)
	}
	if other, found := v.graph.values[name]; found && other != v {
		exceptions.Panicf("value name %q already used in graph %q", name, v.graph.name)
	}
	delete(v.graph.values, v.name)
	v.name = name
	v.graph.values[name] = v
	return v
}

// Uses returns a copy of the list of uses of the value, in the order they were created.
func (v *Value) Uses() []Use { return slices.Clone(v.uses) }

// NumUses returns the number of uses of the value, including its use as a graph output.
func (v *Value) NumUses() int { return len(v.uses) }

// HasUses returns whether the value is consumed anywhere.
func (v *Value) HasUses() bool { return len(v.uses) > 0 }

// Shape returns the element type and shape of the value. It may be invalid (unknown).
func (v *Value) Shape() shapes.Shape { return v.shape }

// DType is a shortcut to Shape().DType.
func (v *Value) DType() dtypes.DType { return v.shape.DType }

// SetShape sets the element type and shape of the value.
func (v *Value) SetShape(shape shapes.Shape) *Value {
	v.shape = shape.Clone()
	return v
}

// IsUndefined returns whether this is the graph's canonical "undefined" value, used to mark
// optional inputs that are not given.
func (v *Value) IsUndefined() bool { return v.node.kind == KindUndefined }

// IsGraphInput returns whether the value is a graph input (including initializer inputs).
func (v *Value) IsGraphInput() bool { return v.node.kind == KindParam }

// String returns the value as printed in graph dumps: "%name", or "_" for the undefined value.
func (v *Value) String() string {
	if v.IsUndefined() {
		return "_"
	}
	return "%" + v.name
}

func (v *Value) addUse(user *Node, offset int) {
	v.uses = append(v.uses, Use{User: user, Offset: offset})
}

func (v *Value) removeUse(user *Node, offset int) {
	idx := slices.Index(v.uses, Use{User: user, Offset: offset})
	if idx < 0 {
		exceptions.Panicf("value %s has no use by node %s at input #%d: use-list is out of sync", v, user.Describe(), offset)
	}
	v.uses = slices.Delete(v.uses, idx, idx+1)
}

func (v *Value) shiftUse(user *Node, from, to int) {
	idx := slices.Index(v.uses, Use{User: user, Offset: from})
	if idx < 0 {
		exceptions.Panicf("value %s has no use by node %s at input #%d: use-list is out of sync", v, user.Describe(), from)
	}
	v.uses[idx].Offset = to
}
