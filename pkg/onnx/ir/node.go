// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
)

// NodeID is a stable identifier of a Node within its Graph. It is never reused.
type NodeID int

// Node is an operator instance: kind, domain, ordered inputs and outputs and attributes.
//
// Nodes are created with Graph.NewNode (or Graph.AppendNode), mutated in place and destroyed with
// Node.Destroy. Any use of a destroyed node panics.
type Node struct {
	graph     *Graph
	id        NodeID
	kind      Symbol
	domain    string
	name      string
	inputs    []*Value
	outputs   []*Value
	attrs     map[string]Attribute
	inGraph   bool
	destroyed bool
}

func (n *Node) checkAlive() {
	if n.destroyed {
		exceptions.Panicf("node #%d (%s) used after being destroyed", n.id, n.kind)
	}
}

// ID returns the stable id of the node.
func (n *Node) ID() NodeID { return n.id }

// Graph that owns the node.
func (n *Node) Graph() *Graph { return n.graph }

// Kind of the operator, e.g. "Softmax".
func (n *Node) Kind() Symbol {
	n.checkAlive()
	return n.kind
}

// Domain of the operator. The default domain is "".
func (n *Node) Domain() string {
	n.checkAlive()
	return n.domain
}

// SetDomain sets the domain of the operator.
func (n *Node) SetDomain(domain string) *Node {
	n.checkAlive()
	n.domain = NormalizeDomain(domain)
	return n
}

// Name is the optional name of the node.
func (n *Node) Name() string {
	n.checkAlive()
	return n.name
}

// SetName sets the optional name of the node.
func (n *Node) SetName(name string) *Node {
	n.checkAlive()
	n.name = name
	return n
}

// IsDestroyed returns whether Destroy was called on the node.
func (n *Node) IsDestroyed() bool { return n.destroyed }

// InGraph returns whether the node is part of the graph's ordered list of nodes.
func (n *Node) InGraph() bool { return n.inGraph && !n.destroyed }

// Inputs returns a copy of the node inputs.
func (n *Node) Inputs() []*Value {
	n.checkAlive()
	return slices.Clone(n.inputs)
}

// NumInputs returns the number of input slots, including undefined ones.
func (n *Node) NumInputs() int {
	n.checkAlive()
	return len(n.inputs)
}

// Input returns the value at input slot i.
func (n *Node) Input(i int) *Value {
	n.checkAlive()
	if i < 0 || i >= len(n.inputs) {
		exceptions.Panicf("node %s has %d inputs, input #%d requested", n.Describe(), len(n.inputs), i)
	}
	return n.inputs[i]
}

// Outputs returns a copy of the node outputs.
func (n *Node) Outputs() []*Value {
	n.checkAlive()
	return slices.Clone(n.outputs)
}

// NumOutputs returns the number of outputs of the node.
func (n *Node) NumOutputs() int {
	n.checkAlive()
	return len(n.outputs)
}

// Output returns the output at index i.
func (n *Node) Output(i int) *Value {
	n.checkAlive()
	if i < 0 || i >= len(n.outputs) {
		exceptions.Panicf("node %s has %d outputs, output #%d requested", n.Describe(), len(n.outputs), i)
	}
	return n.outputs[i]
}

// AddInput appends v as a new input slot and records the use. It returns the slot index.
func (n *Node) AddInput(v *Value) int {
	n.checkAlive()
	n.checkSameGraph(v)
	slot := len(n.inputs)
	n.inputs = append(n.inputs, v)
	v.addUse(n, slot)
	return slot
}

// ReplaceInput makes input slot i consume v instead, updating the use-lists of both values.
// It returns the value previously at slot i.
func (n *Node) ReplaceInput(i int, v *Value) *Value {
	old := n.Input(i)
	n.checkSameGraph(v)
	old.removeUse(n, i)
	n.inputs[i] = v
	v.addUse(n, i)
	return old
}

// RemoveInput removes input slot i: its use record is dropped and the later slots shift one
// position down, with their use records updated accordingly.
func (n *Node) RemoveInput(i int) {
	old := n.Input(i)
	old.removeUse(n, i)
	for j := i + 1; j < len(n.inputs); j++ {
		n.inputs[j].shiftUse(n, j, j-1)
	}
	n.inputs = slices.Delete(n.inputs, i, i+1)
}

// RemoveAllInputs removes every input slot of the node.
func (n *Node) RemoveAllInputs() {
	n.checkAlive()
	for len(n.inputs) > 0 {
		n.RemoveInput(len(n.inputs) - 1)
	}
}

// Destroy removes the node from the graph. All its outputs must be unused. The node's own
// uses of its inputs are dropped and its outputs are removed from the graph.
func (n *Node) Destroy() {
	n.checkAlive()
	if n.kind == KindParam || n.kind == KindUndefined || n == n.graph.ret {
		exceptions.Panicf("cannot destroy the graph's %s node", n.kind)
	}
	for ii, out := range n.outputs {
		if out.HasUses() {
			exceptions.Panicf("cannot destroy node %s: output #%d (%s) still has %d uses", n.Describe(), ii, out, out.NumUses())
		}
	}
	n.RemoveAllInputs()
	for _, out := range n.outputs {
		delete(n.graph.values, out.name)
	}
	if n.inGraph {
		n.graph.nodes = slices.DeleteFunc(n.graph.nodes, func(other *Node) bool { return other == n })
	}
	n.destroyed = true
	n.inGraph = false
}

func (n *Node) checkSameGraph(v *Value) {
	if v == nil {
		exceptions.Panicf("nil value given as input to node %s, use Graph.Undefined() for absent inputs", n.Describe())
	}
	if v.graph != n.graph {
		exceptions.Panicf("value %s belongs to graph %q, it cannot be used by node %s of graph %q",
			v, v.graph.name, n.Describe(), n.graph.name)
	}
}

// HasAttribute returns whether the node has an attribute with the given name.
func (n *Node) HasAttribute(name string) bool {
	n.checkAlive()
	_, found := n.attrs[name]
	return found
}

// Attribute returns the attribute with the given name, if present.
func (n *Node) Attribute(name string) (Attribute, bool) {
	n.checkAlive()
	attr, found := n.attrs[name]
	return attr, found
}

// SetAttribute sets (or overwrites) the attribute with the given name.
func (n *Node) SetAttribute(name string, attr Attribute) *Node {
	n.checkAlive()
	if attr == nil {
		exceptions.Panicf("nil attribute %q set on node %s", name, n.Describe())
	}
	if n.attrs == nil {
		n.attrs = make(map[string]Attribute)
	}
	n.attrs[name] = attr
	return n
}

// RemoveAttribute removes the attribute with the given name. It returns whether it was present.
func (n *Node) RemoveAttribute(name string) bool {
	n.checkAlive()
	_, found := n.attrs[name]
	delete(n.attrs, name)
	return found
}

// AttributeNames returns the names of the attributes of the node, sorted.
func (n *Node) AttributeNames() []string {
	n.checkAlive()
	return slices.Sorted(maps.Keys(n.attrs))
}

func typedAttribute[A Attribute](n *Node, name string) (value A, found bool) {
	attr, found := n.Attribute(name)
	if !found {
		return
	}
	value, found = attr.(A)
	return
}

// I returns the integer attribute with the given name. found is false if absent or not an integer.
func (n *Node) I(name string) (value int64, found bool) {
	attr, found := typedAttribute[IntAttr](n, name)
	return int64(attr), found
}

// SetI sets an integer attribute.
func (n *Node) SetI(name string, value int64) *Node { return n.SetAttribute(name, IntAttr(value)) }

// Is returns the list of integers attribute with the given name.
func (n *Node) Is(name string) (values []int64, found bool) {
	attr, found := typedAttribute[IntsAttr](n, name)
	return attr, found
}

// SetIs sets a list of integers attribute.
func (n *Node) SetIs(name string, values []int64) *Node {
	return n.SetAttribute(name, IntsAttr(slices.Clone(values)))
}

// F returns the float attribute with the given name.
func (n *Node) F(name string) (value float32, found bool) {
	attr, found := typedAttribute[FloatAttr](n, name)
	return float32(attr), found
}

// SetF sets a float attribute.
func (n *Node) SetF(name string, value float32) *Node { return n.SetAttribute(name, FloatAttr(value)) }

// Fs returns the list of floats attribute with the given name.
func (n *Node) Fs(name string) (values []float32, found bool) {
	attr, found := typedAttribute[FloatsAttr](n, name)
	return attr, found
}

// SetFs sets a list of floats attribute.
func (n *Node) SetFs(name string, values []float32) *Node {
	return n.SetAttribute(name, FloatsAttr(slices.Clone(values)))
}

// S returns the string attribute with the given name.
func (n *Node) S(name string) (value string, found bool) {
	attr, found := typedAttribute[StringAttr](n, name)
	return string(attr), found
}

// SetS sets a string attribute.
func (n *Node) SetS(name string, value string) *Node { return n.SetAttribute(name, StringAttr(value)) }

// Ss returns the list of strings attribute with the given name.
func (n *Node) Ss(name string) (values []string, found bool) {
	attr, found := typedAttribute[StringsAttr](n, name)
	return attr, found
}

// SetSs sets a list of strings attribute.
func (n *Node) SetSs(name string, values []string) *Node {
	return n.SetAttribute(name, StringsAttr(slices.Clone(values)))
}

// T returns the tensor attribute with the given name.
func (n *Node) T(name string) (value *Tensor, found bool) {
	attr, found := typedAttribute[TensorAttr](n, name)
	return attr.Value, found && attr.Value != nil
}

// SetT sets a tensor attribute.
func (n *Node) SetT(name string, value *Tensor) *Node {
	return n.SetAttribute(name, TensorAttr{Value: value})
}

// Describe returns a short description of the node (id, kind and name), used in error messages.
func (n *Node) Describe() string {
	if n.name != "" {
		return fmt.Sprintf("#%d %s(%q)", n.id, n.kind, n.name)
	}
	return fmt.Sprintf("#%d %s", n.id, n.kind)
}

// String returns the node as printed in graph dumps, e.g.:
//
//	%y: (FLOAT)[2 3] = Softmax[axis=1](%x)
func (n *Node) String() string {
	if n.destroyed {
		return fmt.Sprintf("<destroyed node #%d %s>", n.id, n.kind)
	}
	var sb strings.Builder
	for ii, out := range n.outputs {
		if ii > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(out.String())
		if out.shape.Ok() {
			sb.WriteString(": ")
			sb.WriteString(out.shape.String())
		}
	}
	if len(n.outputs) > 0 {
		sb.WriteString(" = ")
	}
	if n.domain != "" {
		sb.WriteString(n.domain)
		sb.WriteString("::")
	}
	sb.WriteString(string(n.kind))
	if len(n.attrs) > 0 {
		sb.WriteString("[")
		for ii, name := range n.AttributeNames() {
			if ii > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%s", name, n.attrs[name])
		}
		sb.WriteString("]")
	}
	sb.WriteString("(")
	for ii, in := range n.inputs {
		if ii > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(in.String())
	}
	sb.WriteString(")")
	return sb.String()
}
