// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ir defines the typed graph intermediate representation of models: a Graph owning
// Nodes (operator instances) connected by Values (typed, named edges), plus the graph
// initializers (named constant tensors).
//
// The Graph keeps explicit use-lists: every Value knows which node input slots consume it.
// The mutation primitives (Node.AddInput, Node.ReplaceInput, Node.RemoveInput, Node.Destroy,
// Graph.EraseInitializerAndInput) keep them consistent, and Graph.Validate checks it.
//
// Misuse (e.g. using a destroyed node, destroying a node whose outputs are still used) is a
// programming error and panics with github.com/gomlx/exceptions.
package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/core/shapes"
)

// KindReturn is the kind of the graph's sentinel node whose inputs are the graph outputs.
// Registering a value as a graph output therefore counts as one of its uses.
const KindReturn Symbol = "Return"

// Graph is an arena that owns every Node, Value and initializer of a model graph.
type Graph struct {
	name string

	// nodes holds the nodes appended to the graph, in order. Sentinel nodes (param, undefined
	// and ret) are not included.
	nodes []*Node

	// values indexes the values by unique name. The undefined value is not included.
	values map[string]*Value

	param, undefined, ret *Node
	initializers          []*Tensor

	nextNodeID  NodeID
	nextValueID ValueID
	nextUnique  int
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	g := &Graph{name: name, values: make(map[string]*Value)}
	g.param = g.newNode(KindParam)
	g.undefined = g.newNode(KindUndefined)
	g.ret = g.newNode(KindReturn)
	g.undefined.outputs = []*Value{g.newValue(g.undefined, 0)}
	return g
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// SetName sets the name of the graph.
func (g *Graph) SetName(name string) { g.name = name }

func (g *Graph) newNode(kind Symbol) *Node {
	n := &Node{graph: g, id: g.nextNodeID, kind: kind}
	g.nextNodeID++
	return n
}

func (g *Graph) newValue(producer *Node, offset int) *Value {
	v := &Value{graph: g, id: g.nextValueID, node: producer, offset: offset, shape: shapes.Invalid()}
	g.nextValueID++
	return v
}

// freshName returns a value name not yet used in the graph.
func (g *Graph) freshName() string {
	for {
		name := strconv.Itoa(g.nextUnique)
		g.nextUnique++
		if _, found := g.values[name]; !found {
			return name
		}
	}
}

func (g *Graph) registerValue(v *Value, name string) {
	if name == "" {
		name = g.freshName()
	}
	if _, found := g.values[name]; found {
		exceptions.Panicf("value name %q already used in graph %q", name, g.name)
	}
	v.name = name
	g.values[name] = v
}

// Undefined returns the canonical "undefined" value, used to fill optional inputs that are not given.
func (g *Graph) Undefined() *Value { return g.undefined.outputs[0] }

// AddInput declares a new graph input with the given name and shape. An empty name is replaced
// by a fresh unique name. It panics if the name is already used.
func (g *Graph) AddInput(name string, shape shapes.Shape) *Value {
	v := g.newValue(g.param, len(g.param.outputs))
	g.registerValue(v, name)
	v.shape = shape.Clone()
	g.param.outputs = append(g.param.outputs, v)
	return v
}

// Inputs returns the graph inputs, including the ones paired with initializers.
func (g *Graph) Inputs() []*Value { return slices.Clone(g.param.outputs) }

// eraseInput removes the graph input v. It must have no uses.
func (g *Graph) eraseInput(v *Value) {
	if !v.IsGraphInput() || v.graph != g {
		exceptions.Panicf("value %s is not an input of graph %q", v, g.name)
	}
	if v.HasUses() {
		exceptions.Panicf("cannot erase graph input %s: it still has %d uses", v, v.NumUses())
	}
	offset := v.offset
	g.param.outputs = slices.Delete(g.param.outputs, offset, offset+1)
	for ii := offset; ii < len(g.param.outputs); ii++ {
		g.param.outputs[ii].offset = ii
	}
	delete(g.values, v.name)
}

// RegisterOutput appends v to the graph outputs. It returns the output index.
func (g *Graph) RegisterOutput(v *Value) int {
	if v.IsUndefined() {
		exceptions.Panicf("the undefined value cannot be a graph output")
	}
	return g.ret.AddInput(v)
}

// Outputs returns the graph outputs.
func (g *Graph) Outputs() []*Value { return g.ret.Inputs() }

// AddInitializer adds a named constant tensor to the graph, and returns the graph input value
// paired with it. If a graph input with the same name was already declared, it is reused,
// otherwise a new graph input is declared with the tensor's shape.
//
// It panics if the tensor has no name, if an initializer with the same name exists, or if the
// name is used by a value that is not a graph input.
func (g *Graph) AddInitializer(t *Tensor) *Value {
	if t == nil || t.Name == "" {
		exceptions.Panicf("initializers must have a name")
	}
	if _, found := g.InitializerByName(t.Name); found {
		exceptions.Panicf("initializer %q already exists in graph %q", t.Name, g.name)
	}
	v, found := g.values[t.Name]
	if found && !v.IsGraphInput() {
		exceptions.Panicf("initializer name %q already used by a value produced by node %s", t.Name, v.node.Describe())
	}
	if !found {
		v = g.AddInput(t.Name, t.Shape())
	} else if !v.shape.Ok() {
		v.shape = t.Shape()
	}
	g.initializers = append(g.initializers, t)
	return v
}

// Initializers returns the graph initializers, in the order they were added.
func (g *Graph) Initializers() []*Tensor { return slices.Clone(g.initializers) }

// InitializerByName returns the initializer with the given name.
func (g *Graph) InitializerByName(name string) (*Tensor, bool) {
	idx := slices.IndexFunc(g.initializers, func(t *Tensor) bool { return t.Name == name })
	if idx < 0 {
		return nil, false
	}
	return g.initializers[idx], true
}

// EraseInitializer removes the initializer with the given name, leaving its graph input in place.
// It returns whether the initializer existed.
func (g *Graph) EraseInitializer(name string) bool {
	idx := slices.IndexFunc(g.initializers, func(t *Tensor) bool { return t.Name == name })
	if idx < 0 {
		return false
	}
	g.initializers = slices.Delete(g.initializers, idx, idx+1)
	return true
}

// EraseInitializerAndInput removes both the graph input v and the initializer of the same name.
// v must be an unused graph input paired with an initializer. Either both are removed, or it panics
// before changing anything.
func (g *Graph) EraseInitializerAndInput(v *Value) {
	if !v.IsGraphInput() || v.graph != g {
		exceptions.Panicf("value %s is not an input of graph %q", v, g.name)
	}
	if v.HasUses() {
		exceptions.Panicf("cannot erase graph input %s: it still has %d uses", v, v.NumUses())
	}
	if _, found := g.InitializerByName(v.name); !found {
		exceptions.Panicf("graph input %s has no initializer", v)
	}
	g.EraseInitializer(v.name)
	g.eraseInput(v)
}

// NewNode creates a node of the given kind with numOutputs outputs (with fresh unique names).
// The node is owned by the graph, but it is only part of the graph's ordered list of nodes
// after AppendNode or InsertNodeBefore.
func (g *Graph) NewNode(kind Symbol, numOutputs int) *Node {
	return g.NewNodeWithOutputs(kind, make([]string, numOutputs)...)
}

// NewNodeWithOutputs is like NewNode, but the outputs are given names. Empty names are replaced by
// fresh unique names. It panics if a name is already used.
func (g *Graph) NewNodeWithOutputs(kind Symbol, outputNames ...string) *Node {
	if kind == "" || kind == KindParam || kind == KindUndefined || kind == KindReturn {
		exceptions.Panicf("invalid kind %q for a new node", kind)
	}
	for ii, name := range outputNames {
		if name == "" {
			continue
		}
		if _, found := g.values[name]; found || slices.Index(outputNames, name) != ii {
			exceptions.Panicf("value name %q already used in graph %q", name, g.name)
		}
	}
	n := g.newNode(kind)
	n.outputs = make([]*Value, len(outputNames))
	for ii, name := range outputNames {
		v := g.newValue(n, ii)
		g.registerValue(v, name)
		n.outputs[ii] = v
	}
	return n
}

func (g *Graph) checkInsertable(n *Node) {
	n.checkAlive()
	if n.graph != g {
		exceptions.Panicf("node %s belongs to graph %q, it cannot be inserted in graph %q", n.Describe(), n.graph.name, g.name)
	}
	if n.inGraph {
		exceptions.Panicf("node %s is already in graph %q", n.Describe(), g.name)
	}
}

// AppendNode appends a node created with NewNode at the end of the graph. It returns the node.
func (g *Graph) AppendNode(n *Node) *Node {
	g.checkInsertable(n)
	n.inGraph = true
	g.nodes = append(g.nodes, n)
	return n
}

// InsertNodeBefore inserts a node created with NewNode right before the node `before`.
func (g *Graph) InsertNodeBefore(n, before *Node) *Node {
	g.checkInsertable(n)
	idx := slices.Index(g.nodes, before)
	if idx < 0 {
		exceptions.Panicf("node %s is not in graph %q", before.Describe(), g.name)
	}
	n.inGraph = true
	g.nodes = slices.Insert(g.nodes, idx, n)
	return n
}

// AddNode is a shortcut that creates a node of the given kind consuming inputs, appends it to the
// graph and returns it.
func (g *Graph) AddNode(kind Symbol, numOutputs int, inputs ...*Value) *Node {
	n := g.NewNode(kind, numOutputs)
	for _, input := range inputs {
		n.AddInput(input)
	}
	return g.AppendNode(n)
}

// Nodes returns the alive nodes of the graph, in order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// NumNodes returns the number of alive nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// ValueByName returns the value with the given unique name.
func (g *Graph) ValueByName(name string) (*Value, bool) {
	v, found := g.values[name]
	return v, found
}

// String returns a human-readable dump of the graph: its inputs, initializers, nodes in order,
// and outputs.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %s (\n", g.name)
	for _, v := range g.param.outputs {
		sb.WriteString("  ")
		sb.WriteString(v.String())
		if v.shape.Ok() {
			fmt.Fprintf(&sb, ": %s", v.shape)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")
	if len(g.initializers) > 0 {
		sb.WriteString(" initializers (\n")
		for _, t := range g.initializers {
			fmt.Fprintf(&sb, "  %%%s: %s\n", t.Name, t)
		}
		sb.WriteString(")")
	}
	sb.WriteString(" {\n")
	for _, n := range g.nodes {
		fmt.Fprintf(&sb, "  %s\n", n)
	}
	outputs := make([]string, len(g.ret.inputs))
	for ii, v := range g.ret.inputs {
		outputs[ii] = v.String()
	}
	fmt.Fprintf(&sb, "  return %s\n}\n", strings.Join(outputs, ", "))
	return sb.String()
}
