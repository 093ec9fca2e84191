// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"github.com/gomlx/irconvert/pkg/support/sets"
	"github.com/pkg/errors"
)

// Validate checks the consistency of the graph:
//
//   - Def-use: every input slot of every node is recorded exactly once in the use-list of the
//     consumed value, and every use recorded in a value refers back to it.
//   - Ordering: values are produced by nodes that come earlier in the graph (or by graph inputs).
//   - Names: value names are unique and the name index is in sync.
//   - Initializers: each initializer has a unique name paired with a graph input, and a well-formed
//     raw data buffer.
//
// It returns the first inconsistency found.
func (g *Graph) Validate() error {
	defined := sets.Make[*Value]()
	defined.Insert(g.Undefined())
	allValues := []*Value{g.Undefined()}
	for _, v := range g.param.outputs {
		defined.Insert(v)
		allValues = append(allValues, v)
	}

	users := append(g.Nodes(), g.ret)
	for _, n := range users {
		if n.destroyed {
			return errors.Errorf("graph %q holds destroyed node %s", g.name, n.Describe())
		}
		for slot, input := range n.inputs {
			if input.graph != g {
				return errors.Errorf("node %s input #%d (%s) belongs to another graph", n.Describe(), slot, input)
			}
			if !defined.Has(input) {
				return errors.Errorf("node %s input #%d (%s) is not defined before its use", n.Describe(), slot, input)
			}
			var count int
			for _, use := range input.uses {
				if use.User == n && use.Offset == slot {
					count++
				}
			}
			if count != 1 {
				return errors.Errorf("node %s input #%d (%s) is recorded %d times in the value's use-list, expected once",
					n.Describe(), slot, input, count)
			}
		}
		for ii, out := range n.outputs {
			if out.node != n || out.offset != ii {
				return errors.Errorf("node %s output #%d (%s) has a mismatched producer", n.Describe(), ii, out)
			}
			defined.Insert(out)
			allValues = append(allValues, out)
		}
	}

	for _, v := range allValues {
		for _, use := range v.uses {
			user := use.User
			if user.destroyed || (!user.inGraph && user != g.ret) {
				return errors.Errorf("value %s is used by node %s, which is not in the graph", v, user.Describe())
			}
			if use.Offset < 0 || use.Offset >= len(user.inputs) || user.inputs[use.Offset] != v {
				return errors.Errorf("value %s records a use by node %s at input #%d, but the node doesn't consume it there",
					v, user.Describe(), use.Offset)
			}
		}
		if v.IsUndefined() {
			continue
		}
		if v.name == "" {
			return errors.Errorf("value #%d produced by node %s has no name", v.id, v.node.Describe())
		}
		if indexed, found := g.values[v.name]; !found || indexed != v {
			return errors.Errorf("value name %q is not unique or not indexed in graph %q", v.name, g.name)
		}
	}
	if len(g.values) != len(allValues)-1 {
		return errors.Errorf("graph %q indexes %d named values, but only %d are alive", g.name, len(g.values), len(allValues)-1)
	}

	for _, v := range g.ret.inputs {
		if v.IsUndefined() {
			return errors.Errorf("graph %q output is the undefined value", g.name)
		}
	}

	initNames := sets.Make[string]()
	for _, t := range g.initializers {
		if initNames.Has(t.Name) {
			return errors.Errorf("duplicate initializer %q", t.Name)
		}
		initNames.Insert(t.Name)
		v, found := g.values[t.Name]
		if !found || !v.IsGraphInput() {
			return errors.Errorf("initializer %q has no paired graph input", t.Name)
		}
		if err := t.CheckRawData(); err != nil {
			return errors.WithMessagef(err, "invalid initializer %q", t.Name)
		}
	}
	return nil
}
