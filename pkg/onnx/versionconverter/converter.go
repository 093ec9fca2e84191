// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package versionconverter

import (
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/onnx/defs"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type adapterKey struct {
	op       string
	from, to ir.OpSetID
}

// Converter converts models between versions of the default domain, using the registered adapters.
//
// Create it with New, register adapters with Register and configure it with the With* and Strict
// methods before use. It is not safe for concurrent registration, but ConvertVersion may be called
// concurrently on different models.
type Converter struct {
	adapters map[adapterKey]Adapter
	schemas  *defs.Registry
	strict   bool
}

// New returns a Converter with no adapters and no schemas.
func New() *Converter {
	return &Converter{adapters: make(map[adapterKey]Adapter)}
}

// WithSchemas sets the schema registry used to decide whether an operator without an adapter
// changed between two versions.
func (c *Converter) WithSchemas(registry *defs.Registry) *Converter {
	c.schemas = registry
	return c
}

// Strict makes conversion fail on operators unknown to the schema registry that have no adapter.
// By default they are assumed unchanged and pass through.
func (c *Converter) Strict(strict bool) *Converter {
	c.strict = strict
	return c
}

// Schemas returns the schema registry configured, or nil.
func (c *Converter) Schemas() *defs.Registry { return c.schemas }

// Register adds an adapter. Its initial and target versions must be of the same domain and one
// version apart. It fails with ErrDuplicateAdapter if an adapter for the same operator and
// versions was already registered.
func (c *Converter) Register(adapter Adapter) error {
	from, to := adapter.InitialVersion(), adapter.TargetVersion()
	if !from.SameDomain(to) {
		return errors.Errorf("adapter %s converts between different domains (%s -> %s)", adapter.Name(), from, to)
	}
	if diff := to.Version - from.Version; diff != 1 && diff != -1 {
		return errors.Errorf("adapter %s must convert between adjacent versions, got %s -> %s", adapter.Name(), from, to)
	}
	key := newAdapterKey(adapter.Name(), from, to)
	if _, found := c.adapters[key]; found {
		return errors.Wrapf(ErrDuplicateAdapter, "%s %s -> %s", adapter.Name(), from, to)
	}
	c.adapters[key] = adapter
	return nil
}

// Adapter returns the adapter registered for the operator between the two versions.
func (c *Converter) Adapter(opName string, from, to ir.OpSetID) (Adapter, bool) {
	adapter, found := c.adapters[newAdapterKey(opName, from, to)]
	return adapter, found
}

// Adapters returns all registered adapters, sorted by operator name and initial version.
func (c *Converter) Adapters() []Adapter {
	adapters := make([]Adapter, 0, len(c.adapters))
	for _, adapter := range c.adapters {
		adapters = append(adapters, adapter)
	}
	slices.SortFunc(adapters, func(a, b Adapter) int {
		if cmp := strings.Compare(a.Name(), b.Name()); cmp != 0 {
			return cmp
		}
		if cmp := a.InitialVersion().Compare(b.InitialVersion()); cmp != 0 {
			return cmp
		}
		return a.TargetVersion().Compare(b.TargetVersion())
	})
	return adapters
}

func newAdapterKey(opName string, from, to ir.OpSetID) adapterKey {
	return adapterKey{
		op:   opName,
		from: ir.NewOpSetID(from.Domain, from.Version),
		to:   ir.NewOpSetID(to.Domain, to.Version),
	}
}

// ConvertVersion converts the model's graph in place from its current default domain version to
// targetVersion, one version at a time. On success the model's default domain import is set to
// targetVersion.
//
// Conversion fails (with an error matching ErrNoAdapter) if an operator changed between two
// versions and no adapter is registered for it. Any error, including adapter panics, aborts the
// conversion, and the partially converted model must be discarded.
func (c *Converter) ConvertVersion(model *ir.Model, targetVersion int64) error {
	if model == nil || model.Graph == nil {
		return errors.New("ConvertVersion: model has no graph")
	}
	initial, found := model.OpsetVersion(ir.DefaultDomain)
	if !found {
		return errors.Errorf("ConvertVersion: model doesn't import the default domain %q", ir.DefaultDomain)
	}
	if targetVersion <= 0 {
		return errors.Errorf("ConvertVersion: invalid target version %d", targetVersion)
	}

	runID := uuid.NewString()
	g := model.Graph
	klog.V(1).Infof("[%s] converting graph %q from %s to %s", runID, g.Name(),
		ir.DefaultOpSet(initial), ir.DefaultOpSet(targetVersion))
	current := ir.DefaultOpSet(initial)
	delta := int64(1)
	if targetVersion < initial {
		delta = -1
	}
	var numAdapted int
	for current.Version != targetVersion {
		next := current.Next(delta)
		for _, node := range g.Nodes() {
			if !node.InGraph() || node.Domain() != "" {
				// Destroyed by an earlier adapter in this step, or from another domain.
				continue
			}
			adapted, err := c.convertNode(g, node, current, next)
			if err != nil {
				return errors.WithMessagef(err, "[%s] converting graph %q from %s to %s", runID, g.Name(), current, next)
			}
			if adapted {
				numAdapted++
			}
		}
		current = next
	}
	model.SetOpsetVersion(ir.DefaultDomain, targetVersion)
	if err := g.Validate(); err != nil {
		return errors.WithMessagef(err, "[%s] graph %q is invalid after conversion to %s", runID, g.Name(), current)
	}
	klog.V(1).Infof("[%s] graph %q converted to %s, %d nodes adapted", runID, g.Name(), current, numAdapted)
	return nil
}

// convertNode converts one node from one version to the next. It returns whether an adapter was applied.
func (c *Converter) convertNode(g *ir.Graph, node *ir.Node, from, to ir.OpSetID) (adapted bool, err error) {
	opName := string(node.Kind())
	if adapter, found := c.Adapter(opName, from, to); found {
		description := node.Describe()
		panicErr := exceptions.TryCatch[error](func() { _, err = adapter.Adapt(g, node) })
		if panicErr != nil {
			return false, errors.WithMessagef(panicErr, "adapter %s -> %s panicked on node %s", from, to, description)
		}
		if err != nil {
			return false, err
		}
		klog.V(1).Infof("adapted node %s from %s to %s", description, from, to)
		return true, nil
	}

	if c.schemas == nil {
		if c.strict {
			return false, errors.Wrapf(ErrNoAdapter, "node %s from %s to %s, and no schemas are configured", node.Describe(), from, to)
		}
		return false, nil
	}
	fromSchema, fromFound := c.schemas.Lookup(opName, node.Domain(), from.Version)
	toSchema, toFound := c.schemas.Lookup(opName, node.Domain(), to.Version)
	switch {
	case !fromFound && !toFound:
		if c.strict {
			return false, errors.Wrapf(ErrNoAdapter, "node %s from %s to %s: operator is unknown", node.Describe(), from, to)
		}
		klog.V(2).Infof("node %s: operator unknown at %s and %s, assumed unchanged", node.Describe(), from, to)
		return false, nil
	case fromFound && toFound && fromSchema == toSchema:
		return false, nil
	case !toFound:
		return false, errors.Wrapf(ErrNoAdapter, "node %s from %s to %s: operator doesn't exist at %s",
			node.Describe(), from, to, to)
	default:
		return false, errors.Wrapf(ErrNoAdapter, "node %s from %s to %s: operator changed", node.Describe(), from, to)
	}
}
