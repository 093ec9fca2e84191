// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package defs

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/gomlx/irconvert/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// InferNode runs the type and shape inference of the node's operator schema, at the given opset
// version of the node's domain.
//
// The input element types are first checked against the schema type constraints. The inference
// function writes to a buffered context, and the inferred output types are only written to the
// node outputs if it succeeds: on failure the node is left untouched.
//
// It returns an error matching ErrNoSchema if the operator has no schema at that version.
func InferNode(registry *Registry, node *ir.Node, opsetVersion int64) error {
	schema, found := registry.Lookup(string(node.Kind()), node.Domain(), opsetVersion)
	if !found {
		return errors.Wrapf(ErrNoSchema, "operator %s (domain %q) at opset version %d", node.Kind(), node.Domain(), opsetVersion)
	}
	if err := checkInputTypes(schema, node); err != nil {
		return err
	}
	inferenceFn := schema.InferenceFunction()
	if inferenceFn == nil {
		return nil
	}
	ctx := newNodeContext(node)
	var err error
	panicErr := exceptions.TryCatch[error](func() { err = inferenceFn(ctx) })
	if panicErr != nil {
		return errors.WithMessagef(panicErr, "inference function of %s panicked", schema.Name())
	}
	if err != nil {
		return err
	}
	ctx.commit()
	return nil
}

// checkInputTypes validates the number of inputs, and the input element types against the schema
// type constraints: each input's type must be allowed, and all inputs bound to the same type
// parameter must have the same type.
func checkInputTypes(schema *OpSchema, node *ir.Node) error {
	numInputs := node.NumInputs()
	if numInputs < schema.MinInputs() {
		return FailTypeInference("%s expects at least %d inputs, got %d", schema.Name(), schema.MinInputs(), numInputs)
	}
	if maxInputs := schema.MaxInputs(); maxInputs >= 0 && numInputs > maxInputs {
		return FailTypeInference("%s expects at most %d inputs, got %d", schema.Name(), maxInputs, numInputs)
	}
	formalInputs := schema.Inputs()
	bound := make(map[string]dtypes.DType)
	for ii, input := range node.Inputs() {
		if input.IsUndefined() || !input.Shape().Ok() {
			continue
		}
		param := formalInputs[min(ii, len(formalInputs)-1)]
		dtype := input.DType()
		if allowed := schema.AllowedTypes(param); !allowed.Has(dtype) {
			return FailTypeInference("%s input %d (%q) has type %s, which is not allowed for %s (allowed: %v)",
				schema.Name(), ii, param.Name, dtype, param.TypeStr, sets.Sorted(allowed))
		}
		if _, isParam := schema.TypeConstraintByParam(param.TypeStr); !isParam {
			continue
		}
		if previous, found := bound[param.TypeStr]; found && previous != dtype {
			return FailTypeInference("%s input %d (%q) has type %s, but type parameter %s was bound to %s",
				schema.Name(), ii, param.Name, dtype, param.TypeStr, previous)
		}
		bound[param.TypeStr] = dtype
	}
	return nil
}

// InferGraph runs InferNode on every node of the graph, in order, using the opset version imported
// for each node's domain in opsets.
//
// Nodes whose operator has no schema are skipped. In strict mode the first failure is returned;
// otherwise failures are logged and inference continues, and the number of failed nodes is returned.
func InferGraph(registry *Registry, graph *ir.Graph, opsets []ir.OpSetID, strict bool) (numFailed int, err error) {
	for _, node := range graph.Nodes() {
		version, found := opsetVersionFor(opsets, node.Domain())
		if !found {
			err = errors.Errorf("node %s: domain %q is not imported", node.Describe(), node.Domain())
			if strict {
				return numFailed + 1, err
			}
			klog.Warningf("Skipping inference: %v", err)
			numFailed++
			continue
		}
		nodeErr := InferNode(registry, node, version)
		if nodeErr == nil {
			continue
		}
		if errors.Is(nodeErr, ErrNoSchema) {
			klog.V(1).Infof("Skipping inference of node %s: %v", node.Describe(), nodeErr)
			continue
		}
		nodeErr = errors.WithMessagef(nodeErr, "node %s", node.Describe())
		if strict {
			return numFailed + 1, nodeErr
		}
		klog.Warningf("Inference failed: %v", nodeErr)
		numFailed++
	}
	return numFailed, nil
}

func opsetVersionFor(opsets []ir.OpSetID, domain string) (int64, bool) {
	domain = ir.NormalizeDomain(domain)
	for _, id := range opsets {
		if ir.NormalizeDomain(id.Domain) == domain {
			return id.Version, true
		}
	}
	return 0, false
}
