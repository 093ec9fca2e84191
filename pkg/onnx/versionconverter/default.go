// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package versionconverter

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/irconvert/pkg/onnx/defs"
	defsmath "github.com/gomlx/irconvert/pkg/onnx/defs/math"
	"github.com/gomlx/irconvert/pkg/onnx/ir"
)

// DefaultAdapters returns the adapters of the default converter:
//
//   - DFT 20 -> 19: the "axis" input (slot 2, default -2) becomes an attribute.
//   - Softmax, LogSoftmax and Hardmax 10 -> 11: version 11 only added support for negative axes,
//     so older nodes are valid as they are.
func DefaultAdapters() []Adapter {
	adapters := []Adapter{
		NewAxisInputToAttribute("DFT", ir.DefaultOpSet(20), ir.DefaultOpSet(19), 2, -2),
	}
	for _, op := range []string{"Softmax", "LogSoftmax", "Hardmax"} {
		adapters = append(adapters, NewCompatibleAdapter(op, ir.DefaultOpSet(10), ir.DefaultOpSet(11)))
	}
	return adapters
}

// DefaultSchemas returns a registry with the schemas known to the default converter.
func DefaultSchemas() (*defs.Registry, error) {
	registry := defs.NewRegistry()
	if err := defsmath.RegisterSchemas(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// DefaultConverter returns a non-strict Converter with the DefaultAdapters and DefaultSchemas.
func DefaultConverter() *Converter {
	schemas, err := DefaultSchemas()
	if err != nil {
		exceptions.Panicf("failed to register default schemas: %+v", err)
	}
	c := New().WithSchemas(schemas)
	for _, adapter := range DefaultAdapters() {
		if err := c.Register(adapter); err != nil {
			exceptions.Panicf("failed to register default adapter: %+v", err)
		}
	}
	return c
}
