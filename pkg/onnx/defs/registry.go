// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package defs

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gomlx/irconvert/pkg/onnx/ir"
	"github.com/pkg/errors"
)

type schemaKey struct {
	name, domain string
}

// Registry holds the versions of the operator schemas, keyed by (name, domain).
type Registry struct {
	// schemas are sorted by since version.
	schemas map[schemaKey][]*OpSchema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[schemaKey][]*OpSchema)}
}

// Register finalizes and adds the schema. It fails if the schema is inconsistent, or if a schema
// with the same name, domain and since version was already registered.
func (r *Registry) Register(schema *OpSchema) error {
	if err := schema.Finalize(); err != nil {
		return err
	}
	key := schemaKey{schema.name, schema.domain}
	versions := r.schemas[key]
	idx, found := slices.BinarySearchFunc(versions, schema.sinceVersion, func(s *OpSchema, since int64) int {
		return cmp.Compare(s.sinceVersion, since)
	})
	if found {
		return errors.Wrapf(ErrDuplicateSchema, "%s version %d in domain %q", schema.name, schema.sinceVersion, schema.domain)
	}
	r.schemas[key] = slices.Insert(versions, idx, schema)
	return nil
}

// Lookup returns the schema of the operator that is in effect at the given opset version: the one
// with the newest since version that is <= version.
func (r *Registry) Lookup(name, domain string, version int64) (*OpSchema, bool) {
	versions := r.schemas[schemaKey{name, ir.NormalizeDomain(domain)}]
	for ii := len(versions) - 1; ii >= 0; ii-- {
		if versions[ii].sinceVersion <= version {
			return versions[ii], true
		}
	}
	return nil, false
}

// Has returns whether any version of the operator is registered.
func (r *Registry) Has(name, domain string) bool {
	return len(r.schemas[schemaKey{name, ir.NormalizeDomain(domain)}]) > 0
}

// SinceVersions returns the since versions registered for the operator, in increasing order.
func (r *Registry) SinceVersions(name, domain string) []int64 {
	versions := r.schemas[schemaKey{name, ir.NormalizeDomain(domain)}]
	since := make([]int64, len(versions))
	for ii, s := range versions {
		since[ii] = s.sinceVersion
	}
	return since
}

// Schemas returns all registered schemas, sorted by domain, name and since version.
func (r *Registry) Schemas() []*OpSchema {
	var all []*OpSchema
	for _, versions := range r.schemas {
		all = append(all, versions...)
	}
	slices.SortFunc(all, func(a, b *OpSchema) int {
		return cmp.Or(
			strings.Compare(a.domain, b.domain),
			strings.Compare(a.name, b.name),
			cmp.Compare(a.sinceVersion, b.sinceVersion))
	})
	return all
}
