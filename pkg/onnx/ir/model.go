// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"slices"
)

// CurrentIRVersion is the IR version set on new models.
const CurrentIRVersion = 10

// Model holds a graph and the metadata describing which operator set versions it uses.
type Model struct {
	IRVersion       int64
	ProducerName    string
	ProducerVersion string

	// OpsetImports lists one OpSetID per domain used by the graph.
	OpsetImports []OpSetID

	Graph *Graph
}

// NewModel returns a model for graph importing the default domain at the given opset version.
func NewModel(graph *Graph, opsetVersion int64) *Model {
	return &Model{
		IRVersion:    CurrentIRVersion,
		OpsetImports: []OpSetID{DefaultOpSet(opsetVersion)},
		Graph:        graph,
	}
}

// OpsetVersion returns the imported version of the given domain.
func (m *Model) OpsetVersion(domain string) (version int64, found bool) {
	domain = NormalizeDomain(domain)
	idx := slices.IndexFunc(m.OpsetImports, func(id OpSetID) bool { return NormalizeDomain(id.Domain) == domain })
	if idx < 0 {
		return 0, false
	}
	return m.OpsetImports[idx].Version, true
}

// SetOpsetVersion sets (or adds) the imported version of the given domain.
func (m *Model) SetOpsetVersion(domain string, version int64) {
	domain = NormalizeDomain(domain)
	for ii, id := range m.OpsetImports {
		if NormalizeDomain(id.Domain) == domain {
			m.OpsetImports[ii] = OpSetID{Domain: domain, Version: version}
			return
		}
	}
	m.OpsetImports = append(m.OpsetImports, OpSetID{Domain: domain, Version: version})
}

// DefaultOpSetID returns the OpSetID of the default domain import, or a zero version if not imported.
func (m *Model) DefaultOpSetID() OpSetID {
	version, _ := m.OpsetVersion("")
	return DefaultOpSet(version)
}
