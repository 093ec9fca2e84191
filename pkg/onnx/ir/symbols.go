// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

// Symbol is the operator kind of a Node (e.g. "Softmax"), or the name of an attribute.
type Symbol string

// Well known node kinds.
const (
	// KindConstant materializes the tensor in its "value" attribute.
	KindConstant Symbol = "Constant"

	// KindUndefined is the kind of the graph's sentinel node that produces the canonical
	// "undefined" value, used to fill optional inputs that are not given.
	KindUndefined Symbol = "Undefined"

	// KindParam is the kind of the graph's sentinel node whose outputs are the graph inputs.
	KindParam Symbol = "Param"
)

// Well known attribute names.
const (
	AttrAxis  = "axis"
	AttrValue = "value"
)

// DefaultDomain is the canonical name of the default operator domain. The empty string is
// an alias to it.
const DefaultDomain = "ai.onnx"

// NormalizeDomain maps the aliases of the default domain ("" and "ai.onnx") to "".
func NormalizeDomain(domain string) string {
	if domain == DefaultDomain {
		return ""
	}
	return domain
}
