// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AxisBindings maps symbolic dimension names (e.g. "batch") to concrete dimension values.
type AxisBindings map[string]int

// ParseAxisBindings parses bindings in the format "name1=val1,name2=val2". An empty string yields
// nil bindings.
func ParseAxisBindings(text string) (AxisBindings, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	bindings := make(AxisBindings)
	for _, part := range strings.Split(text, ",") {
		name, valueStr, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || name == "" {
			return nil, errors.Errorf("invalid axis binding %q, expected format \"name=value\"", part)
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil || value < 0 {
			return nil, errors.Errorf("invalid value for axis %q in binding %q, it must be a non-negative integer", name, part)
		}
		if err := bindings.Merge(AxisBindings{name: value}); err != nil {
			return nil, err
		}
	}
	return bindings, nil
}

// Key returns a canonical string representation, with names sorted alphabetically:
// "name1=val1,name2=val2". Empty or nil bindings return "".
func (ab AxisBindings) Key() string {
	names := slices.Sorted(maps.Keys(ab))
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, ab[name])
	}
	return strings.Join(parts, ",")
}

// Clone returns a copy of the bindings.
func (ab AxisBindings) Clone() AxisBindings {
	return maps.Clone(ab)
}

// Merge combines bindings from another AxisBindings into this one.
// Returns an error if there are conflicting values for the same axis name.
func (ab AxisBindings) Merge(other AxisBindings) error {
	for name, val := range other {
		if existing, ok := ab[name]; ok && existing != val {
			return errors.Errorf("conflicting values for axis %q: %d vs %d", name, existing, val)
		}
		ab[name] = val
	}
	return nil
}

// Resolve returns a copy of the shape with the symbolic dimensions found in bindings replaced
// by their values. Symbolic dimensions without a binding are kept.
func (s Shape) Resolve(bindings AxisBindings) Shape {
	result := s.Clone()
	if result.DimNames == nil || len(bindings) == 0 {
		return result
	}
	for axis, name := range s.DimNames {
		if val, ok := bindings[name]; ok && name != "" {
			result.Dimensions[axis] = val
			result.DimNames[axis] = ""
		}
	}
	if !slices.ContainsFunc(result.DimNames, func(name string) bool { return name != "" }) {
		result.DimNames = nil
	}
	return result
}
