// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// OpSetID identifies a revision of the operator semantics of a domain: a (domain, version) pair.
//
// OpSetIDs of the same domain are totally ordered by version.
type OpSetID struct {
	Domain  string
	Version int64
}

// NewOpSetID returns the OpSetID for the given domain and version. The default domain aliases
// ("" and "ai.onnx") are normalized to "".
func NewOpSetID(domain string, version int64) OpSetID {
	return OpSetID{Domain: NormalizeDomain(domain), Version: version}
}

// DefaultOpSet returns the OpSetID of the default domain with the given version.
func DefaultOpSet(version int64) OpSetID {
	return OpSetID{Version: version}
}

// String returns "<domain>:<version>", with the default domain printed as "ai.onnx".
func (id OpSetID) String() string {
	domain := id.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	return fmt.Sprintf("%s:%d", domain, id.Version)
}

// SameDomain returns whether both OpSetIDs refer to the same domain.
func (id OpSetID) SameDomain(other OpSetID) bool {
	return NormalizeDomain(id.Domain) == NormalizeDomain(other.Domain)
}

// Compare returns -1, 0 or +1 if id's version is lower, equal or greater than other's.
// It panics if the domains differ, since versions of different domains are not ordered.
func (id OpSetID) Compare(other OpSetID) int {
	if !id.SameDomain(other) {
		exceptions.Panicf("cannot compare OpSetIDs of different domains: %s and %s", id, other)
	}
	return cmp.Compare(id.Version, other.Version)
}

// Next returns the OpSetID of the same domain one version up (delta=1) or down (delta=-1).
func (id OpSetID) Next(delta int64) OpSetID {
	return OpSetID{Domain: id.Domain, Version: id.Version + delta}
}

// ParseOpSetID parses "<domain>:<version>" or simply "<version>" for the default domain.
func ParseOpSetID(text string) (OpSetID, error) {
	domain, versionStr := "", text
	if idx := strings.LastIndex(text, ":"); idx >= 0 {
		domain, versionStr = text[:idx], text[idx+1:]
	}
	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return OpSetID{}, errors.Wrapf(err, "invalid opset version in %q", text)
	}
	if version <= 0 {
		return OpSetID{}, errors.Errorf("opset version must be positive, got %q", text)
	}
	return NewOpSetID(domain, version), nil
}
