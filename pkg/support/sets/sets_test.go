// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	// Sets are created empty.
	s := Make[int](10)
	assert.Len(t, s, 0)

	s.Insert(3, 7)
	assert.Len(t, s, 2)
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(7))
	assert.False(t, s.Has(5))

	s2 := MakeWith(5, 7)
	assert.True(t, s2.Has(5))
	assert.False(t, s2.Has(3))

	s3 := s.Sub(s2)
	assert.Len(t, s3, 1)
	assert.True(t, s3.Has(3))

	s = s.Sub(MakeWith(7, 11))
	assert.Len(t, s, 1)
	assert.True(t, s.Equal(s3))
	assert.False(t, s.Equal(s2))
	assert.False(t, s.Equal(MakeWith(-3)))
}

func TestCloneAndSorted(t *testing.T) {
	s := MakeWith("softmax", "hardmax", "dft")
	c := s.Clone()
	c.Insert("constant")
	assert.Len(t, s, 3)
	assert.Len(t, c, 4)
	assert.Equal(t, []string{"constant", "dft", "hardmax", "softmax"}, Sorted(c))
	assert.Empty(t, Sorted(Make[int]()))
}
