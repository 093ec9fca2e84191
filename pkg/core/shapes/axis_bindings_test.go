// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/stretchr/testify/require"
)

func TestAxisBindingsKey(t *testing.T) {
	tests := []struct {
		name     string
		bindings AxisBindings
		want     string
	}{
		{
			name:     "empty",
			bindings: AxisBindings{},
			want:     "",
		},
		{
			name:     "nil",
			bindings: nil,
			want:     "",
		},
		{
			name:     "single",
			bindings: AxisBindings{"batch": 32},
			want:     "batch=32",
		},
		{
			name:     "insertion_order_ignored",
			bindings: AxisBindings{"seq": 128, "batch": 32, "hidden": 512},
			want:     "batch=32,hidden=512,seq=128",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.bindings.Key())
		})
	}
}

func TestParseAxisBindings(t *testing.T) {
	bindings, err := ParseAxisBindings(" seq=128, batch=32 ")
	require.NoError(t, err)
	require.Equal(t, AxisBindings{"batch": 32, "seq": 128}, bindings)

	bindings, err = ParseAxisBindings("")
	require.NoError(t, err)
	require.Nil(t, bindings)

	for _, text := range []string{"batch", "=3", "batch=-1", "batch=x", "batch=1,batch=2"} {
		_, err = ParseAxisBindings(text)
		require.Error(t, err, text)
	}
}

func TestAxisBindingsCloneAndMerge(t *testing.T) {
	original := AxisBindings{"batch": 32, "seq": 128}
	clone := original.Clone()
	require.Equal(t, original, clone)
	clone["batch"] = 64
	require.Equal(t, 32, original["batch"])
	var nilBindings AxisBindings
	require.Nil(t, nilBindings.Clone())

	ab := AxisBindings{"batch": 32}
	require.NoError(t, ab.Merge(AxisBindings{"seq": 128, "batch": 32}))
	require.Equal(t, AxisBindings{"batch": 32, "seq": 128}, ab)
	err := ab.Merge(AxisBindings{"batch": 64})
	require.ErrorContains(t, err, "conflicting")
}

func TestShapeResolve(t *testing.T) {
	pattern := MakeSymbolic(dtypes.Float32, []int{-1, -1, 512}, []string{"batch", "seq", ""})

	t.Run("all_bound", func(t *testing.T) {
		resolved := pattern.Resolve(AxisBindings{"batch": 32, "seq": 128})
		require.Equal(t, Make(dtypes.Float32, 32, 128, 512), resolved)
		require.True(t, resolved.IsStatic())
		// Original is unchanged.
		require.Equal(t, "(FLOAT)[batch seq 512]", pattern.String())
	})

	t.Run("partial", func(t *testing.T) {
		resolved := pattern.Resolve(AxisBindings{"batch": 32})
		require.Equal(t, "(FLOAT)[32 seq 512]", resolved.String())
		require.False(t, resolved.IsStatic())
	})

	t.Run("unchanged", func(t *testing.T) {
		static := Make(dtypes.Float32, 32, 512)
		require.Equal(t, static, static.Resolve(AxisBindings{"batch": 64}))
		require.Equal(t, pattern, pattern.Resolve(nil))
		require.Equal(t, Unranked(dtypes.Int64), Unranked(dtypes.Int64).Resolve(AxisBindings{"batch": 1}))
	})
}
