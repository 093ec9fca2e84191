// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/gomlx/irconvert/pkg/core/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	require.False(t, invalidShape.Ok())
	require.False(t, invalidShape.HasRank())
	require.Equal(t, -1, invalidShape.Rank())

	shape0 := Make(dtypes.Float64)
	require.True(t, shape0.Ok())
	require.True(t, shape0.IsScalar())
	require.True(t, shape0.HasRank())
	require.Equal(t, 0, shape0.Rank())
	require.Equal(t, 1, shape0.Size())
	require.Equal(t, "(DOUBLE)", shape0.String())

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	require.True(t, shape1.Ok())
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, 2, shape1.Dim(-1))
	require.Equal(t, 4, shape1.Dim(0))
	require.Panics(t, func() { _ = shape1.Dim(3) })
	require.Panics(t, func() { _ = shape1.Dim(-4) })
	require.Equal(t, "(FLOAT)[4 3 2]", shape1.String())

	require.Panics(t, func() { _ = Make(dtypes.Float32, -1) })
}

func TestUnrankedAndSymbolic(t *testing.T) {
	unranked := Unranked(dtypes.Float16)
	require.True(t, unranked.Ok())
	require.False(t, unranked.HasRank())
	require.False(t, unranked.IsScalar())
	require.False(t, unranked.IsStatic())
	require.Equal(t, -1, unranked.Size())
	require.Equal(t, "(FLOAT16)[?]", unranked.String())

	symbolic := MakeSymbolic(dtypes.Float32, []int{-1, 3, -7}, []string{"batch", "", ""})
	require.True(t, symbolic.HasRank())
	require.False(t, symbolic.IsStatic())
	require.Equal(t, 3, symbolic.Rank())
	require.Equal(t, []int{UnknownDim, 3, UnknownDim}, symbolic.Dimensions)
	require.Equal(t, "batch", symbolic.DimName(0))
	require.Equal(t, "", symbolic.DimName(-1))
	require.Equal(t, "(FLOAT)[batch 3 ?]", symbolic.String())

	// Names with no symbolic axes are dropped.
	noNames := MakeSymbolic(dtypes.Float32, []int{2}, []string{""})
	require.Nil(t, noNames.DimNames)
	require.True(t, noNames.Equal(Make(dtypes.Float32, 2)))
	require.Panics(t, func() { _ = MakeSymbolic(dtypes.Float32, []int{2}, []string{"a", "b"}) })
}

func TestEqualAndClone(t *testing.T) {
	s := MakeSymbolic(dtypes.Int64, []int{-1, 4}, []string{"n", ""})
	s2 := s.Clone()
	require.True(t, s.Equal(s2))
	s2.Dimensions[1] = 5
	require.False(t, s.Equal(s2))
	require.Equal(t, 4, s.Dim(1))

	require.False(t, Make(dtypes.Float32).Equal(Unranked(dtypes.Float32)))
	require.False(t, Make(dtypes.Float32, 2).Equal(Make(dtypes.Float64, 2)))
	require.True(t, Make(dtypes.Float32, 2).EqualDimensions(Make(dtypes.Float64, 2)))
	require.False(t, MakeSymbolic(dtypes.Float32, []int{-1}, []string{"a"}).Equal(
		MakeSymbolic(dtypes.Float32, []int{-1}, []string{"b"})))

	withDType := s.WithDType(dtypes.Float32)
	require.Equal(t, dtypes.Float32, withDType.DType)
	require.True(t, withDType.EqualDimensions(s))
	require.Equal(t, dtypes.Int64, s.DType)
}

func TestAdjustAxisToRank(t *testing.T) {
	for _, tc := range []struct {
		axis, rank, want int
	}{
		{0, 3, 0}, {2, 3, 2}, {-1, 3, 2}, {-3, 3, 0},
	} {
		got, err := AdjustAxisToRank(tc.axis, tc.rank)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
	_, err := AdjustAxisToRank(3, 3)
	require.Error(t, err)
	_, err = AdjustAxisToRank(-4, 3)
	require.Error(t, err)
	_, err = AdjustAxisToRank(0, 0)
	require.Error(t, err)
	_, err = AdjustAxisToRank(0, -1)
	require.Error(t, err)
}
