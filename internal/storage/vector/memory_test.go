// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "chain-lab/pkg/errors"
)

func TestMemoryStore_AdoptsDimension(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &Index{Name: "docs"}))
	require.NoError(t, s.Add(ctx, "docs", []*Vector{{ID: "a", Values: []float64{1, 0, 0}}}))

	err := s.Add(ctx, "docs", []*Vector{{ID: "b", Values: []float64{1, 0}}})
	assert.Error(t, err)

	_, err = s.Search(ctx, "docs", []float64{1, 0}, nil)
	assert.Error(t, err)
}

func TestMemoryStore_Create_DuplicateIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	idx := &Index{Name: "x", Dimension: 2}
	require.NoError(t, s.Create(ctx, idx))
	assert.Error(t, s.Create(ctx, idx))
}

func TestMemoryStore_MissingIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	assert.Error(t, s.Add(ctx, "missing", []*Vector{{ID: "v1", Values: []float64{1}}}))
	_, err := s.Search(ctx, "missing", []float64{1}, nil)
	assert.Error(t, err)
	_, err = s.Count(ctx, "missing")
	assert.Error(t, err)
}

func TestMemoryStore_EuclideanAndStableOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &Index{Name: "e", Distance: "euclidean"}))
	require.NoError(t, s.Add(ctx, "e", []*Vector{
		{ID: "far", Values: []float64{5, 5}},
		{ID: "tie1", Values: []float64{1, 0}},
		{ID: "tie2", Values: []float64{1, 0}},
	}))
	res, err := s.Search(ctx, "e", []float64{1, 0}, &SearchOptions{TopK: 3})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "tie1", res[0].ID)
	assert.Equal(t, "tie2", res[1].ID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	assert.Equal(t, "far", res[2].ID)
}

func TestMemoryStore_DeleteKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &Index{Name: "d"}))
	require.NoError(t, s.Add(ctx, "d", []*Vector{
		{ID: "a", Values: []float64{1, 0}},
		{ID: "b", Values: []float64{1, 0}},
	}))
	require.NoError(t, s.Delete(ctx, "d", "a"))
	assert.Error(t, s.Delete(ctx, "d", "a"))

	n, err := s.Count(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEnsureIndexAndReset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, EnsureIndex(ctx, s, "docs", 0, ""))
	require.NoError(t, EnsureIndex(ctx, s, "docs", 0, ""))
	require.NoError(t, s.Add(ctx, "docs", []*Vector{{ID: "a", Values: []float64{1}}}))

	require.NoError(t, Reset(ctx, s, "docs"))
	n, err := s.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Search(ctx, "missing", []float64{1}, nil)
	assert.True(t, errors.Is(err, perrors.ErrNotFound))

	require.NoError(t, s.Create(ctx, &Index{Name: "docs"}))
	_, err = s.Get(ctx, "docs", "nope")
	assert.True(t, errors.Is(err, perrors.ErrNotFound))
	assert.True(t, errors.Is(s.Create(ctx, &Index{Name: "docs"}), perrors.ErrInvalidArg))
}
