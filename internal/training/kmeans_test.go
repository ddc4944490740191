package training

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKMeansTooFewVectors(t *testing.T) {
	_, err := RunKMeans([][]float64{{1, 1}}, 2, 3, 10, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestRunKMeansSeparatesTwoBlobs(t *testing.T) {
	vectors := [][]float64{
		{0.0, 0.0}, {0.2, 0.1}, {0.1, 0.2}, {-0.1, 0.0},
		{10.0, 10.0}, {10.1, 9.9}, {9.9, 10.2}, {10.2, 10.1},
	}

	result, err := RunKMeans(vectors, 2, 10, 100, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, result.Centroids, 2)
	require.Len(t, result.Assignments, len(vectors))

	// Members of the same blob must share a cluster and the blobs must
	// differ.
	first := result.Assignments[0]
	for i := 1; i < 4; i++ {
		assert.Equal(t, first, result.Assignments[i])
	}
	second := result.Assignments[4]
	for i := 5; i < 8; i++ {
		assert.Equal(t, second, result.Assignments[i])
	}
	assert.NotEqual(t, first, second)
	assert.Less(t, result.Inertia, 1.0)
}

func TestRunKMeansDeterministicForSeed(t *testing.T) {
	vectors := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {8, 8}, {9, 8}, {8, 9},
	}

	first, err := RunKMeans(vectors, 2, 5, 50, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	second, err := RunKMeans(vectors, 2, 5, 50, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	assert.Equal(t, first.Centroids, second.Centroids)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Inertia, second.Inertia)
}

func TestChooseWeightedIndexZeroWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	idx := chooseWeightedIndex([]float64{0, 0, 0}, rng)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, 3)
}

func TestChooseWeightedIndexSkipsZeroWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		idx := chooseWeightedIndex([]float64{0, 1, 0}, rng)
		assert.Equal(t, 1, idx)
	}
}
