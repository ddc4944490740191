package training

import (
	"fmt"
	"math"
	"math/rand"
)

const eps = 1e-9

// KMeansResult is the winning restart: its centroids, the per-vector cluster
// assignments and total inertia.
type KMeansResult struct {
	Centroids   [][]float64
	Assignments []int
	Inertia     float64
}

// RunKMeans clusters the vectors with k-means++ seeding, running nInit
// independent restarts off one shared seeded PRNG and keeping the restart
// with the lowest total inertia. An empty cluster is re-seeded from a random
// training point rather than left degenerate.
func RunKMeans(vectors [][]float64, k, nInit, maxIters int, rng *rand.Rand) (*KMeansResult, error) {
	if len(vectors) < k {
		return nil, fmt.Errorf("cannot form %d clusters from %d training rows", k, len(vectors))
	}

	var best *KMeansResult
	for run := 0; run < nInit; run++ {
		centroids := initKMeansPP(vectors, k, rng)
		assignments := make([]int, len(vectors))
		for i := range assignments {
			assignments[i] = -1
		}

		for iter := 0; iter < maxIters; iter++ {
			changed := false
			for i, vec := range vectors {
				clusterIdx, _ := closestCentroid(vec, centroids)
				if assignments[i] != clusterIdx {
					assignments[i] = clusterIdx
					changed = true
				}
			}
			if !changed {
				break
			}

			dims := len(vectors[0])
			sums := make([][]float64, k)
			counts := make([]int, k)
			for c := range sums {
				sums[c] = make([]float64, dims)
			}
			for i, vec := range vectors {
				cluster := assignments[i]
				counts[cluster]++
				for d, v := range vec {
					sums[cluster][d] += v
				}
			}
			for c := 0; c < k; c++ {
				if counts[c] == 0 {
					centroids[c] = copyVector(vectors[rng.Intn(len(vectors))])
					continue
				}
				for d := range sums[c] {
					sums[c][d] /= float64(counts[c])
				}
				centroids[c] = sums[c]
			}
		}

		inertia := 0.0
		for i, vec := range vectors {
			inertia += sqDist(vec, centroids[assignments[i]])
		}

		if best == nil || inertia < best.Inertia {
			best = &KMeansResult{Centroids: centroids, Assignments: assignments, Inertia: inertia}
		}
	}
	return best, nil
}

// initKMeansPP seeds centroids with weighted sampling proportional to the
// squared distance to the nearest existing centroid.
func initKMeansPP(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, copyVector(vectors[rng.Intn(len(vectors))]))

	for len(centroids) < k {
		weights := make([]float64, len(vectors))
		for i, vec := range vectors {
			_, weights[i] = closestCentroid(vec, centroids)
		}
		idx := chooseWeightedIndex(weights, rng)
		centroids = append(centroids, copyVector(vectors[idx]))
	}
	return centroids
}

func chooseWeightedIndex(weights []float64, rng *rand.Rand) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= eps {
		return rng.Intn(len(weights))
	}

	threshold := rng.Float64() * total
	running := 0.0
	for i, w := range weights {
		running += w
		if running >= threshold {
			return i
		}
	}
	return len(weights) - 1
}

// closestCentroid returns the index and squared distance of the nearest
// centroid, ties broken by first-seen index.
func closestCentroid(vector []float64, centroids [][]float64) (int, float64) {
	bestIdx := 0
	bestDist := math.Inf(1)
	for idx, centroid := range centroids {
		if d := sqDist(vector, centroid); d < bestDist {
			bestIdx = idx
			bestDist = d
		}
	}
	return bestIdx, bestDist
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func copyVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
