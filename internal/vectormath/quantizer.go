package vectormath

import "math"

// Codebook is a simple k-means-trained vector quantizer: each embedding is
// replaced by the id of its nearest centroid, used by the memory engine's
// compression-enabled optimization strategy (spec.md §4.4).
type Codebook struct {
	centroids [][]float32
}

// TrainCodebook runs Lloyd's algorithm for a fixed iteration budget to fit k
// centroids over the given samples.
func TrainCodebook(samples [][]float32, k, iterations int) *Codebook {
	if len(samples) == 0 || k <= 0 {
		return &Codebook{}
	}
	if k > len(samples) {
		k = len(samples)
	}
	dim := len(samples[0])

	centroids := make([][]float32, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float32(nil), samples[i*len(samples)/k]...)
	}

	assignments := make([]int, len(samples))
	for iter := 0; iter < iterations; iter++ {
		changed := false
		for i, s := range samples {
			best, bestDist := 0, math.MaxFloat64
			for c, centroid := range centroids {
				d := sqDist(s, centroid)
				if d < bestDist {
					bestDist, best = d, c
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, dim)
		}
		for i, s := range samples {
			c := assignments[i]
			counts[c]++
			for j := 0; j < dim && j < len(s); j++ {
				sums[c][j] += float64(s[j])
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			newCentroid := make([]float32, dim)
			for j := 0; j < dim; j++ {
				newCentroid[j] = float32(sums[c][j] / float64(counts[c]))
			}
			centroids[c] = newCentroid
		}
		if !changed {
			break
		}
	}

	return &Codebook{centroids: centroids}
}

func sqDist(a, b []float32) float64 {
	var sum float64
	for i := range a {
		if i >= len(b) {
			break
		}
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}

// Quantize returns the index of the nearest centroid for v.
func (c *Codebook) Quantize(v []float32) int {
	if c == nil || len(c.centroids) == 0 {
		return -1
	}
	best, bestDist := 0, math.MaxFloat64
	for i, centroid := range c.centroids {
		d := sqDist(v, centroid)
		if d < bestDist {
			bestDist, best = d, i
		}
	}
	return best
}

// Reconstruct returns the centroid vector for a quantized index.
func (c *Codebook) Reconstruct(id int) []float32 {
	if c == nil || id < 0 || id >= len(c.centroids) {
		return nil
	}
	return c.centroids[id]
}

// Size returns the number of centroids in the codebook.
func (c *Codebook) Size() int {
	if c == nil {
		return 0
	}
	return len(c.centroids)
}
