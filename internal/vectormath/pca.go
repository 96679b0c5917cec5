package vectormath

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCAReducer projects embeddings onto the top-K principal components of a
// fitted dataset, grounded on gonum.org/v1/gonum (wired from the o9nn-echo.go
// example repo's numeric stack) since the teacher carries no linear-algebra
// dependency of its own.
type PCAReducer struct {
	mean       []float64
	components *mat.Dense // dim x k
	dim, k     int
}

// FitPCA computes the top-k principal components of the given samples
// (each a dim-length embedding) via gonum's covariance-matrix eigendecomposition.
func FitPCA(samples [][]float32, k int) *PCAReducer {
	if len(samples) == 0 || k <= 0 {
		return nil
	}
	dim := len(samples[0])
	if k > dim {
		k = dim
	}

	data := mat.NewDense(len(samples), dim, nil)
	for i, s := range samples {
		row := make([]float64, dim)
		for j := 0; j < dim && j < len(s); j++ {
			row[j] = float64(s[j])
		}
		data.SetRow(i, row)
	}

	var pc stat.PC
	ok := pc.PrincipalComponents(data, nil)
	if !ok {
		return nil
	}

	var dst mat.Dense
	pc.VectorsTo(&dst)
	rows, cols := dst.Dims()
	if cols < k {
		k = cols
	}
	components := mat.NewDense(rows, k, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < k; j++ {
			components.Set(i, j, dst.At(i, j))
		}
	}

	means := make([]float64, dim)
	for j := 0; j < dim; j++ {
		col := make([]float64, len(samples))
		for i := range samples {
			col[i] = data.At(i, j)
		}
		means[j] = stat.Mean(col, nil)
	}

	return &PCAReducer{mean: means, components: components, dim: dim, k: k}
}

// Reduce projects a single embedding onto the fitted principal components.
func (p *PCAReducer) Reduce(v []float32) []float32 {
	if p == nil || len(v) != p.dim {
		return v
	}
	centered := mat.NewVecDense(p.dim, nil)
	for i := 0; i < p.dim; i++ {
		centered.SetVec(i, float64(v[i])-p.mean[i])
	}
	var out mat.VecDense
	out.MulVec(p.components.T(), centered)

	reduced := make([]float32, p.k)
	for i := 0; i < p.k; i++ {
		reduced[i] = float32(out.AtVec(i))
	}
	return reduced
}

// OutputDim returns the reduced dimensionality.
func (p *PCAReducer) OutputDim() int {
	if p == nil {
		return 0
	}
	return p.k
}
