// Package reduction projects feature points onto fewer dimensions.
package reduction

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"lightcurve-lab/internal/domain"
)

var errNoComponents = errors.New("principal component analysis failed")

// PCA is a linear projector fitted once and reused for every batch.
type PCA struct {
	mean  []float64
	basis *mat.Dense // inputDim x outputDim
}

// Fit computes the leading dim principal directions of points.
func Fit(points [][]float64, dim int) (*PCA, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: PCA needs at least 2 points, got %d", domain.ErrQueryInput, len(points))
	}
	in := len(points[0])
	if dim <= 0 || dim > in {
		return nil, fmt.Errorf("%w: cannot reduce %d dimensions to %d", domain.ErrQueryInput, in, dim)
	}
	if dim > len(points) {
		return nil, fmt.Errorf("%w: %d points cannot span %d dimensions", domain.ErrQueryInput, len(points), dim)
	}

	data := mat.NewDense(len(points), in, nil)
	for i, p := range points {
		if len(p) != in {
			return nil, fmt.Errorf("%w: inconsistent point dimension", domain.ErrQueryInput)
		}
		data.SetRow(i, p)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, errNoComponents
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	mean := make([]float64, in)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(nil, j, data), nil)
	}
	basis := mat.DenseCopyOf(vecs.Slice(0, in, 0, dim))
	return &PCA{mean: mean, basis: basis}, nil
}

// InputDim returns the dimension of accepted points.
func (p *PCA) InputDim() int {
	r, _ := p.basis.Dims()
	return r
}

// OutputDim returns the dimension of projected points.
func (p *PCA) OutputDim() int {
	_, c := p.basis.Dims()
	return c
}

// Transform centres points on the fitted mean and projects them.
func (p *PCA) Transform(points [][]float64) ([][]float64, error) {
	in := p.InputDim()
	out := make([][]float64, len(points))
	centred := mat.NewVecDense(in, nil)
	var proj mat.VecDense
	for i, pt := range points {
		if len(pt) != in {
			return nil, fmt.Errorf("%w: expected %d coordinates, got %d", domain.ErrQueryInput, in, len(pt))
		}
		for j, v := range pt {
			centred.SetVec(j, v-p.mean[j])
		}
		proj.MulVec(p.basis.T(), centred)
		out[i] = make([]float64, p.OutputDim())
		for j := range out[i] {
			out[i][j] = proj.AtVec(j)
		}
	}
	return out, nil
}
