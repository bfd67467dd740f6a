package operators

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"

	"github.com/notargets/gohdg/utils"
)

// Sparse is an assembled operator stored in compressed sparse row form
type Sparse struct {
	M          *sparse.CSR
	transposed bool
	name       string
}

func (S *Sparse) raw() *blas.SparseMatrix { return S.M.RawMatrix() }

func (S *Sparse) Dims() (rows, cols int) {
	nr, nc := S.M.Dims()
	if S.transposed {
		return nc, nr
	}
	return nr, nc
}

func (S *Sparse) Name() string { return S.name }

func (S *Sparse) NNZ() int { return S.M.NNZ() }

func (S *Sparse) Apply(dst, src []float64) {
	checkApply(S, dst, src)
	utils.Zero(dst)
	S.ApplyAdd(dst, 1, src)
}

// ApplyAdd computes dst += alpha S src with the sparse BLAS kernel, in either
// orientation of the stored CSR matrix
func (S *Sparse) ApplyAdd(dst []float64, alpha float64, src []float64) {
	checkApply(S, dst, src)
	blas.Dusmv(S.transposed, alpha, S.raw(), src, 1, dst, 1)
}

func (S *Sparse) T() Operator {
	return &Sparse{M: S.M, transposed: !S.transposed, name: S.name + "ᵀ"}
}

func (S *Sparse) Diagonal() (d []float64) {
	var (
		r      = S.raw()
		nr, nc = S.M.Dims()
	)
	d = make([]float64, min(nr, nc))
	for i := 0; i < len(d); i++ {
		for ii := r.Indptr[i]; ii < r.Indptr[i+1]; ii++ {
			if r.Ind[ii] == i {
				d[i] += r.Data[ii]
			}
		}
	}
	return
}

// DoNonZero calls f for every stored entry, in the orientation of S
func (S *Sparse) DoNonZero(f func(i, j int, v float64)) {
	var (
		r  = S.raw()
		nr = len(r.Indptr) - 1
	)
	for i := 0; i < nr; i++ {
		for ii := r.Indptr[i]; ii < r.Indptr[i+1]; ii++ {
			if S.transposed {
				f(r.Ind[ii], i, r.Data[ii])
			} else {
				f(i, r.Ind[ii], r.Data[ii])
			}
		}
	}
}

// SparseBuilder accumulates entries of a bilinear form in dictionary of keys
// form and converts them to CSR once
type SparseBuilder struct {
	dok    *sparse.DOK
	nr, nc int
	name   string
}

func NewSparseBuilder(nr, nc int, name string) *SparseBuilder {
	return &SparseBuilder{
		dok:  sparse.NewDOK(nr, nc),
		nr:   nr,
		nc:   nc,
		name: name,
	}
}

// Add accumulates v into entry (i,j)
func (sb *SparseBuilder) Add(i, j int, v float64) {
	if i < 0 || i >= sb.nr || j < 0 || j >= sb.nc {
		panic(fmt.Sprintf("entry (%d,%d) out of bounds for %s of dims %dx%d",
			i, j, sb.name, sb.nr, sb.nc))
	}
	if v == 0 {
		return
	}
	sb.dok.Set(i, j, sb.dok.At(i, j)+v)
}

// AddScaled accumulates alpha*S, which must have the builder's dimensions
func (sb *SparseBuilder) AddScaled(alpha float64, S *Sparse) (err error) {
	nr, nc := S.Dims()
	if nr != sb.nr || nc != sb.nc {
		err = fmt.Errorf("cannot add %s of dims %dx%d to %s of dims %dx%d",
			S.name, nr, nc, sb.name, sb.nr, sb.nc)
		return
	}
	S.DoNonZero(func(i, j int, v float64) {
		sb.Add(i, j, alpha*v)
	})
	return
}

func (sb *SparseBuilder) Build() *Sparse {
	return &Sparse{
		M:    sb.dok.ToCSR(),
		name: sb.name,
	}
}

// AddDiagonal accumulates d along the diagonal
func (sb *SparseBuilder) AddDiagonal(d []float64) (err error) {
	if len(d) > min(sb.nr, sb.nc) {
		err = fmt.Errorf("diagonal of length %d does not fit %s of dims %dx%d",
			len(d), sb.name, sb.nr, sb.nc)
		return
	}
	for i, v := range d {
		sb.Add(i, i, v)
	}
	return
}
