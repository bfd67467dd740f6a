package operators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gohdg/utils"
)

// Dense wraps a gonum matrix
type Dense struct {
	M *mat.Dense
}

func NewDense(M *mat.Dense) *Dense { return &Dense{M: M} }

func (D *Dense) Dims() (rows, cols int) { return D.M.Dims() }

func (D *Dense) Apply(dst, src []float64) {
	checkApply(D, dst, src)
	nr, nc := D.M.Dims()
	mat.NewVecDense(nr, dst).MulVec(D.M, mat.NewVecDense(nc, src))
}

func (D *Dense) T() Operator {
	return &Dense{M: mat.DenseCopyOf(D.M.T())}
}

func (D *Dense) Diagonal() (d []float64) {
	nr, nc := D.M.Dims()
	d = make([]float64, min(nr, nc))
	for i := range d {
		d[i] = D.M.At(i, i)
	}
	return
}

// Diagonal is a diagonal matrix, e.g. a lumped or piecewise constant mass
type Diagonal struct {
	D []float64
}

func NewDiagonal(d []float64) *Diagonal { return &Diagonal{D: d} }

func (D *Diagonal) Dims() (rows, cols int) { return len(D.D), len(D.D) }

func (D *Diagonal) Apply(dst, src []float64) {
	checkApply(D, dst, src)
	for i, d := range D.D {
		dst[i] = d * src[i]
	}
}

func (D *Diagonal) ApplyAdd(dst []float64, alpha float64, src []float64) {
	for i, d := range D.D {
		dst[i] += alpha * d * src[i]
	}
}

func (D *Diagonal) T() Operator { return D }

func (D *Diagonal) Diagonal() []float64 {
	d := make([]float64, len(D.D))
	copy(d, D.D)
	return d
}

func (D *Diagonal) Inverse() (Dinv *Diagonal, err error) {
	dinv := make([]float64, len(D.D))
	for i, d := range D.D {
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			err = fmt.Errorf("diagonal entry %d = %v is not invertible", i, d)
			return
		}
		dinv[i] = 1. / d
	}
	Dinv = NewDiagonal(dinv)
	return
}

// BlockDiagonal holds square dense blocks along the diagonal. Blocks may
// differ in size; Offsets[n] is the first row of block n.
type BlockDiagonal struct {
	Blocks  []*mat.Dense
	Offsets []int
	N       int
	pm      *utils.PartitionMap
}

func NewBlockDiagonal(blocks []*mat.Dense) (B *BlockDiagonal, err error) {
	B = &BlockDiagonal{
		Blocks:  blocks,
		Offsets: make([]int, len(blocks)),
	}
	for n, b := range blocks {
		nr, nc := b.Dims()
		if nr != nc {
			err = fmt.Errorf("block %d is not square: %dx%d", n, nr, nc)
			return nil, err
		}
		B.Offsets[n] = B.N
		B.N += nr
	}
	return
}

// SetParallelDegree distributes block products over np goroutines
func (B *BlockDiagonal) SetParallelDegree(np int) {
	B.pm = utils.NewPartitionMap(np, len(B.Blocks))
}

func (B *BlockDiagonal) Dims() (rows, cols int) { return B.N, B.N }

func (B *BlockDiagonal) blockRange(n int) utils.Range {
	nr, _ := B.Blocks[n].Dims()
	return utils.NewRange(B.Offsets[n], nr)
}

func (B *BlockDiagonal) applyBlocks(dst, src []float64, nMin, nMax int, alpha, beta float64) {
	for n := nMin; n < nMax; n++ {
		var (
			r  = B.blockRange(n)
			xb = r.View(src)
			yb = r.View(dst)
		)
		blas64.Gemv(blas.NoTrans, alpha, B.Blocks[n].RawMatrix(),
			blas64.Vector{N: len(xb), Data: xb, Inc: 1}, beta,
			blas64.Vector{N: len(yb), Data: yb, Inc: 1})
	}
}

// run computes dst = alpha B src + beta dst block by block
func (B *BlockDiagonal) run(dst, src []float64, alpha, beta float64) {
	if B.pm == nil {
		B.applyBlocks(dst, src, 0, len(B.Blocks), alpha, beta)
		return
	}
	B.pm.Run(func(_, nMin, nMax int) {
		B.applyBlocks(dst, src, nMin, nMax, alpha, beta)
	})
}

func (B *BlockDiagonal) Apply(dst, src []float64) {
	checkApply(B, dst, src)
	B.run(dst, src, 1, 0)
}

func (B *BlockDiagonal) ApplyAdd(dst []float64, alpha float64, src []float64) {
	checkApply(B, dst, src)
	B.run(dst, src, alpha, 1)
}

func (B *BlockDiagonal) T() Operator {
	blocks := make([]*mat.Dense, len(B.Blocks))
	for n, b := range B.Blocks {
		blocks[n] = mat.DenseCopyOf(b.T())
	}
	Bt, _ := NewBlockDiagonal(blocks)
	Bt.pm = B.pm
	return Bt
}

func (B *BlockDiagonal) Diagonal() (d []float64) {
	d = make([]float64, B.N)
	for n, b := range B.Blocks {
		nr, _ := b.Dims()
		for i := 0; i < nr; i++ {
			d[B.Offsets[n]+i] = b.At(i, i)
		}
	}
	return
}

// Inverse inverts every block once. A singular or badly conditioned block is
// an error.
func (B *BlockDiagonal) Inverse() (Binv *BlockDiagonal, err error) {
	blocks := make([]*mat.Dense, len(B.Blocks))
	for n, b := range B.Blocks {
		var inv mat.Dense
		if err = inv.Inverse(b); err != nil {
			err = fmt.Errorf("block %d of block diagonal operator: %w", n, err)
			return
		}
		blocks[n] = &inv
	}
	if Binv, err = NewBlockDiagonal(blocks); err != nil {
		return
	}
	Binv.pm = B.pm
	return
}
