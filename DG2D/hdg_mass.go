package DG2D

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/utils"
)

// Coefficient is an element-wise constant material value
type Coefficient func(k int) float64

// Constant returns a coefficient taking the value c everywhere
func Constant(c float64) Coefficient { return func(int) float64 { return c } }

// TensorCoefficient is an element-wise constant 2x2 tensor
type TensorCoefficient func(k int) [2][2]float64

// Identity is the unit tensor
func Identity(int) [2][2]float64 { return [2][2]float64{{1, 0}, {0, 1}} }

// OuterProduct returns the tensor n nᵀ of an element-wise vector
func OuterProduct(n func(k int) [2]float64) TensorCoefficient {
	return func(k int) [2][2]float64 {
		v := n(k)
		return [2][2]float64{
			{v[0] * v[0], v[0] * v[1]},
			{v[1] * v[0], v[1] * v[1]},
		}
	}
}

// Mass is the piecewise constant mass matrix ∫ rho u v, restricted to the
// elements of definedOn (nil for all)
func Mass(m *geometry2D.Mesh, rho Coefficient, definedOn []bool) (M *operators.Diagonal) {
	d := make([]float64, m.K())
	for k := range d {
		if definedOn != nil && !definedOn[k] {
			continue
		}
		d[k] = rho(k) * m.Area[k]
	}
	M = operators.NewDiagonal(d)
	return
}

// VectorMass is ∫ (T u)·v for piecewise constant vector fields, one 2x2
// block per element, zero outside definedOn (nil for all)
func VectorMass(m *geometry2D.Mesh, tensor TensorCoefficient, definedOn []bool) (M *operators.BlockDiagonal) {
	blocks := make([]*mat.Dense, m.K())
	for k := range blocks {
		b := mat.NewDense(2, 2, nil)
		if definedOn == nil || definedOn[k] {
			T := tensor(k)
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					b.Set(i, j, T[i][j]*m.Area[k])
				}
			}
		}
		blocks[k] = b
	}
	// 2x2 blocks cannot fail the squareness check
	M, _ = operators.NewBlockDiagonal(blocks)
	return
}

// HybridMass is the mass of the element block of a hybrid layout; the trace
// block has no mass
func HybridMass(m *geometry2D.Mesh, bl *utils.BlockLayout) (M *operators.Diagonal) {
	d := bl.NewVector()
	copy(bl.View(BlockU, d), Mass(m, Constant(1), nil).D)
	M = operators.NewDiagonal(d)
	return
}

// ShiftedSystem assembles M + tau*A
func ShiftedSystem(M *operators.Diagonal, tau float64, A *operators.Sparse) (S *operators.Sparse, err error) {
	nr, nc := A.Dims()
	sb := operators.NewSparseBuilder(nr, nc, "M+τA")
	if err = sb.AddDiagonal(M.D); err != nil {
		return
	}
	if err = sb.AddScaled(tau, A); err != nil {
		return nil, fmt.Errorf("shifted system: %w", err)
	}
	S = sb.Build()
	return
}
