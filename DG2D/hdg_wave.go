package DG2D

import (
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/operators"
)

/*
The couplings of the first order wave system for piecewise constant pressure p
and velocity u. Velocities are stored [ux, uy] per element, traces one value
per face, and stabilization fluxes one value per face oriented along the face
normal.
*/

// ElementGradient assembles B_el (2K x K): ∫ ∇p·v - ∫_∂T p (v·n). For
// constants only the boundary term remains, which sums to zero on each
// closed element up to round off.
func ElementGradient(m *geometry2D.Mesh) (B *operators.Sparse) {
	K := m.K()
	sb := operators.NewSparseBuilder(2*K, K, "Bel")
	for k := 0; k < K; k++ {
		for _, f := range m.EToF[k] {
			var (
				n = m.OutwardNormal(k, f)
				l = m.Faces[f].Length
			)
			sb.Add(2*k, k, -n[0]*l)
			sb.Add(2*k+1, k, -n[1]*l)
		}
	}
	B = sb.Build()
	return
}

// TraceCoupling assembles B_tr (2K x NFaces): ½ ∫_∂T λ (v·n)
func TraceCoupling(m *geometry2D.Mesh) (B *operators.Sparse) {
	K := m.K()
	sb := operators.NewSparseBuilder(2*K, m.NFaces(), "Btr")
	for k := 0; k < K; k++ {
		for _, f := range m.EToF[k] {
			var (
				n = m.OutwardNormal(k, f)
				l = m.Faces[f].Length
			)
			sb.Add(2*k, f, 0.5*n[0]*l)
			sb.Add(2*k+1, f, 0.5*n[1]*l)
		}
	}
	B = sb.Build()
	return
}

// TraceOperator maps element values to faces, summing the traces of both
// sides: λ_F = p_L + p_R, and p_L alone on the boundary
func TraceOperator(m *geometry2D.Mesh) (T *operators.Sparse) {
	sb := operators.NewSparseBuilder(m.NFaces(), m.K(), "Tr")
	for f := range m.Faces {
		face := &m.Faces[f]
		sb.Add(f, face.Left, 1)
		if !face.IsBoundary() {
			sb.Add(f, face.Right, 1)
		}
	}
	T = sb.Build()
	return
}

// StabilizationCoupling assembles B_stab (NFaces x K): ∫_∂T p (τ·n) for the
// lowest order normal flux τ_F, giving |F| (p_L - p_R)
func StabilizationCoupling(m *geometry2D.Mesh) (B *operators.Sparse) {
	sb := operators.NewSparseBuilder(m.NFaces(), m.K(), "Bstab")
	for f := range m.Faces {
		face := &m.Faces[f]
		sb.Add(f, face.Left, face.Length)
		if !face.IsBoundary() {
			sb.Add(f, face.Right, -face.Length)
		}
	}
	B = sb.Build()
	return
}

// StabilizationMass is the lumped mass of the normal fluxes, a third of the
// area of each adjacent element
func StabilizationMass(m *geometry2D.Mesh) (M *operators.Diagonal) {
	d := make([]float64, m.NFaces())
	for f := range m.Faces {
		face := &m.Faces[f]
		d[f] = m.Area[face.Left] / 3
		if !face.IsBoundary() {
			d[f] += m.Area[face.Right] / 3
		}
	}
	M = operators.NewDiagonal(d)
	return
}
