package DG2D

import (
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/utils"
)

// Velocity is a wind field
type Velocity func(x, y float64) [2]float64

// Upwind selects the upwind state of a face from the wind flux bn through it,
// measured outward from the element holding uIn. A face without flux, of
// either sign of zero, takes the boundary default.
func Upwind(bn, uIn, uOut float64) float64 {
	switch {
	case bn > 0:
		return uIn
	case bn < 0:
		return uOut
	default:
		return 0
	}
}

/*
Convection applies the upwind transport operator of a piecewise constant
field without assembling it:

	(C u)_k = Σ_F (b·n)_F |F| u_up

with n the outward normal of element k, b taken at the face midpoint and u_up
chosen by Upwind. Boundary faces see the Inflow value from outside.
*/
type Convection struct {
	Mesh   *geometry2D.Mesh
	Inflow float64
	flux   []float64 // (b·n)|F| per face, n from Left to Right
	pm     *utils.PartitionMap
}

// NewConvection samples the wind once; np is the number of goroutines used
// per application
func NewConvection(m *geometry2D.Mesh, b Velocity, np int) (C *Convection) {
	C = &Convection{
		Mesh: m,
		flux: make([]float64, m.NFaces()),
		pm:   utils.NewPartitionMap(np, m.K()),
	}
	for f := range m.Faces {
		face := &m.Faces[f]
		v := b(face.Mid[0], face.Mid[1])
		C.flux[f] = (v[0]*face.Normal[0] + v[1]*face.Normal[1]) * face.Length
	}
	return
}

func (C *Convection) Dims() (rows, cols int) { return C.Mesh.K(), C.Mesh.K() }

// FaceFlux returns (b·n)|F| of face f, outward from element k
func (C *Convection) FaceFlux(k, f int) float64 {
	if C.Mesh.Faces[f].Left == k {
		return C.flux[f]
	}
	return -C.flux[f]
}

func (C *Convection) elementFlux(k int, src []float64) (sum float64) {
	for i, f := range C.Mesh.EToF[k] {
		var (
			bn   = C.FaceFlux(k, f)
			nbr  = C.Mesh.EToE[k][i]
			uOut = C.Inflow
		)
		if nbr >= 0 {
			uOut = src[nbr]
		}
		sum += bn * Upwind(bn, src[k], uOut)
	}
	return
}

func (C *Convection) Apply(dst, src []float64) {
	K := C.Mesh.K()
	if len(dst) != K || len(src) != K {
		panic("convection applied to vectors of the wrong length")
	}
	C.pm.Run(func(_, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			dst[k] = C.elementFlux(k, src)
		}
	})
}

func (C *Convection) ApplyAdd(dst []float64, alpha float64, src []float64) {
	C.pm.Run(func(_, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			dst[k] += alpha * C.elementFlux(k, src)
		}
	})
}

// MaxStableStep estimates the largest explicit step of forward Euler with a
// lumped mass: dt < Area_k / Σ_F max((b·n)|F|, 0)
func (C *Convection) MaxStableStep() (dt float64) {
	dt = -1
	for k := 0; k < C.Mesh.K(); k++ {
		var out float64
		for _, f := range C.Mesh.EToF[k] {
			out += max(C.FaceFlux(k, f), 0)
		}
		if out == 0 {
			continue
		}
		if dk := C.Mesh.Area[k] / out; dt < 0 || dk < dt {
			dt = dk
		}
	}
	return
}
