package DG2D

import (
	"fmt"
	"math"

	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/utils"
)

// Field is a scalar function of position
type Field func(x, y float64) float64

// Project returns the piecewise constant L2 projection of f, integrated with
// the edge midpoint rule, which is exact for quadratics
func Project(m *geometry2D.Mesh, f Field) (u []float64) {
	u = make([]float64, m.K())
	for k, tri := range m.EToV {
		var sum float64
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
			sum += f(0.5*(m.VX[a]+m.VX[b]), 0.5*(m.VY[a]+m.VY[b]))
		}
		u[k] = sum / 3
	}
	return
}

// ProjectVector projects a vector field into the [ux, uy] per element layout
func ProjectVector(m *geometry2D.Mesh, fx, fy Field) (u []float64) {
	ux, uy := Project(m, fx), Project(m, fy)
	u = make([]float64, 2*m.K())
	for k := range ux {
		u[2*k], u[2*k+1] = ux[k], uy[k]
	}
	return
}

// L2Norm of a piecewise constant field
func L2Norm(m *geometry2D.Mesh, u []float64) float64 {
	return utils.WeightedNorm(u, m.Area)
}

// Integral of a piecewise constant field
func Integral(m *geometry2D.Mesh, u []float64) float64 {
	return utils.WeightedSum(u, m.Area)
}

// Centroid is the first moment of a field divided by its integral
func Centroid(m *geometry2D.Mesh, u []float64) (c [2]float64, err error) {
	total := Integral(m, u)
	if total == 0 || math.IsNaN(total) {
		err = fmt.Errorf("field has no mass, integral = %g", total)
		return
	}
	for k, uk := range u {
		w := uk * m.Area[k]
		c[0] += w * m.Centroid[k][0]
		c[1] += w * m.Centroid[k][1]
	}
	c[0] /= total
	c[1] /= total
	return
}

// BoundarySource assembles the load ∫_F g q over the faces tagged tag,
// added to each element adjacent to such a face. g is taken at the face
// midpoint. Returns the element vector and the number of faces used.
func BoundarySource(m *geometry2D.Mesh, tag string, g Field) (L []float64, nFaces int) {
	L = make([]float64, m.K())
	for _, f := range m.FacesTagged(tag) {
		face := &m.Faces[f]
		v := g(face.Mid[0], face.Mid[1]) * face.Length
		L[face.Left] += v
		if !face.IsBoundary() {
			L[face.Right] += v
		}
		nFaces++
	}
	return
}
