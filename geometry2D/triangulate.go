package geometry2D

import (
	"math"
)

/*
IsIllegalEdge reports whether pr lies inside the circle through pi, pj and pk.
pi-pj is the edge shared by triangles pi-pj-pk and pi-pj-pr; when pr is
inside, the edge pi-pj should be swapped with pr-pk.
*/
func IsIllegalEdge(prX, prY, piX, piY, pjX, pjY, pkX, pkY float64) bool {
	inCircle := func(ax, ay, bx, by, cx, cy, dx, dy float64) (inside bool) {
		// Calculate handedness, counter-clockwise is (positive) and clockwise is (negative)
		signBit := math.Signbit((bx-ax)*(cy-ay) - (cx-ax)*(by-ay))
		ax_ := ax - dx
		ay_ := ay - dy
		bx_ := bx - dx
		by_ := by - dy
		cx_ := cx - dx
		cy_ := cy - dy
		det := (ax_*ax_+ay_*ay_)*(bx_*cy_-cx_*by_) -
			(bx_*bx_+by_*by_)*(ax_*cy_-cx_*ay_) +
			(cx_*cx_+cy_*cy_)*(ax_*by_-bx_*ay_)
		if signBit {
			return det < 0
		} else {
			return det > 0
		}
	}
	return inCircle(piX, piY, pjX, pjY, pkX, pkY, prX, prY)
}

// IllegalFaces returns the interior faces that fail the Delaunay criterion,
// allowing for round off in co-circular configurations such as square cells
func (m *Mesh) IllegalFaces(tol float64) (faces []int) {
	for i := range m.Faces {
		f := &m.Faces[i]
		if f.IsBoundary() {
			continue
		}
		var (
			kL, kR = f.Left, f.Right
			pk     = m.EToV[kL][(f.LocalFace[0]+2)%3] // Opposite vertex in Left
			pr     = m.EToV[kR][(f.LocalFace[1]+2)%3] // Opposite vertex in Right
			pi, pj = f.Verts[0], f.Verts[1]
		)
		if !IsIllegalEdge(m.VX[pr], m.VY[pr], m.VX[pi], m.VY[pi], m.VX[pj], m.VY[pj], m.VX[pk], m.VY[pk]) {
			continue
		}
		if circleMargin(m, pi, pj, pk, pr) > tol {
			faces = append(faces, i)
		}
	}
	return
}

// circleMargin is how far inside the circumcircle of pi-pj-pk the point pr
// lies, relative to the radius
func circleMargin(m *Mesh, pi, pj, pk, pr int) float64 {
	var (
		ax, ay = m.VX[pi], m.VY[pi]
		bx, by = m.VX[pj], m.VY[pj]
		cx, cy = m.VX[pk], m.VY[pk]
		d      = 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
		a2     = ax*ax + ay*ay
		b2     = bx*bx + by*by
		c2     = cx*cx + cy*cy
		ux     = (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
		uy     = (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
		r      = math.Hypot(ax-ux, ay-uy)
	)
	return (r - math.Hypot(m.VX[pr]-ux, m.VY[pr]-uy)) / r
}
