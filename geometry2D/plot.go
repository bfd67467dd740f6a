package geometry2D

import (
	"github.com/notargets/avs/geometry"
)

// ToTriMesh converts the mesh for the avs charts, sharing vertices between
// elements
func (m *Mesh) ToTriMesh() (gm geometry.TriMesh) {
	var (
		xy    = make([]float32, 2*m.NVerts())
		verts = make([][3]int64, m.K())
	)
	for i := range m.VX {
		xy[2*i], xy[2*i+1] = float32(m.VX[i]), float32(m.VY[i])
	}
	for k, tri := range m.EToV {
		verts[k] = [3]int64{int64(tri[0]), int64(tri[1]), int64(tri[2])}
	}
	gm = geometry.NewTriMesh(xy, verts)
	return
}

// ToDiscontinuousTriMesh gives every element its own three vertices, so that
// a piecewise constant field is drawn without smearing across faces. Vertex
// 3k+i belongs to local vertex i of element k.
func (m *Mesh) ToDiscontinuousTriMesh() (gm geometry.TriMesh) {
	var (
		K     = m.K()
		xy    = make([]float32, 6*K)
		verts = make([][3]int64, K)
	)
	for k, tri := range m.EToV {
		for i, v := range tri {
			n := 3*k + i
			xy[2*n], xy[2*n+1] = float32(m.VX[v]), float32(m.VY[v])
			verts[k][i] = int64(n)
		}
	}
	gm = geometry.NewTriMesh(xy, verts)
	return
}
