package geometry2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMesh(t *testing.T) {
	{ // Two triangles forming the unit square, second one given clockwise
		VX := []float64{0, 1, 1, 0}
		VY := []float64{0, 0, 1, 1}
		EToV := [][3]int{{0, 1, 2}, {0, 2, 3}}
		EToV[1] = [3]int{0, 3, 2}
		m, err := NewMesh(VX, VY, EToV, map[string][][2]int{"inflow": {{3, 0}}})
		require.NoError(t, err)
		assert.Equal(t, 2, m.K())
		assert.Equal(t, 5, m.NFaces())
		assert.Equal(t, [3]int{0, 2, 3}, m.EToV[1])
		assert.InDelta(t, 1., m.TotalArea(), 1.e-15)
		assert.InDelta(t, math.Sqrt(2*0.5), m.H[0], 1.e-15)
		assert.Equal(t, [2]float64{2. / 3, 1. / 3}, m.Centroid[0])
		// The diagonal is shared, its normal points from Left into Right
		f, ok := m.FaceOf(2, 0)
		require.True(t, ok)
		face := m.Faces[f]
		assert.False(t, face.IsBoundary())
		assert.Equal(t, 0, face.Left)
		assert.Equal(t, 1, face.Right)
		assert.InDelta(t, -math.Sqrt2/2, face.Normal[0], 1.e-15)
		assert.InDelta(t, math.Sqrt2/2, face.Normal[1], 1.e-15)
		assert.Equal(t, face.Normal, m.OutwardNormal(0, f))
		nR := m.OutwardNormal(1, f)
		assert.Equal(t, -face.Normal[0], nR[0])
		assert.Equal(t, 1, m.EToE[0][2])
		assert.Equal(t, 0, m.EToE[1][0])
		assert.Equal(t, -1, m.EToE[0][0])
		// Tags
		assert.Equal(t, 1, len(m.FacesTagged("inflow")))
		assert.Equal(t, 3, len(m.FacesTagged(BoundaryWall)))
		assert.Equal(t, 4, len(m.BoundaryFaces()))
		// The closed element boundary sums to zero: sum_F n|F| = 0
		for k := 0; k < m.K(); k++ {
			var sx, sy float64
			for _, f := range m.EToF[k] {
				n := m.OutwardNormal(k, f)
				sx += n[0] * m.Faces[f].Length
				sy += n[1] * m.Faces[f].Length
			}
			assert.InDelta(t, 0., sx, 1.e-14)
			assert.InDelta(t, 0., sy, 1.e-14)
		}
	}
	{ // Degenerate element
		_, err := NewMesh([]float64{0, 1, 2}, []float64{0, 0, 0}, [][3]int{{0, 1, 2}}, nil)
		assert.Error(t, err)
	}
	{ // Face shared by three elements
		VX := []float64{0, 1, 0, 1, 0.5}
		VY := []float64{0, 0, 1, 1, -1}
		_, err := NewMesh(VX, VY, [][3]int{{0, 1, 2}, {1, 3, 2}, {0, 4, 1}, {0, 1, 3}}, nil)
		assert.Error(t, err)
	}
	{ // Bad vertex index, unknown boundary edge
		_, err := NewMesh([]float64{0, 1, 0}, []float64{0, 0, 1}, [][3]int{{0, 1, 3}}, nil)
		assert.Error(t, err)
		_, err = NewMesh([]float64{0, 1, 0}, []float64{0, 0, 1}, [][3]int{{0, 1, 2}},
			map[string][][2]int{"x": {{0, 5}}})
		assert.Error(t, err)
	}
}

func TestRectangleMesh(t *testing.T) {
	m, err := NewRectangleMesh(0, 2, 0, 1, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, 24, m.K())
	assert.Equal(t, 20, m.NVerts())
	// Euler: F = V + K - 1 for a simply connected planar mesh
	assert.Equal(t, m.NVerts()+m.K()-1, m.NFaces())
	assert.InDelta(t, 2., m.TotalArea(), 1.e-14)
	assert.Equal(t, 3, len(m.FacesTagged(BoundaryLeft)))
	assert.Equal(t, 3, len(m.FacesTagged(BoundaryRight)))
	assert.Equal(t, 4, len(m.FacesTagged(BoundaryBottom)))
	assert.Equal(t, 4, len(m.FacesTagged(BoundaryTop)))
	assert.Equal(t, 0, len(m.FacesTagged(BoundaryWall)))
	for _, f := range m.FacesTagged(BoundaryLeft) {
		assert.Equal(t, [2]float64{-1, 0}, m.Faces[f].Normal)
	}
	for _, f := range m.FacesTagged(BoundaryTop) {
		assert.InDelta(t, 1., m.Faces[f].Normal[1], 1.e-15)
	}
	assert.Empty(t, m.IllegalFaces(1.e-10))

	_, err = NewRectangleMesh(0, 1, 0, 1, 0, 3)
	assert.Error(t, err)
	_, err = NewTensorMesh([]float64{0, 2, 1}, []float64{0, 1})
	assert.Error(t, err)
}

func TestDelaunayMesh(t *testing.T) {
	m, err := NewDelaunayMesh(0, 1, 0, 1, 8, 8, 0.2, 7)
	require.NoError(t, err)
	assert.InDelta(t, 1., m.TotalArea(), 1.e-12)
	assert.Empty(t, m.IllegalFaces(1.e-8))
	assert.Equal(t, 32, len(m.BoundaryFaces()))
	for _, tag := range []string{BoundaryLeft, BoundaryRight, BoundaryBottom, BoundaryTop} {
		assert.Equal(t, 8, len(m.FacesTagged(tag)), tag)
	}
	m2, err := NewDelaunayMesh(0, 1, 0, 1, 8, 8, 0.2, 7)
	require.NoError(t, err)
	assert.Equal(t, m.EToV, m2.EToV)

	_, err = NewDelaunayMesh(0, 1, 0, 1, 8, 8, 0.7, 7)
	assert.Error(t, err)
}

func TestTags(t *testing.T) {
	m, err := NewRectangleMesh(0, 1, 0, 1, 4, 4)
	require.NoError(t, err)
	m.TagRegions(func(x, y float64) string {
		switch {
		case x < 0.25 && y < 0.25:
			return "pml_corner"
		case x < 0.25:
			return "pml_default1"
		case y < 0.25:
			return "pml_normal_wg"
		}
		return "air"
	})
	assert.Equal(t, []string{"pml_corner", "pml_normal_wg", "pml_default1", "air"}, m.Regions())
	match, err := RegionMatcher("pml_default.*|pml_normal.*")
	require.NoError(t, err)
	assert.Equal(t, 12, len(m.ElementsInRegion(match)))
	mask := m.RegionMask(match)
	assert.Equal(t, 12, count(mask))
	assert.Equal(t, 32, count(m.RegionMask(nil)))
	corner, err := RegionMatcher("pml_corner")
	require.NoError(t, err)
	assert.Equal(t, 2, len(m.ElementsInRegion(corner)))
	// Anchored: "pml" alone matches nothing
	none, err := RegionMatcher("pml")
	require.NoError(t, err)
	assert.Empty(t, m.ElementsInRegion(none))
	_, err = RegionMatcher("(")
	assert.Error(t, err)

	// Interior faces on the line x = 0.5
	n := m.TagFaces("source", func(f *Face) bool {
		return math.Abs(m.VX[f.Verts[0]]-0.5) < 1.e-12 && math.Abs(m.VX[f.Verts[1]]-0.5) < 1.e-12
	})
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, len(m.FacesTagged("source")))
}

func count(mask []bool) (n int) {
	for _, b := range mask {
		if b {
			n++
		}
	}
	return
}

func TestTriMesh(t *testing.T) {
	m, err := NewRectangleMesh(0, 1, 0, 1, 2, 2)
	require.NoError(t, err)
	gm := m.ToTriMesh()
	assert.Equal(t, 2*m.NVerts(), len(gm.XY))
	assert.Equal(t, m.K(), len(gm.TriVerts))
	dm := m.ToDiscontinuousTriMesh()
	assert.Equal(t, 6*m.K(), len(dm.XY))
	assert.Equal(t, [3]int64{3, 4, 5}, dm.TriVerts[1])
	v := m.EToV[1][2]
	assert.Equal(t, float32(m.VX[v]), dm.XY[2*5])
}

func TestEdgeNumber(t *testing.T) {
	en := NewEdgeNumber([2]int{7, 3})
	assert.Equal(t, NewEdgeNumber([2]int{3, 7}), en)
	assert.Equal(t, [2]int{3, 7}, en.GetVertices(false))
	assert.Equal(t, [2]int{7, 3}, en.GetVertices(true))
	assert.Panics(t, func() { NewEdgeNumber([2]int{-1, 2}) })
}

func TestIsIllegalEdge(t *testing.T) {
	// Inside the circle through the unit right triangle
	assert.True(t, IsIllegalEdge(-0.33, -0.33, -1, -1, 1, -1, -1, 1))
	assert.False(t, IsIllegalEdge(2, 2, -1, -1, 1, -1, -1, 1))
	// Orientation of the triangle does not matter
	assert.True(t, IsIllegalEdge(-0.33, -0.33, -1, -1, -1, 1, 1, -1))
}

func TestCheckDelaunay(t *testing.T) {
	// A thin rhombus cut along its long diagonal
	VX := []float64{0, 1, 2, 1}
	VY := []float64{0, -0.2, 0, 0.2}
	m, err := NewMesh(VX, VY, [][3]int{{0, 1, 2}, {0, 2, 3}}, nil)
	require.NoError(t, err)
	assert.Len(t, m.IllegalFaces(1.e-8), 1)
	assert.Error(t, checkDelaunay(m, 1.e-8))
	// The short diagonal is the Delaunay one
	m, err = NewMesh(VX, VY, [][3]int{{0, 1, 3}, {1, 2, 3}}, nil)
	require.NoError(t, err)
	assert.Empty(t, m.IllegalFaces(1.e-8))
	assert.NoError(t, checkDelaunay(m, 1.e-8))
}
