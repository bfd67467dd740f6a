package geometry2D

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/pradeep-pyro/triangle"
)

// Boundary tags of the box generators
const (
	BoundaryLeft   = "left"
	BoundaryRight  = "right"
	BoundaryBottom = "bottom"
	BoundaryTop    = "top"
)

// NewRectangleMesh splits a uniform nx by ny grid of cells into triangles
func NewRectangleMesh(xmin, xmax, ymin, ymax float64, nx, ny int) (m *Mesh, err error) {
	if nx < 1 || ny < 1 || !(xmax > xmin) || !(ymax > ymin) {
		err = fmt.Errorf("invalid rectangle [%g,%g]x[%g,%g] with %dx%d cells",
			xmin, xmax, ymin, ymax, nx, ny)
		return
	}
	return NewTensorMesh(linspace(xmin, xmax, nx), linspace(ymin, ymax, ny))
}

func linspace(a, b float64, n int) (x []float64) {
	x = make([]float64, n+1)
	for i := range x {
		x[i] = a + (b-a)*float64(i)/float64(n)
	}
	x[n] = b
	return
}

/*
NewTensorMesh triangulates the tensor grid of the strictly increasing lines
xs and ys. Every cell is cut along the diagonal from its lower left corner.
Boundary faces are tagged left, right, bottom and top.
*/
func NewTensorMesh(xs, ys []float64) (m *Mesh, err error) {
	var (
		nx, ny = len(xs) - 1, len(ys) - 1
	)
	if nx < 1 || ny < 1 {
		err = fmt.Errorf("tensor mesh needs at least two lines in each direction")
		return
	}
	if !sort.Float64sAreSorted(xs) || !sort.Float64sAreSorted(ys) {
		err = fmt.Errorf("tensor mesh lines must be increasing")
		return
	}
	var (
		Nv   = (nx + 1) * (ny + 1)
		VX   = make([]float64, Nv)
		VY   = make([]float64, Nv)
		EToV = make([][3]int, 0, 2*nx*ny)
		bc   = make(map[string][][2]int)
		vid  = func(i, j int) int { return j*(nx+1) + i }
	)
	for j, y := range ys {
		for i, x := range xs {
			VX[vid(i, j)], VY[vid(i, j)] = x, y
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00, v10, v01, v11 := vid(i, j), vid(i+1, j), vid(i, j+1), vid(i+1, j+1)
			EToV = append(EToV, [3]int{v00, v10, v11}, [3]int{v00, v11, v01})
		}
	}
	for i := 0; i < nx; i++ {
		bc[BoundaryBottom] = append(bc[BoundaryBottom], [2]int{vid(i, 0), vid(i+1, 0)})
		bc[BoundaryTop] = append(bc[BoundaryTop], [2]int{vid(i, ny), vid(i+1, ny)})
	}
	for j := 0; j < ny; j++ {
		bc[BoundaryLeft] = append(bc[BoundaryLeft], [2]int{vid(0, j), vid(0, j+1)})
		bc[BoundaryRight] = append(bc[BoundaryRight], [2]int{vid(nx, j), vid(nx, j+1)})
	}
	return NewMesh(VX, VY, EToV, bc)
}

/*
NewDelaunayMesh triangulates a grid of nx+1 by ny+1 points over the box.
Interior points are displaced randomly by up to jitter times the cell size,
boundary points stay on the boundary. The same seed gives the same mesh.
*/
func NewDelaunayMesh(xmin, xmax, ymin, ymax float64, nx, ny int,
	jitter float64, seed int64) (m *Mesh, err error) {
	if nx < 1 || ny < 1 || !(xmax > xmin) || !(ymax > ymin) {
		err = fmt.Errorf("invalid rectangle [%g,%g]x[%g,%g] with %dx%d cells",
			xmin, xmax, ymin, ymax, nx, ny)
		return
	}
	if jitter < 0 || jitter >= 0.5 {
		err = fmt.Errorf("jitter %g must be in [0, 0.5)", jitter)
		return
	}
	var (
		rng    = rand.New(rand.NewSource(seed))
		dx, dy = (xmax - xmin) / float64(nx), (ymax - ymin) / float64(ny)
		xs, ys = linspace(xmin, xmax, nx), linspace(ymin, ymax, ny)
		pts    = make([][2]float64, 0, (nx+1)*(ny+1))
	)
	for j, y := range ys {
		for i, x := range xs {
			if i > 0 && i < nx && j > 0 && j < ny {
				x += jitter * dx * (2*rng.Float64() - 1)
				y += jitter * dy * (2*rng.Float64() - 1)
			}
			pts = append(pts, [2]float64{x, y})
		}
	}
	tris := triangle.Delaunay(pts)
	var (
		VX   = make([]float64, len(pts))
		VY   = make([]float64, len(pts))
		EToV = make([][3]int, 0, len(tris))
	)
	for i, pt := range pts {
		VX[i], VY[i] = pt[0], pt[1]
	}
	for _, tri := range tris {
		verts := [3]int{int(tri[0]), int(tri[1]), int(tri[2])}
		// Slivers along the straight boundary are possible with collinear points
		if math.Abs(signedArea(VX, VY, verts)) < 1.e-12*dx*dy {
			continue
		}
		EToV = append(EToV, verts)
	}
	if m, err = NewMesh(VX, VY, EToV, nil); err != nil {
		return
	}
	if err = checkDelaunay(m, 1.e-8); err != nil {
		return nil, err
	}
	m.TagBoxBoundary(xmin, xmax, ymin, ymax)
	return
}

// checkDelaunay rejects a triangulation with faces that fail the Delaunay
// criterion by more than tol of the circumradius
func checkDelaunay(m *Mesh, tol float64) (err error) {
	if faces := m.IllegalFaces(tol); len(faces) != 0 {
		f := &m.Faces[faces[0]]
		err = fmt.Errorf("triangulation is not Delaunay: %d illegal faces, first between vertices %v",
			len(faces), f.Verts)
	}
	return
}

// TagBoxBoundary tags boundary faces lying on the sides of a box
func (m *Mesh) TagBoxBoundary(xmin, xmax, ymin, ymax float64) {
	tol := 1.e-10 * math.Max(xmax-xmin, ymax-ymin)
	onLine := func(a, b float64) bool { return math.Abs(a-b) < tol }
	for i := range m.Faces {
		f := &m.Faces[i]
		if !f.IsBoundary() {
			continue
		}
		x1, y1 := m.VX[f.Verts[0]], m.VY[f.Verts[0]]
		x2, y2 := m.VX[f.Verts[1]], m.VY[f.Verts[1]]
		switch {
		case onLine(x1, xmin) && onLine(x2, xmin):
			f.Tag = BoundaryLeft
		case onLine(x1, xmax) && onLine(x2, xmax):
			f.Tag = BoundaryRight
		case onLine(y1, ymin) && onLine(y2, ymin):
			f.Tag = BoundaryBottom
		case onLine(y1, ymax) && onLine(y2, ymax):
			f.Tag = BoundaryTop
		}
	}
}
