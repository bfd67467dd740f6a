package geometry2D

import (
	"fmt"
	"math"
	"sort"
)

// BoundaryWall tags boundary faces that carry no explicit tag
const BoundaryWall = "wall"

/*
Face is an edge of the triangulation. Faces are unique: an interior face is
shared by its Left and Right elements, a boundary face has Right = -1.

Verts runs counter-clockwise within the Left element, so Normal is the unit
outward normal of Left and points from Left into Right.
*/
type Face struct {
	Verts     [2]int
	Left      int
	Right     int
	LocalFace [2]int // Local face number (0, 1 or 2) within Left and Right
	Normal    [2]float64
	Length    float64
	Mid       [2]float64
	Tag       string // Boundary faces default to BoundaryWall, interior faces to ""
}

func (f *Face) IsBoundary() bool { return f.Right < 0 }

// Mesh is a conforming triangle mesh with its face connectivity. Local face
// i of element k runs from vertex EToV[k][i] to EToV[k][(i+1)%3].
type Mesh struct {
	VX, VY   []float64
	EToV     [][3]int
	EToF     [][3]int // Element to unique face
	EToE     [][3]int // Element to neighbor element, -1 on the boundary
	Faces    []Face
	Area     []float64
	Centroid [][2]float64
	H        []float64 // Element size, sqrt(2*Area)
	Region   []string  // Material tag per element
	edges    map[EdgeNumber]int
}

func (m *Mesh) K() int      { return len(m.EToV) }
func (m *Mesh) NFaces() int { return len(m.Faces) }
func (m *Mesh) NVerts() int { return len(m.VX) }

/*
NewMesh builds the connectivity of a triangle mesh. Elements are reoriented
counter-clockwise. bcEdges maps a boundary tag to vertex pairs; boundary faces
not listed get BoundaryWall.
*/
func NewMesh(VX, VY []float64, EToV [][3]int, bcEdges map[string][][2]int) (m *Mesh, err error) {
	var (
		K  = len(EToV)
		Nv = len(VX)
	)
	if len(VY) != Nv {
		err = fmt.Errorf("vertex coordinate lengths differ: %d != %d", Nv, len(VY))
		return
	}
	if K == 0 {
		err = fmt.Errorf("mesh has no elements")
		return
	}
	m = &Mesh{
		VX:       VX,
		VY:       VY,
		EToV:     make([][3]int, K),
		EToF:     make([][3]int, K),
		EToE:     make([][3]int, K),
		Area:     make([]float64, K),
		Centroid: make([][2]float64, K),
		H:        make([]float64, K),
		Region:   make([]string, K),
		edges:    make(map[EdgeNumber]int, 3*K/2+1),
	}
	for k, tri := range EToV {
		for _, v := range tri {
			if v < 0 || v >= Nv {
				err = fmt.Errorf("element %d references vertex %d, mesh has %d vertices", k, v, Nv)
				return nil, err
			}
		}
		area := signedArea(VX, VY, tri)
		if area < 0 {
			tri[1], tri[2] = tri[2], tri[1]
			area = -area
		}
		if !(area > 0) {
			err = fmt.Errorf("element %d with vertices %v is degenerate", k, tri)
			return nil, err
		}
		m.EToV[k] = tri
		m.Area[k] = area
		m.H[k] = math.Sqrt(2 * area)
		m.Centroid[k] = [2]float64{
			(VX[tri[0]] + VX[tri[1]] + VX[tri[2]]) / 3,
			(VY[tri[0]] + VY[tri[1]] + VY[tri[2]]) / 3,
		}
		for i := 0; i < 3; i++ {
			if err = m.addFace(k, i); err != nil {
				return nil, err
			}
		}
	}
	for k := range m.EToE {
		for i, f := range m.EToF[k] {
			m.EToE[k][i] = m.Neighbor(k, f)
		}
	}
	for i := range m.Faces {
		if m.Faces[i].IsBoundary() {
			m.Faces[i].Tag = BoundaryWall
		}
	}
	// Apply tags in a fixed order so that overlapping tags resolve the same way every time
	tags := make([]string, 0, len(bcEdges))
	for tag := range bcEdges {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		for _, e := range bcEdges[tag] {
			f, ok := m.FaceOf(e[0], e[1])
			if !ok {
				err = fmt.Errorf("boundary %s edge %v is not an edge of the mesh", tag, e)
				return nil, err
			}
			m.Faces[f].Tag = tag
		}
	}
	return
}

func signedArea(VX, VY []float64, tri [3]int) float64 {
	var (
		x1, y1 = VX[tri[0]], VY[tri[0]]
		x2, y2 = VX[tri[1]], VY[tri[1]]
		x3, y3 = VX[tri[2]], VY[tri[2]]
	)
	return 0.5 * ((x2-x1)*(y3-y1) - (x3-x1)*(y2-y1))
}

func (m *Mesh) addFace(k, i int) (err error) {
	var (
		verts = [2]int{m.EToV[k][i], m.EToV[k][(i+1)%3]}
		en    = NewEdgeNumber(verts)
	)
	if f, ok := m.edges[en]; ok {
		face := &m.Faces[f]
		if face.Right >= 0 {
			err = fmt.Errorf("face between vertices %v is shared by more than two elements (%d, %d, %d)",
				verts, face.Left, face.Right, k)
			return
		}
		if face.Verts[0] != verts[1] {
			err = fmt.Errorf("elements %d and %d have inconsistent orientation along face %v",
				face.Left, k, verts)
			return
		}
		face.Right = k
		face.LocalFace[1] = i
		m.EToF[k][i] = f
		return
	}
	var (
		x1, y1 = m.VX[verts[0]], m.VY[verts[0]]
		x2, y2 = m.VX[verts[1]], m.VY[verts[1]]
		dx, dy = x2 - x1, y2 - y1
		length = math.Hypot(dx, dy)
	)
	m.Faces = append(m.Faces, Face{
		Verts:     verts,
		Left:      k,
		Right:     -1,
		LocalFace: [2]int{i, -1},
		Normal:    [2]float64{dy / length, -dx / length},
		Length:    length,
		Mid:       [2]float64{0.5 * (x1 + x2), 0.5 * (y1 + y2)},
	})
	f := len(m.Faces) - 1
	m.edges[en] = f
	m.EToF[k][i] = f
	return
}

// FaceOf returns the face joining two vertices
func (m *Mesh) FaceOf(v1, v2 int) (f int, ok bool) {
	if v1 < 0 || v2 < 0 {
		return
	}
	f, ok = m.edges[NewEdgeNumber([2]int{v1, v2})]
	return
}

// Neighbor returns the element across face f from element k, -1 on the boundary
func (m *Mesh) Neighbor(k, f int) int {
	face := &m.Faces[f]
	if face.Left == k {
		return face.Right
	}
	return face.Left
}

// OutwardNormal returns the unit normal of face f pointing out of element k
func (m *Mesh) OutwardNormal(k, f int) (n [2]float64) {
	n = m.Faces[f].Normal
	if m.Faces[f].Left != k {
		n[0], n[1] = -n[0], -n[1]
	}
	return
}

func (m *Mesh) TotalArea() (a float64) {
	for _, ak := range m.Area {
		a += ak
	}
	return
}

func (m *Mesh) Print() (p string) {
	var nb int
	for i := range m.Faces {
		if m.Faces[i].IsBoundary() {
			nb++
		}
	}
	p = fmt.Sprintf("Mesh: %d elements, %d vertices, %d faces (%d boundary)",
		m.K(), m.NVerts(), m.NFaces(), nb)
	return
}

// EdgeNumber packs two vertex indices into a key that is independent of
// their order
type EdgeNumber uint64

func NewEdgeNumber(verts [2]int) (packed EdgeNumber) {
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] < verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeNumber(i1 + i2<<32)
	return
}

// GetVertices returns the vertices smallest first, or reversed
func (en EdgeNumber) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeNumber
	)
	enTmp = en >> 32
	verts[1] = int(enTmp)
	verts[0] = int(en - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}
