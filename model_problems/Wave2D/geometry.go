package Wave2D

import (
	"math"
	"strings"

	"github.com/notargets/gohdg/geometry2D"
)

// Ring resonator layout: two horizontal waveguide slabs and a ring between
// them, inside the box [XNeg, XPos] x [YNeg, YPos]
const (
	XNeg  = -0.43
	XPos  = 0.43
	YNeg  = -0.48
	YPos  = 0.48
	WSlab = 0.04
	RRing = 0.4
	Gap   = 0.005
)

// Region and face tags
const (
	RegionAir      = "air"
	RegionDense    = "eps_nine"
	PMLDefault     = "pml_default"
	PMLWaveguide   = "pml_normal_wg"
	PMLCorner      = "pml_corner"
	SourceTag      = "normal_wg_lefttop"
	PML1DPattern   = "pml_default.*|pml_normal.*"
	PMLCornerMatch = "pml_corner.*"
)

// SlabLines are the horizontal lines bounding the box and the two slabs
func SlabLines() []float64 {
	return []float64{YNeg, -RRing - Gap - WSlab, -RRing - Gap, RRing + Gap, RRing + Gap + WSlab, YPos}
}

// SourceCenter is the lower left corner of the top slab
func SourceCenter() [2]float64 {
	return [2]float64{XNeg, SlabLines()[3]}
}

// refine places lines at every breakpoint and splits each interval into
// cells no larger than h
func refine(breaks []float64, h float64) (lines []float64) {
	lines = append(lines, breaks[0])
	for i := 1; i < len(breaks); i++ {
		a, b := breaks[i-1], breaks[i]
		n := int(math.Ceil((b-a)/h - 1.e-9))
		if n < 1 {
			n = 1
		}
		for j := 1; j <= n; j++ {
			lines = append(lines, a+(b-a)*float64(j)/float64(n))
		}
		lines[len(lines)-1] = b
	}
	return
}

/*
NewRingResonatorMesh builds a tensor mesh of the resonator surrounded by an
absorbing frame of width pml. Elements are tagged:

	air, eps_nine                      inside the box
	pml_default_<side>                 one dimensional layers
	pml_normal_wg_<side><top|bottom>   layers continuing a waveguide
	pml_corner_<corner>                corners

The faces on x = XNeg across the top slab carry SourceTag.
*/
func NewRingResonatorMesh(h, pml float64) (m *geometry2D.Mesh, err error) {
	var (
		slabs = SlabLines()
		xs    = refine([]float64{XNeg - pml, XNeg, XPos, XPos + pml}, h)
		ys    = refine(append(append([]float64{YNeg - pml}, slabs...), YPos+pml), h)
	)
	if m, err = geometry2D.NewTensorMesh(xs, ys); err != nil {
		return
	}
	m.TagRegions(Region)
	m.TagFaces(SourceTag, func(f *geometry2D.Face) bool {
		return !f.IsBoundary() &&
			math.Abs(f.Mid[0]-XNeg) < 1.e-9 && math.Abs(f.Normal[1]) < 1.e-9 &&
			f.Mid[1] > slabs[3] && f.Mid[1] < slabs[4]
	})
	return
}

// Region classifies a point of the resonator with its absorbing frame
func Region(x, y float64) string {
	var (
		slabs = SlabLines()
		side  string
		vert  string
	)
	switch {
	case x < XNeg:
		side = "left"
	case x > XPos:
		side = "right"
	}
	switch {
	case y < YNeg:
		vert = "bottom"
	case y > YPos:
		vert = "top"
	}
	inSlab := func() (slab string) {
		switch {
		case y > slabs[1] && y < slabs[2]:
			slab = "bottom"
		case y > slabs[3] && y < slabs[4]:
			slab = "top"
		}
		return
	}
	switch {
	case len(side) != 0 && len(vert) != 0:
		return PMLCorner + "_" + side + vert
	case len(vert) != 0:
		return PMLDefault + "_" + vert
	case len(side) != 0:
		if slab := inSlab(); len(slab) != 0 {
			return PMLWaveguide + "_" + side + slab
		}
		return PMLDefault + "_" + side
	}
	if len(inSlab()) != 0 {
		return RegionDense
	}
	if r := math.Hypot(x, y); r > RRing-WSlab && r < RRing {
		return RegionDense
	}
	return RegionAir
}

// PMLNormal is the outward normal of the one dimensional layer holding
// region, zero elsewhere
func PMLNormal(region string) (n [2]float64) {
	if !strings.HasPrefix(region, PMLDefault) && !strings.HasPrefix(region, PMLWaveguide) {
		return
	}
	switch {
	case strings.Contains(region, "_left"):
		n = [2]float64{-1, 0}
	case strings.Contains(region, "_right"):
		n = [2]float64{1, 0}
	case strings.HasSuffix(region, "_bottom"):
		n = [2]float64{0, -1}
	case strings.HasSuffix(region, "_top"):
		n = [2]float64{0, 1}
	}
	return
}

// Permittivity is EpsSlab in the slabs, the ring and the waveguide layers,
// and one elsewhere
func Permittivity(region string, epsSlab float64) float64 {
	if region == RegionDense || strings.HasPrefix(region, PMLWaveguide) {
		return epsSlab
	}
	return 1
}

// SourceProfile is sin(π/WSlab (y - y0)) across the top slab
func SourceProfile(x, y float64) float64 {
	return math.Sin(math.Pi / WSlab * (y - SourceCenter()[1]))
}
