package utils

import (
	"math"
	"time"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
)

func SleepFor(milliseconds int) {
	time.Sleep(time.Duration(milliseconds) * time.Millisecond)
}

// SurfaceChart is a live window showing a scalar field shaded over a fixed
// triangle mesh
type SurfaceChart struct {
	Chart      *chart2d.Chart2D
	Mesh       geometry.TriMesh
	FMin, FMax float32
	AutoScale  bool
}

func NewSurfaceChart(width, height int, gm geometry.TriMesh,
	fMin, fMax float64, autoScale bool) (sc *SurfaceChart) {
	xMin, xMax, yMin, yMax := GetMinMax(gm.XY)
	xMin, xMax, yMin, yMax = GetSquareBoundingBox(xMin, xMax, yMin, yMax)
	sc = &SurfaceChart{
		Chart: chart2d.NewChart2D(xMin, xMax, yMin, yMax,
			width, height, utils2.WHITE, utils2.BLACK),
		Mesh:      gm,
		FMin:      float32(fMin),
		FMax:      float32(fMax),
		AutoScale: autoScale,
	}
	return
}

// Update adds the next frame of the field, one value per mesh vertex
func (sc *SurfaceChart) Update(field []float32) {
	var (
		fMin, fMax = sc.FMin, sc.FMax
	)
	if sc.AutoScale {
		fMin, fMax = GetFieldMinMax32(field)
	}
	vs := geometry.VertexScalar{
		TMesh:       &sc.Mesh,
		FieldValues: field,
	}
	sc.Chart.AddShadedVertexScalar(&vs, fMin, fMax)
}

func GetMinMax(XY []float32) (xMin, xMax, yMin, yMax float32) {
	var (
		lenXY = len(XY) / 2
	)
	xMin, xMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	yMin, yMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	for i := 0; i < lenXY; i++ {
		x, y := XY[i*2+0], XY[i*2+1]
		xMin, xMax = min(xMin, x), max(xMax, x)
		yMin, yMax = min(yMin, y), max(yMax, y)
	}
	return
}

func GetFieldMinMax32(field []float32) (fMin, fMax float32) {
	for i, f := range field {
		if i == 0 {
			fMin = f
			fMax = f
		}
		if f < fMin {
			fMin = f
		}
		if f > fMax {
			fMax = f
		}
	}
	return
}

func GetSquareBoundingBox(xMin, xMax, yMin, yMax float32) (xBMin,
	xBMax, yBMin, yBMax float32) {
	xRange := xMax - xMin
	yRange := yMax - yMin
	if yRange > xRange {
		yBMin = yMin
		yBMax = yMax
		xCent := xRange/2. + xMin
		xBMin = xCent - yRange/2.
		xBMax = xCent + yRange/2.
	} else {
		xBMin = xMin
		xBMax = xMax
		yCent := yRange/2. + yMin
		yBMin = yCent - xRange/2.
		yBMax = yCent + xRange/2.
	}
	return
}
