package DG2D

import (
	"fmt"

	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/timestepper"
	"github.com/notargets/gohdg/utils"
)

// ChartSink draws piecewise constant element fields in a live chart window
type ChartSink struct {
	Mesh      *geometry2D.Mesh
	Chart     *utils.SurfaceChart
	Delay     int // Milliseconds to hold a blocking frame on screen
	Component int // Which of Stride values per element is drawn
	Stride    int
	values    []float32
}

// NewChartSink opens a chart over the mesh. A zero range autoscales every
// frame.
func NewChartSink(m *geometry2D.Mesh, width, height int, fMin, fMax float64) (cs *ChartSink) {
	cs = &ChartSink{
		Mesh:   m,
		Chart:  utils.NewSurfaceChart(width, height, m.ToDiscontinuousTriMesh(), fMin, fMax, fMin == fMax),
		Delay:  100,
		Stride: 1,
	}
	return
}

// VertexValues spreads one value per element onto the three vertices the
// discontinuous chart mesh gives each element
func VertexValues(m *geometry2D.Mesh, field []float64, stride, component int, values []float32) ([]float32, error) {
	K := m.K()
	if stride < 1 || component < 0 || component >= stride {
		return nil, fmt.Errorf("component %d of stride %d is not valid", component, stride)
	}
	if len(field) != stride*K {
		return nil, fmt.Errorf("field of length %d, need %d values per element on %d elements",
			len(field), stride, K)
	}
	if len(values) != 3*K {
		values = make([]float32, 3*K)
	}
	for k := 0; k < K; k++ {
		v := float32(field[stride*k+component])
		values[3*k], values[3*k+1], values[3*k+2] = v, v, v
	}
	return values, nil
}

func (cs *ChartSink) Show(f timestepper.Frame) (err error) {
	stride := max(cs.Stride, 1)
	if cs.values, err = VertexValues(cs.Mesh, f.Field, stride, cs.Component, cs.values); err != nil {
		return
	}
	cs.Chart.Update(cs.values)
	if f.Blocking {
		utils.SleepFor(cs.Delay)
	}
	return
}
