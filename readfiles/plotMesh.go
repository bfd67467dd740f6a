package readfiles

import (
	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"

	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/utils"
)

// PlotMesh opens a chart window showing the mesh edges
func PlotMesh(m *geometry2D.Mesh, width, height int) (chart *chart2d.Chart2D) {
	gm := m.ToTriMesh()
	xMin, xMax, yMin, yMax := utils.GetMinMax(gm.XY)
	xMin, xMax, yMin, yMax = utils.GetSquareBoundingBox(xMin, xMax, yMin, yMax)
	chart = chart2d.NewChart2D(xMin, xMax, yMin, yMax,
		width, height, utils2.WHITE, utils2.BLACK)
	chart.AddTriMesh(gm)
	return
}
