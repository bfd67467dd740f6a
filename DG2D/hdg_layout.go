package DG2D

import (
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/utils"
)

// Block names of the hybrid state vectors
const (
	BlockU    = "u"
	BlockUHat = "uhat"
	BlockP    = "p"
	BlockPHat = "phat"
)

// NewHybridLayout lays out [u | uhat]: one element value per triangle
// followed by one trace value per face
func NewHybridLayout(m *geometry2D.Mesh) (bl *utils.BlockLayout) {
	bl = utils.NewBlockLayout()
	bl.Add(BlockU, m.K())
	bl.Add(BlockUHat, m.NFaces())
	return
}

// NewWaveLayout lays out [p | phat | u | uhat]. The velocity blocks hold
// [ux, uy] of element k at 2k and 2k+1.
func NewWaveLayout(m *geometry2D.Mesh) (bl *utils.BlockLayout) {
	K := m.K()
	bl = utils.NewBlockLayout()
	bl.Add(BlockP, K)
	bl.Add(BlockPHat, K)
	bl.Add(BlockU, 2*K)
	bl.Add(BlockUHat, 2*K)
	return
}

// FreeDofs marks every dof of a hybrid layout free except the trace values
// on boundary faces, which carry homogeneous Dirichlet conditions
func FreeDofs(m *geometry2D.Mesh, bl *utils.BlockLayout) (free []bool) {
	free = make([]bool, bl.NDof)
	for i := range free {
		free[i] = true
	}
	r := bl.Range(BlockUHat)
	for f := range m.Faces {
		if m.Faces[f].IsBoundary() {
			free[r.Start+f] = false
		}
	}
	return
}
