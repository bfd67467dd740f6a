package DG2D

import (
	"fmt"

	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/operators"
	"github.com/notargets/gohdg/utils"
)

/*
HDGDiffusion assembles the hybridized interior penalty diffusion on [u | uhat]

	Σ_T Σ_F∈∂T ε α (p+1)²/h_T |F| (u_T - û_F)(v_T - v̂_F)

For piecewise constants the volume and consistency terms vanish and only the
penalty remains. order is the polynomial order p the penalty is scaled for.
*/
func HDGDiffusion(m *geometry2D.Mesh, bl *utils.BlockLayout, eps, alpha float64, order int) (A *operators.Sparse, err error) {
	if eps < 0 || alpha <= 0 || order < 0 {
		err = fmt.Errorf("invalid diffusion parameters eps = %g, alpha = %g, order = %d", eps, alpha, order)
		return
	}
	if !bl.Has(BlockU) || !bl.Has(BlockUHat) ||
		bl.Range(BlockU).Len() != m.K() || bl.Range(BlockUHat).Len() != m.NFaces() {
		err = fmt.Errorf("layout is not a hybrid layout of a mesh with %d elements and %d faces",
			m.K(), m.NFaces())
		return
	}
	var (
		ru, rh = bl.Range(BlockU), bl.Range(BlockUHat)
		sb     = operators.NewSparseBuilder(bl.NDof, bl.NDof, "A")
		p1     = float64(order + 1)
	)
	for k := 0; k < m.K(); k++ {
		var (
			iu = ru.Start + k
		)
		for _, f := range m.EToF[k] {
			var (
				ih = rh.Start + f
				c  = eps * alpha * p1 * p1 / m.H[k] * m.Faces[f].Length
			)
			sb.Add(iu, iu, c)
			sb.Add(iu, ih, -c)
			sb.Add(ih, iu, -c)
			sb.Add(ih, ih, c)
		}
	}
	A = sb.Build()
	return
}
