package operators

import (
	"fmt"

	"github.com/notargets/gohdg/utils"
)

// Embedding routes a block vector into the index range R of a vector of
// length N. Its transpose restricts a full vector to the block. Nothing but
// the range is stored.
type Embedding struct {
	N          int
	R          utils.Range
	transposed bool
}

func NewEmbedding(N int, R utils.Range) (E *Embedding, err error) {
	if R.Start < 0 || R.End > N || R.End < R.Start {
		err = fmt.Errorf("embedding range [%d,%d) does not fit in %d dofs", R.Start, R.End, N)
		return
	}
	E = &Embedding{N: N, R: R}
	return
}

// NewBlockEmbedding embeds the named block of a layout
func NewBlockEmbedding(bl *utils.BlockLayout, name string) (E *Embedding, err error) {
	if !bl.Has(name) {
		err = fmt.Errorf("layout has no block named [%s]", name)
		return
	}
	return NewEmbedding(bl.NDof, bl.Range(name))
}

func (E *Embedding) Dims() (rows, cols int) {
	if E.transposed {
		return E.R.Len(), E.N
	}
	return E.N, E.R.Len()
}

func (E *Embedding) Apply(dst, src []float64) {
	checkApply(E, dst, src)
	if E.transposed {
		copy(dst, E.R.View(src))
		return
	}
	utils.Zero(dst)
	copy(E.R.View(dst), src)
}

func (E *Embedding) ApplyAdd(dst []float64, alpha float64, src []float64) {
	checkApply(E, dst, src)
	if E.transposed {
		utils.Axpy(alpha, E.R.View(src), dst)
		return
	}
	utils.Axpy(alpha, src, E.R.View(dst))
}

func (E *Embedding) T() Operator {
	return &Embedding{N: E.N, R: E.R, transposed: !E.transposed}
}
