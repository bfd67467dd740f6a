package utils

import (
	"fmt"
)

// Range is the half open index interval [Start, End)
type Range struct {
	Start, End int
}

func NewRange(start, length int) Range {
	return Range{Start: start, End: start + length}
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// View returns the slice of v covered by r. The view shares memory with v.
func (r Range) View(v []float64) []float64 {
	if r.End > len(v) || r.Start < 0 || r.End < r.Start {
		panic(fmt.Sprintf("range [%d,%d) out of bounds for vector of length %d",
			r.Start, r.End, len(v)))
	}
	return v[r.Start:r.End:r.End]
}

// BlockLayout partitions a concatenated degree of freedom vector into named,
// contiguous blocks. Blocks are appended in order and never change afterwards.
type BlockLayout struct {
	Names  []string
	ranges map[string]Range
	NDof   int
}

func NewBlockLayout() *BlockLayout {
	return &BlockLayout{
		ranges: make(map[string]Range),
	}
}

func (bl *BlockLayout) Add(name string, length int) (r Range) {
	if _, exists := bl.ranges[name]; exists {
		panic(fmt.Sprintf("duplicate block name [%s]", name))
	}
	if length < 0 {
		panic(fmt.Sprintf("negative length %d for block [%s]", length, name))
	}
	r = NewRange(bl.NDof, length)
	bl.ranges[name] = r
	bl.Names = append(bl.Names, name)
	bl.NDof += length
	return
}

func (bl *BlockLayout) Range(name string) Range {
	r, ok := bl.ranges[name]
	if !ok {
		panic(fmt.Sprintf("unknown block [%s]", name))
	}
	return r
}

func (bl *BlockLayout) Has(name string) bool {
	_, ok := bl.ranges[name]
	return ok
}

// View returns the non-owning sub-block of v named name
func (bl *BlockLayout) View(name string, v []float64) []float64 {
	if len(v) != bl.NDof {
		panic(fmt.Sprintf("vector length %d does not match layout size %d", len(v), bl.NDof))
	}
	return bl.Range(name).View(v)
}

func (bl *BlockLayout) NewVector() []float64 {
	return make([]float64, bl.NDof)
}
