package operators

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gohdg/utils"
)

func randomDense(rng *rand.Rand, nr, nc int) *mat.Dense {
	data := make([]float64, nr*nc)
	for i := range data {
		data[i] = rng.Float64() - 0.5
	}
	return mat.NewDense(nr, nc, data)
}

func denseToSparse(M *mat.Dense, name string) *Sparse {
	nr, nc := M.Dims()
	sb := NewSparseBuilder(nr, nc, name)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			sb.Add(i, j, M.At(i, j))
		}
	}
	return sb.Build()
}

func assertMatrixInDelta(t *testing.T, expected, actual mat.Matrix, tol float64) {
	er, ec := expected.Dims()
	ar, ac := actual.Dims()
	require.Equal(t, er, ar)
	require.Equal(t, ec, ac)
	for i := 0; i < er; i++ {
		for j := 0; j < ec; j++ {
			assert.InDeltaf(t, expected.At(i, j), actual.At(i, j), tol, "entry (%d,%d)", i, j)
		}
	}
}

func TestEmbedding(t *testing.T) {
	bl := utils.NewBlockLayout()
	bl.Add("p", 2)
	bl.Add("u", 3)
	Eu, err := NewBlockEmbedding(bl, "u")
	require.NoError(t, err)
	nr, nc := Eu.Dims()
	assert.Equal(t, 5, nr)
	assert.Equal(t, 3, nc)

	full := make([]float64, 5)
	Eu.Apply(full, []float64{1, 2, 3})
	assert.Equal(t, []float64{0, 0, 1, 2, 3}, full)

	EuT := Eu.T()
	block := make([]float64, 3)
	EuT.Apply(block, []float64{9, 9, 4, 5, 6})
	assert.Equal(t, []float64{4, 5, 6}, block)

	// Accumulation touches only the block range
	full = []float64{1, 1, 1, 1, 1}
	Eu.ApplyAdd(full, 2, []float64{1, 2, 3})
	assert.Equal(t, []float64{1, 1, 3, 5, 7}, full)

	// E^T E is the identity on the block
	P, err := NewProduct(EuT, Eu)
	require.NoError(t, err)
	assertMatrixInDelta(t, mat.NewDiagDense(3, []float64{1, 1, 1}), Materialize(P), 0)

	_, err = NewEmbedding(4, utils.Range{Start: 2, End: 6})
	assert.Error(t, err)
	_, err = NewBlockEmbedding(bl, "uhat")
	assert.Error(t, err)
}

func TestProductAndSum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	A := randomDense(rng, 4, 3)
	B := randomDense(rng, 3, 5)
	C := randomDense(rng, 4, 5)

	P, err := NewProduct(NewDense(A), denseToSparse(B, "B"))
	require.NoError(t, err)
	var AB mat.Dense
	AB.Mul(A, B)
	assertMatrixInDelta(t, &AB, Materialize(P), 1.e-14)

	S, err := NewSum([]float64{2, -1}, P, NewDense(C))
	require.NoError(t, err)
	var expected mat.Dense
	expected.Scale(2, &AB)
	expected.Sub(&expected, C)
	assertMatrixInDelta(t, &expected, Materialize(S), 1.e-14)

	St, err := Transpose(S)
	require.NoError(t, err)
	assertMatrixInDelta(t, expected.T(), Materialize(St), 1.e-14)

	// dst += alpha * S * src
	src := []float64{1, 2, 3, 4, 5}
	dst := []float64{1, 1, 1, 1}
	S.ApplyAdd(dst, 0.5, src)
	ref := mat.NewVecDense(4, nil)
	ref.MulVec(&expected, mat.NewVecDense(5, src))
	for i := range dst {
		assert.InDelta(t, 1+0.5*ref.AtVec(i), dst[i], 1.e-14)
	}

	_, err = NewProduct(NewDense(A), NewDense(C))
	assert.Error(t, err)
	_, err = NewSum(nil, NewDense(A), NewDense(B))
	assert.Error(t, err)
	_, err = NewSum([]float64{1}, NewDense(A), NewDense(A))
	assert.Error(t, err)
}

func TestBuilder(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	A := NewDense(randomDense(rng, 3, 3))
	B := NewDense(randomDense(rng, 2, 2))
	{
		b := NewBuilder()
		op := b.Sum(b.Product(A, b.T(A)), b.Scale(3, A))
		require.NoError(t, b.Err())
		var expected, At mat.Dense
		At.CloneFrom(A.M.T())
		expected.Mul(A.M, &At)
		var s3 mat.Dense
		s3.Scale(3, A.M)
		expected.Add(&expected, &s3)
		assertMatrixInDelta(t, &expected, Materialize(op), 1.e-14)
	}
	{ // The first error sticks and later calls are no-ops
		b := NewBuilder()
		bad := b.Product(A, B)
		assert.Nil(t, bad)
		assert.Error(t, b.Err())
		first := b.Err()
		assert.Nil(t, b.Sum(A, A))
		assert.Equal(t, first, b.Err())
	}
	{
		b := NewBuilder()
		assert.Nil(t, b.Keep(NewEmbedding(2, utils.Range{Start: 0, End: 3})))
		assert.Error(t, b.Err())
	}
	{ // A nil operand is an error, not a silent nil result
		b := NewBuilder()
		assert.Nil(t, b.Sum(A, nil))
		require.Error(t, b.Err())
		assert.Contains(t, b.Err().Error(), "nil operand 1")
		b = NewBuilder()
		assert.Nil(t, b.T(nil))
		assert.Error(t, b.Err())
	}
	{ // Operators without a transpose are reported
		b := NewBuilder()
		assert.Nil(t, b.T(opaque{A}))
		assert.Error(t, b.Err())
	}
}

type opaque struct{ Operator }

func TestCompositeIdempotence(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	bl := utils.NewBlockLayout()
	bl.Add("p", 4)
	bl.Add("phat", 4)
	bl.Add("u", 6)
	D := denseToSparse(randomDense(rng, 4, 4), "D")
	G := denseToSparse(randomDense(rng, 6, 4), "G")
	build := func() Operator {
		b := NewBuilder()
		Ep := b.Keep(NewBlockEmbedding(bl, "p"))
		Ephat := b.Keep(NewBlockEmbedding(bl, "phat"))
		Eu := b.Keep(NewBlockEmbedding(bl, "u"))
		damping := b.Sum(
			b.Product(Ep, D, b.T(Ep)),
			b.Product(Ep, D, b.LinearCombination([]float64{2, -1}, b.T(Ep), b.T(Ephat))),
			b.Product(Ephat, D, b.T(Ep)),
		)
		op := b.Sum(damping, b.Product(Eu, G, b.T(Ep)), b.T(b.Product(Eu, G, b.T(Ep))))
		require.NoError(t, b.Err())
		return op
	}
	M1, M2 := Materialize(build()), Materialize(build())
	assert.Equal(t, M1.RawMatrix().Data, M2.RawMatrix().Data)
	// Applying twice gives the same answer: scratch reuse leaves no residue
	op := build()
	x := make([]float64, bl.NDof)
	for i := range x {
		x[i] = rng.Float64()
	}
	y1, y2 := make([]float64, bl.NDof), make([]float64, bl.NDof)
	op.Apply(y1, x)
	op.Apply(y2, x)
	assert.Equal(t, y1, y2)
	// p rows see D p + D(2p - phat), phat rows see D p
	assert.InDelta(t, 3*D.M.At(0, 0), M1.At(0, 0), 1.e-15)
	assert.InDelta(t, -D.M.At(0, 1), M1.At(0, 5), 1.e-15)
	assert.InDelta(t, D.M.At(1, 2), M1.At(5, 2), 1.e-15)
}

func TestSparse(t *testing.T) {
	sb := NewSparseBuilder(3, 4, "S")
	sb.Add(0, 0, 1)
	sb.Add(0, 0, 1) // accumulates
	sb.Add(1, 3, -2)
	sb.Add(2, 1, 5)
	sb.Add(2, 2, 0) // ignored
	S := sb.Build()
	assert.Equal(t, 3, S.NNZ())
	expected := mat.NewDense(3, 4, []float64{
		2, 0, 0, 0,
		0, 0, 0, -2,
		0, 5, 0, 0,
	})
	assertMatrixInDelta(t, expected, Materialize(S), 0)
	assertMatrixInDelta(t, expected.T(), Materialize(S.T()), 0)
	assert.Equal(t, []float64{2, 0, 0}, S.Diagonal())
	{ // Accumulation in both orientations
		y := []float64{1, 1, 1}
		S.ApplyAdd(y, 0.5, []float64{1, 1, 1, 1})
		assert.Equal(t, []float64{2, 0, 3.5}, y)
		yt := []float64{1, 1, 1, 1}
		S.T().(*Sparse).ApplyAdd(yt, 2, []float64{1, 2, 3})
		assert.Equal(t, []float64{5, 31, 1, -7}, yt)
	}

	sb2 := NewSparseBuilder(3, 4, "S2")
	sb2.Add(1, 3, 2)
	require.NoError(t, sb2.AddScaled(0.5, S))
	S2 := sb2.Build()
	assert.InDelta(t, 1., S2.M.At(1, 3), 1.e-15)
	assert.InDelta(t, 1., S2.M.At(0, 0), 1.e-15)
	assert.Error(t, sb2.AddScaled(1, S.T().(*Sparse)))
	assert.Panics(t, func() { sb.Add(3, 0, 1) })
	assert.Panics(t, func() { S.Apply(make([]float64, 4), make([]float64, 4)) })
}

func TestDiagonalAndBlockDiagonal(t *testing.T) {
	D := NewDiagonal([]float64{1, 2, 4})
	Dinv, err := D.Inverse()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5, 0.25}, Dinv.D)
	_, err = NewDiagonal([]float64{1, 0}).Inverse()
	assert.Error(t, err)

	blocks := []*mat.Dense{
		mat.NewDense(2, 2, []float64{2, 1, 1, 3}),
		mat.NewDense(1, 1, []float64{4}),
		mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
	}
	B, err := NewBlockDiagonal(blocks)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, B.Offsets)
	B.SetParallelDegree(2)
	Binv, err := B.Inverse()
	require.NoError(t, err)
	P, err := NewProduct(Binv, B)
	require.NoError(t, err)
	I := mat.NewDiagDense(5, []float64{1, 1, 1, 1, 1})
	assertMatrixInDelta(t, I, Materialize(P), 1.e-14)
	assert.Equal(t, []float64{2, 3, 4, 1, 1}, B.Diagonal())

	y := []float64{1, 1, 1, 1, 1}
	B.ApplyAdd(y, 2, []float64{1, 0, 1, 0, 1})
	assert.Equal(t, []float64{5, 3, 9, 1, 3}, y)

	_, err = NewBlockDiagonal([]*mat.Dense{mat.NewDense(2, 3, nil)})
	assert.Error(t, err)
	singular, err := NewBlockDiagonal([]*mat.Dense{mat.NewDense(2, 2, []float64{1, 2, 2, 4})})
	require.NoError(t, err)
	_, err = singular.Inverse()
	assert.Error(t, err)

	d, err := DiagonalOf(opaque{NewDense(mat.NewDense(2, 2, []float64{7, 1, 1, 8}))})
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8}, d)
	_, err = DiagonalOf(NewDense(mat.NewDense(2, 3, nil)))
	assert.Error(t, err)
}
