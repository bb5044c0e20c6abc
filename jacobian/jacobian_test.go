package jacobian

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMultVector_SingleBlock(t *testing.T) {
	j := New(2, 4)
	j.AddBlock(0, 0, mat.NewDense(2, 4, []float64{
		1, 0, 2, 0,
		0, 1, 0, 3,
	}))

	y := j.MultVector([]float64{1, 2, 3, 4})
	require.InDelta(t, 7.0, y[0], 1e-12)  // 1*1 + 2*3
	require.InDelta(t, 14.0, y[1], 1e-12) // 1*2 + 3*4
}

func TestMultVector_OverlappingBlocksAccumulate(t *testing.T) {
	j := New(1, 2)
	j.AddBlock(0, 0, mat.NewDense(1, 2, []float64{1, 1}))
	j.AddBlock(0, 0, mat.NewDense(1, 2, []float64{2, 2}))

	y := j.MultVector([]float64{1, 1})
	require.InDelta(t, 6.0, y[0], 1e-12)
}

func TestToDense_MatchesBlocks(t *testing.T) {
	j := New(3, 3)
	j.AddBlock(0, 0, mat.NewDense(1, 3, []float64{1, 2, 3}))
	j.AddBlock(1, 1, mat.NewDense(2, 2, []float64{4, 5, 6, 7}))

	d := j.ToDense()
	require.InDelta(t, 1.0, d.At(0, 0), 1e-12)
	require.InDelta(t, 3.0, d.At(0, 2), 1e-12)
	require.InDelta(t, 4.0, d.At(1, 1), 1e-12)
	require.InDelta(t, 7.0, d.At(2, 2), 1e-12)
	require.InDelta(t, 0.0, d.At(2, 0), 1e-12)
}

func TestMultDense_MatchesToDenseProduct(t *testing.T) {
	j := New(2, 2)
	j.AddBlock(0, 0, mat.NewDense(2, 2, []float64{1, 2, 3, 4}))

	x := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	result := j.MultDense(x)

	want := j.ToDense()
	require.InDeltaSlice(t, want.RawMatrix().Data, result.RawMatrix().Data, 1e-12)
}

func TestMultBlocks_ComposesTwoSparseOperands(t *testing.T) {
	j := New(1, 2)
	j.AddBlock(0, 0, mat.NewDense(1, 2, []float64{1, 1}))

	rhsBlocks := []MatrixBlock{
		{Row: 0, Col: 0, Data: mat.NewDense(2, 1, []float64{3, 4})},
	}
	result := j.MultBlocks(rhsBlocks, 1)
	require.InDelta(t, 7.0, result.At(0, 0), 1e-12)
}
