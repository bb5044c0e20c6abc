// Package jacobian holds the block-sparse constraint Jacobian the solver
// pipeline assembles contacts and joint limits into. Each constraint row
// only ever touches the handful of bodies it actually couples, so the
// matrix is represented as a list of small dense blocks rather than one
// dense n x m matrix with mostly zero entries.
package jacobian

import "gonum.org/v1/gonum/mat"

// MatrixBlock is a dense sub-matrix occupying rows [Row, Row+Data.Rows())
// and columns [Col, Col+Data.Cols()) of the logical sparse matrix.
type MatrixBlock struct {
	Row, Col int
	Data     *mat.Dense
}

// SparseJacobian is a constraint Jacobian stored as a list of blocks.
// Blocks may overlap in column range (two constraints touching the same
// body) but overlapping entries are summed wherever the Jacobian is
// realized, never overwritten.
type SparseJacobian struct {
	Blocks     []MatrixBlock
	Rows, Cols int
}

// New returns an empty SparseJacobian sized for rows x cols.
func New(rows, cols int) *SparseJacobian {
	return &SparseJacobian{Rows: rows, Cols: cols}
}

// AddBlock appends a block to the Jacobian. The caller is responsible for
// keeping Row+Data.Rows() <= j.Rows and Col+Data.Cols() <= j.Cols.
func (j *SparseJacobian) AddBlock(row, col int, data *mat.Dense) {
	j.Blocks = append(j.Blocks, MatrixBlock{Row: row, Col: col, Data: data})
}

// MultVector computes y = J*x for a dense column vector x of length j.Cols,
// returning a slice of length j.Rows. Overlapping blocks accumulate.
func (j *SparseJacobian) MultVector(x []float64) []float64 {
	y := make([]float64, j.Rows)
	for _, b := range j.Blocks {
		br, bc := b.Data.Dims()
		for r := 0; r < br; r++ {
			var sum float64
			for c := 0; c < bc; c++ {
				sum += b.Data.At(r, c) * x[b.Col+c]
			}
			y[b.Row+r] += sum
		}
	}
	return y
}

// MultDense computes J*x for a dense matrix x with j.Cols rows, returning
// a j.Rows x x.Cols() result. Overlapping blocks accumulate.
func (j *SparseJacobian) MultDense(x *mat.Dense) *mat.Dense {
	_, xc := x.Dims()
	if j.Rows == 0 || xc == 0 {
		return nil
	}
	result := mat.NewDense(j.Rows, xc, nil)
	for _, b := range j.Blocks {
		br, bc := b.Data.Dims()
		sub := mat.NewDense(br, xc, nil)
		xRows := x.Slice(b.Col, b.Col+bc, 0, xc)
		sub.Mul(b.Data, xRows)
		dst := result.Slice(b.Row, b.Row+br, 0, xc).(*mat.Dense)
		dst.Add(dst, sub)
	}
	return result
}

// MultBlocks treats the given blocks as a second sparse matrix laid out
// over resultCols columns and returns the dense product J*blocks, summing
// contributions the way MultDense does. It lets an assembler multiply two
// block-sparse Jacobians (e.g. J * M^-1 * J^T) without ever densifying
// either operand on its own.
func (j *SparseJacobian) MultBlocks(blocks []MatrixBlock, resultCols int) *mat.Dense {
	rhs := &SparseJacobian{Blocks: blocks, Rows: j.Cols, Cols: resultCols}
	dense := rhs.ToDense()
	if dense == nil {
		return nil
	}
	return j.MultDense(dense)
}

// ToDense realizes the full j.Rows x j.Cols matrix, summing overlapping
// block contributions. Intended for small assembled systems (one impact
// component's worth of contacts), never for the whole scene at once.
// Returns nil for a degenerate (zero rows or columns) Jacobian.
func (j *SparseJacobian) ToDense() *mat.Dense {
	if j.Rows == 0 || j.Cols == 0 {
		return nil
	}
	dense := mat.NewDense(j.Rows, j.Cols, nil)
	for _, b := range j.Blocks {
		br, bc := b.Data.Dims()
		for r := 0; r < br; r++ {
			for c := 0; c < bc; c++ {
				dense.Set(b.Row+r, b.Col+c, dense.At(b.Row+r, b.Col+c)+b.Data.At(r, c))
			}
		}
	}
	return dense
}
