// Package mat provides the sparse and dense complex matrix routines used to
// assemble and diagonalize cavity array Hamiltonians.
package mat

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// Annihilation operator of a two-level emitter.
	SigmaMinus = [][]complex128{
		{0, 1},
		{0, 0},
	}
	// Raising operator of a two-level emitter.
	SigmaPlus = [][]complex128{
		{0, 0},
		{1, 0},
	}
)

type vRowCol struct {
	v   complex128
	row int
	col int
}

// COO is a sparse matrix in coordinate format, kept in row major order.
type COO struct {
	rows int
	cols int
	Data []vRowCol
}

func M(dense [][]complex128) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), Data: make([]vRowCol, 0)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, vRowCol{v: v, row: i, col: j})
		}
	}
	return m
}

func COOZeros(rows, cols int) *COO {
	m := M([][]complex128{{0}})
	m.Zeros(rows, cols)
	return m
}

func COOIdentity(rows int) *COO {
	m := COOZeros(rows, rows)
	for i := 0; i < rows; i++ {
		m.Data = append(m.Data, vRowCol{v: 1, row: i, col: i})
	}
	return m
}

// Destroy returns the bosonic annihilation operator truncated to dim Fock states.
func Destroy(dim int) *COO {
	m := COOZeros(dim, dim)
	for n := 1; n < dim; n++ {
		m.Data = append(m.Data, vRowCol{v: complex(sqrt(n), 0), row: n - 1, col: n})
	}
	return m
}

// Create returns the bosonic creation operator truncated to dim Fock states.
func Create(dim int) *COO {
	m := COOZeros(dim, dim)
	for n := 1; n < dim; n++ {
		m.Data = append(m.Data, vRowCol{v: complex(sqrt(n), 0), row: n, col: n - 1})
	}
	return m
}

func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.Data = m.Data[:0]
}

func (m *COO) Scalar(v complex128) {
	m.rows, m.cols = 1, 1
	m.Data = m.Data[:0]
	m.Data = append(m.Data, vRowCol{v: v, row: 0, col: 0})
}

// Restrict returns the square submatrix on the rows and columns listed in idx.
// Row and column k of the result correspond to idx[k].
func (m *COO) Restrict(idx []int) *COO {
	pos := make(map[int]int, len(idx))
	for k, i := range idx {
		pos[i] = k
	}

	s := &COO{rows: len(idx), cols: len(idx), Data: make([]vRowCol, 0)}
	for _, v := range m.Data {
		r, ok := pos[v.row]
		if !ok {
			continue
		}
		c, ok := pos[v.col]
		if !ok {
			continue
		}
		s.Data = append(s.Data, vRowCol{v: v.v, row: r, col: c})
	}
	slices.SortFunc(s.Data, rowMajor)
	return s
}

// Add sets a to a + c*b.
func (a *COO) Add(c complex128, b *COO) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	bm := make(map[[2]int]complex128, len(b.Data))
	for _, v := range b.Data {
		bm[[2]int{v.row, v.col}] = v.v
	}

	for i, av := range a.Data {
		byx := [2]int{av.row, av.col}
		bv := bm[byx]
		delete(bm, byx)

		a.Data[i].v = av.v + c*bv
	}

	a.Data = slices.DeleteFunc(a.Data, func(v vRowCol) bool {
		return v.v == 0
	})
	for yx, bv := range bm {
		if c*bv == 0 {
			continue
		}
		a.Data = append(a.Data, vRowCol{v: c * bv, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(a.Data, rowMajor)
}

// MatMul sets a to the matrix product a*b.
func (a *COO) MatMul(b *COO) {
	if a.cols != b.rows {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	byRow := make(map[int][]vRowCol)
	for _, v := range b.Data {
		byRow[v.row] = append(byRow[v.row], v)
	}

	prod := make(map[[2]int]complex128)
	for _, av := range a.Data {
		for _, bv := range byRow[av.col] {
			prod[[2]int{av.row, bv.col}] += av.v * bv.v
		}
	}

	a.cols = b.cols
	a.Data = a.Data[:0]
	for yx, v := range prod {
		if v == 0 {
			continue
		}
		a.Data = append(a.Data, vRowCol{v: v, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(a.Data, rowMajor)
}

func (a *COO) Kron(b *COO) {
	rows := a.rows * b.rows
	cols := a.cols * b.cols
	a.rows, a.cols = rows, cols

	prevElemNum := len(a.Data)
	for i := prevElemNum - 1; i >= 0; i-- {
		av := a.Data[i]
		a.Data[i].v = 0
		for _, bv := range b.Data {
			ky := av.row*b.rows + bv.row
			kx := av.col*b.cols + bv.col
			a.Data = append(a.Data, vRowCol{v: av.v * bv.v, row: ky, col: kx})
		}
	}

	a.Data = slices.DeleteFunc(a.Data, func(v vRowCol) bool {
		return v.v == 0
	})
	slices.SortFunc(a.Data, rowMajor)
}

func (m *COO) Dense() [][]complex128 {
	dense := make([][]complex128, m.rows)
	for i := range dense {
		dense[i] = make([]complex128, m.cols)
	}

	for _, v := range m.Data {
		dense[v.row][v.col] = v.v
	}

	return dense
}

// CDense converts m to a gonum dense complex matrix.
func (m *COO) CDense() *mat.CDense {
	d := mat.NewCDense(m.rows, m.cols, nil)
	for _, v := range m.Data {
		d.Set(v.row, v.col, v.v)
	}
	return d
}

// FromCDense converts a gonum dense complex matrix to coordinate format.
func FromCDense(d *mat.CDense) *COO {
	rows, cols := d.Dims()
	m := COOZeros(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := d.At(i, j); v != 0 {
				m.Data = append(m.Data, vRowCol{v: v, row: i, col: j})
			}
		}
	}
	return m
}

func (m *COO) String() string {
	dense := m.Dense()

	lines := []string{}
	for _, row := range dense {
		cs := []string{}
		for _, v := range row {
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

func rowMajor(a, b vRowCol) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

func sqrt(n int) float64 { return math.Sqrt(float64(n)) }

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := fmt.Sprintf("%v", v)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}
