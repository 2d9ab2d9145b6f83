package mat

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMul(t *testing.T) {
	t.Parallel()
	a := mat.NewCDense(2, 3, []complex128{
		1, 1i, 0,
		2, 0, -1,
	})
	b := mat.NewCDense(3, 1, []complex128{
		1i,
		2,
		1 + 1i,
	})
	c := Mul(a, b)
	expected := []complex128{3i, -1 + 1i}
	for i, v := range expected {
		if c.At(i, 0) != v {
			t.Fatalf("%d %v, expected %v", i, c.At(i, 0), v)
		}
	}

	d := Mul(Diag([]complex128{2, 1i}), a)
	if d.At(0, 1) != 2i || d.At(1, 2) != -1i {
		t.Fatalf("%v %v", d.At(0, 1), d.At(1, 2))
	}
}
