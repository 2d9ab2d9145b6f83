package mat

import (
	"fmt"
	"slices"
	"testing"
)

func TestAdd(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a          *COO
		c          complex128
		b          *COO
		z          *COO
		numNonZero int
	}{
		{
			a: M([][]complex128{
				{1, 0},
				{0, 2i},
			}),
			c: 1i,
			b: M([][]complex128{
				{1i, 0},
				{2, -5},
			}),
			z: M([][]complex128{
				{0, 0},
				{2i, -3i},
			}),
			numNonZero: 2,
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Add(test.c, test.b)
			if !equal(test.a, test.z) {
				t.Fatalf("%s, expected %s", test.a, test.z)
			}
			if len(test.a.Data) != test.numNonZero {
				t.Fatalf("%d, expected %d", len(test.a.Data), test.numNonZero)
			}
		})
	}
}

func TestMatMul(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *COO
		b *COO
		c *COO
	}{
		{
			a: M([][]complex128{
				{0, 0},
				{-1, 2},
			}),
			b: M([][]complex128{
				{0, 1},
				{0, 2},
			}),
			c: M([][]complex128{
				{0, 0},
				{0, 3},
			}),
		},
		// Annihilation after creation counts quanta plus one.
		{
			a: Destroy(3),
			b: Create(3),
			c: M([][]complex128{
				{1, 0, 0},
				{0, 2, 0},
				{0, 0, 0},
			}),
		},
		{
			a: M([][]complex128{
				{1i, 3},
			}),
			b: M([][]complex128{{3}, {-2}}),
			c: M([][]complex128{{-6 + 3i}}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.MatMul(test.b)
			if !equal(test.a, test.c) {
				t.Fatalf("%s, expected %s", test.a, test.c)
			}
		})
	}
}

func TestRestrict(t *testing.T) {
	t.Parallel()
	m := M([][]complex128{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
	})
	s := m.Restrict([]int{2, 0})
	expected := M([][]complex128{
		{8, 6},
		{2, 0},
	})
	if !equal(s, expected) {
		t.Fatalf("%s, expected %s", s, expected)
	}
}

func TestKron(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a *COO
		b *COO
		c *COO
	}{
		{
			a: M([][]complex128{
				{1, -4, 7},
				{-2, 0, 3},
			}),
			b: M([][]complex128{
				{8, -9, -6, 5},
				{1, -3, 0, 7},
				{2, 8, -8, -3},
				{1, 2, -5, -1},
			}),
			c: M([][]complex128{
				{8, -9, -6, 5, -32, 36, 24, -20, 56, -63, -42, 35},
				{1, -3, 0, 7, -4, 12, 0, -28, 7, -21, 0, 49},
				{2, 8, -8, -3, -8, -32, 32, 12, 14, 56, -56, -21},
				{1, 2, -5, -1, -4, -8, 20, 4, 7, 14, -35, -7},
				{-16, 18, 12, -10, 0, 0, 0, 0, 24, -27, -18, 15},
				{-2, 6, 0, -14, 0, 0, 0, 0, 3, -9, 0, 21},
				{-4, -16, 16, 6, 0, 0, 0, 0, 6, 24, -24, -9},
				{-2, -4, 10, 2, 0, 0, 0, 0, 3, 6, -15, -3},
			}),
		},
		// Scalar kronecker.
		{
			a: M([][]complex128{{1}}),
			b: M([][]complex128{
				{1, 2},
				{3, 4},
			}),
			c: M([][]complex128{
				{1, 2},
				{3, 4},
			}),
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s", test.a), func(t *testing.T) {
			t.Parallel()
			test.a.Kron(test.b)
			if !equal(test.a, test.c) {
				t.Fatalf("%s, expected %s", test.a, test.c)
			}
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	m := M([][]complex128{
		{1, -0.5i},
		{2 + 3i, 0},
	})
	expected := " 1\t-0.5i\n 2+ 3i\t 0"
	if s := m.String(); s != expected {
		t.Fatalf("%q, expected %q", s, expected)
	}
}

func equal(a, b *COO) bool {
	return a.rows == b.rows && a.cols == b.cols && slices.Equal(a.Data, b.Data)
}
