package features

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"mood-predictor/internal/common"
)

// Partition is a disjoint train/test split of a feature table.
type Partition struct {
	TrainIdx []int
	TestIdx  []int
	TrainX   [][]float64
	TrainY   []float64
	TestX    [][]float64
	TestY    []float64
}

// Split partitions the table into train and test rows. The test share is
// ceil(fraction*n), at least one row and never every row. Membership depends
// only on the table, fraction and seed.
func Split(t Table, target string, fraction float64, seed uint64) (Partition, error) {
	n := len(t)
	if n < 2 {
		return Partition{}, fmt.Errorf("%w: need at least 2 rows to split, got %d", common.ErrInvalidInput, n)
	}
	if !(fraction > 0 && fraction < 1) {
		return Partition{}, fmt.Errorf("%w: test fraction must be within (0,1), got %g", common.ErrInvalidInput, fraction)
	}
	if slices.Contains(Columns, target) {
		return Partition{}, fmt.Errorf("%w: target %q is a feature column", common.ErrInvalidInput, target)
	}
	y, err := t.Column(target)
	if err != nil {
		return Partition{}, err
	}

	nTest := TestSize(n, fraction)
	perm := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Perm(n)

	X := t.Matrix()
	p := Partition{
		TestIdx:  slices.Clip(perm[:nTest]),
		TrainIdx: perm[nTest:],
	}
	for _, i := range p.TrainIdx {
		p.TrainX = append(p.TrainX, X[i])
		p.TrainY = append(p.TrainY, y[i])
	}
	for _, i := range p.TestIdx {
		p.TestX = append(p.TestX, X[i])
		p.TestY = append(p.TestY, y[i])
	}
	return p, nil
}

// TestSize is the number of held-out rows for n rows at the given fraction.
func TestSize(n int, fraction float64) int {
	// tolerate float noise such as 0.2*20 = 4.000000000000001
	nTest := int(math.Ceil(fraction*float64(n) - 1e-9))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	return nTest
}
