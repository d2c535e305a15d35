package features

import (
	"sort"
	"testing"

	"mood-predictor/internal/common"
	"mood-predictor/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyTable(t *testing.T, n int) Table {
	t.Helper()
	input := make(dataset.Table, n)
	for i := range input {
		input[i] = obs(day(2025, 1, 1).AddDate(0, 0, i), 7, 5, i%2 == 0, float64(i))
	}
	ft, err := Derive(input)
	require.NoError(t, err)
	return ft
}

func TestSplit_SizesAndDisjoint(t *testing.T) {
	ft := dailyTable(t, 20)
	p, err := Split(ft, common.ColMood, 0.2, 42)
	require.NoError(t, err)

	assert.Len(t, p.TestIdx, 4)
	assert.Len(t, p.TrainIdx, 16)
	assert.Len(t, p.TestX, 4)
	assert.Len(t, p.TrainY, 16)

	all := append(append([]int{}, p.TrainIdx...), p.TestIdx...)
	sort.Ints(all)
	for i, idx := range all {
		assert.Equal(t, i, idx)
	}

	// mood equals the row index, so targets line up with indices
	for k, idx := range p.TestIdx {
		assert.Equal(t, float64(idx), p.TestY[k])
		assert.Equal(t, ft[idx].Vector(), p.TestX[k])
	}
}

func TestSplit_IndexSlicesIndependent(t *testing.T) {
	p, err := Split(dailyTable(t, 20), common.ColMood, 0.2, 42)
	require.NoError(t, err)

	train := append([]int{}, p.TrainIdx...)
	grown := append(p.TestIdx, 999)
	assert.Len(t, grown, 5)
	assert.Equal(t, train, p.TrainIdx)
}

func TestSplit_Deterministic(t *testing.T) {
	ft := dailyTable(t, 30)
	a, err := Split(ft, common.ColMood, 0.3, 7)
	require.NoError(t, err)
	b, err := Split(ft, common.ColMood, 0.3, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Split(ft, common.ColMood, 0.3, 8)
	require.NoError(t, err)
	assert.NotEqual(t, a.TestIdx, c.TestIdx)
}

func TestSplit_Errors(t *testing.T) {
	ft := dailyTable(t, 5)

	_, err := Split(ft[:1], common.ColMood, 0.2, 1)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	for _, frac := range []float64{0, 1, -0.1, 1.5} {
		_, err = Split(ft, common.ColMood, frac, 1)
		assert.ErrorIs(t, err, common.ErrInvalidInput, "fraction %g", frac)
	}

	_, err = Split(ft, common.ColSleepHours, 0.2, 1)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Split(ft, "unknown", 0.2, 1)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestTestSize(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{20, 0.2, 4},
		{2, 0.2, 1},
		{2, 0.9, 1},
		{10, 0.25, 3},
		{3, 0.01, 1},
		{100, 0.5, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TestSize(tt.n, tt.fraction), "n=%d fraction=%g", tt.n, tt.fraction)
	}
}
