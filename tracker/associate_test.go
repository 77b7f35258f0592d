package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearAssignmentEmpty(t *testing.T) {

	matches, unmatchedRows, unmatchedCols, err := linearAssignment([][]float32{}, 2, 0, 0.3)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, []int{0, 1}, unmatchedRows)
	assert.Empty(t, unmatchedCols)

	matches, unmatchedRows, unmatchedCols, err = linearAssignment([][]float32{}, 0, 3, 0.3)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, unmatchedRows)
	assert.Equal(t, []int{0, 1, 2}, unmatchedCols)
}

func TestLinearAssignmentSquare(t *testing.T) {

	cost := [][]float32{
		{0.9, 0.1},
		{0.2, 0.8},
	}

	matches, unmatchedRows, unmatchedCols, err := linearAssignment(cost, 2, 2, 0.3)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]int{{0, 1}, {1, 0}}, matches)
	assert.Empty(t, unmatchedRows)
	assert.Empty(t, unmatchedCols)
}

func TestLinearAssignmentGate(t *testing.T) {

	cost := [][]float32{
		{0.3, 0.95},
		{0.95, 0.29},
	}

	// a cost equal to the gate is rejected
	matches, unmatchedRows, unmatchedCols, err := linearAssignment(cost, 2, 2, 0.3)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 1}}, matches)
	assert.Equal(t, []int{0}, unmatchedRows)
	assert.Equal(t, []int{0}, unmatchedCols)
}

func TestLinearAssignmentRectangular(t *testing.T) {

	t.Run("more rows", func(t *testing.T) {
		cost := [][]float32{
			{0.1, 0.9},
			{0.8, 0.2},
			{0.5, 0.5},
		}

		matches, unmatchedRows, unmatchedCols, err := linearAssignment(cost, 3, 2, 0.6)
		require.NoError(t, err)
		assert.ElementsMatch(t, [][2]int{{0, 0}, {1, 1}}, matches)
		assert.Equal(t, []int{2}, unmatchedRows)
		assert.Empty(t, unmatchedCols)
	})

	t.Run("more columns", func(t *testing.T) {
		cost := [][]float32{
			{0.9, 0.1, 0.5},
		}

		matches, unmatchedRows, unmatchedCols, err := linearAssignment(cost, 1, 3, 0.3)
		require.NoError(t, err)
		assert.Equal(t, [][2]int{{0, 1}}, matches)
		assert.Empty(t, unmatchedRows)
		assert.Equal(t, []int{0, 2}, unmatchedCols)
	})
}

// TestLinearAssignmentGlobal checks the assignment minimises total cost
// rather than greedily taking the cheapest cell
func TestLinearAssignmentGlobal(t *testing.T) {

	cost := [][]float32{
		{0.1, 0.2},
		{0.2, 0.9},
	}

	// greedy would pair (0,0) then (1,1) for 1.0, optimal is 0.4
	matches, _, _, err := linearAssignment(cost, 2, 2, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]int{{0, 1}, {1, 0}}, matches)
}
