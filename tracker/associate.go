package tracker

import (
	"fmt"
)

// linearAssignment matches the rows (detections) of the cost matrix to its
// columns (tracks) minimising total cost, then gates each candidate pair so
// only pairs with a cost strictly below thresh are accepted.  Rows and
// columns that fail the gate or were never paired are reported unmatched
func linearAssignment(costMatrix [][]float32, numRows, numCols int,
	thresh float32) (matchesIdx [][2]int, unmatchRowIdx,
	unmatchColIdx []int, fatalErr error) {

	if len(costMatrix) == 0 || numRows == 0 || numCols == 0 {
		for i := 0; i < numRows; i++ {
			unmatchRowIdx = append(unmatchRowIdx, i)
		}
		for j := 0; j < numCols; j++ {
			unmatchColIdx = append(unmatchColIdx, j)
		}
		return
	}

	rowsol, fatalErr := solveRectangular(costMatrix, numRows, numCols)

	if fatalErr != nil {
		return nil, nil, nil, fmt.Errorf("assignment solve failed: %w", fatalErr)
	}

	colMatched := make([]bool, numCols)

	for i, j := range rowsol {
		if j >= 0 && costMatrix[i][j] < thresh {
			matchesIdx = append(matchesIdx, [2]int{i, j})
			colMatched[j] = true
		} else {
			unmatchRowIdx = append(unmatchRowIdx, i)
		}
	}

	for j, matched := range colMatched {
		if !matched {
			unmatchColIdx = append(unmatchColIdx, j)
		}
	}

	return
}

// solveRectangular solves the rectangular assignment problem by extending
// the cost matrix to a square of size rows+cols.  Dummy cells cost more than
// any real cell so the solution always pairs min(rows, cols) real cells at
// minimum total cost.  It returns the column assigned to each row or -1
func solveRectangular(cost [][]float32, numRows, numCols int) ([]int, error) {

	costMax := float32(0)

	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			if cost[i][j] > costMax {
				costMax = cost[i][j]
			}
		}
	}

	dummy := float64(costMax) + 1
	n := numRows + numCols
	extended := make([][]float64, n)

	for i := range extended {
		extended[i] = make([]float64, n)

		for j := range extended[i] {
			switch {
			case i < numRows && j < numCols:
				extended[i][j] = float64(cost[i][j])
			case i >= numRows && j >= numCols:
				extended[i][j] = 0
			default:
				extended[i][j] = dummy
			}
		}
	}

	x, _, err := lapjv(extended)

	if err != nil {
		return nil, err
	}

	rowsol := make([]int, numRows)

	for i := 0; i < numRows; i++ {
		if x[i] < numCols {
			rowsol[i] = x[i]
		} else {
			rowsol[i] = -1
		}
	}

	return rowsol, nil
}
