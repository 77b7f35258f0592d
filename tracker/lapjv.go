package tracker

import (
	"errors"
	"fmt"
)

const (
	// lapLarge is used as the starting minimum when scanning costs
	lapLarge = 1000000.0
)

var (
	// errNoAugmentingPath is returned when the shortest path search fails
	// which only happens if the cost matrix contains NaN values
	errNoAugmentingPath = errors.New("no augmenting path found")
)

// lapjv solves the dense square Linear Assignment Problem using the
// Jonker-Volgenant algorithm.  It returns rowsol, the column assigned to
// each row, and colsol, the row assigned to each column
func lapjv(cost [][]float64) (rowsol []int, colsol []int, err error) {

	n := len(cost)
	rowsol = make([]int, n)
	colsol = make([]int, n)

	if n == 0 {
		return rowsol, colsol, nil
	}

	freeRows := make([]int, n)
	v := make([]float64, n)

	numFree := columnReduction(n, cost, freeRows, rowsol, colsol, v)

	// two rounds of augmenting row reduction are enough in practice
	for round := 0; numFree > 0 && round < 2; round++ {
		numFree = augmentingRowReduction(n, cost, numFree, freeRows, rowsol,
			colsol, v)
	}

	if numFree > 0 {
		err = augment(n, cost, numFree, freeRows, rowsol, colsol, v)

		if err != nil {
			return nil, nil, fmt.Errorf("lapjv augmentation failed: %w", err)
		}
	}

	return rowsol, colsol, nil
}

// columnReduction assigns each column to the row holding its minimum cost
// then transfers the reduction for rows that won a single column.  It
// returns the number of rows left unassigned
func columnReduction(n int, cost [][]float64, freeRows, x, y []int,
	v []float64) int {

	unique := make([]bool, n)

	for i := 0; i < n; i++ {
		x[i] = -1
		v[i] = lapLarge
		y[i] = 0
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if cost[i][j] < v[j] {
				v[j] = cost[i][j]
				y[j] = i
			}
		}
	}

	for i := range unique {
		unique[i] = true
	}

	for j := n - 1; j >= 0; j-- {
		i := y[j]

		if x[i] < 0 {
			x[i] = j
		} else {
			unique[i] = false
			y[j] = -1
		}
	}

	numFree := 0

	for i := 0; i < n; i++ {

		if x[i] < 0 {
			freeRows[numFree] = i
			numFree++
			continue
		}

		if !unique[i] {
			continue
		}

		// reduction transfer
		j := x[i]
		minVal := lapLarge

		for j2 := 0; j2 < n; j2++ {
			if j2 == j {
				continue
			}

			if c := cost[i][j2] - v[j2]; c < minVal {
				minVal = c
			}
		}

		v[j] -= minVal
	}

	return numFree
}

// augmentingRowReduction tries to assign each free row to its cheapest
// reduced cost column, displacing the current owner when that lowers the
// column price.  It returns the number of rows still free
func augmentingRowReduction(n int, cost [][]float64, numFree int, freeRows,
	x, y []int, v []float64) int {

	current := 0
	newFree := 0
	steps := 0

	for current < numFree {

		steps++
		freeI := freeRows[current]
		current++

		// find the lowest and second lowest reduced cost of this row
		j1 := 0
		u1 := cost[freeI][0] - v[0]
		j2 := -1
		u2 := lapLarge

		for j := 1; j < n; j++ {
			c := cost[freeI][j] - v[j]

			if c >= u2 {
				continue
			}

			if c >= u1 {
				u2 = c
				j2 = j
			} else {
				u2 = u1
				u1 = c
				j2 = j1
				j1 = j
			}
		}

		i0 := y[j1]
		u1New := v[j1] - (u2 - u1)
		lowers := u1New < v[j1]

		if steps < current*n {
			if lowers {
				v[j1] = u1New
			} else if i0 >= 0 && j2 >= 0 {
				j1 = j2
				i0 = y[j2]
			}

			if i0 >= 0 {
				if lowers {
					current--
					freeRows[current] = i0
				} else {
					freeRows[newFree] = i0
					newFree++
				}
			}

		} else if i0 >= 0 {
			freeRows[newFree] = i0
			newFree++
		}

		x[freeI] = j1
		y[j1] = freeI
	}

	return newFree
}

// findMinColumns moves the columns sharing the minimum distance d[j] to the
// front of the todo region starting at lo and returns the new end of that
// region
func findMinColumns(n int, lo int, d []float64, cols []int) int {

	hi := lo + 1
	minD := d[cols[lo]]

	for k := hi; k < n; k++ {

		j := cols[k]

		if d[j] > minD {
			continue
		}

		if d[j] < minD {
			hi = lo
			minD = d[j]
		}

		cols[k] = cols[hi]
		cols[hi] = j
		hi++
	}

	return hi
}

// scanColumns relaxes the distances of the todo columns using each ready
// column in [lo, hi).  It returns an unassigned column reached at minimum
// distance, or -1 if none was found
func scanColumns(n int, cost [][]float64, lo, hi *int, d []float64,
	cols, pred, y []int, v []float64) int {

	for *lo != *hi {

		j := cols[*lo]
		*lo++
		i := y[j]
		minD := d[j]
		h := cost[i][j] - v[j] - minD

		for k := *hi; k < n; k++ {
			j = cols[k]
			reduced := cost[i][j] - v[j] - h

			if reduced >= d[j] {
				continue
			}

			d[j] = reduced
			pred[j] = i

			if reduced == minD {
				if y[j] < 0 {
					return j
				}

				cols[k] = cols[*hi]
				cols[*hi] = j
				*hi++
			}
		}
	}

	return -1
}

// shortestPath runs a Dijkstra style search from the free row startI and
// returns the unassigned column that ends the augmenting path
func shortestPath(n int, cost [][]float64, startI int, y []int, v []float64,
	pred []int) int {

	lo := 0
	hi := 0
	endJ := -1
	numReady := 0
	cols := make([]int, n)
	d := make([]float64, n)

	for j := 0; j < n; j++ {
		cols[j] = j
		pred[j] = startI
		d[j] = cost[startI][j] - v[j]
	}

	for endJ == -1 {

		if lo == hi {
			numReady = lo
			hi = findMinColumns(n, lo, d, cols)

			for k := lo; k < hi; k++ {
				if j := cols[k]; y[j] < 0 {
					endJ = j
				}
			}
		}

		if endJ == -1 {
			endJ = scanColumns(n, cost, &lo, &hi, d, cols, pred, y, v)
		}
	}

	// update column prices of the ready set
	minD := d[cols[lo]]

	for k := 0; k < numReady; k++ {
		j := cols[k]
		v[j] += d[j] - minD
	}

	return endJ
}

// augment assigns every remaining free row by following shortest
// augmenting paths
func augment(n int, cost [][]float64, numFree int, freeRows,
	x, y []int, v []float64) error {

	pred := make([]int, n)

	for _, freeI := range freeRows[:numFree] {

		j := shortestPath(n, cost, freeI, y, v, pred)

		if j < 0 || j >= n {
			return errNoAugmentingPath
		}

		i := -1
		steps := 0

		for i != freeI {
			i = pred[j]
			y[j] = i
			j, x[i] = x[i], j
			steps++

			if steps > n {
				return errNoAugmentingPath
			}
		}
	}

	return nil
}
