package postprocess

import (
	"math"
	"sort"
)

// quickSortIndiceInverse is a quick sort algorithm that sorts the objProbs
// vector in descending order and synchronously updates the indices vector
// to track the reordering of elements
func quickSortIndiceInverse(input []float32, left int, right int, indices []int) int {

	var key float32
	var keyIndex int

	low := left
	high := right

	if left < right {
		keyIndex = indices[left]
		key = input[left]

		for low < high {
			for low < high && input[high] <= key {
				high--
			}

			input[low] = input[high]
			indices[low] = indices[high]

			for low < high && input[low] >= key {
				low++
			}

			input[high] = input[low]
			indices[high] = indices[low]
		}

		input[low] = key
		indices[low] = keyIndex

		quickSortIndiceInverse(input, left, low-1, indices)
		quickSortIndiceInverse(input, low+1, right, indices)
	}

	return low
}

// nms implements a per class Non-Maximum Suppression (NMS) over dets.  The
// order slice holds indexes into dets sorted by descending probability,
// suppressed entries are set to -1
func nms(dets []DetectResult, order []int, threshold float32) {

	for i := 0; i < len(order); i++ {

		if order[i] == -1 {
			continue
		}

		n := dets[order[i]]

		for j := i + 1; j < len(order); j++ {

			if order[j] == -1 {
				continue
			}

			m := dets[order[j]]

			if m.Class != n.Class {
				continue
			}

			iou := calculateOverlap(n.Box.Left, n.Box.Top, n.Box.Right, n.Box.Bottom,
				m.Box.Left, m.Box.Top, m.Box.Right, m.Box.Bottom)

			if iou > threshold {
				order[j] = -1
			}
		}
	}
}

// calculateOverlap works out the Intersection of Union (IoU) value of two
// boxes dimensions
func calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1,
	xmax1, ymax1 float32) float32 {

	w := math.Max(0.0, math.Min(float64(xmax0), float64(xmax1))-math.Max(float64(xmin0), float64(xmin1)))
	h := math.Max(0.0, math.Min(float64(ymax0), float64(ymax1))-math.Max(float64(ymin0), float64(ymin1)))
	intersection := w * h

	area0 := (xmax0 - xmin0) * (ymax0 - ymin0)
	area1 := (xmax1 - xmin1) * (ymax1 - ymin1)

	// Calculate union
	union := area0 + area1 - float32(intersection)

	if union <= 0 {
		return 0.0
	}

	// Return Intersection of Union (IoU)
	return float32(intersection) / union
}

// sortedClasses returns the keys of a class count map in ascending order
func sortedClasses(counts map[string]int) []string {

	out := make([]string, 0, len(counts))

	for k := range counts {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
