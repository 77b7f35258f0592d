package tracker

import (
	"math"

	"github.com/swdee/go-deepsort/postprocess/reid"
)

// DistanceMethod defines how appearance descriptors are compared
type DistanceMethod int

const (
	// Cosine compares descriptors by 1 - cosine similarity
	Cosine DistanceMethod = 0
	// Euclidean compares descriptors by half their L2 distance
	Euclidean DistanceMethod = 1
)

// calcIouDistance returns 1 - IoU for a detection and a track estimate
func calcIouDistance(det, trk Rect) float32 {
	return 1 - det.CalcIoU(trk)
}

// calcAppearanceDistance returns the appearance dissimilarity of two unit
// length descriptors scaled to [0,1]
func calcAppearanceDistance(a, b []float32, method DistanceMethod) float32 {

	switch method {
	case Euclidean:
		if len(a) != len(b) {
			return 1
		}

		return clamp01(reid.EuclideanDistance(a, b) / 2)

	default:
		return 1 - clamp01(reid.CosineSimilarity(a, b))
	}
}

// buildCostMatrix returns the [detections x tracks] fused dissimilarity
// matrix.  Each cell is (1-w)*(1-IoU) + w*appearance distance where w is
// the appearance weight, so every cell lies in [0,1].  An empty matrix is
// returned when there are no detections or no tracks
func buildCostMatrix(objects []Object, features [][]float32, tracks []*Track,
	weight float32, method DistanceMethod) [][]float32 {

	if len(objects) == 0 || len(tracks) == 0 {
		return [][]float32{}
	}

	weight = clamp01(weight)
	costMatrix := make([][]float32, len(objects))

	for i, obj := range objects {

		costMatrix[i] = make([]float32, len(tracks))

		for j, trk := range tracks {
			iouCost := calcIouDistance(obj.Rect, trk.GetRect())
			appCost := calcAppearanceDistance(features[i], trk.GetFeature(), method)

			cost := (1-weight)*iouCost + weight*appCost

			if !isFinite(cost) {
				cost = 1
			}

			costMatrix[i][j] = clamp01(cost)
		}
	}

	return costMatrix
}

// clamp01 restricts val to the range [0,1]
func clamp01(val float32) float32 {

	if val < 0 {
		return 0
	}

	if val > 1 {
		return 1
	}

	return val
}

// isFinite reports whether v is neither NaN nor infinite
func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
