package postprocess

// FilterParams defines the per call detection filtering thresholds
type FilterParams struct {
	// MinConfidence drops detections with a lower Probability
	MinConfidence float32
	// NMSThreshold is the IoU above which the lower scored of two same class
	// detections is suppressed.  Zero or less disables NMS
	NMSThreshold float32
	// Classes limits detections to these class indexes, empty allows all
	Classes []int
	// NumClasses is the number of classes the detector knows, detections
	// with a Class outside of [0,NumClasses) are dropped.  Zero disables
	// the check
	NumClasses int
	// MaxDetections caps the number of detections kept, highest scored
	// first.  Zero means no limit
	MaxDetections int
}

// DefaultFilterParams returns the default filtering parameters
func DefaultFilterParams() FilterParams {
	return FilterParams{
		MinConfidence: 0.25,
		NMSThreshold:  0.45,
	}
}

// Filter returns the detections that have a valid box, a known and allowed
// class and a Probability of at least MinConfidence, with same class
// duplicates removed by NMS.  The result is ordered by descending
// Probability, ties keep their input order.  dets is not modified
func Filter(dets []DetectResult, p FilterParams) []DetectResult {

	allowed := make(map[int]struct{}, len(p.Classes))

	for _, c := range p.Classes {
		allowed[c] = struct{}{}
	}

	kept := make([]DetectResult, 0, len(dets))

	for _, det := range dets {

		if !det.Box.Valid() || det.Probability < p.MinConfidence {
			continue
		}

		if p.NumClasses > 0 && (det.Class < 0 || det.Class >= p.NumClasses) {
			continue
		}

		if len(allowed) > 0 {
			if _, ok := allowed[det.Class]; !ok {
				continue
			}
		}

		kept = append(kept, det)
	}

	if len(kept) == 0 {
		return kept
	}

	order := sortByProbability(kept)

	if p.NMSThreshold > 0 {
		nms(kept, order, p.NMSThreshold)
	}

	out := make([]DetectResult, 0, len(kept))

	for _, idx := range order {

		if idx == -1 {
			continue
		}

		out = append(out, kept[idx])

		if p.MaxDetections > 0 && len(out) == p.MaxDetections {
			break
		}
	}

	return out
}

// sortByProbability returns indexes into dets ordered by descending
// Probability, stable for equal scores
func sortByProbability(dets []DetectResult) []int {

	probs := make([]float32, len(dets))
	order := make([]int, len(dets))

	for i, det := range dets {
		probs[i] = det.Probability
		order[i] = i
	}

	quickSortIndiceInverse(probs, 0, len(probs)-1, order)

	// quick sort is not stable, restore input order among equal scores
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && probs[j] == probs[j-1] && order[j] < order[j-1]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	return order
}
