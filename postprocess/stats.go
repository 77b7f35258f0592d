package postprocess

// Stats summarises the detections of a frame
type Stats struct {
	// Total is the number of detections
	Total int
	// Classes are the distinct class names detected, sorted
	Classes []string
	// ClassCounts is the number of detections per class name
	ClassCounts map[string]int
	// AvgConfidence, MinConfidence and MaxConfidence are zero when there
	// are no detections
	AvgConfidence float32
	MinConfidence float32
	MaxConfidence float32
}

// Summarize computes the statistics of dets.  Class names come from the
// Label field, falling back to labels[Class]
func Summarize(dets []DetectResult, labels []string) Stats {

	stats := Stats{
		Classes:     []string{},
		ClassCounts: make(map[string]int),
	}

	if len(dets) == 0 {
		return stats
	}

	var sum float32
	stats.MinConfidence = dets[0].Probability
	stats.MaxConfidence = dets[0].Probability

	for _, det := range dets {

		sum += det.Probability

		if det.Probability < stats.MinConfidence {
			stats.MinConfidence = det.Probability
		}

		if det.Probability > stats.MaxConfidence {
			stats.MaxConfidence = det.Probability
		}

		name := det.Label

		if name == "" && det.Class >= 0 && det.Class < len(labels) {
			name = labels[det.Class]
		}

		stats.ClassCounts[name]++
	}

	stats.Total = len(dets)
	stats.AvgConfidence = sum / float32(len(dets))
	stats.Classes = sortedClasses(stats.ClassCounts)

	return stats
}
