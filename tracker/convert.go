package tracker

import "github.com/swdee/go-deepsort/postprocess"

// DetectionsToObjects takes postprocess object detection results and
// converts them into tracker objects.  Class names are looked up in labels,
// class indexes outside of labels keep an empty label
func DetectionsToObjects(dets []postprocess.DetectResult, labels []string) []Object {

	objs := make([]Object, 0, len(dets))

	for _, det := range dets {

		label := det.Label

		if label == "" && det.Class >= 0 && det.Class < len(labels) {
			label = labels[det.Class]
		}

		objs = append(objs, Object{
			Rect:    NewRect(det.Box.Left, det.Box.Top, det.Box.Right, det.Box.Bottom),
			Label:   label,
			ClassID: det.Class,
			Prob:    det.Probability,
			ID:      det.ID,
		})
	}

	return objs
}
