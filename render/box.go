package render

import (
	"fmt"
	"image/color"

	"github.com/swdee/go-deepsort/postprocess"
	"github.com/swdee/go-deepsort/tracker"
	"gocv.io/x/gocv"
)

// DetectionBoxes renders the bounding boxes around the object detected
func DetectionBoxes(img *gocv.Mat, detectResults []postprocess.DetectResult,
	classNames []string, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0, len(detectResults))

	for i, detResult := range detectResults {

		// Get the color for this object
		useClr := classColors[i%len(classColors)]

		rect := clipBox(int(detResult.Box.Left), int(detResult.Box.Top),
			int(detResult.Box.Right), int(detResult.Box.Bottom), img.Cols(), img.Rows())
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("%s %.2f", className(detResult.Label, detResult.Class, classNames),
			detResult.Probability)

		boxLabels = append(boxLabels, newBoxLabel(rect, text, useClr, font, lineThickness))
	}

	drawLabels(img, boxLabels, font)
}

// StatusColor returns the box color of a track result.  New tracks are
// green, then by score above 0.7 blue, above 0.5 yellow, otherwise red
func StatusColor(res tracker.TrackResult) color.RGBA {

	switch {
	case res.IsNew:
		return Green
	case res.Score > 0.7:
		return Blue
	case res.Score > 0.5:
		return Yellow
	}

	return Red
}

// TrackLabel returns the label text for a track result, such as
// "NEW ID:3 dog 87%" for a track created this frame
func TrackLabel(res tracker.TrackResult, classNames []string) string {

	text := fmt.Sprintf("ID:%d %s %d%%", res.TrackID,
		className(res.Label, res.ClassID, classNames), int(res.Score*100))

	if res.IsNew {
		text = "NEW " + text
	}

	return text
}

// TrackResults renders the tracker output boxes colored by StatusColor and
// labelled with TrackLabel.  classNames are used for results without a
// Label, they may hold translated display names
func TrackResults(img *gocv.Mat, results []tracker.TrackResult,
	classNames []string, font Font, lineThickness int) {

	boxLabels := make([]boxLabel, 0, len(results))

	for _, res := range results {

		useClr := StatusColor(res)

		rect := clipBox(int(res.Rect.TLX()), int(res.Rect.TLY()),
			int(res.Rect.BRX()), int(res.Rect.BRY()), img.Cols(), img.Rows())
		gocv.Rectangle(img, rect, useClr, lineThickness)

		boxLabels = append(boxLabels, newBoxLabel(rect, TrackLabel(res, classNames),
			useClr, font, lineThickness))
	}

	drawLabels(img, boxLabels, font)
}

// TrackerBoxes renders the bounding boxes around tracked objects with a
// color picked per track ID
func TrackerBoxes(img *gocv.Mat, results []tracker.TrackResult,
	classNames []string, font Font, lineThickness int) {

	boxLabels := make([]boxLabel, 0, len(results))

	for _, res := range results {

		useClr := trackColor(res.TrackID)

		rect := clipBox(int(res.Rect.TLX()), int(res.Rect.TLY()),
			int(res.Rect.BRX()), int(res.Rect.BRY()), img.Cols(), img.Rows())
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("%s %d", className(res.Label, res.ClassID, classNames),
			res.TrackID)

		boxLabels = append(boxLabels, newBoxLabel(rect, text, useClr, font, lineThickness))
	}

	drawLabels(img, boxLabels, font)
}

// className returns the display name of a class, preferring classNames
// over the label carried by the result so translations take effect
func className(label string, classID int, classNames []string) string {

	if classID >= 0 && classID < len(classNames) && classNames[classID] != "" {
		return classNames[classID]
	}

	return label
}

// trackColor returns the palette color for a track ID
func trackColor(trackID int) color.RGBA {

	if trackID < 0 {
		trackID = -trackID
	}

	return classColors[trackID%len(classColors)]
}
