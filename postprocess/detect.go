package postprocess

// DetectionResult is implemented by detector outputs that can be handed to
// the tracker
type DetectionResult interface {
	GetDetectResults() []DetectResult
}

// BoxRect are the dimensions of the bounding box of a detect object in
// pixel coordinates of the source frame
type BoxRect struct {
	Left   float32
	Right  float32
	Top    float32
	Bottom float32
}

// Width returns the width of the box
func (b BoxRect) Width() float32 {
	return b.Right - b.Left
}

// Height returns the height of the box
func (b BoxRect) Height() float32 {
	return b.Bottom - b.Top
}

// Valid reports whether the box has a positive width and height
func (b BoxRect) Valid() bool {
	return b.Right > b.Left && b.Bottom > b.Top
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Label is the class name, when empty it is looked up from the labels
	// file by Class
	Label string
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}

// Detections is a list of detection results for a single frame
type Detections []DetectResult

// GetDetectResults returns the detection results
func (d Detections) GetDetectResults() []DetectResult {
	return d
}
