package tracker

// Object represents a single detection handed to the tracker for one frame
type Object struct {
	// Rect is the bounding box of the detected object in x1,y1,x2,y2 format
	Rect Rect
	// Label is the class name of the object detected
	Label string
	// ClassID is the class index of the object from the detector
	ClassID int
	// Prob is the confidence/probability of the object detected
	Prob float32
	// ID is a unique ID to give this object which can be used to match
	// the input detection object and tracked object
	ID int64
	// Feature is an optional precomputed appearance descriptor.  When set to
	// the extractors descriptor length it is used instead of computing one
	// from the frame
	Feature []float32
}

// NewObject is a constructor function for the Object struct
func NewObject(rect Rect, label string, classID int, prob float32) Object {
	return Object{
		Rect:    rect,
		Label:   label,
		ClassID: classID,
		Prob:    prob,
	}
}
