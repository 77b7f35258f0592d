package preprocess

import (
	"gocv.io/x/gocv"
	"image"
)

// ClipRect restricts the rectangle to the bounds of an image of the given
// width and height.  The result is empty when the rectangle lies entirely
// outside the image
func ClipRect(r image.Rectangle, width, height int) image.Rectangle {
	return r.Canon().Intersect(image.Rect(0, 0, width, height))
}

// Cropper crops regions of interest out of a frame and scales them to a
// fixed reference size
type Cropper struct {
	// size is the dimensions each crop is scaled to
	size image.Point
	// interp is the interpolation used when resizing
	interp gocv.InterpolationFlags
}

// NewCropper returns a Cropper that scales every crop to width x height
func NewCropper(width, height int) *Cropper {
	return &Cropper{
		size:   image.Pt(width, height),
		interp: gocv.InterpolationLinear,
	}
}

// Size returns the reference size crops are scaled to
func (c *Cropper) Size() image.Point {
	return c.size
}

// CropResize clips rect to the frame, then copies that region scaled to the
// reference size into dest.  It returns false without touching dest when
// the frame is empty or the clipped region has no area
func (c *Cropper) CropResize(frame gocv.Mat, rect image.Rectangle,
	dest *gocv.Mat) bool {

	if frame.Empty() {
		return false
	}

	roi := ClipRect(rect, frame.Cols(), frame.Rows())

	if roi.Empty() {
		return false
	}

	region := frame.Region(roi)
	defer region.Close()

	gocv.Resize(region, dest, c.size, 0, 0, c.interp)

	return !dest.Empty()
}
