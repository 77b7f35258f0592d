package tracker

import (
	"image"
	"math"
)

// Xysr (center x, center y, scale/area, aspect ratio) represents the 1x4
// measurement vector the Kalman filter observes
type Xysr []float64

// Rect represents a bounding box in Tlbr (x1, y1, x2, y2) format
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// NewRect creates a new Rect from its top left and bottom right corners
func NewRect(x1, y1, x2, y2 float32) Rect {
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// NewRectFromTlwh creates a new Rect from top left coordinates and its
// width and height
func NewRectFromTlwh(x, y, width, height float32) Rect {
	return Rect{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// TLX returns the top-left x coordinate of the rectangle
func (r Rect) TLX() float32 {
	return r.X1
}

// TLY returns the top-left y coordinate of the rectangle
func (r Rect) TLY() float32 {
	return r.Y1
}

// BRX returns the bottom-right x coordinate of the rectangle
func (r Rect) BRX() float32 {
	return r.X2
}

// BRY returns the bottom-right y coordinate of the rectangle
func (r Rect) BRY() float32 {
	return r.Y2
}

// Width returns the width of the rectangle
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the height of the rectangle
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the rectangle, zero for degenerate boxes
func (r Rect) Area() float32 {

	w := r.Width()
	h := r.Height()

	if w <= 0 || h <= 0 {
		return 0
	}

	return w * h
}

// Center returns the center point of the rectangle
func (r Rect) Center() (float32, float32) {
	return r.X1 + r.Width()/2, r.Y1 + r.Height()/2
}

// Valid reports whether the rectangle has a positive width and height
func (r Rect) Valid() bool {
	return r.X2 > r.X1 && r.Y2 > r.Y1
}

// ImageRect converts the rectangle to integer pixel coordinates
func (r Rect) ImageRect() image.Rectangle {
	return image.Rect(int(r.X1), int(r.Y1), int(r.X2), int(r.Y2))
}

// GetTlbr returns the rectangle as a [x1, y1, x2, y2] array
func (r Rect) GetTlbr() [4]float32 {
	return [4]float32{r.X1, r.Y1, r.X2, r.Y2}
}

// GetXysr converts the rectangle to Xysr (center x, center y, area,
// aspect ratio) format.  A zero height gives an aspect ratio of 1
func (r Rect) GetXysr() Xysr {

	w := float64(r.Width())
	h := float64(r.Height())

	ratio := 1.0

	if h > 0 {
		ratio = w / h
	}

	return Xysr{
		float64(r.X1) + w/2,
		float64(r.Y1) + h/2,
		w * h,
		ratio,
	}
}

// GenerateRectByXysr creates a Rect from Xysr (center x, center y, area,
// aspect ratio) format
func GenerateRectByXysr(xysr Xysr) Rect {

	w := 0.0

	if prod := xysr[2] * xysr[3]; prod > 0 {
		w = math.Sqrt(prod)
	}

	h := 0.0

	if w > 0 {
		h = xysr[2] / w
	}

	return Rect{
		X1: float32(xysr[0] - w/2),
		Y1: float32(xysr[1] - h/2),
		X2: float32(xysr[0] + w/2),
		Y2: float32(xysr[1] + h/2),
	}
}

// CalcIoU calculates the Intersection over Union (IoU) with another
// rectangle.  Disjoint boxes and a zero union return 0
func (r Rect) CalcIoU(other Rect) float32 {

	ix1 := math.Max(float64(r.X1), float64(other.X1))
	iy1 := math.Max(float64(r.Y1), float64(other.Y1))
	ix2 := math.Min(float64(r.X2), float64(other.X2))
	iy2 := math.Min(float64(r.Y2), float64(other.Y2))

	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}

	inter := (ix2 - ix1) * (iy2 - iy1)
	union := float64(r.Width())*float64(r.Height()) +
		float64(other.Width())*float64(other.Height()) - inter

	if union <= 0 {
		return 0
	}

	return float32(inter / union)
}
