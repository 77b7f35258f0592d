package render

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// Alignment positions a label horizontally along the top edge of its box
type Alignment int

const (
	Left Alignment = iota + 1
	Center
	Right
)

// Font holds the Hershey font settings used to draw box labels.  The label
// background takes the box color and the text is drawn in Color on top
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// padding between the text and the edge of its background
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	Alignment Alignment
}

// DefaultFont returns the track label font, white anti-aliased text at half
// scale aligned to the left edge of the box
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   2,
		RightPad:  3,
		TopPad:    5,
		BottomPad: 4,
		Alignment: Left,
	}
}

// WithScale returns a copy of the font drawn at scale with the padding
// grown in proportion to DefaultFont's.  Non-positive scales are ignored
func (f Font) WithScale(scale float64) Font {

	if scale <= 0 || f.Scale <= 0 {
		return f
	}

	ratio := scale / f.Scale
	grow := func(v int) int {
		return int(math.Round(float64(v) * ratio))
	}

	f.LeftPad = grow(f.LeftPad)
	f.RightPad = grow(f.RightPad)
	f.TopPad = grow(f.TopPad)
	f.BottomPad = grow(f.BottomPad)
	f.Thickness = max(1, grow(f.Thickness))
	f.Scale = scale

	return f
}

// TextSize returns the width and height of text drawn in the font
func (f Font) TextSize(text string) image.Point {
	return gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)
}
