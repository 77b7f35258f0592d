package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// boxLabel defines where the detection object label should be rendered on
// the image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// newBoxLabel works out the placement of a text label on top of the given
// box using the fonts alignment and padding.  Labels that would be drawn
// above the top of the image are pushed down inside it
func newBoxLabel(box image.Rectangle, text string, clr color.RGBA,
	font Font, lineThickness int) boxLabel {

	textSize := font.TextSize(text)

	// Calculate the alignment of text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	top := box.Min.Y
	labelHeight := textSize.Y + font.TopPad + font.BottomPad

	if top < labelHeight {
		top = labelHeight
	}

	return boxLabel{
		rect: image.Rect(centerX-textSize.X/2-font.LeftPad, top-labelHeight,
			centerX+textSize.X/2+font.RightPad, top),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, top-font.BottomPad),
	}
}

// drawLabels draws all precalculated box labels so they are the top most
// layer on the image and don't get overlapped by other boxes
func drawLabels(img *gocv.Mat, labels []boxLabel, font Font) {

	for _, box := range labels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// clipBox restricts a box to the image keeping at least one pixel of width
// and height
func clipBox(x1, y1, x2, y2, width, height int) image.Rectangle {

	x1 = clampInt(x1, 0, width-1)
	y1 = clampInt(y1, 0, height-1)
	x2 = clampInt(x2, x1+1, width)
	y2 = clampInt(y2, y1+1, height)

	return image.Rect(x1, y1, x2, y2)
}

// clampInt restricts val to the range [lo,hi], lo wins when hi < lo
func clampInt(val, lo, hi int) int {

	if val > hi {
		val = hi
	}

	if val < lo {
		val = lo
	}

	return val
}
