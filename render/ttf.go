package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/swdee/go-deepsort/tracker"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TTFLabeler draws track labels with a TrueType font so class names in any
// script can be rendered, which the Hershey fonts of OpenCV can not do
type TTFLabeler struct {
	face      font.Face
	textColor color.RGBA
	pad       int
}

// NewTTFLabeler loads the TTF or OTF font file at path for drawing labels of
// the given point size
func NewTTFLabeler(path string, size float64) (*TTFLabeler, error) {

	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	return NewTTFLabelerFromBytes(fontBytes, size)
}

// NewTTFLabelerFromBytes parses font data for drawing labels of the given
// point size
func NewTTFLabelerFromBytes(fontBytes []byte, size float64) (*TTFLabeler, error) {

	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return &TTFLabeler{
		face:      face,
		textColor: White,
		pad:       3,
	}, nil
}

// Close releases the font face
func (t *TTFLabeler) Close() error {
	return t.face.Close()
}

// Measure returns the pixel size of the label patch for text
func (t *TTFLabeler) Measure(text string) image.Point {

	metrics := t.face.Metrics()
	width := font.MeasureString(t.face, text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	return image.Pt(width+2*t.pad, height+2*t.pad)
}

// Draw writes text on a filled background of color bg with its top left
// corner at pt.  The parts of the label outside the image are dropped
func (t *TTFLabeler) Draw(img *gocv.Mat, text string, pt image.Point,
	bg color.RGBA) error {

	size := t.Measure(text)

	rgba := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(t.textColor),
		Face: t.face,
		Dot: fixed.Point26_6{
			X: fixed.I(t.pad),
			Y: fixed.I(t.pad) + t.face.Metrics().Ascent,
		},
	}
	dr.DrawString(text)

	dest := image.Rectangle{Min: pt, Max: pt.Add(size)}
	visible := dest.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))

	if visible.Empty() {
		return nil
	}

	patch, err := gocv.ImageToMatRGB(rgba)

	if err != nil {
		return fmt.Errorf("error creating Mat from label: %w", err)
	}

	defer patch.Close()

	src := patch.Region(visible.Sub(pt))
	defer src.Close()

	dst := img.Region(visible)
	defer dst.Close()

	src.CopyTo(&dst)

	return nil
}

// TrackResults draws the status colored boxes of the track results with
// their labels rendered in the TTF font
func (t *TTFLabeler) TrackResults(img *gocv.Mat, results []tracker.TrackResult,
	classNames []string, lineThickness int) error {

	for _, res := range results {

		useClr := StatusColor(res)

		rect := clipBox(int(res.Rect.TLX()), int(res.Rect.TLY()),
			int(res.Rect.BRX()), int(res.Rect.BRY()), img.Cols(), img.Rows())
		gocv.Rectangle(img, rect, useClr, lineThickness)
	}

	// labels are drawn last so no box line crosses them
	for _, res := range results {

		text := TrackLabel(res, classNames)
		size := t.Measure(text)

		rect := clipBox(int(res.Rect.TLX()), int(res.Rect.TLY()),
			int(res.Rect.BRX()), int(res.Rect.BRY()), img.Cols(), img.Rows())

		top := rect.Min.Y - size.Y

		if top < 0 {
			top = 0
		}

		if err := t.Draw(img, text, image.Pt(rect.Min.X, top), StatusColor(res)); err != nil {
			return err
		}
	}

	return nil
}
