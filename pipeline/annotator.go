package pipeline

import (
	"image"
	"image/color"

	"github.com/jameshpark/meowkitty/model"
)

const (
	CaptionFound     = "Meow kitty!"
	CaptionSearching = "Searching for kitty..."
	catLabel         = "Cat"
)

var (
	green = color.RGBA{G: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

// Annotator draws cat boxes and the status caption onto frames.
type Annotator struct {
	BoxColor       color.RGBA
	BoxThickness   int
	LabelScale     float64
	LabelOffsetY   int
	CaptionOrigin  image.Point
	CaptionScale   float64
	FoundColor     color.RGBA
	SearchingColor color.RGBA
}

func NewAnnotator() *Annotator {
	return &Annotator{
		BoxColor:       green,
		BoxThickness:   2,
		LabelScale:     0.9,
		LabelOffsetY:   10,
		CaptionOrigin:  image.Pt(10, 30),
		CaptionScale:   1,
		FoundColor:     green,
		SearchingColor: red,
	}
}

// Annotate marks every cat detection on the frame and reports whether at
// least one was present. Confidence is not filtered here: whatever the
// detector returned with the cat class counts.
func (a *Annotator) Annotate(frame Canvas, detections []model.Detection) bool {
	catPresent := false

	for _, det := range detections {
		if !det.IsCat() {
			continue
		}
		catPresent = true
		frame.DrawBox(det.Box, a.BoxColor, a.BoxThickness)
		labelAt := image.Pt(det.Box.Min.X, det.Box.Min.Y-a.LabelOffsetY)
		frame.DrawText(catLabel, labelAt, a.LabelScale, a.BoxColor, a.BoxThickness)
	}

	if catPresent {
		frame.DrawText(CaptionFound, a.CaptionOrigin, a.CaptionScale, a.FoundColor, 2)
	} else {
		frame.DrawText(CaptionSearching, a.CaptionOrigin, a.CaptionScale, a.SearchingColor, 2)
	}

	return catPresent
}
