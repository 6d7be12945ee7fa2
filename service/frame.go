package service

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MatFrame 一帧视频图像，标注直接画在 Mat 上
type MatFrame struct {
	Mat gocv.Mat
}

func (f *MatFrame) DrawBox(r image.Rectangle, c color.RGBA, thickness int) {
	gocv.Rectangle(&f.Mat, r, c, thickness)
}

func (f *MatFrame) DrawText(text string, origin image.Point, scale float64, c color.RGBA, thickness int) {
	gocv.PutText(&f.Mat, text, origin, gocv.FontHersheySimplex, scale, c, thickness)
}

// Bounds 帧的像素范围
func (f *MatFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Mat.Cols(), f.Mat.Rows())
}
