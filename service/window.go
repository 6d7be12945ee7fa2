package service

import (
	"gocv.io/x/gocv"
)

// Window 预览窗口
type Window struct {
	window *gocv.Window
}

// NewWindow 创建预览窗口（WINDOW_NORMAL，可缩放）
func NewWindow(name string) *Window {
	return &Window{window: gocv.NewWindow(name)}
}

func (w *Window) Show(frame *MatFrame) error {
	w.window.IMShow(frame.Mat)
	return nil
}

// PollKey 等待按键，没有按键时返回 -1
func (w *Window) PollKey(timeoutMS int) int {
	key := w.window.WaitKey(timeoutMS)
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

func (w *Window) Close() error {
	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}
