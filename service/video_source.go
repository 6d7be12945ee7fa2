package service

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jameshpark/meowkitty/pipeline"
	"github.com/jameshpark/meowkitty/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// VideoSource 从视频文件逐帧读取
type VideoSource struct {
	capture *gocv.VideoCapture
	frame   *MatFrame
	fps     float64
	closed  bool
}

// OpenVideoSource 打开视频文件
func OpenVideoSource(path string) (*VideoSource, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", pipeline.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", pipeline.ErrSourceOpen, path, err)
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pipeline.ErrSourceOpen, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", pipeline.ErrSourceOpen, path)
	}

	s := &VideoSource{
		capture: capture,
		frame:   &MatFrame{Mat: gocv.NewMat()},
		fps:     capture.Get(gocv.VideoCaptureFPS),
	}

	utils.Logger.Info("video opened",
		zap.String("path", path),
		zap.Float64("fps", s.fps),
		zap.Float64("width", capture.Get(gocv.VideoCaptureFrameWidth)),
		zap.Float64("height", capture.Get(gocv.VideoCaptureFrameHeight)),
		zap.Float64("frames", capture.Get(gocv.VideoCaptureFrameCount)))

	return s, nil
}

func (s *VideoSource) FPS() float64 {
	return s.fps
}

// Next 读取下一帧，复用同一个 Mat；流结束时返回 io.EOF
func (s *VideoSource) Next() (*MatFrame, error) {
	if s.closed {
		return nil, io.EOF
	}
	if ok := s.capture.Read(&s.frame.Mat); !ok || s.frame.Mat.Empty() {
		return nil, io.EOF
	}
	return s.frame, nil
}

func (s *VideoSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.frame.Mat.Close()
	return s.capture.Close()
}
