// Package pipelinetest provides in-memory frames, sources, detectors and
// sinks for driving the playback loop without OpenCV.
package pipelinetest

import (
	"errors"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/jameshpark/meowkitty/model"
)

// Box is one recorded DrawBox call.
type Box struct {
	Rect      image.Rectangle
	Color     color.RGBA
	Thickness int
}

// Text is one recorded DrawText call.
type Text struct {
	Text   string
	Origin image.Point
	Scale  float64
	Color  color.RGBA
}

// Frame records everything drawn on it.
type Frame struct {
	Index int
	Boxes []Box
	Texts []Text
}

func (f *Frame) DrawBox(r image.Rectangle, c color.RGBA, thickness int) {
	f.Boxes = append(f.Boxes, Box{Rect: r, Color: c, Thickness: thickness})
}

func (f *Frame) DrawText(text string, origin image.Point, scale float64, c color.RGBA, _ int) {
	f.Texts = append(f.Texts, Text{Text: text, Origin: origin, Scale: scale, Color: c})
}

// Source yields Count frames numbered from 1, then io.EOF. Err, when set,
// is returned instead of the frame with index FailAt.
type Source struct {
	Rate   float64
	Count  int
	FailAt int
	Err    error

	mu     sync.Mutex
	reads  int
	closed int
}

func (s *Source) FPS() float64 { return s.Rate }

func (s *Source) Next() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.Err != nil && s.reads == s.FailAt {
		return nil, s.Err
	}
	if s.reads > s.Count {
		return nil, io.EOF
	}
	return &Frame{Index: s.reads}, nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Reads counts Next calls, including the one that hit io.EOF.
func (s *Source) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed > 0
}

// Detector returns ByFrame[frame.Index] for each frame.
type Detector struct {
	ByFrame map[int][]model.Detection
	FailAt  int

	calls  int
	closed bool
}

var ErrInference = errors.New("inference failed")

func (d *Detector) Detect(frame *Frame) ([]model.Detection, error) {
	d.calls++
	if d.FailAt != 0 && frame.Index == d.FailAt {
		return nil, ErrInference
	}
	return d.ByFrame[frame.Index], nil
}

func (d *Detector) Close() error {
	d.closed = true
	return nil
}

func (d *Detector) Calls() int   { return d.calls }
func (d *Detector) Closed() bool { return d.closed }

// Sink records shown frames and answers PollKey from Keys by frame index.
type Sink struct {
	Keys map[int]int

	Shown  []*Frame
	Waits  []int
	closed bool
}

func (s *Sink) Show(frame *Frame) error {
	s.Shown = append(s.Shown, frame)
	return nil
}

func (s *Sink) PollKey(timeoutMS int) int {
	s.Waits = append(s.Waits, timeoutMS)
	if key, ok := s.Keys[len(s.Shown)]; ok {
		return key
	}
	return -1
}

func (s *Sink) Close() error {
	s.closed = true
	return nil
}

func (s *Sink) Closed() bool { return s.closed }

// Cat returns a cat detection covering r.
func Cat(r image.Rectangle, confidence float32) model.Detection {
	return model.Detection{ClassID: model.CatClassID, Confidence: confidence, Box: r}
}

// Other returns a non-cat detection.
func Other(classID int, r image.Rectangle) model.Detection {
	return model.Detection{ClassID: classID, Confidence: 0.9, Box: r}
}
