package pipeline

import (
	"errors"
	"image"
	"image/color"

	"github.com/jameshpark/meowkitty/model"
)

var (
	ErrInputNotFound = errors.New("input not found")
	ErrSourceOpen    = errors.New("could not open video source")
	ErrDetectorInit  = errors.New("detector initialization failed")
)

// Canvas is the drawing surface the annotator needs from a frame.
type Canvas interface {
	DrawBox(r image.Rectangle, c color.RGBA, thickness int)
	DrawText(text string, origin image.Point, scale float64, c color.RGBA, thickness int)
}

// Source yields decoded frames in order. Next returns io.EOF once the stream
// is exhausted.
type Source[F any] interface {
	FPS() float64
	Next() (F, error)
	Close() error
}

// Detector runs inference on one frame without modifying it.
type Detector[F any] interface {
	Detect(frame F) ([]model.Detection, error)
	Close() error
}

// Sink displays frames. PollKey blocks for up to timeoutMS and returns the
// pressed key, or -1 when none was pressed.
type Sink[F any] interface {
	Show(frame F) error
	PollKey(timeoutMS int) int
	Close() error
}

// State of a playback run.
type State int

const (
	StateInit State = iota
	StateRunning
	StateDrained
	StateQuit
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateDrained:
		return "DRAINED"
	case StateQuit:
		return "QUIT"
	case StateError:
		return "ERROR"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
