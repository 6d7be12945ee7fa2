// Package yolo decodes raw YOLOv8 detection tensors.
//
// A YOLOv8 head emits one row per attribute and one column per anchor:
// [1, 4+C, N], where the first four rows are the box centre and size in
// network-input pixels and the remaining C rows are per-class scores. Some
// exporters transpose this to [1, N, 4+C]; both layouts are accepted.
package yolo

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var ErrShape = errors.New("unexpected yolo output shape")

// Candidate is a decoded box before non-maximum suppression.
type Candidate struct {
	ClassID int
	Score   float32
	Box     image.Rectangle
}

// Scale returns the factors mapping network-input coordinates back to a
// frame of the given size.
func Scale(frameWidth, frameHeight, inputSize int) (float64, float64) {
	return float64(frameWidth) / float64(inputSize), float64(frameHeight) / float64(inputSize)
}

// Decode keeps, for every anchor, its best-scoring class when that score is at
// least minScore, and converts the box to frame pixels.
func Decode(data []float32, dims []int, scaleX, scaleY float64, minScore float32) ([]Candidate, error) {
	if len(dims) != 3 || dims[0] != 1 {
		return nil, fmt.Errorf("%w: %v", ErrShape, dims)
	}

	attrs, anchors := dims[1], dims[2]
	transposed := false
	if attrs > anchors {
		attrs, anchors = anchors, attrs
		transposed = true
	}
	if attrs < 5 {
		return nil, fmt.Errorf("%w: %v has no class scores", ErrShape, dims)
	}
	if len(data) != attrs*anchors {
		return nil, fmt.Errorf("%w: %v needs %d values, got %d", ErrShape, dims, attrs*anchors, len(data))
	}

	at := func(attr, anchor int) float32 {
		if transposed {
			return data[anchor*attrs+attr]
		}
		return data[attr*anchors+anchor]
	}

	var out []Candidate
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 4; c < attrs; c++ {
			if s := at(c, i); s > bestScore {
				best, bestScore = c-4, s
			}
		}
		if best < 0 || bestScore < minScore {
			continue
		}

		cx, cy := float64(at(0, i)), float64(at(1, i))
		w, h := float64(at(2, i)), float64(at(3, i))
		out = append(out, Candidate{
			ClassID: best,
			Score:   bestScore,
			Box: image.Rect(
				int(math.Round((cx-w/2)*scaleX)),
				int(math.Round((cy-h/2)*scaleY)),
				int(math.Round((cx+w/2)*scaleX)),
				int(math.Round((cy+h/2)*scaleY)),
			),
		})
	}

	return out, nil
}
