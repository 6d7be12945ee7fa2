package yolo

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tensor builds a [1, 4+classes, anchors] tensor from per-anchor rows of
// cx, cy, w, h, scores...
func tensor(classes int, rows ...[]float32) ([]float32, []int) {
	attrs := 4 + classes
	data := make([]float32, attrs*len(rows))
	for i, row := range rows {
		for a, v := range row {
			data[a*len(rows)+i] = v
		}
	}
	return data, []int{1, attrs, len(rows)}
}

func TestDecode(t *testing.T) {
	data, dims := tensor(3,
		[]float32{100, 100, 40, 20, 0.1, 0.8, 0.3}, // class 1
		[]float32{50, 50, 10, 10, 0.1, 0.1, 0.2},   // below threshold
		[]float32{320, 320, 640, 640, 0.9, 0, 0},   // class 0, whole input
		make([]float32, 7),
		make([]float32, 7),
		make([]float32, 7),
		make([]float32, 7),
		make([]float32, 7),
	)

	got, err := Decode(data, dims, 2, 0.5, 0.25)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].ClassID)
	assert.InDelta(t, 0.8, got[0].Score, 1e-6)
	assert.Equal(t, image.Rect(160, 45, 240, 55), got[0].Box)

	assert.Equal(t, 0, got[1].ClassID)
	assert.Equal(t, image.Rect(0, 0, 1280, 320), got[1].Box)
}

func TestDecodeTransposed(t *testing.T) {
	// [1, anchors, attrs] with more anchors than attributes
	rows := [][]float32{
		{10, 10, 4, 4, 0.0, 0.7},
		{20, 20, 4, 4, 0.0, 0.0},
		{30, 30, 4, 4, 0.6, 0.1},
		{40, 40, 4, 4, 0.0, 0.0},
		{50, 50, 4, 4, 0.0, 0.0},
		{60, 60, 4, 4, 0.0, 0.0},
		{70, 70, 4, 4, 0.0, 0.0},
	}
	var data []float32
	for _, r := range rows {
		data = append(data, r...)
	}

	got, err := Decode(data, []int{1, len(rows), 6}, 1, 1, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ClassID)
	assert.Equal(t, image.Rect(8, 8, 12, 12), got[0].Box)
	assert.Equal(t, 0, got[1].ClassID)
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		data []float32
		dims []int
	}{
		{"rank", make([]float32, 10), []int{10}},
		{"batch", make([]float32, 20), []int{2, 5, 2}},
		{"no classes", make([]float32, 40), []int{1, 4, 10}},
		{"length", make([]float32, 7), []int{1, 6, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.dims, 1, 1, 0.25)
			assert.ErrorIs(t, err, ErrShape)
		})
	}
}

func TestScale(t *testing.T) {
	sx, sy := Scale(1280, 720, 640)
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, 1.125, sy)
}
