package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/jameshpark/meowkitty/model"
	"github.com/jameshpark/meowkitty/pipeline/pipelinetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	source   *pipelinetest.Source
	detector *pipelinetest.Detector
	sink     *pipelinetest.Sink
	out      *bytes.Buffer
	progress *Progress
	runner   *Runner[*pipelinetest.Frame]
}

func newFixture(frames int) *fixture {
	f := &fixture{
		source:   &pipelinetest.Source{Rate: 30, Count: frames},
		detector: &pipelinetest.Detector{ByFrame: map[int][]model.Detection{}},
		sink:     &pipelinetest.Sink{Keys: map[int]int{}},
		out:      &bytes.Buffer{},
		progress: &Progress{},
	}
	f.runner = NewRunner[*pipelinetest.Frame](f.source, f.detector, f.sink, RunnerConfig{
		Clock:    NewPlaybackClock(f.source.FPS(), 30),
		QuitKey:  'q',
		Out:      f.out,
		Progress: f.progress,
	})
	// every call advances 2ms: start, decoded, inferred, annotated, elapsed
	base := time.Unix(0, 0)
	calls := 0
	f.runner.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 2 * time.Millisecond)
	}
	return f
}

func (f *fixture) lines() []string {
	return strings.Split(strings.TrimSpace(f.out.String()), "\n")
}

func TestRunDrainsSyntheticSource(t *testing.T) {
	f := newFixture(3)
	f.detector.ByFrame[2] = []model.Detection{pipelinetest.Cat(image.Rect(10, 20, 110, 220), 0.8)}

	res, err := f.runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDrained, res.State)
	assert.Equal(t, 3, res.Frames)
	assert.Equal(t, 1, res.CatFrames)
	assert.Equal(t, 2, res.FirstCatFrame)
	assert.Equal(t, []string{CaptionSearching, CaptionFound, CaptionSearching}, f.lines())

	require.Len(t, f.sink.Shown, 3)
	assert.Empty(t, f.sink.Shown[0].Boxes)
	assert.Len(t, f.sink.Shown[1].Boxes, 1)
	assert.Empty(t, f.sink.Shown[2].Boxes)

	assert.Equal(t, 4, f.source.Reads())
	assert.Equal(t, []int{25, 25, 25}, f.sink.Waits)
}

func TestRunStopsOnQuitKey(t *testing.T) {
	f := newFixture(5)
	f.sink.Keys[2] = 'q'

	res, err := f.runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateQuit, res.State)
	assert.Equal(t, 2, res.Frames)
	assert.Equal(t, 2, f.source.Reads(), "no frame may be read after the quit key")
	assert.Equal(t, 2, f.detector.Calls())
}

func TestRunMasksQuitKey(t *testing.T) {
	f := newFixture(5)
	f.sink.Keys[1] = 0x100000 | 'q'

	res, err := f.runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateQuit, res.State)
	assert.Equal(t, 1, f.source.Reads())
}

func TestRunIgnoresOtherKeys(t *testing.T) {
	f := newFixture(3)
	f.sink.Keys[1] = 'x'
	f.sink.Keys[2] = ' '

	res, err := f.runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDrained, res.State)
	assert.Equal(t, 3, res.Frames)
}

func TestRunHonoursCancelledContext(t *testing.T) {
	f := newFixture(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.runner.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, StateQuit, res.State)
	assert.Zero(t, f.source.Reads())
	assert.Empty(t, f.out.String())
}

func TestRunSourceError(t *testing.T) {
	f := newFixture(3)
	decodeErr := errors.New("corrupt packet")
	f.source.Err = decodeErr
	f.source.FailAt = 2

	res, err := f.runner.Run(context.Background())

	assert.ErrorIs(t, err, decodeErr)
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, 1, res.Frames)
	assert.Len(t, f.sink.Shown, 1)
}

func TestRunDetectorError(t *testing.T) {
	f := newFixture(3)
	f.detector.FailAt = 2

	res, err := f.runner.Run(context.Background())

	assert.ErrorIs(t, err, pipelinetest.ErrInference)
	assert.Equal(t, StateError, res.State)
	assert.Equal(t, 1, res.Frames)
	assert.Len(t, f.sink.Shown, 1)
	assert.Equal(t, []string{CaptionSearching}, f.lines())
}

func TestRunUpdatesProgress(t *testing.T) {
	f := newFixture(4)
	cat := []model.Detection{pipelinetest.Cat(image.Rect(0, 0, 5, 5), 0.4)}
	f.detector.ByFrame[3] = cat
	f.detector.ByFrame[4] = cat

	_, err := f.runner.Run(context.Background())
	require.NoError(t, err)

	snap := f.progress.Snapshot()
	assert.Equal(t, "DRAINED", snap.State)
	assert.EqualValues(t, 4, snap.Frames)
	assert.EqualValues(t, 2, snap.CatFrames)
	assert.EqualValues(t, 3, snap.FirstCatFrame)
	assert.True(t, snap.CatPresent)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "INIT", StateInit.String())
	assert.Equal(t, "RUNNING", StateRunning.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
