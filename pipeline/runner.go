package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jameshpark/meowkitty/metrics"
	"github.com/jameshpark/meowkitty/utils"
	"go.uber.org/zap"
)

// RunnerConfig 播放循环参数
type RunnerConfig struct {
	Clock     PlaybackClock
	QuitKey   byte
	Out       io.Writer
	Annotator *Annotator
	Progress  *Progress
}

// Runner 逐帧执行 读取 → 检测 → 标注 → 显示 → 节拍
type Runner[F Canvas] struct {
	source    Source[F]
	detector  Detector[F]
	sink      Sink[F]
	annotator *Annotator
	clock     PlaybackClock
	quitKey   int
	out       io.Writer
	progress  *Progress
	now       func() time.Time
}

// Result 一次运行的结果
type Result struct {
	State         State
	Frames        int
	CatFrames     int
	FirstCatFrame int
	Duration      time.Duration
}

func NewRunner[F Canvas](source Source[F], detector Detector[F], sink Sink[F], cfg RunnerConfig) *Runner[F] {
	r := &Runner[F]{
		source:    source,
		detector:  detector,
		sink:      sink,
		annotator: cfg.Annotator,
		clock:     cfg.Clock,
		quitKey:   int(cfg.QuitKey),
		out:       cfg.Out,
		progress:  cfg.Progress,
		now:       time.Now,
	}
	if r.annotator == nil {
		r.annotator = NewAnnotator()
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.progress == nil {
		r.progress = &Progress{}
	}
	if r.quitKey == 0 {
		r.quitKey = 'q'
	}
	return r
}

// Run 播放直到流结束、按下退出键或 ctx 取消。返回的 State 为
// StateDrained、StateQuit 或 StateError；句柄由调用方释放。
func (r *Runner[F]) Run(ctx context.Context) (Result, error) {
	var res Result
	begin := r.now()
	r.progress.start(begin)

	finish := func(state State, err error) (Result, error) {
		res.State = state
		res.Duration = r.now().Sub(begin)
		r.progress.setState(state)
		metrics.RunsTotal.WithLabelValues(state.String()).Inc()
		return res, err
	}

	for {
		if ctx.Err() != nil {
			utils.Logger.Info("playback cancelled", zap.Int("frames", res.Frames))
			return finish(StateQuit, nil)
		}

		start := r.now()
		frame, err := r.source.Next()
		if errors.Is(err, io.EOF) {
			return finish(StateDrained, nil)
		}
		if err != nil {
			return finish(StateError, fmt.Errorf("read frame %d: %w", res.Frames+1, err))
		}
		decoded := r.now()

		detections, err := r.detector.Detect(frame)
		if err != nil {
			return finish(StateError, fmt.Errorf("detect frame %d: %w", res.Frames+1, err))
		}
		inferred := r.now()

		catPresent := r.annotator.Annotate(frame, detections)
		annotated := r.now()

		res.Frames++
		if catPresent {
			res.CatFrames++
			if res.FirstCatFrame == 0 {
				res.FirstCatFrame = res.Frames
			}
			fmt.Fprintln(r.out, CaptionFound)
		} else {
			fmt.Fprintln(r.out, CaptionSearching)
		}
		r.progress.record(catPresent)
		metrics.FramesTotal.Inc()
		if catPresent {
			metrics.CatFramesTotal.Inc()
		}

		if err := r.sink.Show(frame); err != nil {
			return finish(StateError, fmt.Errorf("show frame %d: %w", res.Frames, err))
		}

		elapsed := r.now().Sub(start)
		wait := WaitMS(r.clock.IntervalMS, float64(elapsed)/float64(time.Millisecond))

		metrics.StageDuration.WithLabelValues("decode").Observe(decoded.Sub(start).Seconds())
		metrics.StageDuration.WithLabelValues("detect").Observe(inferred.Sub(decoded).Seconds())
		metrics.StageDuration.WithLabelValues("annotate").Observe(annotated.Sub(inferred).Seconds())
		metrics.PacingWait.Observe(float64(wait))

		utils.Logger.Debug("frame processed",
			zap.Int("frame", res.Frames),
			zap.Int("detections", len(detections)),
			zap.Bool("cat", catPresent),
			zap.Duration("elapsed", elapsed),
			zap.Int("wait_ms", wait))

		if key := r.sink.PollKey(wait); key >= 0 && key&0xFF == r.quitKey {
			utils.Logger.Info("quit key pressed", zap.Int("frame", res.Frames))
			return finish(StateQuit, nil)
		}
	}
}
