package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/model"
	"github.com/jameshpark/meowkitty/pipeline"
	"github.com/jameshpark/meowkitty/utils"
	"go.uber.org/zap"
)

// SummaryStore 运行摘要存储
type SummaryStore interface {
	GetRunSummary(ctx context.Context, md5 string) (*model.RunSummary, error)
	SetRunSummary(ctx context.Context, md5 string, summary *model.RunSummary) error
}

// Opener 打开播放所需的三个外部句柄
type Opener[F pipeline.Canvas] struct {
	Source   func(path string) (pipeline.Source[F], error)
	Detector func() (pipeline.Detector[F], error)
	Sink     func() (pipeline.Sink[F], error)
}

type PlaybackHandler[F pipeline.Canvas] struct {
	cfg      *config.Config
	opener   Opener[F]
	store    SummaryStore
	progress *pipeline.Progress
	out      io.Writer

	mu   sync.RWMutex
	last *model.RunSummary
}

// NewPlaybackHandler store 为 nil 时不缓存运行摘要
func NewPlaybackHandler[F pipeline.Canvas](cfg *config.Config, opener Opener[F], store SummaryStore, progress *pipeline.Progress, out io.Writer) *PlaybackHandler[F] {
	if progress == nil {
		progress = &pipeline.Progress{}
	}
	if out == nil {
		out = os.Stdout
	}
	return &PlaybackHandler[F]{
		cfg:      cfg,
		opener:   opener,
		store:    store,
		progress: progress,
		out:      out,
	}
}

// Play 播放一个视频文件。文件不存在或无法打开时打印提示并返回
// pipeline.ErrInputNotFound / pipeline.ErrSourceOpen，调用方按正常退出处理。
// 所有已打开的句柄在任何退出路径上都会被释放。
func (h *PlaybackHandler[F]) Play(ctx context.Context, path string) (*model.RunSummary, error) {
	runID := utils.NewRunID()
	log := utils.Logger.With(zap.String("run_id", runID), zap.String("path", path))

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(h.out, "Error: Video file '%s' not found.\n", path)
			return nil, fmt.Errorf("%w: %s", pipeline.ErrInputNotFound, path)
		}
		fmt.Fprintf(h.out, "Error: Could not open video file '%s'.\n", path)
		return nil, fmt.Errorf("%w: %s: %v", pipeline.ErrSourceOpen, path, err)
	}

	md5 := h.lookupPrevious(ctx, log, path)

	source, err := h.opener.Source(path)
	if err != nil {
		if errors.Is(err, pipeline.ErrInputNotFound) {
			fmt.Fprintf(h.out, "Error: Video file '%s' not found.\n", path)
		} else {
			fmt.Fprintf(h.out, "Error: Could not open video file '%s'.\n", path)
		}
		log.Warn("failed to open video", zap.Error(err))
		if !errors.Is(err, pipeline.ErrInputNotFound) && !errors.Is(err, pipeline.ErrSourceOpen) {
			err = fmt.Errorf("%w: %v", pipeline.ErrSourceOpen, err)
		}
		return nil, err
	}
	defer closeAndLog(log, "source", source)

	detector, err := h.opener.Detector()
	if err != nil {
		if !errors.Is(err, pipeline.ErrDetectorInit) {
			err = fmt.Errorf("%w: %v", pipeline.ErrDetectorInit, err)
		}
		return nil, err
	}
	defer closeAndLog(log, "detector", detector)

	sink, err := h.opener.Sink()
	if err != nil {
		return nil, fmt.Errorf("open display: %w", err)
	}
	defer closeAndLog(log, "display", sink)

	clock := pipeline.NewPlaybackClock(source.FPS(), h.cfg.Playback.FallbackFPS)
	if clock.FPS != source.FPS() {
		log.Warn("invalid source frame rate, using fallback",
			zap.Float64("reported", source.FPS()),
			zap.Float64("fallback", clock.FPS))
	}

	runner := pipeline.NewRunner(source, detector, sink, pipeline.RunnerConfig{
		Clock:    clock,
		QuitKey:  h.cfg.Playback.QuitKey[0],
		Out:      h.out,
		Progress: h.progress,
	})

	fmt.Fprintf(h.out, "Starting video playback. Press '%s' to quit.\n", h.cfg.Playback.QuitKey)
	log.Info("playback started", zap.Float64("fps", clock.FPS), zap.Float64("interval_ms", clock.IntervalMS))

	res, runErr := runner.Run(ctx)

	summary := &model.RunSummary{
		RunID:         runID,
		VideoMD5:      md5,
		Path:          path,
		FPS:           clock.FPS,
		Frames:        res.Frames,
		CatFrames:     res.CatFrames,
		FirstCatFrame: res.FirstCatFrame,
		Outcome:       res.State.String(),
		DurationMS:    res.Duration.Milliseconds(),
		Timestamp:     time.Now().Unix(),
	}
	h.setLast(summary)

	if runErr != nil {
		log.Error("playback failed", zap.String("state", res.State.String()), zap.Error(runErr))
		return summary, runErr
	}

	fmt.Fprintln(h.out, "Video processing complete!")
	log.Info("playback finished",
		zap.String("state", res.State.String()),
		zap.Int("frames", res.Frames),
		zap.Int("cat_frames", res.CatFrames),
		zap.Duration("duration", res.Duration))

	h.saveSummary(ctx, log, summary)
	return summary, nil
}

// Last 最近一次运行的摘要
func (h *PlaybackHandler[F]) Last() *model.RunSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

func (h *PlaybackHandler[F]) Progress() *pipeline.Progress {
	return h.progress
}

func (h *PlaybackHandler[F]) setLast(summary *model.RunSummary) {
	h.mu.Lock()
	h.last = summary
	h.mu.Unlock()
}

func (h *PlaybackHandler[F]) lookupPrevious(ctx context.Context, log *zap.Logger, path string) string {
	if h.store == nil {
		return ""
	}

	md5, err := utils.FileMD5(path)
	if err != nil {
		log.Warn("failed to hash video, summary cache skipped", zap.Error(err))
		return ""
	}

	previous, err := h.store.GetRunSummary(ctx, md5)
	if err != nil {
		log.Warn("failed to get cached summary", zap.Error(err))
		return md5
	}
	if previous != nil {
		log.Info("video played before",
			zap.String("md5", md5),
			zap.String("previous_run", previous.RunID),
			zap.Int("frames", previous.Frames),
			zap.Int("cat_frames", previous.CatFrames),
			zap.Int("first_cat_frame", previous.FirstCatFrame))
	}
	return md5
}

func (h *PlaybackHandler[F]) saveSummary(ctx context.Context, log *zap.Logger, summary *model.RunSummary) {
	if h.store == nil || summary.VideoMD5 == "" {
		return
	}
	// 被信号中断时 ctx 已取消，摘要仍需写入
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := h.store.SetRunSummary(ctx, summary.VideoMD5, summary); err != nil {
		log.Warn("failed to set cached summary", zap.Error(err))
	}
}

func closeAndLog(log *zap.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("failed to release "+name, zap.Error(err))
	}
}
