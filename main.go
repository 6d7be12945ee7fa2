package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/handler"
	"github.com/jameshpark/meowkitty/pipeline"
	"github.com/jameshpark/meowkitty/service"
	"github.com/jameshpark/meowkitty/utils"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func init() {
	// HighGUI 窗口需要固定在主线程
	runtime.LockOSThread()
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <video_path>\n\nDetect cats in a video file.\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		os.Exit(1)
	}
}

func run(videoPath string) error {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Log.Mode); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return err
	}
	defer utils.Sync()

	utils.Logger.Info("starting meowkitty",
		zap.String("version", Version),
		zap.String("git_commit", GitCommit),
		zap.String("detector", cfg.Detector.Engine))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 运行摘要缓存（可选）
	var store handler.SummaryStore
	if cfg.Redis.Enabled {
		redisService := service.NewRedisService(&cfg.Redis)
		defer redisService.Close()
		if err := redisService.Ping(ctx); err != nil {
			utils.Logger.Warn("redis connection failed, summary cache disabled", zap.Error(err))
		} else {
			utils.Logger.Info("redis connected successfully")
			store = redisService
		}
	}

	opener := handler.Opener[*service.MatFrame]{
		Source: func(path string) (pipeline.Source[*service.MatFrame], error) {
			source, err := service.OpenVideoSource(path)
			if err != nil {
				return nil, err
			}
			return source, nil
		},
		Detector: func() (pipeline.Detector[*service.MatFrame], error) {
			return service.NewDetector(&cfg.Detector)
		},
		Sink: func() (pipeline.Sink[*service.MatFrame], error) {
			return service.NewWindow(cfg.Playback.WindowName), nil
		},
	}
	playback := handler.NewPlaybackHandler(cfg, opener, store, nil, os.Stdout)

	// 状态服务（可选）
	if cfg.Status.Enabled {
		status := handler.NewStatusServer(&cfg.Status, playback, handler.BuildInfo{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
			GitBranch: GitBranch,
		})
		status.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := status.Shutdown(shutdownCtx); err != nil {
				utils.Logger.Warn("status server shutdown failed", zap.Error(err))
			}
		}()
	}

	_, err := playback.Play(ctx, videoPath)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrInputNotFound), errors.Is(err, pipeline.ErrSourceOpen):
		// 已向用户打印提示，按正常退出处理
		utils.Logger.Debug("input rejected", zap.Error(err))
		return nil
	case errors.Is(err, pipeline.ErrDetectorInit):
		utils.Logger.Error("failed to initialize detector", zap.Error(err))
		return err
	default:
		utils.Logger.Error("playback failed", zap.Error(err))
		return err
	}
}
