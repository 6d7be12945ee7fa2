package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/middleware"
	"github.com/jameshpark/meowkitty/model"
	"github.com/jameshpark/meowkitty/pipeline"
	"github.com/jameshpark/meowkitty/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildInfo 版本信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GitBranch string `json:"git_branch"`
}

// RunReporter 提供当前和最近一次运行的状态
type RunReporter interface {
	Progress() *pipeline.Progress
	Last() *model.RunSummary
}

// StatusServer 可选的状态查询服务
type StatusServer struct {
	srv      *http.Server
	reporter RunReporter
	build    BuildInfo
}

func NewStatusServer(cfg *config.StatusConfig, reporter RunReporter, build BuildInfo) *StatusServer {
	s := &StatusServer{reporter: reporter, build: build}

	gin.SetMode(cfg.Mode)
	s.srv = &http.Server{
		Addr:              cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *StatusServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger("/metrics", "/health"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": s.build.Version,
		})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.build)
	})
	r.GET("/stats", s.Stats)
	r.GET("/stats/last", s.LastRun)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Stats 当前运行的进度
func (s *StatusServer) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.reporter.Progress().Snapshot())
}

// LastRun 最近一次完成的运行摘要
func (s *StatusServer) LastRun(c *gin.Context) {
	last := s.reporter.Last()
	if last == nil {
		c.JSON(http.StatusNotFound, model.StatusResponse{
			Success: false,
			Message: "no finished run yet",
		})
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{
		Success: true,
		Message: "ok",
		Data:    last,
	})
}

// Start 后台启动
func (s *StatusServer) Start() {
	go func() {
		utils.Logger.Info("status server starting", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Error("status server error", zap.Error(err))
		}
	}()
}

func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
