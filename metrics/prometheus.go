package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meowkitty_frames_total",
		Help: "Total number of frames decoded and annotated",
	})

	CatFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meowkitty_cat_frames_total",
		Help: "Total number of frames with at least one cat detection",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meowkitty_stage_duration_seconds",
		Help:    "Duration of each per-frame stage",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"stage"})

	PacingWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meowkitty_pacing_wait_milliseconds",
		Help:    "Wait passed to the key poll after each frame",
		Buckets: []float64{1, 5, 10, 20, 33, 42, 50, 100},
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meowkitty_runs_total",
		Help: "Total number of playback runs, by terminal state",
	}, []string{"state"})
)
