package service

import (
	"fmt"

	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/pipeline"
)

// NewDetector 根据配置创建检测器
func NewDetector(cfg *config.DetectorConfig) (pipeline.Detector[*MatFrame], error) {
	switch cfg.Engine {
	case "yolo":
		d, err := NewYOLODetector(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "cascade":
		d, err := NewCascadeDetector(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", pipeline.ErrDetectorInit, cfg.Engine)
	}
}
