package service

import (
	"fmt"
	"os"

	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/model"
	"github.com/jameshpark/meowkitty/pipeline"
	"github.com/jameshpark/meowkitty/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// CascadeDetector 使用 Haar 猫脸级联分类器检测猫
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
	gray       gocv.Mat
}

func NewCascadeDetector(cfg *config.DetectorConfig) (*CascadeDetector, error) {
	if _, err := os.Stat(cfg.Cascade); err != nil {
		return nil, fmt.Errorf("%w: cascade %s: %v", pipeline.ErrDetectorInit, cfg.Cascade, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.Cascade) {
		classifier.Close()
		return nil, fmt.Errorf("%w: could not load cascade %s", pipeline.ErrDetectorInit, cfg.Cascade)
	}

	utils.Logger.Info("cascade classifier loaded", zap.String("cascade", cfg.Cascade))

	return &CascadeDetector{
		classifier: classifier,
		gray:       gocv.NewMat(),
	}, nil
}

// Detect 每个命中的区域都作为一只猫返回，置信度固定为1
func (cd *CascadeDetector) Detect(frame *MatFrame) ([]model.Detection, error) {
	gocv.CvtColor(frame.Mat, &cd.gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(cd.gray, &cd.gray)

	rects := cd.classifier.DetectMultiScale(cd.gray)
	detections := make([]model.Detection, 0, len(rects))
	for _, r := range rects {
		detections = append(detections, model.Detection{
			ClassID:    model.CatClassID,
			Confidence: 1,
			Box:        r,
		})
	}

	return detections, nil
}

func (cd *CascadeDetector) Close() error {
	cd.gray.Close()
	return cd.classifier.Close()
}
