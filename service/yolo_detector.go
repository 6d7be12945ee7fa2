package service

import (
	"fmt"
	"image"
	"os"

	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/model"
	"github.com/jameshpark/meowkitty/pipeline"
	"github.com/jameshpark/meowkitty/utils"
	"github.com/jameshpark/meowkitty/yolo"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// YOLODetector 使用 OpenCV DNN 运行 YOLOv8 ONNX 模型
type YOLODetector struct {
	net            gocv.Net
	inputSize      int
	scoreThreshold float32
	nmsThreshold   float32
}

func NewYOLODetector(cfg *config.DetectorConfig) (*YOLODetector, error) {
	if _, err := os.Stat(cfg.Model); err != nil {
		return nil, fmt.Errorf("%w: model %s: %v", pipeline.ErrDetectorInit, cfg.Model, err)
	}

	net := gocv.ReadNet(cfg.Model, cfg.ModelConfig)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("%w: could not load model %s", pipeline.ErrDetectorInit, cfg.Model)
	}

	if err := net.SetPreferableBackend(gocv.ParseNetBackend(cfg.Backend)); err != nil {
		net.Close()
		return nil, fmt.Errorf("%w: backend %s: %v", pipeline.ErrDetectorInit, cfg.Backend, err)
	}
	if err := net.SetPreferableTarget(gocv.ParseNetTarget(cfg.Target)); err != nil {
		net.Close()
		return nil, fmt.Errorf("%w: target %s: %v", pipeline.ErrDetectorInit, cfg.Target, err)
	}

	utils.Logger.Info("yolo model loaded",
		zap.String("model", cfg.Model),
		zap.String("backend", cfg.Backend),
		zap.String("target", cfg.Target),
		zap.Int("input_size", cfg.InputSize))

	return &YOLODetector{
		net:            net,
		inputSize:      cfg.InputSize,
		scoreThreshold: cfg.ScoreThreshold,
		nmsThreshold:   cfg.NMSThreshold,
	}, nil
}

// Detect 对一帧做推理，帧本身不被修改
func (d *YOLODetector) Detect(frame *MatFrame) ([]model.Detection, error) {
	blob := gocv.BlobFromImage(frame.Mat, 1.0/255.0, image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read yolo output: %w", err)
	}

	scaleX, scaleY := yolo.Scale(frame.Mat.Cols(), frame.Mat.Rows(), d.inputSize)
	candidates, err := yolo.Decode(data, out.Size(), scaleX, scaleY, d.scoreThreshold)
	if err != nil {
		return nil, err
	}

	return d.suppress(candidates, frame.Bounds()), nil
}

// suppress 按类别做 NMS，并把框裁剪到帧内
func (d *YOLODetector) suppress(candidates []yolo.Candidate, bounds image.Rectangle) []model.Detection {
	byClass := make(map[int][]yolo.Candidate)
	var order []int
	for _, c := range candidates {
		if _, ok := byClass[c.ClassID]; !ok {
			order = append(order, c.ClassID)
		}
		byClass[c.ClassID] = append(byClass[c.ClassID], c)
	}

	var detections []model.Detection
	for _, classID := range order {
		group := byClass[classID]
		boxes := make([]image.Rectangle, len(group))
		scores := make([]float32, len(group))
		for i, c := range group {
			boxes[i] = c.Box
			scores[i] = c.Score
		}

		for _, idx := range gocv.NMSBoxes(boxes, scores, d.scoreThreshold, d.nmsThreshold) {
			detections = append(detections, model.Detection{
				ClassID:    classID,
				Confidence: scores[idx],
				Box:        boxes[idx].Intersect(bounds),
			})
		}
	}

	return detections
}

func (d *YOLODetector) Close() error {
	return d.net.Close()
}
