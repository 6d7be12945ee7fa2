package model

import "image"

// CatClassID COCO 数据集中 cat 的类别编号
const CatClassID = 15

// Detection 单个检测结果
type Detection struct {
	ClassID    int             `json:"class_id"`
	Confidence float32         `json:"confidence"`
	Box        image.Rectangle `json:"box"` // Min=(x1,y1) Max=(x2,y2)
}

// IsCat 是否为猫
func (d Detection) IsCat() bool {
	return d.ClassID == CatClassID
}
