package model

import (
	"time"
)

// Prediction 检测服务对单张图片返回的一个缺陷框
type Prediction struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	XMin       float64 `json:"x_min"`
	YMin       float64 `json:"y_min"`
	XMax       float64 `json:"x_max"`
	YMax       float64 `json:"y_max"`
}

// DetectionRecord 一张图片的检测结果，只追加不修改
type DetectionRecord struct {
	ID                uint64       `gorm:"primaryKey" json:"id"`
	UserID            uint64       `gorm:"not null;index:idx_user_created" json:"userId"`
	Filename          string       `gorm:"type:varchar(255)" json:"filename"`
	ImageURL          string       `gorm:"type:varchar(512)" json:"image_url"`
	ObjectName        string       `gorm:"type:varchar(255)" json:"-"`
	Predictions       []Prediction `gorm:"type:json;serializer:json" json:"predictions"`
	HeatmapURL        string       `gorm:"type:varchar(512)" json:"heatmap_url"`
	AnnotatedImageURL string       `gorm:"type:varchar(512)" json:"annotated_image_url"`
	CreatedAt         time.Time    `gorm:"index:idx_user_created" json:"createdAt"`
}

func (DetectionRecord) TableName() string {
	return "detection_records"
}

// IsDefective 预测列表非空即为缺陷板
func (r *DetectionRecord) IsDefective() bool {
	return len(r.Predictions) > 0
}
