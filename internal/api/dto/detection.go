package dto

import (
	"CircuitEye/internal/model"
	"time"
)

type DetectionResultDTO struct {
	ID                uint64             `json:"id"`
	Filename          string             `json:"filename"`
	ImageURL          string             `json:"image_url"`
	Predictions       []model.Prediction `json:"predictions"`
	HeatmapURL        string             `json:"heatmap_url,omitempty"`
	AnnotatedImageURL string             `json:"annotated_image_url,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// UploadResultDTO 一次上传批次的处理结果。
// Failed 为检测服务按图返回错误、未入库的数量
type UploadResultDTO struct {
	Message  string                `json:"message"`
	Accepted int                   `json:"accepted"`
	Failed   int                   `json:"failed"`
	Results  []*DetectionResultDTO `json:"results"`
}

type RemainingUploadsDTO struct {
	RemainingUploads int `json:"remainingUploads"`
}

type ResultListDTO struct {
	Message string                `json:"message"`
	Results []*DetectionResultDTO `json:"results"`
}
