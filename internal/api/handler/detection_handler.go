package handler

import (
	"CircuitEye/internal/api/dto"
	"CircuitEye/internal/pkg/response"
	"CircuitEye/internal/service"

	"github.com/gin-gonic/gin"
)

type DetectionHandler struct {
	detectionSvc service.DetectionService
}

func NewDetectionHandler(detectionSvc service.DetectionService) *DetectionHandler {
	return &DetectionHandler{
		detectionSvc: detectionSvc,
	}
}

// Upload 接收一批 PCB 图片并走 上传→配额→检测→落库 流水线
func (s *DetectionHandler) Upload(c *gin.Context) {
	userID := c.GetUint64("user_id")

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, service.ErrNoImagesProvided)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		response.Error(c, service.ErrNoImagesProvided)
		return
	}

	result, err := s.detectionSvc.UploadAndDetect(c.Request.Context(), userID, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *DetectionHandler) GetResults(c *gin.Context) {
	userID := c.GetUint64("user_id")

	result, err := s.detectionSvc.GetResults(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *DetectionHandler) GetRemainingUploads(c *gin.Context) {
	userID := c.GetUint64("user_id")

	remaining, err := s.detectionSvc.GetRemainingUploads(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.RemainingUploadsDTO{RemainingUploads: remaining})
}
