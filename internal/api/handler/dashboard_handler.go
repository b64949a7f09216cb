package handler

import (
	"CircuitEye/internal/pkg/response"
	"CircuitEye/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc: dashboardSvc,
	}
}

// GetDashboard 返回用户看板，同时把当日汇总行写回数据库
func (s *DashboardHandler) GetDashboard(c *gin.Context) {
	userID := c.GetUint64("user_id")

	dashboard, err := s.dashboardSvc.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dashboard)
}
