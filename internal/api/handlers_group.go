package api

import "CircuitEye/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler         *handler.UserHandler
	DetectionHandler    *handler.DetectionHandler
	DashboardHandler    *handler.DashboardHandler
	SubscriptionHandler *handler.SubscriptionHandler
}
