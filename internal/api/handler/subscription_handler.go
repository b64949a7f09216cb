package handler

import (
	"CircuitEye/internal/api/dto"
	"CircuitEye/internal/pkg/response"
	"CircuitEye/internal/service"
	"io"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionSvc service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionSvc service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionSvc: subscriptionSvc,
	}
}

func (s *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.CheckoutRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	session, err := s.subscriptionSvc.CreateCheckout(c.Request.Context(), userID, req.Plan)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session)
}

// Webhook 计费系统回调入口，签名在原始请求体上校验
func (s *SubscriptionHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	signature := c.GetHeader("X-Billing-Signature")
	err = s.subscriptionSvc.HandleWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "计费回调处理失败", "err", err)
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"received": true})
}
