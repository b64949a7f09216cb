package dto

type CheckoutRequestDTO struct {
	Plan string `json:"plan" binding:"required"`
}

type CheckoutSessionDTO struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// WebhookEventDTO 计费系统回调事件
type WebhookEventDTO struct {
	Type string         `json:"type"`
	Data WebhookDataDTO `json:"data"`
}

type WebhookDataDTO struct {
	UserID         uint64 `json:"user_id"`
	Plan           string `json:"plan"`
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
}
