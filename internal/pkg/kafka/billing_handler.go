package kafka

import (
	"CircuitEye/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	billingEventActivated = "subscription.activated"
	billingEventCanceled  = "subscription.canceled"
)

// BillingEvent 计费系统异步推送的套餐变更消息
type BillingEvent struct {
	UserID         uint64 `json:"user_id"`
	Event          string `json:"event"`
	Plan           string `json:"plan"`
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
}

type BillingHandler struct {
	subscriptionSvc service.SubscriptionService
}

func NewBillingHandler(subscriptionSvc service.SubscriptionService) *BillingHandler {
	return &BillingHandler{
		subscriptionSvc: subscriptionSvc,
	}
}

func (s *BillingHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("billing consumer setup")
	return nil
}

func (s *BillingHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("billing consumer cleanup")
	return nil
}

func (s *BillingHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-billing consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("process batch error", "err", err)
		return err
	}
	log.Info("topic-billing consume claim end")
	return nil
}

func (s *BillingHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event BillingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("unmarshal billing event error", "err", err)
		return err
	}
	if event.UserID == 0 {
		return errors.New("billing event missing user_id")
	}

	switch event.Event {
	case billingEventActivated:
		return s.subscriptionSvc.ActivatePlan(ctx, event.UserID, event.Plan, event.CustomerID, event.SubscriptionID)
	case billingEventCanceled:
		return s.subscriptionSvc.CancelPlan(ctx, event.UserID)
	default:
		log.Warn("unknown billing event, skipped", "event", event.Event)
		return nil
	}
}
