package service

import (
	"CircuitEye/internal/api/config"
	"CircuitEye/internal/api/dto"
	"CircuitEye/internal/pkg/consts"
	"CircuitEye/internal/pkg/redis"
	"CircuitEye/internal/repository"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// PlanSpec 套餐定义，photosPerDay 为该档位的每日上传额度
type PlanSpec struct {
	PriceID      string
	PhotosPerDay int
}

var Plans = map[string]PlanSpec{
	consts.PlanBasic:   {PriceID: "price_1QvNboJraeAEtfLfmlXv17lR", PhotosPerDay: 10},
	consts.PlanSilver:  {PriceID: "price_1QvNcxJraeAEtfLftl5v8QJU", PhotosPerDay: 75},
	consts.PlanGold:    {PriceID: "price_1QvNBSJraeAEtfLfxlms1j5j", PhotosPerDay: 200},
	consts.PlanDiamond: {PriceID: "price_1QvNdpJraeAEtfLfhpUuBK6A", PhotosPerDay: 500},
}

// PlanAllowance 返回套餐的每日额度，未知套餐按 basic 处理
func PlanAllowance(plan string) int {
	if spec, ok := Plans[plan]; ok {
		return spec.PhotosPerDay
	}
	return Plans[consts.PlanBasic].PhotosPerDay
}

const (
	webhookEventCheckoutCompleted   = "checkout.session.completed"
	webhookEventSubscriptionDeleted = "customer.subscription.deleted"
)

type SubscriptionService interface {
	CreateCheckout(ctx context.Context, userID uint64, plan string) (*dto.CheckoutSessionDTO, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ActivatePlan(ctx context.Context, userID uint64, plan string, customerID, subscriptionID string) error
	CancelPlan(ctx context.Context, userID uint64) error
	CancelPlanBySubscription(ctx context.Context, subscriptionID string) error
}

type subscriptionServiceImpl struct {
	userRepo repository.UserRepo
}

func NewSubscriptionService(userRepo repository.UserRepo) SubscriptionService {
	return &subscriptionServiceImpl{
		userRepo: userRepo,
	}
}

// CreateCheckout 生成一个指向外部收银台的会话引用。
// 扣款本身由计费系统负责，结果通过回调或消息进来
func (s *subscriptionServiceImpl) CreateCheckout(ctx context.Context, userID uint64, plan string) (*dto.CheckoutSessionDTO, error) {
	spec, ok := Plans[plan]
	if !ok {
		return nil, ErrPlanInvalid
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sessionID := uuid.NewString()
	sessionData, err := json.Marshal(map[string]interface{}{
		"user_id":  userID,
		"plan":     plan,
		"price_id": spec.PriceID,
	})
	if err != nil {
		return nil, err
	}
	err = redis.SetWithExpiration(ctx, consts.CheckoutSessionKey+sessionID, string(sessionData), time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := config.Cfg.Billing
	return &dto.CheckoutSessionDTO{
		SessionID: sessionID,
		URL:       fmt.Sprintf("%s?session_id=%s&price_id=%s", cfg.CheckoutURL, sessionID, spec.PriceID),
	}, nil
}

// HandleWebhook 校验 HMAC 签名后应用计费事件
func (s *subscriptionServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !verifySignature(payload, signature, config.Cfg.Billing.WebhookSecret) {
		return ErrWebhookSignature
	}

	var event dto.WebhookEventDTO
	if err := json.Unmarshal(payload, &event); err != nil {
		return ErrParamInvalid
	}

	switch event.Type {
	case webhookEventCheckoutCompleted:
		if event.Data.UserID == 0 {
			return ErrParamInvalid
		}
		return s.ActivatePlan(ctx, event.Data.UserID, event.Data.Plan, event.Data.CustomerID, event.Data.SubscriptionID)
	case webhookEventSubscriptionDeleted:
		return s.CancelPlanBySubscription(ctx, event.Data.SubscriptionID)
	default:
		log.InfoContext(ctx, "忽略未处理的计费事件", "type", event.Type)
		return nil
	}
}

// ActivatePlan 把用户切到付费套餐并同步每日额度
func (s *subscriptionServiceImpl) ActivatePlan(ctx context.Context, userID uint64, plan string, customerID, subscriptionID string) error {
	if _, ok := Plans[plan]; !ok {
		return ErrPlanInvalid
	}

	fields := map[string]interface{}{
		"plan":                plan,
		"photos_per_day":      PlanAllowance(plan),
		"is_premium":          true,
		"subscription_status": consts.SubscriptionSubscribed,
		"subscription_date":   time.Now(),
	}
	if customerID != "" {
		fields["stripe_customer_id"] = customerID
	}
	if subscriptionID != "" {
		fields["stripe_subscription_id"] = subscriptionID
	}

	return s.userRepo.UpdateSubscription(ctx, userID, fields)
}

// CancelPlan 回落到 basic 套餐
func (s *subscriptionServiceImpl) CancelPlan(ctx context.Context, userID uint64) error {
	return s.userRepo.UpdateSubscription(ctx, userID, map[string]interface{}{
		"plan":                consts.PlanBasic,
		"photos_per_day":      PlanAllowance(consts.PlanBasic),
		"is_premium":          false,
		"subscription_status": consts.SubscriptionCanceled,
	})
}

func (s *subscriptionServiceImpl) CancelPlanBySubscription(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return ErrParamInvalid
	}

	user, err := s.userRepo.GetUserByStripeSubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if user == nil {
		// 本地没有对应订阅时事件直接吞掉，计费系统会重试别的渠道
		log.WarnContext(ctx, "取消事件未匹配到用户", "subscription_id", subscriptionID)
		return nil
	}

	return s.CancelPlan(ctx, user.ID)
}

func verifySignature(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
