package service

import (
	"CircuitEye/internal/api/config"
	"CircuitEye/internal/model"
	"CircuitEye/internal/pkg/consts"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users         map[uint64]*model.User
	updatedFields map[uint64]map[string]interface{}
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:         make(map[uint64]*model.User),
		updatedFields: make(map[uint64]map[string]interface{}),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserRepo) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	return s.users[id], nil
}

func (s *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range s.users {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserRepo) GetUserByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*model.User, error) {
	for _, u := range s.users {
		if u.StripeSubscriptionID != nil && *u.StripeSubscriptionID == subscriptionID {
			return u, nil
		}
	}
	return nil, nil
}

func strPtr(s string) *string {
	return &s
}

func (s *fakeUserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserRepo) UpdateSubscription(ctx context.Context, userID uint64, fields map[string]interface{}) error {
	s.updatedFields[userID] = fields
	return nil
}

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPlanAllowance(t *testing.T) {
	assert.Equal(t, 10, PlanAllowance(consts.PlanBasic))
	assert.Equal(t, 75, PlanAllowance(consts.PlanSilver))
	assert.Equal(t, 200, PlanAllowance(consts.PlanGold))
	assert.Equal(t, 500, PlanAllowance(consts.PlanDiamond))
	// 未知套餐按 basic 兜底
	assert.Equal(t, 10, PlanAllowance("platinum"))
	assert.Equal(t, 10, PlanAllowance(""))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"checkout.session.completed"}`)
	secret := "whsec_test"

	assert.True(t, verifySignature(payload, signPayload(secret, payload), secret))
	assert.False(t, verifySignature(payload, signPayload("wrong", payload), secret))
	assert.False(t, verifySignature(payload, "", secret))
	assert.False(t, verifySignature(payload, signPayload(secret, payload), ""))
}

func TestHandleWebhook(t *testing.T) {
	const secret = "whsec_test"
	config.Cfg = &config.Config{Billing: config.BillingConfig{WebhookSecret: secret}}

	t.Run("checkout completed activates the plan", func(t *testing.T) {
		repo := newFakeUserRepo(&model.User{ID: 7, Username: strPtr("alice")})
		svc := NewSubscriptionService(repo)

		payload := []byte(`{"type":"checkout.session.completed","data":{"user_id":7,"plan":"gold","customer_id":"cus_1","subscription_id":"sub_1"}}`)
		err := svc.HandleWebhook(context.Background(), payload, signPayload(secret, payload))
		require.NoError(t, err)

		fields := repo.updatedFields[7]
		require.NotNil(t, fields)
		assert.Equal(t, consts.PlanGold, fields["plan"])
		assert.Equal(t, 200, fields["photos_per_day"])
		assert.Equal(t, true, fields["is_premium"])
		assert.Equal(t, consts.SubscriptionSubscribed, fields["subscription_status"])
		assert.Equal(t, "cus_1", fields["stripe_customer_id"])
		assert.Equal(t, "sub_1", fields["stripe_subscription_id"])
	})

	t.Run("subscription deleted downgrades to basic", func(t *testing.T) {
		repo := newFakeUserRepo(&model.User{ID: 9, StripeSubscriptionID: strPtr("sub_9")})
		svc := NewSubscriptionService(repo)

		payload := []byte(`{"type":"customer.subscription.deleted","data":{"subscription_id":"sub_9"}}`)
		err := svc.HandleWebhook(context.Background(), payload, signPayload(secret, payload))
		require.NoError(t, err)

		fields := repo.updatedFields[9]
		require.NotNil(t, fields)
		assert.Equal(t, consts.PlanBasic, fields["plan"])
		assert.Equal(t, 10, fields["photos_per_day"])
		assert.Equal(t, false, fields["is_premium"])
		assert.Equal(t, consts.SubscriptionCanceled, fields["subscription_status"])
	})

	t.Run("cancel for unknown subscription is swallowed", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewSubscriptionService(repo)

		payload := []byte(`{"type":"customer.subscription.deleted","data":{"subscription_id":"sub_missing"}}`)
		err := svc.HandleWebhook(context.Background(), payload, signPayload(secret, payload))
		assert.NoError(t, err)
		assert.Empty(t, repo.updatedFields)
	})

	t.Run("unknown event type is ignored", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewSubscriptionService(repo)

		payload := []byte(`{"type":"invoice.paid","data":{}}`)
		err := svc.HandleWebhook(context.Background(), payload, signPayload(secret, payload))
		assert.NoError(t, err)
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewSubscriptionService(repo)

		payload := []byte(`{"type":"checkout.session.completed","data":{"user_id":7}}`)
		err := svc.HandleWebhook(context.Background(), payload, "deadbeef")
		assert.ErrorIs(t, err, ErrWebhookSignature)
		assert.Empty(t, repo.updatedFields)
	})

	t.Run("invalid plan in event is rejected", func(t *testing.T) {
		repo := newFakeUserRepo(&model.User{ID: 7})
		svc := NewSubscriptionService(repo)

		payload := []byte(`{"type":"checkout.session.completed","data":{"user_id":7,"plan":"platinum"}}`)
		err := svc.HandleWebhook(context.Background(), payload, signPayload(secret, payload))
		assert.ErrorIs(t, err, ErrPlanInvalid)
	})
}

func TestCreateCheckoutValidation(t *testing.T) {
	svc := NewSubscriptionService(newFakeUserRepo(&model.User{ID: 1}))

	_, err := svc.CreateCheckout(context.Background(), 1, "platinum")
	assert.ErrorIs(t, err, ErrPlanInvalid)

	_, err = svc.CreateCheckout(context.Background(), 99, "gold")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivatePlanRejectsUnknownPlan(t *testing.T) {
	svc := NewSubscriptionService(newFakeUserRepo())
	err := svc.ActivatePlan(context.Background(), 1, "platinum", "", "")
	assert.ErrorIs(t, err, ErrPlanInvalid)
}
