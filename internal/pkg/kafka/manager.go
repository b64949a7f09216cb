package kafka

import (
	"CircuitEye/internal/api/config"
	"CircuitEye/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	billingConsumer sarama.ConsumerGroup
	billingHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	subscriptionSvc service.SubscriptionService,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	billingConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaBillingConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	billingHandler := NewBillingHandler(subscriptionSvc)

	return &ConsumerManager{
		billingConsumer: billingConsumer,
		billingHandler:  billingHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaBillingConsumer.Topic
		log.Info("Billing consumer started", "topic", topic)
		for {
			if err := m.billingConsumer.Consume(ctx, []string{topic}, m.billingHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.billingConsumer.Close(); err != nil {
		log.Error("Failed to close billing consumer", "err", err)
	}

	return nil
}
