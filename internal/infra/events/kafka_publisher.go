package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"lumiere/internal/usecase"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	topicOrderCreated       = "orders.created"
	topicOrderStatusChanged = "orders.status_changed"
)

// KafkaPublisher は注文イベントをKafkaへミラーする。
// 送信失敗は呼び出し側で警告ログにするだけで、業務処理は止めない。
type KafkaPublisher struct {
	created *kafka.Writer
	status  *kafka.Writer
	logger  *zap.Logger
}

func NewKafkaPublisher(brokers []string, logger *zap.Logger) *KafkaPublisher {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		}
	}
	return &KafkaPublisher{
		created: newWriter(topicOrderCreated),
		status:  newWriter(topicOrderStatusChanged),
		logger:  logger,
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, ev usecase.OrderCreatedEvent) error {
	return p.publish(ctx, p.created, ev.OrderID, ev)
}

func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, ev usecase.OrderStatusChangedEvent) error {
	return p.publish(ctx, p.status, ev.OrderID, ev)
}

// キーは注文ID（同じ注文のイベント順序を保つ）
func (p *KafkaPublisher) publish(ctx context.Context, w *kafka.Writer, orderID int64, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	if err := p.created.Close(); err != nil {
		p.logger.Warn("kafka writer close failed", zap.Error(err))
	}
	return p.status.Close()
}

// NopPublisher はKafka未設定時のダミー。
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (NopPublisher) PublishOrderCreated(context.Context, usecase.OrderCreatedEvent) error {
	return nil
}

func (NopPublisher) PublishOrderStatusChanged(context.Context, usecase.OrderStatusChangedEvent) error {
	return nil
}
