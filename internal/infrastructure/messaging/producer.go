package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-studio-api/internal/domain/entity"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client redis.UniversalClient
	stream Stream
	maxLen int64
}

// NewProducer 创建消息生产者；stream 为空时使用 StreamNovelEvents
func NewProducer(client redis.UniversalClient, stream Stream, maxLen int64) *Producer {
	if stream == "" {
		stream = StreamNovelEvents
	}
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Producer{client: client, stream: stream, maxLen: maxLen}
}

// Publish 发布消息到流，返回流内消息 ID
func (p *Producer) Publish(ctx context.Context, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(p.stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(p.stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{"data": string(data)},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", id))
	return id, nil
}

// PublishBatchEvent 发布整本生成事件
func (p *Producer) PublishBatchEvent(ctx context.Context, ev *entity.BatchEvent) (string, error) {
	msg, err := BatchEventMessage(ev)
	if err != nil {
		return "", err
	}
	return p.Publish(ctx, msg)
}

// BatchEventMessage 把整本生成事件包装为流消息
func BatchEventMessage(ev *entity.BatchEvent) (*Message, error) {
	msg, err := NewMessage(uuid.NewString(), string(ev.Type), ev.NovelID, ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch event: %w", err)
	}
	msg.CreatedAt = ev.At
	msg.SetMetadata("status", string(ev.Status))
	if ev.Chapter > 0 {
		msg.SetMetadata("chapter", strconv.Itoa(ev.Chapter))
	}
	return msg, nil
}
