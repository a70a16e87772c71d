// Package messaging 通过 Redis Stream 对外发布领域事件
package messaging

import (
	"encoding/json"
	"time"
)

// Message 流消息信封
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	NovelID   string            `json:"novel_id"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建消息，payload 序列化为 JSON
func NewMessage(id, msgType, novelID string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:        id,
		Type:      msgType,
		NovelID:   novelID,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流名称
type Stream string

// StreamNovelEvents 整本生成事件默认流
const StreamNovelEvents Stream = "stream:novel:events"
