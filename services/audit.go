package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"findata-mcp/observability"
)

// AuditEvent describes one completed tool call. Arguments are never
// included, only the outcome.
type AuditEvent struct {
	ID         uuid.UUID `json:"id"`
	Tool       string    `json:"tool"`
	Outcome    string    `json:"outcome"`
	Caller     string    `json:"caller,omitempty"`
	Rows       int       `json:"rows"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewAuditEvent stamps an event for a finished call
func NewAuditEvent(tool, outcome, callerKey string, rows int, elapsed time.Duration) AuditEvent {
	return AuditEvent{
		ID:         uuid.New(),
		Tool:       tool,
		Outcome:    outcome,
		Caller:     HashCaller(callerKey),
		Rows:       rows,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
}

// HashCaller pseudonymizes a caller key so raw addresses and client ids
// never leave the process.
func HashCaller(key string) string {
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// AuditSink receives tool call events. Record must not block the caller.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
	Close() error
}

// NopAuditSink drops every event
type NopAuditSink struct{}

func (NopAuditSink) Record(context.Context, AuditEvent) {}
func (NopAuditSink) Close() error                       { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAuditSink publishes audit events to a Kafka topic
type KafkaAuditSink struct {
	writer messageWriter
	topic  string
}

// NewKafkaAuditSink creates an asynchronous producer for the topic.
// Delivery failures are logged and counted, never surfaced to callers.
func NewKafkaAuditSink(brokers []string, topic string) *KafkaAuditSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			metrics := observability.GetMetrics()
			for range messages {
				if err != nil {
					metrics.RecordAuditEvent("failed")
				} else {
					metrics.RecordAuditEvent("published")
				}
			}
			if err != nil {
				observability.Warn("audit delivery failed", "topic", topic, "messages", len(messages), "error", err)
			}
		},
	}
	return newKafkaAuditSink(writer, topic)
}

func newKafkaAuditSink(writer messageWriter, topic string) *KafkaAuditSink {
	return &KafkaAuditSink{writer: writer, topic: topic}
}

// Record enqueues the event keyed by tool name
func (s *KafkaAuditSink) Record(ctx context.Context, event AuditEvent) {
	msg, err := encodeAuditEvent(event)
	if err != nil {
		observability.GetMetrics().RecordAuditEvent("failed")
		observability.Warn("audit event dropped", "tool", event.Tool, "error", err)
		return
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		observability.GetMetrics().RecordAuditEvent("failed")
		observability.Warn("audit event dropped", "tool", event.Tool, "topic", s.topic, "error", err)
	}
}

// Close flushes pending events
func (s *KafkaAuditSink) Close() error {
	return s.writer.Close()
}

func encodeAuditEvent(event AuditEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal audit event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Tool),
		Value: data,
		Time:  event.Timestamp,
	}, nil
}

var (
	_ AuditSink = NopAuditSink{}
	_ AuditSink = (*KafkaAuditSink)(nil)
)
