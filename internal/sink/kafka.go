package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Jimmeey2323/freeze-history/internal/domain"
	"github.com/Jimmeey2323/freeze-history/internal/logging"
)

// KafkaProducer lazily manages writers per topic.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages writes messages to the given topic, creating a writer if necessary.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer := p.writerForTopic(topic)
	return writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// messageWriter is the producer surface the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// ComplianceExceeded is the event published for each membership whose freeze
// usage broke its plan's limits.
type ComplianceExceeded struct {
	RunID              string    `json:"runId"`
	MemberID           int64     `json:"memberId"`
	BoughtMembershipID int64     `json:"boughtMembershipId"`
	HostID             string    `json:"hostId"`
	MemberName         string    `json:"memberName"`
	MembershipName     string    `json:"membershipName"`
	FreezeAttempts     int       `json:"freezeAttempts"`
	FrozenDays         int       `json:"frozenDays"`
	PermittedAttempts  int       `json:"permittedFreezeAttempts"`
	PermittedDays      int       `json:"permittedFreezeDays"`
	DetectedAt         time.Time `json:"detectedAt"`
}

// KafkaSink publishes a ComplianceExceeded event per exceeded record, keyed
// by member and membership so re-runs land on the same partition.
type KafkaSink struct {
	producer messageWriter
	topic    string
	log      *logging.Logger
}

// NewKafkaSink constructs the sink.
func NewKafkaSink(producer messageWriter, topic string, log *logging.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, log: log}
}

// Name identifies the sink in logs and metrics.
func (s *KafkaSink) Name() string { return "kafka" }

// Write publishes one event per exceeded membership.
func (s *KafkaSink) Write(ctx context.Context, out Output) error {
	msgs := make([]kafka.Message, 0)
	for _, rec := range out.Records {
		if rec.Status != domain.StatusExceeded {
			continue
		}
		event := ComplianceExceeded{
			RunID:              out.RunID,
			MemberID:           rec.MemberID,
			BoughtMembershipID: rec.BoughtMembershipID,
			HostID:             rec.HostID,
			MemberName:         rec.MemberName,
			MembershipName:     rec.MembershipName,
			FreezeAttempts:     rec.FreezeAttempts,
			FrozenDays:         rec.FrozenDays,
			PermittedAttempts:  rec.PermittedAttempts,
			PermittedDays:      rec.PermittedDays,
			DetectedAt:         out.GeneratedAt,
		}
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal compliance event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(fmt.Sprintf("%d:%d", rec.MemberID, rec.BoughtMembershipID)),
			Value: body,
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := s.producer.WriteMessages(ctx, s.topic, msgs...); err != nil {
		return fmt.Errorf("publish %d compliance events: %w", len(msgs), err)
	}
	s.log.Info("compliance events published", "topic", s.topic, "events", len(msgs))
	return nil
}
