package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// messageWriter defines the subset of *kafka.Writer used by the sink.
// This allows for easy mocking in unit tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes each record as one message keyed by run id.
type Kafka struct {
	topic     string
	encoding  Encoding
	newWriter func() messageWriter
}

// NewKafka creates a sink for a comma-separated broker list.
func NewKafka(brokers, topic string, encoding Encoding) *Kafka {
	addrs := strings.Split(brokers, ",")
	return &Kafka{
		topic:    topic,
		encoding: encoding,
		newWriter: func() messageWriter {
			return &kafka.Writer{
				Addr:         kafka.TCP(addrs...),
				Topic:        topic,
				Balancer:     &kafka.LeastBytes{},
				RequiredAcks: kafka.RequireOne,
			}
		},
	}
}

func (s *Kafka) Name() string {
	return "kafka"
}

func (s *Kafka) Write(ctx context.Context, rec tracker.PositionRecord) (err error) {
	payload, err := s.encoding.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	w := s.newWriter()
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close kafka writer: %w", cerr)
		}
	}()

	msg := kafka.Message{
		Key:   []byte(rec.RunID),
		Value: payload,
		Time:  rec.Time(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte(s.encoding.ContentType())},
		},
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}
