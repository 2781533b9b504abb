package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ridgecast/forecast-sms/internal/config"
	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Writer produces compiled replies to the outbound topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured outbound topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Load publishes one reply to the outbound topic.
func (w *Writer) Load(ctx context.Context, out domain.OutboundMessage) error {
	msg, err := serializeToMessage(out)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a reply into a Kafka message. The key is the
// recipient number so each sender's replies stay ordered on one partition.
// Billing fields ride in headers so the gateway's billing tap can read them
// without unmarshalling the body.
func serializeToMessage(out domain.OutboundMessage) (kafkago.Message, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize outbound message: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(out.To),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "segment_count", Value: []byte(strconv.Itoa(out.SegmentCount))},
			{Key: "character_count", Value: []byte(strconv.Itoa(out.CharacterCount))},
			{Key: "cost_basis_amount", Value: []byte(strconv.FormatFloat(out.CostBasis.Amount, 'f', -1, 64))},
		},
	}, nil
}
