package kafka

import (
	"context"
	"encoding/json"

	"musteat-service/internal/models"

	segmentio "github.com/segmentio/kafka-go"
)

// VoteEventWriter publishes granted vote actions to the vote event stream,
// keyed by user so one voter's actions stay ordered.
type VoteEventWriter struct {
	writer *segmentio.Writer
}

func NewVoteEventWriter(brokers []string, topic string) *VoteEventWriter {
	return &VoteEventWriter{
		writer: &segmentio.Writer{
			Addr:     segmentio.TCP(brokers...),
			Topic:    topic,
			Balancer: &segmentio.Hash{},
		},
	}
}

func (w *VoteEventWriter) Publish(ctx context.Context, evt models.VoteEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, segmentio.Message{
		Key:   []byte(evt.UserID),
		Value: value,
	})
}

func (w *VoteEventWriter) Close() error {
	return w.writer.Close()
}
