package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"playfinder/internal/place/models"
)

// IngestedEvent is the message body published for each persisted place.
type IngestedEvent struct {
	PlaceID    string    `json:"placeId"`
	ExternalID string    `json:"externalId,omitempty"`
	Name       string    `json:"name"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	IngestedAt time.Time `json:"ingestedAt"`
}

// MessageWriter is the subset of kafka.Writer the publisher needs. Interface
// so tests can swap in a recorder.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits one message per persisted place, keyed by place id so
// re-ingestions of the same place land in the same partition.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}}
}

// NewKafkaPublisherWithWriter wires a custom writer, used in tests.
func NewKafkaPublisherWithWriter(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishIngested(ctx context.Context, places []models.Place) error {
	msgs := make([]kafka.Message, 0, len(places))
	now := time.Now().UTC()
	for _, place := range places {
		coords := place.Location.LatLng()
		body, err := json.Marshal(IngestedEvent{
			PlaceID:    place.ID.String(),
			ExternalID: place.ExternalID,
			Name:       place.Name,
			Lat:        coords.Lat,
			Lng:        coords.Lng,
			IngestedAt: now,
		})
		if err != nil {
			return fmt.Errorf("encode ingest event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(place.ID.String()),
			Value: body,
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write ingest events: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
