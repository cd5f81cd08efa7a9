package publisher

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-inventory-service/internal/broker"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher emits stock-changed events keyed by inventory item id, so
// every event for one item lands on the same partition in ledger order.
type KafkaPublisher struct {
	producer broker.Producer
}

func NewKafkaPublisher(producer broker.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) PublishStockChanged(ctx context.Context, event *model.StockChangedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal stock changed event")
	}
	msg := kafka.Message{
		Key:   []byte(event.Item.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish %s for item %s", event.EventType, event.Item.ID)
	}
	return nil
}
