package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/broker"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"go.uber.org/zap"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventPurchaseReceived = "PurchaseReceived"

	systemOperator = "system"
)

// InventoryListener turns order and purchase events into stock operations.
type InventoryListener struct {
	consumer broker.Consumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewInventoryListener(consumer broker.Consumer, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.Handle(ctx, msg.Value)
		}
	}
}

type envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type OrderPayload struct {
	ID      string             `json:"id"`
	StoreID string             `json:"store_id"`
	Items   []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type PurchasePayload struct {
	ID         string                `json:"id"`
	LocationID string                `json:"location_id"`
	Items      []PurchaseItemPayload `json:"items"`
}

type PurchaseItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitCost  *int64 `json:"unit_cost"`
}

// Handle processes one raw event. Unknown event types are ignored; a failing
// line is logged and does not stop the remaining lines.
func (l *InventoryListener) Handle(ctx context.Context, value []byte) {
	var event envelope
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	ctx = auth.WithOperatorID(ctx, systemOperator)

	switch event.EventType {
	case EventOrderCreated:
		var order OrderPayload
		if err := json.Unmarshal(event.Payload, &order); err != nil {
			l.logger.Error("Failed to unmarshal order payload", zap.String("event_id", event.EventID), zap.Error(err))
			return
		}
		l.handleOrder(ctx, &order)
	case EventPurchaseReceived:
		var purchase PurchasePayload
		if err := json.Unmarshal(event.Payload, &purchase); err != nil {
			l.logger.Error("Failed to unmarshal purchase payload", zap.String("event_id", event.EventID), zap.Error(err))
			return
		}
		l.handlePurchase(ctx, &purchase)
	}
}

func (l *InventoryListener) handleOrder(ctx context.Context, order *OrderPayload) {
	l.logger.Info("Processing OrderCreated event", zap.String("order_id", order.ID))

	for _, line := range order.Items {
		item, err := l.uc.FindInventoryItem(ctx, line.ProductID, order.StoreID)
		if err == nil {
			_, err = l.uc.Sell(ctx, &dto.StockInput{
				ItemID:    item.ID,
				Quantity:  line.Quantity,
				Reason:    "order sale",
				Reference: order.ID,
			})
		}
		if err != nil {
			l.logger.Error("Failed to deduct inventory for order item",
				zap.String("order_id", order.ID),
				zap.String("product_id", line.ProductID),
				zap.String("code", string(apperror.KindOf(err))),
				zap.Error(err),
			)
		}
	}
}

func (l *InventoryListener) handlePurchase(ctx context.Context, purchase *PurchasePayload) {
	l.logger.Info("Processing PurchaseReceived event", zap.String("purchase_id", purchase.ID))

	for _, line := range purchase.Items {
		item, err := l.uc.FindInventoryItem(ctx, line.ProductID, purchase.LocationID)
		if err == nil {
			_, err = l.uc.Receive(ctx, &dto.StockInput{
				ItemID:    item.ID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitCost,
				Reason:    "purchase received",
				Reference: purchase.ID,
			})
		}
		if err != nil {
			l.logger.Error("Failed to receive inventory for purchase item",
				zap.String("purchase_id", purchase.ID),
				zap.String("product_id", line.ProductID),
				zap.String("code", string(apperror.KindOf(err))),
				zap.Error(err),
			)
		}
	}
}
