package events

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// stockEvent is the wire shape of an inventory adjustment event.
type stockEvent struct {
	EventType string    `json:"event_type"`
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Delta     int       `json:"delta"`
	Stock     int       `json:"stock"`
}

// LowStockHandler creates a handler that flags variants whose stock fell
// to or below the threshold after an adjustment.
func LowStockHandler(threshold int, log *logger.Logger) func(data []byte) error {
	return func(data []byte) error {
		var event stockEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("Failed to unmarshal stock event", err)
			return err
		}

		fields := map[string]interface{}{
			"product_id": event.ProductID,
			"size":       event.Size,
			"color":      event.Color,
			"delta":      event.Delta,
			"stock":      event.Stock,
		}

		if event.Stock <= threshold {
			log.WithFields(fields).Warn("Variant stock at or below threshold")
			return nil
		}

		log.WithFields(fields).Info("Stock adjusted")
		return nil
	}
}
