package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// StockSubject is the JetStream subject for stock adjustment events
const StockSubject = "inventory.adjusted"

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ViewCache defines the cache invalidation the reconciler needs
type ViewCache interface {
	InvalidateProductView(ctx context.Context, productID uuid.UUID) error
}

// StockEvent is emitted after a variant's stock changes.
type StockEvent struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Delta     int       `json:"delta"`
	Stock     int       `json:"stock"`
}

// Service applies inventory reconciliation batches against the variant
// stock levels.
type Service struct {
	products  domain.ProductRepository
	variants  domain.VariantRepository
	cache     ViewCache
	publisher EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewService creates a new inventory reconciliation service
func NewService(
	products domain.ProductRepository,
	variants domain.VariantRepository,
	cache ViewCache,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		products:  products,
		variants:  variants,
		cache:     cache,
		publisher: publisher,
		validate:  validator.New(),
		logger:    log,
	}
}

// Reconcile applies a batch of stock changes item by item. A failed item
// never aborts the batch: its product id lands in Failed and processing
// moves on. A decrement that would take stock negative is rejected by
// the guarded update and counts as a failure, as does an unknown
// (product, size, color) combination.
func (s *Service) Reconcile(ctx context.Context, changes []domain.InventoryChange) (*domain.InventoryResult, error) {
	result := &domain.InventoryResult{
		Updated: []string{},
		Failed:  []string{},
	}

	for _, change := range changes {
		if err := s.validate.Struct(change); err != nil {
			s.logger.Warnf("Invalid inventory change for product %s: %v", change.ProductID, err)
			result.Failed = append(result.Failed, change.ProductID.String())
			continue
		}

		delta := change.Delta()
		variant, err := s.variants.AdjustStock(ctx, change.ProductID, change.Size, change.Color, delta)
		if err != nil {
			if err == domain.ErrNotFound {
				s.logger.WithFields(map[string]interface{}{
					"product_id": change.ProductID,
					"size":       change.Size,
					"color":      change.Color,
					"delta":      delta,
				}).Warn("Inventory change rejected")
			} else {
				s.logger.Error("Failed to adjust variant stock", err)
			}
			result.Failed = append(result.Failed, change.ProductID.String())
			continue
		}

		// The denormalized product total follows the variant change. A
		// failure here leaves the totals drifted until the next full
		// recomputation, which beats failing an already-applied change.
		if err := s.products.AdjustTotalStock(ctx, change.ProductID, delta); err != nil {
			s.logger.Warnf("Failed to adjust total stock for product %s: %v", change.ProductID, err)
		}

		if err := s.cache.InvalidateProductView(ctx, change.ProductID); err != nil {
			s.logger.Warnf("Failed to invalidate product view %s: %v", change.ProductID, err)
		}

		s.publishEvent(change, delta, variant.Stock)

		result.Updated = append(result.Updated, change.ProductID.String())
	}

	s.logger.WithFields(map[string]interface{}{
		"total":   len(changes),
		"updated": len(result.Updated),
		"failed":  len(result.Failed),
	}).Info("Inventory batch reconciled")

	return result, nil
}

// publishEvent publishes a stock adjustment event (non-blocking)
func (s *Service) publishEvent(change domain.InventoryChange, delta, stock int) {
	event := StockEvent{
		EventType: "inventory.adjusted",
		Timestamp: time.Now(),
		ProductID: change.ProductID,
		Size:      change.Size,
		Color:     change.Color,
		Delta:     delta,
		Stock:     stock,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal stock event for product %s", change.ProductID)
		return
	}

	go func() {
		if err := s.publisher.Publish(context.Background(), StockSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish stock event for product %s", change.ProductID)
		}
	}()
}
