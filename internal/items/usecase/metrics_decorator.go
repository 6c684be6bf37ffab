package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	itemsDomain "github.com/familyvault/vault/internal/items/domain"
	"github.com/familyvault/vault/internal/metrics"
)

// itemUseCaseWithMetrics decorates ItemUseCase with metrics instrumentation.
type itemUseCaseWithMetrics struct {
	next    ItemUseCase
	metrics metrics.BusinessMetrics
}

// NewItemUseCaseWithMetrics wraps an ItemUseCase with metrics recording.
func NewItemUseCaseWithMetrics(useCase ItemUseCase, m metrics.BusinessMetrics) ItemUseCase {
	return &itemUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (i *itemUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, "items", operation, status)
	i.metrics.RecordDuration(ctx, "items", operation, time.Since(start), status)
}

func (i *itemUseCaseWithMetrics) Create(ctx context.Context, input CreateItemInput) (*itemsDomain.Item, error) {
	start := time.Now()
	item, err := i.next.Create(ctx, input)
	i.record(ctx, "item_create", start, err)
	return item, err
}

func (i *itemUseCaseWithMetrics) Get(
	ctx context.Context,
	orgID, callerID, itemID uuid.UUID,
) (*itemsDomain.Item, error) {
	start := time.Now()
	item, err := i.next.Get(ctx, orgID, callerID, itemID)
	i.record(ctx, "item_get", start, err)
	return item, err
}

func (i *itemUseCaseWithMetrics) List(
	ctx context.Context,
	orgID, callerID uuid.UUID,
	category string,
) ([]*itemsDomain.Item, error) {
	start := time.Now()
	items, err := i.next.List(ctx, orgID, callerID, category)
	i.record(ctx, "item_list", start, err)
	return items, err
}

func (i *itemUseCaseWithMetrics) Update(ctx context.Context, input UpdateItemInput) (*itemsDomain.Item, error) {
	start := time.Now()
	item, err := i.next.Update(ctx, input)
	i.record(ctx, "item_update", start, err)
	return item, err
}

func (i *itemUseCaseWithMetrics) Delete(ctx context.Context, orgID, callerID, itemID uuid.UUID) error {
	start := time.Now()
	err := i.next.Delete(ctx, orgID, callerID, itemID)
	i.record(ctx, "item_delete", start, err)
	return err
}
