// Package cache implementa el puerto SalesSummaryCache.
package cache

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/ports"
)

var _ ports.SalesSummaryCache = NoopSalesSummaryCache{}

// NoopSalesSummaryCache no guarda nada; se usa cuando REDIS_ADDR está vacío o Redis no responde.
type NoopSalesSummaryCache struct{}

// Generation siempre es 0.
func (NoopSalesSummaryCache) Generation(_ context.Context) (int64, error) {
	return 0, nil
}

// Get nunca encuentra la clave.
func (NoopSalesSummaryCache) Get(_ context.Context, _ string) (*dto.SalesSummaryDTO, bool, error) {
	return nil, false, nil
}

// Set descarta el valor.
func (NoopSalesSummaryCache) Set(_ context.Context, _ string, _ *dto.SalesSummaryDTO, _ time.Duration) error {
	return nil
}

// Invalidate no hace nada.
func (NoopSalesSummaryCache) Invalidate(_ context.Context) error {
	return nil
}
