package ports

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// SalesSummaryCache puerto de salida para cachear el agregado del libro de ventas.
// Cualquier adaptador (Redis, noop) implementa esta interfaz; la aplicación no conoce el backend.
type SalesSummaryCache interface {
	// Generation devuelve el número de invalidaciones hechas hasta ahora. Las claves
	// se prefijan con él, de modo que un Set tardío queda bajo una generación vieja.
	Generation(ctx context.Context) (int64, error)
	// Get devuelve (nil, false, nil) si la clave no está.
	Get(ctx context.Context, key string) (*dto.SalesSummaryDTO, bool, error)
	Set(ctx context.Context, key string, value *dto.SalesSummaryDTO, ttl time.Duration) error
	// Invalidate avanza la generación y descarta los agregados cacheados; se llama después de cada venta.
	Invalidate(ctx context.Context) error
}
