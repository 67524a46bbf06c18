package sales

import (
	"context"
	"strconv"
	"time"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/ports"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/domain/sales"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// DefaultSummaryTTL vigencia del agregado cacheado.
const DefaultSummaryTTL = 60 * time.Second

// LedgerUseCase consultas sobre el libro de ventas. Solo lectura: no toma locks.
type LedgerUseCase struct {
	txRepo repository.TransactionRepository
	cache  ports.SalesSummaryCache
	ttl    time.Duration
	log    *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. cache puede ser nil; ttl <= 0 usa DefaultSummaryTTL.
func NewLedgerUseCase(
	txRepo repository.TransactionRepository,
	cache ports.SalesSummaryCache,
	ttl time.Duration,
	log *logger.Logger,
) *LedgerUseCase {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &LedgerUseCase{txRepo: txRepo, cache: cache, ttl: ttl, log: log}
}

// List lista las ventas por transaction_date ascendente, luego orden de inserción.
func (uc *LedgerUseCase) List(ctx context.Context, in dto.TransactionListRequest) ([]dto.TransactionResponse, error) {
	filter, err := toFilter(in.From, in.To)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = in.Limit, in.Offset
	return uc.list(ctx, filter)
}

// ListByItem lista las ventas de un ítem (aunque el ítem ya no exista).
func (uc *LedgerUseCase) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]dto.TransactionResponse, error) {
	if itemID == "" {
		return nil, domain.NewValidationError("item_id", "es requerido")
	}
	return uc.list(ctx, entity.TransactionFilter{ItemID: itemID, Limit: limit, Offset: offset})
}

func (uc *LedgerUseCase) list(ctx context.Context, filter entity.TransactionFilter) ([]dto.TransactionResponse, error) {
	txs, err := uc.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ToTransactionResponse(tx))
	}
	return out, nil
}

// Get obtiene una venta por ID.
func (uc *LedgerUseCase) Get(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	tx, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// Summary agrega ingresos, costo y utilidad entre from (inclusive) y to (exclusivo).
// El resultado se cachea por rango y generación; cada venta avanza la generación.
// La generación se lee antes de agregar: si una venta entra mientras se calcula,
// el resultado queda guardado bajo la generación anterior y no se vuelve a servir.
func (uc *LedgerUseCase) Summary(ctx context.Context, from, to string) (*dto.SalesSummaryDTO, error) {
	filter, err := toFilter(from, to)
	if err != nil {
		return nil, err
	}
	useCache := uc.cache != nil
	var key string
	if useCache {
		gen, err := uc.cache.Generation(ctx)
		if err != nil {
			uc.log.Warn().Err(err).Msg("cache de resumen no disponible")
			useCache = false
		}
		key = strconv.FormatInt(gen, 10) + ":" + summaryKey(filter)
	}
	if useCache {
		if cached, ok, err := uc.cache.Get(ctx, key); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("cache de resumen no disponible")
		} else if ok {
			return cached, nil
		}
	}

	out, err := uc.Aggregate(ctx, filter)
	if err != nil {
		return nil, err
	}
	if useCache {
		if err := uc.cache.Set(ctx, key, out, uc.ttl); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el resumen en cache")
		}
	}
	return out, nil
}

// Aggregate agrega sin pasar por el cache.
func (uc *LedgerUseCase) Aggregate(ctx context.Context, filter entity.TransactionFilter) (*dto.SalesSummaryDTO, error) {
	filter.Limit, filter.Offset = 0, 0
	txs, err := uc.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToSummaryDTO(sales.Summarize(txs), filter.From, filter.To), nil
}

// ToSummaryDTO convierte el agregado de dominio a DTO.
func ToSummaryDTO(a sales.Aggregate, from, to *time.Time) *dto.SalesSummaryDTO {
	return &dto.SalesSummaryDTO{
		TransactionCount: a.Count,
		UnitsSold:        a.Units,
		Revenue:          a.Revenue,
		Cost:             a.Cost,
		Profit:           a.Profit,
		ProfitPercentage: a.ProfitPct,
		From:             from,
		To:               to,
	}
}

func toFilter(from, to string) (entity.TransactionFilter, error) {
	f, err := dto.ParseDate("from", from)
	if err != nil {
		return entity.TransactionFilter{}, err
	}
	t, err := dto.ParseDate("to", to)
	if err != nil {
		return entity.TransactionFilter{}, err
	}
	if f != nil && t != nil && !f.Before(*t) {
		return entity.TransactionFilter{}, domain.NewValidationError("to", "debe ser posterior a from")
	}
	return entity.TransactionFilter{From: f, To: t}, nil
}

func summaryKey(f entity.TransactionFilter) string {
	key := "all"
	if f.From != nil {
		key = f.From.Format(time.RFC3339)
	}
	key += "|"
	if f.To != nil {
		key += f.To.Format(time.RFC3339)
	}
	return key
}
