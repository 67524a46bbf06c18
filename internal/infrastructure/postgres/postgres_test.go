package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// openPool usa TEST_DATABASE_URL; sin ella los tests de integración se omiten.
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE items, movements, transactions`)
	require.NoError(t, err)
	return pool
}

func TestMoveYSell_SobrePostgres(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	items := postgres.NewItemRepository(pool)
	runner := postgres.NewTxRunner(pool, time.Second)
	locker := inventory.NewItemLocker(time.Second)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, items.Create(ctx, &entity.Item{
		ID: "00000000-0000-0000-0000-0000000000a1", Name: "Pera", Category: "frutas",
		BuyPrice: decimal.RequireFromString("10.25"), SellPrice: decimal.RequireFromString("19.90"),
		Weight: decimal.RequireFromString("0.35"), Quantity: 10, Location: entity.LocationWarehouse,
		CreatedAt: now, UpdatedAt: now,
	}))

	moveUC := inventory.NewMoveUseCase(runner, items, postgres.NewMovementRepository(pool), locker, logger.Nop())
	out, err := moveUC.Move(ctx, inventory.MoveInput{
		ItemID: "00000000-0000-0000-0000-0000000000a1", ToLocation: entity.LocationShop, Quantity: 6,
	})
	require.NoError(t, err)

	sellUC := sales.NewSellUseCase(runner, locker, nil, logger.Nop())
	_, err = sellUC.Sell(ctx, out.Destination.ID, dto.SellItemRequest{Quantity: 7})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	sold, err := sellUC.Sell(ctx, out.Destination.ID, dto.SellItemRequest{Quantity: 2})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("39.80").Equal(sold.Total))

	shop, err := items.GetByID(ctx, out.Destination.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), shop.Quantity)

	txs, err := postgres.NewTransactionRepository(pool).List(ctx, entity.TransactionFilter{ItemID: out.Destination.ID})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func seedPear(t *testing.T, items *postgres.ItemRepo, id, location string, qty int64) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, items.Create(context.Background(), &entity.Item{
		ID: id, Name: "Pera", Category: "frutas",
		BuyPrice: decimal.RequireFromString("10"), SellPrice: decimal.RequireFromString("20"),
		Weight: decimal.RequireFromString("1"), Quantity: qty, Location: location,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func TestMove_FusionesCruzadasSinDeadlock(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	items := postgres.NewItemRepository(pool)
	movs := postgres.NewMovementRepository(pool)
	const (
		wID = "00000000-0000-0000-0000-0000000000b1"
		sID = "00000000-0000-0000-0000-0000000000b2"
	)
	seedPear(t, items, wID, entity.LocationWarehouse, 50)
	seedPear(t, items, sID, entity.LocationShop, 50)

	// Dos instancias de la API: cada una con su propio ItemLocker, solo la BD las coordina
	newUC := func() *inventory.MoveUseCase {
		return inventory.NewMoveUseCase(postgres.NewTxRunner(pool, 2*time.Second), items, movs,
			inventory.NewItemLocker(5*time.Second), logger.Nop())
	}
	toShop, toWarehouse := newUC(), newUC()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := toShop.Move(ctx, inventory.MoveInput{ItemID: wID, ToLocation: entity.LocationShop, Quantity: 1})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := toWarehouse.Move(ctx, inventory.MoveInput{ItemID: sID, ToLocation: entity.LocationWarehouse, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	w, err := items.GetByID(ctx, wID)
	require.NoError(t, err)
	s, err := items.GetByID(ctx, sID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), w.Quantity)
	assert.Equal(t, int64(50), s.Quantity)
}

func TestMove_LockTimeoutDeFilaEsConcurrencyTimeout(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	items := postgres.NewItemRepository(pool)
	const id = "00000000-0000-0000-0000-0000000000c1"
	seedPear(t, items, id, entity.LocationWarehouse, 5)

	// Otra conexión retiene la fila
	holder, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(ctx) }()
	_, err = holder.Exec(ctx, `SELECT id FROM items WHERE id = $1 FOR UPDATE`, id)
	require.NoError(t, err)

	uc := inventory.NewMoveUseCase(postgres.NewTxRunner(pool, 100*time.Millisecond), items,
		postgres.NewMovementRepository(pool), inventory.NewItemLocker(time.Second), logger.Nop())
	_, err = uc.Move(ctx, inventory.MoveInput{ItemID: id, ToLocation: entity.LocationShop, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrConcurrencyTimeout)
}
