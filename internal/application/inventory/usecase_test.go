package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newMoveUseCase(store *memory.Store) *inventory.MoveUseCase {
	locker := inventory.NewItemLocker(time.Second)
	return inventory.NewMoveUseCase(store, store.Items(), store.Movements(), locker, logger.Nop())
}

func seedItem(t *testing.T, store *memory.Store, id, name, location string, qty int64, buy string) *entity.Item {
	t.Helper()
	now := time.Now().UTC()
	it := &entity.Item{
		ID:        id,
		Name:      name,
		Category:  "frutas",
		BuyPrice:  dec(buy),
		SellPrice: dec("30"),
		Weight:    dec("1"),
		Quantity:  qty,
		Location:  location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Items().Create(context.Background(), it))
	return it
}

// totalUnits suma el stock de todas las ubicaciones para un nombre.
func totalUnits(t *testing.T, store *memory.Store) int64 {
	t.Helper()
	list, err := store.Items().List(context.Background(), entity.ItemFilter{})
	require.NoError(t, err)
	var sum int64
	for _, it := range list {
		sum += it.Quantity
	}
	return sum
}

func TestMove_ParcialCreaRegistroEnDestino(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "w1", "Manzana", entity.LocationWarehouse, 10, "10")
	uc := newMoveUseCase(store)

	out, err := uc.Move(ctx, inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, "w1", out.Source.ID)
	assert.Equal(t, int64(6), out.Source.Quantity)
	assert.NotEqual(t, "w1", out.Destination.ID)
	assert.Equal(t, int64(4), out.Destination.Quantity)
	assert.Equal(t, entity.LocationShop, out.Destination.Location)
	assert.True(t, dec("10").Equal(out.Destination.BuyPrice))

	assert.Equal(t, entity.LocationWarehouse, out.Movement.FromLocation)
	assert.Equal(t, entity.LocationShop, out.Movement.ToLocation)
	assert.Equal(t, out.Destination.ID, out.Movement.DestItemID)
	assert.Equal(t, "Manzana", out.Movement.ItemName)

	assert.Equal(t, int64(10), totalUnits(t, store), "el traslado conserva las unidades")

	hist, err := uc.History(ctx, "w1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestMove_TotalReubicaMismoRegistro(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "w1", "Manzana", entity.LocationWarehouse, 10, "10")
	uc := newMoveUseCase(store)

	out, err := uc.Move(ctx, inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 10})
	require.NoError(t, err)

	assert.Equal(t, "w1", out.Destination.ID)
	assert.Equal(t, "w1", out.Source.ID)
	assert.Equal(t, entity.LocationShop, out.Destination.Location)
	assert.Equal(t, int64(10), out.Destination.Quantity)

	got, err := store.Items().GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, entity.LocationShop, got.Location)
	assert.Equal(t, int64(10), totalUnits(t, store))
}

func TestMove_FusionaConRegistroExistenteYPromediaCosto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "w1", "Manzana", entity.LocationWarehouse, 10, "10")
	seedItem(t, store, "s1", "  manzana ", entity.LocationShop, 5, "20")
	uc := newMoveUseCase(store)

	out, err := uc.Move(ctx, inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 5})
	require.NoError(t, err)

	assert.Equal(t, "s1", out.Destination.ID)
	assert.Equal(t, int64(10), out.Destination.Quantity)
	// (5*20 + 5*10) / 10
	assert.True(t, dec("15").Equal(out.Destination.BuyPrice), "costo promedio: %s", out.Destination.BuyPrice)
	assert.Equal(t, int64(5), out.Source.Quantity)

	shop, err := store.Items().GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), shop.Quantity)
	assert.True(t, dec("15").Equal(shop.BuyPrice))
	assert.Equal(t, int64(15), totalUnits(t, store))
}

func TestMove_OrigenEnCeroNoSeElimina(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "w1", "Manzana", entity.LocationWarehouse, 3, "10")
	seedItem(t, store, "s1", "Manzana", entity.LocationShop, 1, "10")
	uc := newMoveUseCase(store)

	_, err := uc.Move(ctx, inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 3})
	require.NoError(t, err)

	src, err := store.Items().GetByID(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, int64(0), src.Quantity)
	assert.Equal(t, entity.LocationWarehouse, src.Location)
}

func TestMove_Errores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "w1", "Manzana", entity.LocationWarehouse, 5, "10")
	uc := newMoveUseCase(store)

	cases := []struct {
		name string
		in   inventory.MoveInput
		want error
	}{
		{"cantidad cero", inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 0}, domain.ErrInvalidInput},
		{"ubicación desconocida", inventory.MoveInput{ItemID: "w1", ToLocation: "garage", Quantity: 1}, domain.ErrInvalidInput},
		{"ítem inexistente", inventory.MoveInput{ItemID: "nope", ToLocation: entity.LocationShop, Quantity: 1}, domain.ErrNotFound},
		{"misma ubicación", inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationWarehouse, Quantity: 1}, domain.ErrInvalidDestination},
		{"stock insuficiente", inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 6}, domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Move(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Ningún error deja rastro
	src, err := store.Items().GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), src.Quantity)
	hist, err := uc.History(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestMove_ConcurrenteConservaUnidades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "w1", "Manzana", entity.LocationWarehouse, 50, "10")
	uc := newMoveUseCase(store)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Move(ctx, inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 3})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 16, ok, "50 / 3 = 16 traslados completos")
	assert.Equal(t, 4, insufficient)

	src, err := store.Items().GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.Quantity)
	assert.Equal(t, int64(50), totalUnits(t, store))

	hist, err := uc.History(ctx, "w1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 16)
}

// lockOrderRunner anota el orden en que el traslado pide las filas con GetForUpdate.
type lockOrderRunner struct {
	store *memory.Store
	mu    sync.Mutex
	order []string
}

type lockOrderItems struct {
	repository.ItemRepository
	r *lockOrderRunner
}

func (i lockOrderItems) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	i.r.mu.Lock()
	i.r.order = append(i.r.order, id)
	i.r.mu.Unlock()
	return i.ItemRepository.GetForUpdate(ctx, id)
}

func (r *lockOrderRunner) Run(ctx context.Context, fn func(repository.ItemRepository, repository.MovementRepository, repository.TransactionRepository) error) error {
	return r.store.Run(ctx, func(items repository.ItemRepository, movs repository.MovementRepository, txs repository.TransactionRepository) error {
		return fn(lockOrderItems{ItemRepository: items, r: r}, movs, txs)
	})
}

func (r *lockOrderRunner) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.order
	r.order = nil
	return out
}

func TestMove_FilasSeBloqueanEnOrdenDeID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "z-warehouse", "Manzana", entity.LocationWarehouse, 10, "10")
	seedItem(t, store, "a-shop", "Manzana", entity.LocationShop, 10, "10")
	runner := &lockOrderRunner{store: store}
	uc := inventory.NewMoveUseCase(runner, store.Items(), store.Movements(), inventory.NewItemLocker(time.Second), logger.Nop())

	_, err := uc.Move(ctx, inventory.MoveInput{ItemID: "z-warehouse", ToLocation: entity.LocationShop, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a-shop", "z-warehouse"}, runner.take(), "bodega a tienda")

	_, err = uc.Move(ctx, inventory.MoveInput{ItemID: "a-shop", ToLocation: entity.LocationWarehouse, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a-shop", "z-warehouse"}, runner.take(), "tienda a bodega")
}

func TestMove_FusionesCruzadasConcurrentes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedItem(t, store, "w1", "Manzana", entity.LocationWarehouse, 40, "10")
	seedItem(t, store, "s1", "Manzana", entity.LocationShop, 40, "10")
	uc := newMoveUseCase(store)

	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for range 30 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := uc.Move(ctx, inventory.MoveInput{ItemID: "w1", ToLocation: entity.LocationShop, Quantity: 1})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := uc.Move(ctx, inventory.MoveInput{ItemID: "s1", ToLocation: entity.LocationWarehouse, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	w, err := store.Items().GetByID(ctx, "w1")
	require.NoError(t, err)
	s, err := store.Items().GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), w.Quantity)
	assert.Equal(t, int64(40), s.Quantity)

	hist, err := uc.History(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 60)
}
