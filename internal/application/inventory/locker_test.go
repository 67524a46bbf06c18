package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain"
)

func TestItemLocker_TimeoutMientrasOtroLoRetiene(t *testing.T) {
	l := inventory.NewItemLocker(30 * time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrConcurrencyTimeout)

	// Otro ítem no se bloquea
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()

	unlock()
	unlock() // liberar dos veces no hace nada

	again, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	again()
}

func TestItemLocker_EsperaHastaLiberar(t *testing.T) {
	l := inventory.NewItemLocker(time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(ctx, "a")
		if err == nil {
			u()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("el segundo Lock no debe obtenerse antes de liberar")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("el segundo Lock debió obtenerse tras liberar")
	}
}

func TestItemLocker_ContextoCancelado(t *testing.T) {
	l := inventory.NewItemLocker(time.Second)
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestItemLocker_LockAllOrdenCruzadoNoSeTraba(t *testing.T) {
	l := inventory.NewItemLocker(time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := range 200 {
		ids := []string{"a", "b"}
		if i%2 == 1 {
			ids = []string{"b", "a", "b"}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.LockAll(ctx, ids...)
			if err == nil {
				unlock()
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestItemLocker_LockAllLiberaSiFalla(t *testing.T) {
	l := inventory.NewItemLocker(30 * time.Millisecond)
	ctx := context.Background()

	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)

	_, err = l.LockAll(ctx, "a", "b")
	assert.ErrorIs(t, err, domain.ErrConcurrencyTimeout)

	// "a" quedó libre
	unlockA, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	unlockA()
	unlockB()
}

func TestItemLocker_ClaveNoDependeDelBufferDelLlamador(t *testing.T) {
	l := inventory.NewItemLocker(30 * time.Millisecond)
	ctx := context.Background()

	// El id apunta a un buffer que se reutiliza después (como los parámetros de ruta de fasthttp)
	buf := []byte("item-a")
	id := unsafe.String(&buf[0], len(buf))
	unlock, err := l.Lock(ctx, id)
	require.NoError(t, err)
	defer unlock()
	copy(buf, "item-b")

	_, err = l.Lock(ctx, "item-a")
	assert.ErrorIs(t, err, domain.ErrConcurrencyTimeout, "el lock sigue registrado bajo el id original")

	unlockB, err := l.Lock(ctx, "item-b")
	require.NoError(t, err)
	unlockB()
}
