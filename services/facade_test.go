package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailorbook/models"
)

func newTestFacade(t *testing.T) (*Facade, *Store, *Bus) {
	t.Helper()
	store, bus := newTestStore(t)
	app := NewFacade(store, zerolog.Nop())
	require.NoError(t, app.Reload(context.Background()))
	return app, store, bus
}

func TestFacadeAddRebuildsCache(t *testing.T) {
	app, _, _ := newTestFacade(t)
	ctx := context.Background()

	c, err := app.Add(ctx, "Ali Khan", "0799123456")
	require.NoError(t, err)
	require.NotNil(t, c)

	customers := app.Customers()
	require.Len(t, customers, 1)
	assert.Equal(t, c.ID, customers[0].ID)
}

func TestFacadeAddFailureLeavesCacheUntouched(t *testing.T) {
	app, _, _ := newTestFacade(t)
	ctx := context.Background()

	_, err := app.Add(ctx, "Ali Khan", "0799123456")
	require.NoError(t, err)

	_, err = app.Add(ctx, "X", "1")
	require.Error(t, err)

	assert.Len(t, app.Customers(), 1, "failed add must not grow the cache")
}

func TestFacadeAddRecordRejectedPersistsNothing(t *testing.T) {
	app, store, _ := newTestFacade(t)
	ctx := context.Background()

	c := models.NewCustomer("Ali Khan", "0799123456")
	c.Measurements["chest"] = "abc"

	_, err := app.AddRecord(ctx, c)
	require.Error(t, err)

	all, err := store.GetAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected add must not persist a partial record")
	assert.Empty(t, app.Customers())
}

func TestFacadeOpenAndSelection(t *testing.T) {
	app, _, _ := newTestFacade(t)
	ctx := context.Background()

	c, err := app.Add(ctx, "Ali Khan", "0799123456")
	require.NoError(t, err)

	opened, err := app.Open(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, opened.ID)
	assert.Equal(t, c.ID, app.SelectedID())

	_, err = app.Open(ctx, "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFacadeRemoveClearsSelection(t *testing.T) {
	app, _, _ := newTestFacade(t)
	ctx := context.Background()

	c, err := app.Add(ctx, "Ali Khan", "0799123456")
	require.NoError(t, err)
	_, err = app.Open(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, app.Remove(ctx, c.ID))

	assert.Empty(t, app.SelectedID())
	assert.Empty(t, app.Customers(), "soft-deleted records leave the default view")
}

func TestFacadeDebouncedSaveCoalesces(t *testing.T) {
	app, store, bus := newTestFacade(t)
	ctx := context.Background()
	app.SetAutosaveDelay(40 * time.Millisecond)

	c, err := app.Add(ctx, "Ali Khan", "0799123456")
	require.NoError(t, err)

	var saves atomic.Int32
	bus.Subscribe(func(ev Event) {
		if ev.Kind == EventCustomerSaved {
			saves.Add(1)
		}
	})

	// a burst of edits inside the quiescence window persists once
	for _, notes := range []string{"first", "second", "final"} {
		c.Notes = notes
		app.QueueSave(c)
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, int32(1), saves.Load(), "burst must coalesce into one persisted write")

	got, err := store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Notes)
}

func TestFacadeFlushPersistsImmediately(t *testing.T) {
	app, store, _ := newTestFacade(t)
	ctx := context.Background()
	app.SetAutosaveDelay(time.Hour)

	c, err := app.Add(ctx, "Ali Khan", "0799123456")
	require.NoError(t, err)

	c.Notes = "pending edit"
	app.QueueSave(c)

	got, err := store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes, "edit is not durable before the window elapses")

	app.Flush()

	got, err = store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending edit", got.Notes)
}

func TestFacadeImportReloadsCache(t *testing.T) {
	app, _, _ := newTestFacade(t)
	ctx := context.Background()

	doc := `{"customers": [{"id": "7777", "name": "Imported Customer", "phone": "0788111222"}]}`
	result, err := app.Import(ctx, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	customers := app.Customers()
	require.Len(t, customers, 1)
	assert.Equal(t, "7777", customers[0].ID)
}

func TestFacadeSearchPassthrough(t *testing.T) {
	app, _, _ := newTestFacade(t)
	ctx := context.Background()

	_, err := app.Add(ctx, "Ali Khan", "0799123456")
	require.NoError(t, err)

	empty, err := app.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)

	found, err := app.Search(ctx, "khan")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	assert.Len(t, app.Customers(), 1, "search never mutates the cache")
}
