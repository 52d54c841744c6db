package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tailorbook/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "test.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	return db
}

func newTestStore(t *testing.T) (*Store, *Bus) {
	t.Helper()
	bus := NewBus(zerolog.Nop())
	store := NewStore(newTestDB(t), bus, zerolog.Nop())
	require.NoError(t, store.Init(context.Background()))
	return store, bus
}

func TestOperationsRequireInit(t *testing.T) {
	store := NewStore(newTestDB(t), NewBus(zerolog.Nop()), zerolog.Nop())

	_, err := store.GetAll(context.Background(), false)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = store.Save(context.Background(), models.NewCustomer("Ali Khan", "0799123456"))
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = store.Delete(context.Background(), "1234")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestGetAllEmptyStoreReturnsEmptySlice(t *testing.T) {
	store, _ := newTestStore(t)

	all, err := store.GetAll(context.Background(), true)
	require.NoError(t, err)
	require.NotNil(t, all, "empty store must list as [], not null")
	assert.Empty(t, all)
}

func TestInitIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, models.NewCustomer("Ali Khan", "0799123456"))
	require.NoError(t, err)

	require.NoError(t, store.Init(ctx))

	all, err := store.GetAll(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1, "re-init must not disturb existing data")
}

func TestSaveAndGetByIDRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := models.NewCustomer("Ali Khan", "0799123456")
	c.Measurements["chest"] = "38.5"
	c.Models.Collar = "ban"
	c.Models.Skirt = models.StringList{"round"}

	saved, err := store.Save(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, c.ID, saved.ID)

	got, err := store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, saved.Name, got.Name)
	assert.Equal(t, saved.Phone, got.Phone)
	assert.Equal(t, 38.5, got.Measurements["chest"])
	assert.Equal(t, "ban", got.Models.Collar)
	assert.Equal(t, models.StringList{"round"}, got.Models.Skirt)
	assert.Equal(t, 1, got.Version)
}

func TestSaveValidationFailure(t *testing.T) {
	store, bus := newTestStore(t)
	ctx := context.Background()

	var events int
	bus.Subscribe(func(Event) { events++ })

	c := models.NewCustomer("A", "123")
	_, err := store.Save(ctx, c)
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Messages, 2)
	assert.Zero(t, events, "no notification on a failed save")

	got, err := store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "invalid record must not be persisted")
}

func TestSaveEmitsNotification(t *testing.T) {
	store, bus := newTestStore(t)
	ctx := context.Background()

	var kinds []string
	bus.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	c := models.NewCustomer("Ali Khan", "0799123456")
	_, err := store.Save(ctx, c)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, c.ID))
	require.NoError(t, store.ClearAll(ctx))

	assert.Equal(t, []string{EventCustomerSaved, EventCustomerDeleted, EventDataCleared}, kinds)
}

func TestGetByIDAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.GetByID(context.Background(), "zzzz")
	require.NoError(t, err, "absence is a sentinel, not an error")
	assert.Nil(t, got)
}

func TestUpsertOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := models.NewCustomer("Ali Khan", "0799123456")
	_, err := store.Save(ctx, c)
	require.NoError(t, err)

	c.Notes = "second write"
	_, err = store.Save(ctx, c)
	require.NoError(t, err)

	all, err := store.GetAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1, "same id upserts, never duplicates")
	assert.Equal(t, "second write", all[0].Notes)
}

func TestSoftDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := models.NewCustomer("Ali Khan", "0799123456")
	_, err := store.Save(ctx, c)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, c.ID))

	visible, err := store.GetAll(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := store.GetAll(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Deleted)

	// deleting an already-deleted record is not an error
	require.NoError(t, store.Delete(ctx, c.ID))

	// but a missing record is
	assert.ErrorIs(t, store.Delete(ctx, "zzzz"), ErrNotFound)
}

func TestSearch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ali := models.NewCustomer("Ali Khan", "0799123456")
	ali.ID = "1001"
	ali.DeliveryDay = "friday"
	_, err := store.Save(ctx, ali)
	require.NoError(t, err)

	omar := models.NewCustomer("Omar Safi", "0711222333")
	omar.ID = "1002"
	_, err = store.Save(ctx, omar)
	require.NoError(t, err)

	deleted := models.NewCustomer("Hidden Ali", "0799999999")
	deleted.ID = "1003"
	_, err = store.Save(ctx, deleted)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, deleted.ID))

	empty, err := store.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty, "whitespace query returns empty without scanning")

	byPhone, err := store.Search(ctx, "99123")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, ali.ID, byPhone[0].ID)

	byName, err := store.Search(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, byName, 1, "deleted records never match")
	assert.Equal(t, ali.ID, byName[0].ID)

	byDay, err := store.Search(ctx, "friday")
	require.NoError(t, err)
	require.Len(t, byDay, 1)
}

func TestSettings(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	theme, err := store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	require.NotNil(t, theme, "defaults seed on init")
	assert.Equal(t, "light", theme.Value)

	absent, err := store.GetSetting(ctx, "no-such-key")
	require.NoError(t, err)
	assert.Nil(t, absent)

	require.NoError(t, store.SaveSetting(ctx, "theme", "dark"))
	theme, err = store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme.Value)

	all, err := store.GetAllSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(models.DefaultSettings))
}

func TestClearAllKeepsSettingsAndBackups(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, models.NewCustomer("Ali Khan", "0799123456"))
	require.NoError(t, err)
	_, err = store.CreateBackup(ctx)
	require.NoError(t, err)

	require.NoError(t, store.ClearAll(ctx))

	all, err := store.GetAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "clear is a hard delete, even of soft-deleted rows")

	theme, err := store.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.NotNil(t, theme, "settings survive clearAll")

	backups, err := store.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, backups, 1, "backups survive clearAll")
}

func TestBackupImportRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ali := models.NewCustomer("Ali Khan", "0799123456")
	ali.ID = "1111"
	ali.Measurements["chest"] = 38.5
	_, err := store.Save(ctx, ali)
	require.NoError(t, err)

	gone := models.NewCustomer("Gone Customer", "0700000000")
	gone.ID = "2222"
	_, err = store.Save(ctx, gone)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, gone.ID))

	payload, err := store.CreateBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, payload.TotalCustomers, "backups include soft-deleted records")

	require.NoError(t, store.ClearAll(ctx))

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	result, err := store.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped, "source-deleted records are skipped")

	restored, err := store.GetAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, ali.ID, restored[0].ID)
	assert.Equal(t, ali.Name, restored[0].Name)
	assert.Equal(t, ali.Phone, restored[0].Phone)
	assert.Equal(t, 38.5, restored[0].Measurements["chest"])
}

func TestImportInvalidFormat(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, doc := range []string{
		`not json`,
		`{}`,
		`{"customers": "nope"}`,
		`{"customers": 42}`,
	} {
		_, err := store.Import(ctx, []byte(doc))
		assert.ErrorIs(t, err, ErrInvalidImportFormat, "doc: %s", doc)
	}

	all, err := store.GetAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "invalid file aborts before any write")
}

func TestImportCountsPartialFailures(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := `{"customers": [
		{"id": "1111", "name": "Ali Khan", "phone": "0799123456"},
		{"id": "2222", "name": "X", "phone": "1"},
		"garbage"
	], "timestamp": "2026-01-01T00:00:00Z", "version": 1, "totalCustomers": 3}`

	result, err := store.Import(ctx, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)
}

func TestPaymentToggleScenario(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := models.NewCustomer("Ali Khan", "0799123456")
	_, err := store.Save(ctx, c)
	require.NoError(t, err)

	price := 500
	c.SewingPrice = &price
	_, err = store.Save(ctx, c)
	require.NoError(t, err)

	c.SetPaymentReceived(true)
	_, err = store.Save(ctx, c)
	require.NoError(t, err)

	got, err := store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SewingPrice)
	assert.Equal(t, 500, *got.SewingPrice)
	assert.True(t, got.PaymentReceived)
	assert.NotNil(t, got.PaymentDate)

	got.SetPaymentReceived(false)
	_, err = store.Save(ctx, got)
	require.NoError(t, err)

	got, err = store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.PaymentReceived)
	assert.Nil(t, got.PaymentDate)
}

func TestGetAllSortsNewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	older := models.NewCustomer("Older Customer", "0700000001")
	older.ID = "3001"
	older.CreatedAt = older.CreatedAt.Add(-time.Second)
	_, err := store.Save(ctx, older)
	require.NoError(t, err)

	newer := models.NewCustomer("Newer Customer", "0700000002")
	newer.ID = "3002"
	_, err = store.Save(ctx, newer)
	require.NoError(t, err)

	all, err := store.GetAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
}
