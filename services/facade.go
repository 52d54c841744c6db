package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tailorbook/models"
)

// DefaultAutosaveDelay is the quiescence window for debounced saves.
const DefaultAutosaveDelay = 1500 * time.Millisecond

// Facade is the application layer the presentation code talks to. It owns
// a read-optimized cache of the customer list, rebuilt wholesale from the
// store after every mutation, and an explicit selected-record id (never a
// positional index — positions shift across reloads and filtered views).
//
// The app is a single logical actor; the facade serializes its own state
// with a mutex only because debounce timers fire on their own goroutine.
type Facade struct {
	store *Store
	log   zerolog.Logger

	autosaveDelay time.Duration

	mu         sync.Mutex
	customers  []*models.Customer
	selectedID string
	pending    map[string]*time.Timer
	dirty      map[string]*models.Customer
}

func NewFacade(store *Store, log zerolog.Logger) *Facade {
	return &Facade{
		store:         store,
		log:           log,
		autosaveDelay: DefaultAutosaveDelay,
		pending:       map[string]*time.Timer{},
		dirty:         map[string]*models.Customer{},
	}
}

// SetAutosaveDelay overrides the debounce window. Zero keeps the default.
func (f *Facade) SetAutosaveDelay(d time.Duration) {
	if d > 0 {
		f.autosaveDelay = d
	}
}

// Reload rebuilds the cache from the store.
func (f *Facade) Reload(ctx context.Context) error {
	customers, err := f.store.GetAll(ctx, false)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.customers = customers
	f.mu.Unlock()
	return nil
}

// Customers returns the cached list view.
func (f *Facade) Customers() []*models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Customer, len(f.customers))
	copy(out, f.customers)
	return out
}

// Add creates and persists a new customer with just the identity fields.
func (f *Facade) Add(ctx context.Context, name, phone string) (*models.Customer, error) {
	return f.AddRecord(ctx, models.NewCustomer(name, phone))
}

// AddRecord persists a fully built new record in a single save, so a
// rejected create leaves nothing behind. The short id format is
// collision-prone, so generation retries against the ids already cached.
// The cache is only rebuilt after the save succeeds; a failed save leaves
// it untouched.
func (f *Facade) AddRecord(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	f.mu.Lock()
	taken := make(map[string]bool, len(f.customers))
	for _, existing := range f.customers {
		taken[existing.ID] = true
	}
	f.mu.Unlock()
	for attempt := 0; taken[c.ID] && attempt < 10; attempt++ {
		c.ID = models.GenerateID()
	}

	saved, err := f.store.Save(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := f.Reload(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

// Open loads one record through the store, bypassing the cache so the
// detail view always sees the durable state.
func (f *Facade) Open(ctx context.Context, id string) (*models.Customer, error) {
	c, err := f.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	f.mu.Lock()
	f.selectedID = id
	f.mu.Unlock()
	return c, nil
}

// SelectedID returns the currently open record id, empty when none.
func (f *Facade) SelectedID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectedID
}

// Remove soft-deletes a record and rebuilds the cache. Clears the
// selection if it pointed at the removed record.
func (f *Facade) Remove(ctx context.Context, id string) error {
	if err := f.store.Delete(ctx, id); err != nil {
		return err
	}

	f.mu.Lock()
	if f.selectedID == id {
		f.selectedID = ""
	}
	f.mu.Unlock()

	return f.Reload(ctx)
}

// Search is a passthrough to the store's search; it never mutates the cache.
func (f *Facade) Search(ctx context.Context, query string) ([]*models.Customer, error) {
	return f.store.Search(ctx, query)
}

// QueueSave schedules a debounced save for the record: each new edit for
// the same id cancels and restarts the quiescence timer, so a burst of
// edits persists once. The edit is visible in the dirty set immediately;
// durability lags by at most the debounce window, and an abrupt exit loses
// whatever was not yet flushed.
func (f *Facade) QueueSave(c *models.Customer) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dirty[c.ID] = c
	if t, ok := f.pending[c.ID]; ok {
		t.Stop()
	}

	id := c.ID
	f.pending[id] = time.AfterFunc(f.autosaveDelay, func() {
		f.flushOne(id)
	})
}

func (f *Facade) flushOne(id string) {
	f.mu.Lock()
	c, ok := f.dirty[id]
	delete(f.dirty, id)
	delete(f.pending, id)
	f.mu.Unlock()
	if !ok {
		return
	}

	ctx := context.Background()
	if _, err := f.store.Save(ctx, c); err != nil {
		f.log.Warn().Str("id", id).Err(err).Msg("autosave failed")
		return
	}
	if err := f.Reload(ctx); err != nil {
		f.log.Warn().Err(err).Msg("cache reload after autosave failed")
	}
}

// Flush persists every pending edit now instead of waiting out the
// debounce windows.
func (f *Facade) Flush() {
	f.mu.Lock()
	ids := make([]string, 0, len(f.pending))
	for id, t := range f.pending {
		t.Stop()
		ids = append(ids, id)
	}
	f.mu.Unlock()

	for _, id := range ids {
		f.flushOne(id)
	}
}

// Close flushes pending edits. Best-effort: failures are logged, not
// returned.
func (f *Facade) Close() {
	f.Flush()
}

// Import runs the store import and rebuilds the cache afterwards.
func (f *Facade) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	result, err := f.store.Import(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := f.Reload(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// Export is a passthrough to the store export.
func (f *Facade) Export(ctx context.Context) (*models.BackupPayload, error) {
	return f.store.Export(ctx)
}
