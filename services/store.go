package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tailorbook/models"
)

type storeState int

const (
	stateUninitialized storeState = iota
	stateInitializing
	stateReady
	stateFailed
)

// Store is the durable record store: customers, settings and backup
// snapshots over one gorm database. Every operation except Init requires a
// successful Init first and fails with ErrNotInitialized otherwise.
type Store struct {
	db  *gorm.DB
	bus *Bus
	log zerolog.Logger

	mu    sync.Mutex
	state storeState
}

func NewStore(db *gorm.DB, bus *Bus, log zerolog.Logger) *Store {
	return &Store{db: db, bus: bus, log: log}
}

// Init performs one-time structural setup: table creation, secondary
// indexes and settings seeding. Idempotent — calling it on a ready store
// returns immediately with no side effects.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stateReady {
		s.mu.Unlock()
		return nil
	}
	s.state = stateInitializing
	s.mu.Unlock()

	err := s.db.WithContext(ctx).AutoMigrate(
		&models.Customer{},
		&models.Setting{},
		&models.Backup{},
		&models.User{},
	)
	if err == nil {
		err = s.seedSettings(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = stateFailed
		return err
	}
	s.state = stateReady
	s.log.Info().Msg("store ready")
	return nil
}

func (s *Store) seedSettings(ctx context.Context) error {
	for key, value := range models.DefaultSettings {
		var existing models.Setting
		err := s.db.WithContext(ctx).First(&existing, "key = ?", key).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
		if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return ErrNotInitialized
	}
	return nil
}

// Save validates and upserts one record keyed by id: insert when new, full
// overwrite when existing. Last writer wins; the version field is carried
// through, not enforced. Emits customer_saved on success.
func (s *Store) Save(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	c.Normalize()
	if msgs := c.Validate(); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	c.UpdatedAt = time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(c).Error
	if err != nil {
		return nil, err
	}

	s.bus.Notify(EventCustomerSaved, c)
	return c, nil
}

// GetAll returns every record, normalized and sorted newest first.
// Soft-deleted records are excluded unless includeDeleted is set.
func (s *Store) GetAll(ctx context.Context, includeDeleted bool) ([]*models.Customer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Order("created_at DESC")
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}

	customers := []*models.Customer{}
	if err := q.Find(&customers).Error; err != nil {
		return nil, err
	}
	for _, c := range customers {
		c.Normalize()
	}
	return customers, nil
}

// GetByID returns the normalized record, or (nil, nil) when absent —
// absence is a sentinel here, not an error.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var c models.Customer
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return &c, nil
}

// Delete soft-deletes a record: the row stays, flagged hidden from default
// views. Emits customer_deleted on success.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	var c models.Customer
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	c.Deleted = true
	c.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		return err
	}

	s.bus.Notify(EventCustomerDeleted, id)
	return nil
}

// Search scans non-deleted records for a case-insensitive substring match
// on name, phone, notes, id, collar style or delivery day. An empty query
// returns empty immediately without touching storage. No ranking: results
// follow storage iteration order.
func (s *Store) Search(ctx context.Context, query string) ([]*models.Customer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Customer{}, nil
	}

	all, err := s.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	matches := []*models.Customer{}
	for _, c := range all {
		if c.Matches(query) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// GetSetting returns the setting, or (nil, nil) when absent.
func (s *Store) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var setting models.Setting
	err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetAllSettings returns every setting row.
func (s *Store) GetAllSettings(ctx context.Context) ([]models.Setting, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var settings []models.Setting
	if err := s.db.WithContext(ctx).Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSetting upserts one setting with a fresh update timestamp.
func (s *Store) SaveSetting(ctx context.Context, key, value string) error {
	if err := s.ready(); err != nil {
		return err
	}

	setting := models.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&setting).Error
}

// Export builds the interchange payload: every record, soft-deleted ones
// included, plus snapshot metadata. Nothing is persisted.
func (s *Store) Export(ctx context.Context) (*models.BackupPayload, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	all, err := s.GetAll(ctx, true)
	if err != nil {
		return nil, err
	}

	customers := make([]models.Customer, len(all))
	for i, c := range all {
		customers[i] = *c
	}

	return &models.BackupPayload{
		Customers:      customers,
		Timestamp:      time.Now(),
		Version:        1,
		TotalCustomers: len(customers),
	}, nil
}

// CreateBackup appends one immutable snapshot to the backup keyspace and
// returns the exported payload. Prior snapshots are never touched.
func (s *Store) CreateBackup(ctx context.Context) (*models.BackupPayload, error) {
	payload, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}

	backup := models.Backup{Date: payload.Timestamp, Data: *payload}
	if err := s.db.WithContext(ctx).Create(&backup).Error; err != nil {
		return nil, err
	}

	s.log.Info().Int("customers", payload.TotalCustomers).Msg("backup created")
	return payload, nil
}

// ListBackups returns snapshot metadata, newest first. Payloads are not
// loaded; one snapshot of a busy shop is large.
func (s *Store) ListBackups(ctx context.Context) ([]models.Backup, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var backups []models.Backup
	err := s.db.WithContext(ctx).
		Select("id", "date").
		Order("id DESC").
		Find(&backups).Error
	if err != nil {
		return nil, err
	}
	return backups, nil
}

// ImportResult reports how an import went. Skipped counts records that were
// flagged deleted in the source or failed individually; they never abort
// the batch.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import reads an interchange document and upserts its records one by one.
// A document without a top-level customers array fails fast with
// ErrInvalidImportFormat before any write. There is no surrounding
// transaction: a crash mid-import leaves a partial import, which is an
// accepted limitation of the single local store.
func (s *Store) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var shape struct {
		Customers *json.RawMessage `json:"customers"`
	}
	if err := json.Unmarshal(data, &shape); err != nil || shape.Customers == nil {
		return nil, ErrInvalidImportFormat
	}

	var records []json.RawMessage
	if err := json.Unmarshal(*shape.Customers, &records); err != nil {
		return nil, ErrInvalidImportFormat
	}

	result := &ImportResult{}
	for _, raw := range records {
		var c models.Customer
		if err := json.Unmarshal(raw, &c); err != nil {
			result.Skipped++
			continue
		}
		if c.Deleted {
			result.Skipped++
			continue
		}
		if c.ID == "" {
			c.ID = models.GenerateID()
		}
		if _, err := s.Save(ctx, &c); err != nil {
			s.log.Warn().Str("id", c.ID).Err(err).Msg("import: record skipped")
			result.Skipped++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ClearAll hard-deletes every customer row. Settings and backups are
// untouched. Emits data_cleared.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Customer{}).Error
	if err != nil {
		return err
	}

	s.bus.Notify(EventDataCleared, nil)
	return nil
}

// DB exposes the underlying handle for collaborators that run their own
// queries (auth, reminders).
func (s *Store) DB() *gorm.DB {
	return s.db
}
