package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tailorbook/utils"
)

// MeasurementFields is the closed set of measurement names every record carries.
// A field with no value is stored as an empty string, never omitted.
var MeasurementFields = []string{
	"length",
	"shoulder",
	"sleeves",
	"collar",
	"chest",
	"waist",
	"hips",
	"skirtLength",
	"trouserLength",
	"trouserWidth",
	"cuff",
	"armhole",
}

// Fixed garment-style catalogs. Collar and sleeve are single-choice,
// skirt and features are multi-choice tags.
var (
	CollarStyles  = []string{"ban", "shirt", "round", "v-neck"}
	SleeveStyles  = []string{"plain", "cuff", "double-cuff"}
	SkirtStyles   = []string{"round", "square", "side-slit", "straight"}
	FeatureTags   = []string{"front-pocket", "side-pockets", "zip", "embroidery", "double-stitch"}
	DeliveryDays  = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	schemaVersion = 1
)

// GarmentModels holds the style selections for one customer.
type GarmentModels struct {
	Collar   string     `json:"collar"`
	Sleeve   string     `json:"sleeve"`
	Skirt    StringList `json:"skirt"`
	Features StringList `json:"features"`
}

func (m GarmentModels) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *GarmentModels) Scan(value interface{}) error {
	if value == nil {
		*m = GarmentModels{Skirt: StringList{}, Features: StringList{}}
		return nil
	}
	b, err := rawBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, m)
}

// Order is one garment order attached to a customer.
type Order struct {
	ID        string    `json:"id"`
	Details   string    `json:"details"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewOrder creates an order sub-record with a fresh id.
func NewOrder(details, status string) Order {
	if status == "" {
		status = "pending"
	}
	return Order{
		ID:        uuid.NewString(),
		Details:   details,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// OrderList is a JSON array column of orders.
type OrderList []Order

func (l OrderList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Order{})
	}
	return json.Marshal(l)
}

func (l *OrderList) Scan(value interface{}) error {
	if value == nil {
		*l = OrderList{}
		return nil
	}
	b, err := rawBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, l)
}

// Customer is the central record of the shop.
//
// Deleted is an explicit flag rather than gorm.DeletedAt: soft-deleted records
// still travel through full listings, backups and exports.
type Customer struct {
	ID    string `gorm:"primaryKey;size:8" json:"id"`
	Name  string `gorm:"not null;index" json:"name"`
	Phone string `gorm:"not null;index" json:"phone"`
	Notes string `json:"notes"`

	Measurements JSONB         `gorm:"type:text" json:"measurements"`
	Models       GarmentModels `gorm:"type:text" json:"models"`
	Orders       OrderList     `gorm:"type:text" json:"orders"`

	SewingPrice *int   `json:"sewingPrice"`
	DeliveryDay string `json:"deliveryDay"`

	PaymentReceived bool       `json:"paymentReceived"`
	PaymentDate     *time.Time `json:"paymentDate"`

	Deleted bool `gorm:"default:false;index" json:"deleted"`
	Version int  `gorm:"default:1" json:"version"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GenerateID builds a short human-readable id: the tail of the current
// millisecond timestamp plus random digits, truncated to 4 characters.
// Not collision-proof at this length; callers that care retry against
// the ids they already hold.
func GenerateID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	id := ts[len(ts)-2:] + fmt.Sprintf("%03d", rand.IntN(1000))
	return id[:4]
}

// NewCustomer constructs a record with every measurement field present and
// empty model selections. Validation happens at save time, not here.
func NewCustomer(name, phone string) *Customer {
	now := time.Now()
	c := &Customer{
		ID:        GenerateID(),
		Name:      name,
		Phone:     phone,
		Version:   schemaVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Normalize()
	return c
}

// Validate returns every rule violation as a human-readable message.
// All rules are checked; nothing short-circuits.
func (c *Customer) Validate() []string {
	var errs []string

	if len(strings.TrimSpace(c.Name)) < 2 {
		errs = append(errs, "name is required and must be at least 2 characters")
	}

	if !utils.ValidatePhone(c.Phone) {
		errs = append(errs, "phone is required and must have 10 to 15 digits")
	}

	for _, field := range MeasurementFields {
		v, ok := c.Measurements[field]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if strings.TrimSpace(val) == "" {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err != nil {
				errs = append(errs, fmt.Sprintf("measurement %q must be a number", field))
			}
		case float64, int:
			// already numeric
		default:
			errs = append(errs, fmt.Sprintf("measurement %q must be a number", field))
		}
	}

	if c.SewingPrice != nil && *c.SewingPrice < 0 {
		errs = append(errs, "sewing price must be a non-negative number")
	}

	return errs
}

// Normalize coerces a loosely-typed record into canonical shape. It is
// idempotent: normalizing a normalized record changes nothing.
func (c *Customer) Normalize() {
	if c.Measurements == nil {
		c.Measurements = JSONB{}
	}
	for _, field := range MeasurementFields {
		v, ok := c.Measurements[field]
		if !ok {
			c.Measurements[field] = ""
			continue
		}
		// Stored form may carry numbers as strings; convert when they parse.
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				c.Measurements[field] = f
			}
		}
	}

	if c.Models.Skirt == nil {
		c.Models.Skirt = StringList{}
	}
	if c.Models.Features == nil {
		c.Models.Features = StringList{}
	}
	if c.Orders == nil {
		c.Orders = OrderList{}
	}
	if c.Version < 1 {
		c.Version = schemaVersion
	}
}

// SetPaymentReceived flips the payment flag and keeps PaymentDate paired
// with it: stamped on false→true, cleared on true→false.
func (c *Customer) SetPaymentReceived(received bool) {
	if received && !c.PaymentReceived {
		now := time.Now()
		c.PaymentDate = &now
	}
	if !received {
		c.PaymentDate = nil
	}
	c.PaymentReceived = received
}

// Matches reports whether the query appears, case-insensitively, in any of
// the searchable fields: name, phone, notes, id, collar style, delivery day.
func (c *Customer) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{c.Name, c.Phone, c.Notes, c.ID, c.Models.Collar, c.DeliveryDay} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

