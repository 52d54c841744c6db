package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONB is a JSON object column. Works on both sqlite (TEXT) and postgres (jsonb).
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal(JSONB{})
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = JSONB{}
		return nil
	}
	b, err := rawBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, j)
}

// StringList is a JSON array column of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	b, err := rawBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, l)
}

// Contains reports whether v is already in the list.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

func rawBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported type for JSON column")
	}
}
