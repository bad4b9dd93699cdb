package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/samber/lo"
)

// ErrScanValueNotBytes indicates the database value is neither text nor bytes.
var ErrScanValueNotBytes = errors.New("valueobject: jsonmap scan value is not []byte")

// JSONMap is an opaque JSON object persisted in a text column.
// @swaggertype object
type JSONMap map[string]any

// Value implements driver.Valuer. The object is stored as JSON text.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}

	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL and empty text scan into an empty object.
func (j *JSONMap) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case map[string]any:
		*j = JSONMap(v)
		return nil
	default:
		return ErrScanValueNotBytes
	}

	if len(raw) == 0 {
		*j = JSONMap{}
		return nil
	}

	var result JSONMap
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	if result == nil {
		result = JSONMap{}
	}

	*j = result
	return nil
}

// Merge returns a new map holding j overlaid with other; keys in other win.
func (j JSONMap) Merge(other JSONMap) JSONMap {
	return lo.Assign(JSONMap{}, j, other)
}

// Has checks if a key exists.
func (j JSONMap) Has(key string) bool {
	_, ok := j[key]
	return ok
}

// GetString returns the string under key, or "" when missing or not a string.
func (j JSONMap) GetString(key string) string {
	if v, ok := j[key].(string); ok {
		return v
	}
	return ""
}
