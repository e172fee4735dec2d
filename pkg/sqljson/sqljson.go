// Package sqljson provides JSON-encoded column types for SQLite TEXT
// storage. SQLite has no native JSON column type, so maps and lists are
// marshalled on write and unmarshalled on scan.
package sqljson

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Map is a JSON object column.
type Map map[string]any

// Value implements driver.Valuer.
func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Map) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("sqljson: cannot scan %T into Map", value)
	}
}

// List is a JSON array column.
type List []any

// Value implements driver.Valuer.
func (l List) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *List) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("sqljson: cannot scan %T into List", value)
	}
}

// Strings returns the string elements of the list, skipping anything else.
func (l List) Strings() []string {
	out := make([]string, 0, len(l))
	for _, v := range l {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
