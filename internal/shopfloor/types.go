// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package shopfloor

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringList stores a set of string keys as a single comma-separated
// database column while marshalling to a plain JSON array on the wire.
type StringList []string

// Value implements driver.Valuer so gorp can persist the list.
func (l StringList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner so gorp can read the list back.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		*l = strings.Split(v, ",")
		return nil
	case []byte:
		return l.Scan(string(v))
	}
	return fmt.Errorf("cannot scan %T into StringList", src)
}

// Contains reports whether the list contains the given key.
func (l StringList) Contains(key string) bool {
	for _, s := range l {
		if s == key {
			return true
		}
	}
	return false
}

// Intersects reports whether the two lists share at least one key.
func (l StringList) Intersects(other StringList) bool {
	for _, s := range other {
		if l.Contains(s) {
			return true
		}
	}
	return false
}
