// Package models holds the data shapes stored by the development backend.
package models

import "maps"

// Row is one stored record: field name to value. Integer fields hold
// int64, number fields float64, dates "YYYY-MM-DD" strings.
type Row map[string]any

// Clone returns a shallow copy; values are scalars so this is enough to
// keep callers from mutating stored rows.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}
