package model

import "time"

// Base contains the store-assigned identifier shared by every entity.
type Base struct {
	ID int64 `json:"id,omitempty" db:"id"`
}

// UTC normalizes a timestamp before it is written to the store.
func UTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
