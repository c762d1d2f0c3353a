// Package model holds the budgetr domain records and their wire payloads.
package model

// Identifiable is implemented by every record that carries a server identity.
type Identifiable interface {
	ID() int64
}

// IsPersisted reports whether the record has been stored by the server.
// An id of 0 means the record only exists locally.
func IsPersisted(e Identifiable) bool {
	return e != nil && e.ID() != 0
}
