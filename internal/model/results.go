package model

// Meta carries the envelope metadata of a collection response.
type Meta map[string]any

// Results is the envelope returned by collection endpoints.
type Results[T any] struct {
	Meta Meta
	Data []T
}

// Len returns the number of records in the envelope.
func (r *Results[T]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}
