// Package utils holds small generic helpers shared by the request models.
package utils

// Value dereferences v, giving the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Ptr returns a pointer to a copy of v, for filling optional request fields.
func Ptr[T any](v T) *T {
	return &v
}
