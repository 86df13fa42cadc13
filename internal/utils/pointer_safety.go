package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to a copy of v, for optional fields in update inputs.
func Ptr[T any](v T) *T {
	return &v
}
