package pointers

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

// NonEmpty returns nil for "", else a pointer to s.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
