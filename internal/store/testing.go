package store

import "testing"

// NewTestStore creates a Store backed by an in-memory database that is
// closed when the test ends. This is only intended for use in tests.
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	s, err := OpenAt(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
