package model

import "testing"

func TestNewUUIDUnique(t *testing.T) {
	const n = 5000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		u := NewUUID()
		if _, ok := seen[u]; ok {
			t.Fatalf("duplicate UUID generated at iteration %d: %s", i, u)
		}
		seen[u] = struct{}{}
	}
}
