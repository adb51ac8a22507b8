package gen

import "testing"

func TestNewUUID(t *testing.T) {
	a, b := NewUUID(), NewUUID()
	if a == b {
		t.Fatal("uuids must differ")
	}

	if !IsUUID(a) {
		t.Fatalf("%s must be a uuid", a)
	}

	if IsUUID("non-existent-uuid") {
		t.Fatal("garbage must not parse")
	}
}
