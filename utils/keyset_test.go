package utils

import "testing"

func TestKeySetNoDuplicates(t *testing.T) {
	s := NewKeySet()

	added := s.Add("2024-03-01")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("2024-03-01")
	if added {
		t.Error("second Add of same key should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestKeySetContains(t *testing.T) {
	s := NewKeySet()
	s.Add("2024-03-01|5k")

	if !s.Contains("2024-03-01|5k") {
		t.Error("Contains should report an added key")
	}
	if s.Contains("2024-03-02|5k") {
		t.Error("Contains should not report a missing key")
	}
}
