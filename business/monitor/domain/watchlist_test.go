package domain

import "testing"

func TestWatchlistAppendOncePreservesOrder(t *testing.T) {
	w := NewWatchlist()

	if !w.Append(user(1)) {
		t.Error("first append should insert")
	}
	if !w.Append(user(2)) {
		t.Error("second user should insert")
	}
	if w.Append(user(1)) {
		t.Error("duplicate append must be a no-op")
	}

	if w.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", w.Len())
	}
	if got, _ := w.At(0); got != user(1) {
		t.Errorf("At(0) = %s, want user 1", got.Hex())
	}
	if got, _ := w.At(1); got != user(2) {
		t.Errorf("At(1) = %s, want user 2", got.Hex())
	}
	if _, ok := w.At(2); ok {
		t.Error("At(2) should be out of range")
	}
}
