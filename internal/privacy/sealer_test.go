package privacy

import (
	"bytes"
	"testing"
)

func TestSealerProducesReceipts(t *testing.T) {
	s, err := NewSealer()
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	receipt, err := s.Seal(100)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if len(receipt) == 0 {
		t.Fatal("empty receipt")
	}
}

func TestSealHidesEqualAmounts(t *testing.T) {
	s, err := NewSealer()
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	// Same amount, fresh nonce: receipts must differ or the receipt would
	// leak amount equality between donations.
	a, err := s.Seal(500)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	b, err := s.Seal(500)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two receipts for the same amount are identical")
	}
}

func TestSealRejectsNegativeAmount(t *testing.T) {
	s, err := NewSealer()
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	if _, err := s.Seal(-1); err == nil {
		t.Fatal("expected error for negative amount")
	}
}
