// Package privacy seals donation amounts into opaque receipts. A receipt is
// a MiMC commitment over the amount and a fresh random nonce, so two
// donations of the same amount produce different receipts and the receipt
// alone reveals nothing about the amount. The nonce is discarded after
// sealing; the receipt is display/audit material, never an accounting input.
package privacy

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Sealer produces MiMC amount commitments over the bn254 scalar field.
type Sealer struct{}

// NewSealer verifies the hash backend once and returns a ready sealer.
func NewSealer() (*Sealer, error) {
	h := mimc.NewMiMC()
	var probe fr.Element
	probe.SetOne()
	if _, err := h.Write(probe.Marshal()); err != nil {
		return nil, fmt.Errorf("privacy: mimc backend unavailable: %w", err)
	}
	return &Sealer{}, nil
}

// Seal commits to the amount with a fresh random nonce:
// receipt = MiMC(amount || nonce).
func (s *Sealer) Seal(amount int64) ([]byte, error) {
	if amount < 0 {
		return nil, fmt.Errorf("privacy: negative amount")
	}

	var a fr.Element
	a.SetInt64(amount)

	var nonce fr.Element
	if _, err := nonce.SetRandom(); err != nil {
		return nil, fmt.Errorf("privacy: nonce: %w", err)
	}

	h := mimc.NewMiMC()
	if _, err := h.Write(a.Marshal()); err != nil {
		return nil, fmt.Errorf("privacy: seal amount: %w", err)
	}
	if _, err := h.Write(nonce.Marshal()); err != nil {
		return nil, fmt.Errorf("privacy: seal nonce: %w", err)
	}
	return h.Sum(nil), nil
}
