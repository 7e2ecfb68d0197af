package transfer

import (
	"crypto/ed25519"

	"github.com/xssnick/tonutils-go/tvm/cell"
)

// SignFunc produces the 512-bit signature over a signing payload cell.
type SignFunc func(payload *cell.Cell) ([]byte, error)

// KeySigner signs with the wallet's secret key.
func KeySigner(key ed25519.PrivateKey) SignFunc {
	return func(payload *cell.Cell) ([]byte, error) {
		return payload.Sign(key), nil
	}
}

// EmptySigner emits an all-zero signature. Fee estimation emulates the
// message without signature checks, so a dry run never needs the real key.
func EmptySigner() SignFunc {
	return func(*cell.Cell) ([]byte, error) {
		return make([]byte, ed25519.SignatureSize), nil
	}
}
