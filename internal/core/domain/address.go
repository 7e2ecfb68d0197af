package domain

import (
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// NormalizeAddress parses a raw ("0:hex") or friendly (base64) TON address
// and returns its canonical raw form, which is the form used for storage
// keys and tag matching throughout the kit.
func NormalizeAddress(s string) (string, error) {
	if s == "" {
		return "", ErrInvalidAddress
	}

	var (
		addr *address.Address
		err  error
	)
	if strings.Contains(s, ":") {
		addr, err = address.ParseRawAddr(s)
	} else {
		addr, err = address.ParseAddr(s)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}

	return rawForm(addr), nil
}

// ParseAddress parses a raw or friendly TON address.
func ParseAddress(s string) (*address.Address, error) {
	if strings.Contains(s, ":") {
		addr, err := address.ParseRawAddr(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
		}
		return addr, nil
	}
	addr, err := address.ParseAddr(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, s)
	}
	return addr, nil
}

func rawForm(addr *address.Address) string {
	return fmt.Sprintf("%d:%x", addr.Workchain(), addr.Data())
}
