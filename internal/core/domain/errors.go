package domain

import "errors"

var (
	// ErrNotStarted is the initial sync-state error before any attempt.
	ErrNotStarted = errors.New("sync not started")

	// ErrNoNetworkConnection is surfaced when the stream reports no
	// connectivity.
	ErrNoNetworkConnection = errors.New("no network connection")

	// ErrDisconnected is surfaced when the stream drops.
	ErrDisconnected = errors.New("stream disconnected")

	// ErrWatchOnly is returned by signing operations on a kit without a
	// secret key.
	ErrWatchOnly = errors.New("watch-only account")

	// ErrInvalidAddress is returned for addresses that fail validation.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNoJettonWallet is returned when building a jetton transfer for a
	// jetton the account holds no wallet for.
	ErrNoJettonWallet = errors.New("no jetton wallet for address")
)
