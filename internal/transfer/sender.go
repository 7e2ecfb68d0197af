package transfer

import (
	"context"
	"log/slog"
	"time"

	"github.com/openton/tonkit/internal/core/domain"
)

// messageTTL is how long a built transfer stays valid. The expiry is
// computed from the chain's own clock when reachable; a skewed local clock
// otherwise produces transfers that are dead on arrival.
const messageTTL = 5 * time.Minute

// API is the slice of the provider client the sender consumes.
type API interface {
	GetAccountSeqno(ctx context.Context, address string) (uint32, error)
	GetRawTime(ctx context.Context) (int64, error)
	EstimateFee(ctx context.Context, boc string) (*domain.EmulateResult, error)
	Send(ctx context.Context, boc string) error
}

// Sender signs and submits transfers for one wallet. A nil signer makes
// the sender watch-only: estimate and send fail with ErrWatchOnly before
// touching the network.
type Sender struct {
	address string
	api     API
	builder *Builder
	signer  SignFunc
	logger  *slog.Logger
}

func NewSender(address string, api API, builder *Builder, signer SignFunc, logger *slog.Logger) *Sender {
	return &Sender{
		address: address,
		api:     api,
		builder: builder,
		signer:  signer,
		logger:  logger.With("component", "transfer"),
	}
}

// EstimateFee dry-runs the transfer against the emulator using an empty
// signature and returns the total fee with the emulated event. Emulation
// errors are surfaced to the caller.
func (s *Sender) EstimateFee(ctx context.Context, messages []Message) (*domain.EmulateResult, error) {
	if s.signer == nil {
		return nil, domain.ErrWatchOnly
	}
	boc, err := s.external(ctx, messages, EmptySigner())
	if err != nil {
		return nil, err
	}
	return s.api.EstimateFee(ctx, boc)
}

// Send signs the transfer and submits it to the network.
func (s *Sender) Send(ctx context.Context, messages []Message) error {
	if s.signer == nil {
		return domain.ErrWatchOnly
	}
	boc, err := s.external(ctx, messages, s.signer)
	if err != nil {
		return err
	}
	if err := s.api.Send(ctx, boc); err != nil {
		return err
	}
	s.logger.Info("transfer submitted", "messages", len(messages))
	return nil
}

func (s *Sender) external(ctx context.Context, messages []Message, sign SignFunc) (string, error) {
	seqno, err := s.api.GetAccountSeqno(ctx, s.address)
	if err != nil {
		return "", err
	}
	return s.builder.External(messages, seqno, s.expireAt(ctx), sign)
}

// expireAt anchors the message TTL to the chain's clock, falling back to
// the local clock when the time endpoint is unreachable.
func (s *Sender) expireAt(ctx context.Context) int64 {
	now, err := s.api.GetRawTime(ctx)
	if err != nil {
		s.logger.Warn("remote time unavailable, using local clock", "error", err)
		now = time.Now().Unix()
	}
	return now + int64(messageTTL/time.Second)
}
