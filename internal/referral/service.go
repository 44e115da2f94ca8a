package referral

import (
	"context"
	"errors"
	"log"

	"github.com/rorupuntou/World-IDle-sub000/internal/config"
	"github.com/rorupuntou/World-IDle-sub000/internal/store"
)

var (
	ErrSelfReferral    = errors.New("cannot refer yourself")
	ErrAlreadyReferred = errors.New("wallet already has a referrer")
	ErrUnknownReferrer = errors.New("referrer has no saved progress")
)

// Service binds referee wallets to referrers and accrues the referrer's
// permanent boost. The boost lives in a dedicated store column so it survives
// snapshot resets.
type Service struct {
	store  *store.Store
	bal    config.Balance
	logger *log.Logger
}

func NewService(st *store.Store, bal config.Balance, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: st, bal: bal, logger: logger}
}

// BoostFor maps a referral count to the permanent boost fraction, capped.
func (s *Service) BoostFor(count int) float64 {
	boost := float64(count) * s.bal.ReferralBoostPerReferral
	if boost > s.bal.ReferralBoostCap {
		boost = s.bal.ReferralBoostCap
	}
	return boost
}

// Bind records referee→referrer once and returns the referrer's new boost.
// Binding is one-shot per referee; later calls are rejected.
func (s *Service) Bind(ctx context.Context, referee, referrer string) (float64, error) {
	referee = store.NormalizeWallet(referee)
	referrer = store.NormalizeWallet(referrer)
	if referee == "" || referrer == "" {
		return 0, store.ErrNoWallet
	}
	if referee == referrer {
		return 0, ErrSelfReferral
	}

	refereeRow, err := s.store.Load(ctx, referee)
	if err != nil {
		return 0, err
	}
	if refereeRow != nil && refereeRow.ReferredBy != "" {
		return 0, ErrAlreadyReferred
	}
	referrerRow, err := s.store.Load(ctx, referrer)
	if err != nil {
		return 0, err
	}
	if referrerRow == nil {
		return 0, ErrUnknownReferrer
	}

	if err := s.store.Save(ctx, referee, store.SaveRequest{ReferredBy: &referrer}); err != nil {
		return 0, err
	}
	count := referrerRow.ReferralCount + 1
	boost := s.BoostFor(count)
	if err := s.store.Save(ctx, referrer, store.SaveRequest{
		ReferralCount: &count,
		ReferralBoost: &boost,
	}); err != nil {
		return 0, err
	}
	s.logger.Printf("referral bound: %s -> %s (count=%d boost=%.2f)", referee, referrer, count, boost)
	return boost, nil
}
