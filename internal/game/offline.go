package game

import "time"

// stageOfflineGains computes the catch-up reward for the gap between the
// snapshot's save time and now. Staged once per session: a second restore
// before confirmation must not stack a second reward, so the one-shot flag is
// set whether or not anything was staged.
func (e *Engine) stageOfflineGains(now, lastSavedAt time.Time) {
	if e.offlineStaged {
		return
	}
	e.offlineStaged = true

	elapsed := int64(now.Sub(lastSavedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed < e.bal.OfflineMinSeconds {
		return
	}
	if elapsed > e.bal.OfflineCapSeconds {
		elapsed = e.bal.OfflineCapSeconds
	}
	e.stagedOffline = float64(elapsed) * e.rates.Total
}

// StagedOfflineGain returns the pending catch-up reward, zero if none.
func (e *Engine) StagedOfflineGain() float64 { return e.stagedOffline }

// ConfirmOfflineGains applies the staged reward. The reward is never
// auto-applied; this is the explicit confirmation transition.
func (e *Engine) ConfirmOfflineGains() (float64, error) {
	if e.stagedOffline <= 0 {
		return 0, ErrNoOfflineGains
	}
	amount := e.stagedOffline
	e.stagedOffline = 0
	e.credit(amount)
	e.refresh()
	return amount, nil
}
