package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period             string            `json:"period"`
	EventCounts        map[EventType]int `json:"event_counts"`
	ActiveWallets      int               `json:"active_wallets"`
	Clicks             int               `json:"clicks"`
	ProducersPurchased int               `json:"producers_purchased"`
	UpgradesPurchased  int               `json:"upgrades_purchased"`
	Achievements       int               `json:"achievements"`
	Prestiges          int               `json:"prestiges"`
	ClaimsConfirmed    int               `json:"claims_confirmed"`
	ReferralsBound     int               `json:"referrals_bound"`
	SoftEarnedTotal    float64           `json:"soft_earned_total"`
}

// CalculateStats aggregates balance stats from the raw event stream.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:      since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
	}
	wallets := make(map[string]bool)

	for _, event := range events {
		stats.EventCounts[event.Type]++
		if event.Wallet != "" {
			wallets[event.Wallet] = true
		}

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventClickBatch:
			if n, ok := metadata["count"].(float64); ok {
				stats.Clicks += int(n)
			}
			if v, ok := metadata["earned"].(float64); ok {
				stats.SoftEarnedTotal += v
			}
		case EventProducerPurchased:
			if n, ok := metadata["quantity"].(float64); ok {
				stats.ProducersPurchased += int(n)
			}
		case EventUpgradePurchased:
			stats.UpgradesPurchased++
		case EventAchievementUnlocked:
			stats.Achievements++
		case EventPrestige:
			stats.Prestiges++
		case EventClaimConfirmed:
			stats.ClaimsConfirmed++
		case EventReferralBound:
			stats.ReferralsBound++
		case EventOfflineConfirmed:
			if v, ok := metadata["amount"].(float64); ok {
				stats.SoftEarnedTotal += v
			}
		}
	}

	stats.ActiveWallets = len(wallets)
	return stats, nil
}
