package telemetry

import "time"

type EventType string

const (
	EventSessionStarted      EventType = "session_started"
	EventClickBatch          EventType = "click_batch"
	EventProducerPurchased   EventType = "producer_purchased"
	EventUpgradePurchased    EventType = "upgrade_purchased"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventOfflineConfirmed    EventType = "offline_confirmed"
	EventPrestige            EventType = "prestige"
	EventClaimIssued         EventType = "claim_issued"
	EventClaimConfirmed      EventType = "claim_confirmed"
	EventReferralBound       EventType = "referral_bound"
	EventVerified            EventType = "verified"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Wallet    string    `json:"wallet,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
