package economy

import (
	"github.com/rorupuntou/World-IDle-sub000/internal/catalog"
)

// Boosts are the external multiplier inputs to the rate calculation. They are
// injected by the caller, never read from globals.
type Boosts struct {
	// ClickBase is the unboosted value of a single click.
	ClickBase float64
	// ExternalRatePercent is an additional percentage boost, e.g. the
	// token-holdings bonus (logarithmic in balance, computed by the caller).
	ExternalRatePercent float64
	// PermanentBoost and ReferralBoost are fractions that survive prestige.
	PermanentBoost float64
	ReferralBoost  float64
	// Verified applies HumanBoostFactor to rates and click value.
	Verified         bool
	HumanBoostFactor float64
}

// Rates is the output of one calculation pass.
type Rates struct {
	PerProducer map[int]float64 `json:"per_producer"`
	Total       float64         `json:"total"`
	ClickValue  float64         `json:"click_value"`
}

// ComputeRates folds every purchased upgrade's effects into per-producer and
// click accumulators, then composes the final multipliers. One atomic pass
// over an immutable view: synergy effects read the owned counts given here,
// never a cached rate. Pure function; identical inputs yield identical output.
func ComputeRates(producers []catalog.Producer, owned map[int]int, upgrades []catalog.Upgrade, purchased map[int]bool, b Boosts) Rates {
	clickMult := 1.0
	clickAdd := 0.0
	globalMult := 1.0
	clickFromRatePct := 0.0
	prodMult := make(map[int]float64, len(producers))
	prodFlat := make(map[int]float64, len(producers))
	for _, p := range producers {
		prodMult[p.ID] = 1
		prodFlat[p.ID] = 0
	}

	totalOwned := 0
	for _, p := range producers {
		totalOwned += owned[p.ID]
	}

	for _, u := range upgrades {
		if !purchased[u.ID] {
			continue
		}
		for _, e := range u.Effects {
			switch e.Kind {
			case catalog.MultiplyClick:
				clickMult *= e.Value
			case catalog.AddClick:
				clickAdd += e.Value
			case catalog.MultiplyGlobal:
				globalMult *= e.Value
			case catalog.MultiplyProducer:
				prodMult[e.ProducerID] *= e.Value
			case catalog.ClickFromRatePercent:
				clickFromRatePct += e.Value
			case catalog.FlatRateFromOthers:
				others := totalOwned - owned[e.ProducerID]
				prodFlat[e.ProducerID] += e.Value * float64(others)
			case catalog.Synergy:
				prodMult[e.ProducerID] *= 1 + e.Value*float64(owned[e.SourceID])
			}
		}
	}

	humanFactor := 1.0
	if b.Verified && b.HumanBoostFactor > 0 {
		humanFactor = b.HumanBoostFactor
	}
	finalGlobal := globalMult *
		(1 + b.ExternalRatePercent/100) *
		(1 + b.PermanentBoost + b.ReferralBoost) *
		humanFactor

	out := Rates{PerProducer: make(map[int]float64, len(producers))}
	for _, p := range producers {
		rate := (float64(owned[p.ID])*p.BaseRate*prodMult[p.ID] + prodFlat[p.ID]) * finalGlobal
		out.PerProducer[p.ID] = rate
		out.Total += rate
	}

	out.ClickValue = (b.ClickBase*clickMult + clickAdd + out.Total*clickFromRatePct/100) * humanFactor
	return out
}
