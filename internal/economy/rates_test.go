package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rorupuntou/World-IDle-sub000/internal/catalog"
)

func testProducers() []catalog.Producer {
	return []catalog.Producer{
		{ID: 1, Name: "A", BaseCost: 15, BaseRate: 0.1},
		{ID: 2, Name: "B", BaseCost: 100, BaseRate: 1},
		{ID: 3, Name: "C", BaseCost: 1100, BaseRate: 8},
	}
}

func TestComputeRates_BaseCase(t *testing.T) {
	r := ComputeRates(testProducers(), map[int]int{1: 10, 2: 5}, nil, nil, Boosts{ClickBase: 1})
	assert.InDelta(t, 10*0.1+5*1, r.Total, 1e-9)
	assert.InDelta(t, 1.0, r.ClickValue, 1e-9)
	assert.InDelta(t, 1.0, r.PerProducer[1], 1e-9)
	assert.Equal(t, 0.0, r.PerProducer[3])
}

func TestComputeRates_ClickScenario(t *testing.T) {
	// clickBase=1, one purchased ×2 click upgrade, verified with factor 10
	// → click value 1×2×10 = 20.
	ups := []catalog.Upgrade{
		{ID: 100, Effects: []catalog.Effect{{Kind: catalog.MultiplyClick, Value: 2}}},
	}
	r := ComputeRates(testProducers(), nil, ups, map[int]bool{100: true},
		Boosts{ClickBase: 1, Verified: true, HumanBoostFactor: 10})
	assert.InDelta(t, 20.0, r.ClickValue, 1e-9)
}

func TestComputeRates_Deterministic(t *testing.T) {
	owned := map[int]int{1: 7, 2: 3, 3: 1}
	purchased := map[int]bool{100: true, 101: true}
	ups := []catalog.Upgrade{
		{ID: 100, Effects: []catalog.Effect{{Kind: catalog.MultiplyGlobal, Value: 1.5}}},
		{ID: 101, Effects: []catalog.Effect{{Kind: catalog.MultiplyProducer, Value: 2, ProducerID: 2}}},
	}
	b := Boosts{ClickBase: 1, PermanentBoost: 0.1, ReferralBoost: 0.05}
	r1 := ComputeRates(testProducers(), owned, ups, purchased, b)
	r2 := ComputeRates(testProducers(), owned, ups, purchased, b)
	require.Equal(t, r1, r2)
}

func TestComputeRates_NoCrossTalk(t *testing.T) {
	owned := map[int]int{1: 10, 2: 10}
	ups := []catalog.Upgrade{
		{ID: 100, Effects: []catalog.Effect{{Kind: catalog.MultiplyProducer, Value: 2, ProducerID: 1}}},
	}
	before := ComputeRates(testProducers(), owned, ups, nil, Boosts{ClickBase: 1})
	after := ComputeRates(testProducers(), owned, ups, map[int]bool{100: true}, Boosts{ClickBase: 1})

	// Only producer 1's rate changes.
	assert.InDelta(t, 2*before.PerProducer[1], after.PerProducer[1], 1e-9)
	assert.Equal(t, before.PerProducer[2], after.PerProducer[2])
	assert.Equal(t, before.ClickValue, after.ClickValue)
}

func TestComputeRates_SynergyReadsLiveCounts(t *testing.T) {
	ups := []catalog.Upgrade{
		// Producer 2 gains 1% per owned producer 3.
		{ID: 100, Effects: []catalog.Effect{{Kind: catalog.Synergy, Value: 0.01, ProducerID: 2, SourceID: 3}}},
	}
	purchased := map[int]bool{100: true}

	r10 := ComputeRates(testProducers(), map[int]int{2: 1, 3: 10}, ups, purchased, Boosts{ClickBase: 1})
	r50 := ComputeRates(testProducers(), map[int]int{2: 1, 3: 50}, ups, purchased, Boosts{ClickBase: 1})
	assert.InDelta(t, 1*1.10, r10.PerProducer[2], 1e-9)
	assert.InDelta(t, 1*1.50, r50.PerProducer[2], 1e-9)
}

func TestComputeRates_FlatRateFromOthers(t *testing.T) {
	ups := []catalog.Upgrade{
		// Producer 1 gains 0.1/s per unit of every other producer.
		{ID: 100, Effects: []catalog.Effect{{Kind: catalog.FlatRateFromOthers, Value: 0.1, ProducerID: 1}}},
	}
	r := ComputeRates(testProducers(), map[int]int{1: 2, 2: 5, 3: 3}, ups, map[int]bool{100: true}, Boosts{ClickBase: 1})
	// 2×0.1 own rate + 0.1×(5+3) flat.
	assert.InDelta(t, 2*0.1+0.1*8, r.PerProducer[1], 1e-9)
}

func TestComputeRates_ClickFromRatePercent(t *testing.T) {
	ups := []catalog.Upgrade{
		{ID: 100, Effects: []catalog.Effect{{Kind: catalog.ClickFromRatePercent, Value: 1}}},
	}
	r := ComputeRates(testProducers(), map[int]int{2: 100}, ups, map[int]bool{100: true}, Boosts{ClickBase: 1})
	assert.InDelta(t, 100.0, r.Total, 1e-9)
	// click = base 1 + 1% of total.
	assert.InDelta(t, 1+1.0, r.ClickValue, 1e-9)
}

func TestComputeRates_GlobalMultiplierComposition(t *testing.T) {
	b := Boosts{
		ClickBase:           1,
		ExternalRatePercent: 50,  // ×1.5
		PermanentBoost:      0.2, // +0.2
		ReferralBoost:       0.1, // +0.1 → ×1.3
		Verified:            true,
		HumanBoostFactor:    10,
	}
	r := ComputeRates(testProducers(), map[int]int{2: 1}, nil, nil, b)
	assert.InDelta(t, 1*1.5*1.3*10, r.Total, 1e-9)
}

func TestComputeRates_UnverifiedIgnoresHumanFactor(t *testing.T) {
	b := Boosts{ClickBase: 1, Verified: false, HumanBoostFactor: 10}
	r := ComputeRates(testProducers(), map[int]int{2: 1}, nil, nil, b)
	assert.InDelta(t, 1.0, r.Total, 1e-9)
	assert.InDelta(t, 1.0, r.ClickValue, 1e-9)
}

func TestComputeRates_AddClickAndMultiplyCompose(t *testing.T) {
	ups := []catalog.Upgrade{
		{ID: 100, Effects: []catalog.Effect{
			{Kind: catalog.MultiplyClick, Value: 2},
			{Kind: catalog.AddClick, Value: 5},
		}},
		{ID: 101, Effects: []catalog.Effect{{Kind: catalog.MultiplyClick, Value: 3}}},
	}
	r := ComputeRates(testProducers(), nil, ups, map[int]bool{100: true, 101: true}, Boosts{ClickBase: 1})
	// 1×2×3 + 5 = 11
	assert.InDelta(t, 11.0, r.ClickValue, 1e-9)
}
