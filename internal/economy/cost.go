package economy

import "math"

// BulkCost simulates qty sequential purchases starting from the producer's
// current stored unit cost. Each step pays the current unit cost and then
// ratchets it by the growth rate, rounded up. The unit cost is stateful on
// the producer and never recomputed from the owned count, so catalog changes
// cannot retroactively reprice history. Returns the soft-currency total and
// the unit cost after the last purchase.
func BulkCost(unitCost, growthRate float64, qty int) (total, nextUnitCost float64) {
	next := unitCost
	for i := 0; i < qty; i++ {
		total += next
		next = math.Ceil(next * growthRate)
	}
	return total, next
}

// BulkPrestigeCost is the prestige-currency side of a bulk purchase. Flat per
// unit, no growth.
func BulkPrestigeCost(perUnit float64, qty int) float64 {
	if perUnit <= 0 {
		return 0
	}
	return perUnit * float64(qty)
}

// MaxAffordable returns the largest quantity whose BulkCost fits in budget.
// Buy-max helper; it does not change the BulkCost contract.
func MaxAffordable(unitCost, growthRate, budget float64) int {
	qty := 0
	next := unitCost
	for budget >= next && next > 0 {
		budget -= next
		next = math.Ceil(next * growthRate)
		qty++
	}
	return qty
}
