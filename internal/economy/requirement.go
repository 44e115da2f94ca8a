package economy

import (
	"github.com/rorupuntou/World-IDle-sub000/internal/catalog"
)

// Stats is the progress snapshot a requirement is evaluated against.
type Stats struct {
	LifetimeEarnings float64 `json:"lifetime_earnings"`
	LifetimeClicks   int64   `json:"lifetime_clicks"`
	ProductionRate   float64 `json:"production_rate"`
	Verified         bool    `json:"verified"`
}

// Met reports whether every present clause of req holds. A nil requirement is
// always satisfied. The MinOwnedEach clause ranges over the producers passed
// in, so a roster that has grown with tier content makes it strictly harder.
// Pure; safe to call every tick.
func Met(req *catalog.Requirement, st Stats, producers []catalog.Producer, owned map[int]int) bool {
	if req == nil {
		return true
	}
	if req.MinLifetimeEarnings > 0 && st.LifetimeEarnings < req.MinLifetimeEarnings {
		return false
	}
	if req.MinLifetimeClicks > 0 && st.LifetimeClicks < req.MinLifetimeClicks {
		return false
	}
	if req.MinProductionRate > 0 && st.ProductionRate < req.MinProductionRate {
		return false
	}
	for id, min := range req.MinOwned {
		if owned[id] < min {
			return false
		}
	}
	if req.MinOwnedEach > 0 {
		for _, p := range producers {
			if owned[p.ID] < req.MinOwnedEach {
				return false
			}
		}
	}
	if req.RequiresVerified && !st.Verified {
		return false
	}
	return true
}
