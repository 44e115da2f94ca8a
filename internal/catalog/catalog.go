package catalog

// EffectKind enumerates every upgrade effect the economy understands.
// The switch in the rate calculator is exhaustive over these; adding a kind
// without handling it there is a compile-review error, not a silent no-op.
type EffectKind int

const (
	// MultiplyClick multiplies the click value by Value.
	MultiplyClick EffectKind = iota + 1
	// AddClick adds Value flat to the click value.
	AddClick
	// MultiplyGlobal multiplies every producer's rate by Value.
	MultiplyGlobal
	// MultiplyProducer multiplies producer ProducerID's rate by Value.
	MultiplyProducer
	// ClickFromRatePercent adds Value percent of total production to each click.
	ClickFromRatePercent
	// FlatRateFromOthers adds Value units/sec to producer ProducerID for every
	// unit owned of all other producers combined.
	FlatRateFromOthers
	// Synergy multiplies producer ProducerID's rate by (1 + Value × owned
	// count of producer SourceID), read live at calculation time.
	Synergy
)

// Effect is one entry of an upgrade's ordered effect list. Which fields are
// meaningful depends on Kind; unused fields stay zero.
type Effect struct {
	Kind       EffectKind `json:"kind"`
	Value      float64    `json:"value"`
	ProducerID int        `json:"producer_id,omitempty"`
	SourceID   int        `json:"source_id,omitempty"`
}

// Requirement is a conjunction of gate clauses. Zero-valued clauses are
// absent and vacuously true.
type Requirement struct {
	MinLifetimeEarnings float64     `json:"min_lifetime_earnings,omitempty"`
	MinLifetimeClicks   int64       `json:"min_lifetime_clicks,omitempty"`
	MinProductionRate   float64     `json:"min_production_rate,omitempty"`
	MinOwned            map[int]int `json:"min_owned,omitempty"`
	MinOwnedEach        int         `json:"min_owned_each,omitempty"`
	RequiresVerified    bool        `json:"requires_verified,omitempty"`
}

// Producer is the static template of an autoclicker.
type Producer struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	BaseCost     float64      `json:"base_cost"`
	BaseRate     float64      `json:"base_rate"`
	PrestigeCost float64      `json:"prestige_cost,omitempty"`
	Unlock       *Requirement `json:"unlock,omitempty"`
	DevOnly      bool         `json:"dev_only,omitempty"`
}

// Upgrade is the static template of a one-shot purchasable upgrade.
type Upgrade struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Cost         float64      `json:"cost"`
	PrestigeCost float64      `json:"prestige_cost,omitempty"`
	Effects      []Effect     `json:"effects"`
	Unlock       *Requirement `json:"unlock,omitempty"`
}

// Achievement is the static template of an achievement.
type Achievement struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Requirement Requirement `json:"requirement"`
	// RewardBonus is credited to the bonus currency exactly once on unlock.
	RewardBonus float64 `json:"reward_bonus,omitempty"`
}

// Catalog is a read-only bundle of templates. Extended views are derived, not
// mutated in place.
type Catalog struct {
	Producers    []Producer
	Upgrades     []Upgrade
	Achievements []Achievement
}

// Producer returns the template with the given ID, or false.
func (c Catalog) Producer(id int) (Producer, bool) {
	for _, p := range c.Producers {
		if p.ID == id {
			return p, true
		}
	}
	return Producer{}, false
}

// Upgrade returns the template with the given ID, or false.
func (c Catalog) Upgrade(id int) (Upgrade, bool) {
	for _, u := range c.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return Upgrade{}, false
}
