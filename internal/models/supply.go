package models

import "time"

type Supply struct {
	Items       map[string]float64 `json:"items"`
	TotalSupply float64            `json:"totalSupply"`
	LastUpdated *time.Time         `json:"lastUpdated,omitempty"`
}

func NewSupply() *Supply {
	return &Supply{Items: make(map[string]float64)}
}

// Recalculate resets TotalSupply to the sum of the items.
func (s *Supply) Recalculate() {
	var total float64
	for _, amount := range s.Items {
		total += amount
	}
	s.TotalSupply = total
}

// DefaultSupplyItems is the inventory a reset produces.
var DefaultSupplyItems = []string{
	ResourceAmmo,
	ResourceCapitalShips,
	ResourceStarships,
	ResourceVehicles,
	ResourceFoodRations,
}

type FactionStat struct {
	ActivePlanets    int              `json:"activePlanets"`
	WeeklyProduction ProductionVector `json:"weeklyProduction"`
}

// FactionStats is the cached aggregate stored at factionStats.
type FactionStats map[Faction]FactionStat
