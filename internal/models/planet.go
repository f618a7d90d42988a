package models

import "time"

type PlanetStatus string

const (
	PlanetStatusActive    PlanetStatus = "Active"
	PlanetStatusInactive  PlanetStatus = "Inactive"
	PlanetStatusContested PlanetStatus = "Contested"
)

func ParsePlanetStatus(s string) (PlanetStatus, bool) {
	switch PlanetStatus(s) {
	case PlanetStatusActive, PlanetStatusInactive, PlanetStatusContested:
		return PlanetStatus(s), true
	}
	return "", false
}

// Resource names double as supply item keys.
const (
	ResourceAmmo         = "Ammo"
	ResourceCapitalShips = "Capital Ships"
	ResourceStarships    = "Starships"
	ResourceVehicles     = "Vehicles"
	ResourceFoodRations  = "Food Rations"
	ResourceCredits      = "Credits"
)

// ProductionResources is the fixed list faction production is summed over.
var ProductionResources = []string{
	ResourceAmmo,
	ResourceCapitalShips,
	ResourceStarships,
	ResourceVehicles,
	ResourceFoodRations,
}

func IsProductionResource(name string) bool {
	for _, r := range ProductionResources {
		if r == name {
			return true
		}
	}
	return false
}

// ProductionVector maps resource name to quantity.
type ProductionVector map[string]float64

func NewProductionVector() ProductionVector {
	v := make(ProductionVector, len(ProductionResources))
	for _, r := range ProductionResources {
		v[r] = 0
	}
	return v
}

const (
	MinEfficiency = 0.0
	MaxEfficiency = 2.0
)

type Building struct {
	Type           string    `json:"type"`
	StartDate      time.Time `json:"startDate"`
	CompletionDate time.Time `json:"completionDate"`
	Cost           int64     `json:"cost"`
}

// Planet is a named location on the galaxy map. Planets are keyed by name
// under mapData/planets.
type Planet struct {
	Faction            string           `json:"faction"`
	Status             string           `json:"status"`
	Sector             string           `json:"sector,omitempty"`
	Efficiency         *float64         `json:"efficiency,omitempty"`
	Reputation         *float64         `json:"reputation,omitempty"`
	AccessibleTo       map[string]bool  `json:"accessibleTo,omitempty"`
	CurrentBuilding    *Building        `json:"currentBuilding,omitempty"`
	WeeklyProduction   ProductionVector `json:"weeklyProduction,omitempty"`
	MonthlyProduction  ProductionVector `json:"monthlyProduction,omitempty"`
	ProductionOutput   float64          `json:"productionOutput"`
	Description        string           `json:"description,omitempty"`
	CustomFactionImage string           `json:"customFactionImage,omitempty"`
	LastModified       *time.Time       `json:"lastModified,omitempty"`
}

func (p *Planet) IsActive() bool {
	return p != nil && PlanetStatus(p.Status) == PlanetStatusActive
}

// OwnedBy resolves the planet's faction through legacy aliases.
func (p *Planet) OwnedBy() (Faction, bool) {
	if p == nil {
		return "", false
	}
	return ParseFaction(p.Faction)
}

type Sector struct {
	ControllingFaction string     `json:"controllingFaction,omitempty"`
	Description        string     `json:"description,omitempty"`
	Color              string     `json:"color,omitempty"`
	PlanetCount        int        `json:"planetCount,omitempty"`
	LastModified       *time.Time `json:"lastModified,omitempty"`
}

// SectorContested marks a sector with no single majority holder.
const SectorContested = "Contested"

type MapData struct {
	Planets          map[string]*Planet `json:"planets,omitempty"`
	Sectors          map[string]*Sector `json:"sectors,omitempty"`
	ProductionCycles int                `json:"productionCycles,omitempty"`
	LastUpdate       *time.Time         `json:"lastUpdate,omitempty"`
}
