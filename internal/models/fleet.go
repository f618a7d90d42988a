package models

import (
	"fmt"
	"time"
)

// CapitalShipClass is the composition key drawn from the Capital Ships supply.
const CapitalShipClass = "venators"

const GroupUnassigned = "Unassigned"

var RepublicBattalions = []string{
	"501st", "212th", "104th", "91st", "41st Elite", "21st", "Coruscant Guard",
}

var SeparatistGroups = []string{
	"Grievous Fleet", "Dooku Command", "Muun Banking Clan", "Trade Federation", "Techno Union",
}

var shipClasses = map[Faction][]string{
	FactionRepublic:    {CapitalShipClass},
	FactionSeparatists: {"dreadnoughts", "munificents", "providences"},
}

// GroupsFor lists the classification tags a faction's fleets may carry.
func GroupsFor(f Faction) []string {
	var groups []string
	switch f {
	case FactionRepublic:
		groups = append(groups, RepublicBattalions...)
	case FactionSeparatists:
		groups = append(groups, SeparatistGroups...)
	}
	return append(groups, GroupUnassigned)
}

func ValidGroup(f Faction, group string) bool {
	for _, g := range GroupsFor(f) {
		if g == group {
			return true
		}
	}
	return false
}

func ShipClassesFor(f Faction) []string {
	return shipClasses[f]
}

func ValidShipClass(f Faction, class string) bool {
	for _, c := range shipClasses[f] {
		if c == class {
			return true
		}
	}
	return false
}

type Fleet struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Commander     string         `json:"commander,omitempty"`
	Faction       Faction        `json:"faction"`
	Group         string         `json:"group"`
	CurrentPlanet string         `json:"currentPlanet"`
	TravelingTo   string         `json:"travelingTo,omitempty"`
	DepartureDate *time.Time     `json:"departureDate,omitempty"`
	ArrivalDate   *time.Time     `json:"arrivalDate,omitempty"`
	Composition   map[string]int `json:"composition,omitempty"`
	Description   string         `json:"description,omitempty"`
	Created       time.Time      `json:"created"`
}

func (f *Fleet) InTransit() bool {
	return f.TravelingTo != ""
}

func (f *Fleet) CapitalShips() int {
	return f.Composition[CapitalShipClass]
}

// CheckTransitState verifies the fleet is either stationary or in transit,
// never a mix of the two.
func (f *Fleet) CheckTransitState() error {
	switch {
	case f.TravelingTo == "" && (f.ArrivalDate != nil || f.DepartureDate != nil):
		return fmt.Errorf("fleet %s has travel dates but no destination", f.ID)
	case f.TravelingTo != "" && (f.ArrivalDate == nil || f.DepartureDate == nil):
		return fmt.Errorf("fleet %s is traveling to %s without travel dates", f.ID, f.TravelingTo)
	}
	return nil
}

// Arrived reports whether an in-transit fleet's arrival time has passed.
func (f *Fleet) Arrived(now time.Time) bool {
	return f.InTransit() && f.ArrivalDate != nil && !now.Before(*f.ArrivalDate)
}

// CapitalShipPool is derived on every read, never stored.
type CapitalShipPool struct {
	Total     int `json:"total"`
	Assigned  int `json:"assigned"`
	Available int `json:"available"`
}
