package models

type Faction string

const (
	FactionRepublic    Faction = "Republic"
	FactionSeparatists Faction = "Separatists"
	FactionMandalore   Faction = "Mandalore"
	FactionIndependent Faction = "Independent"
)

// TrackedFactions are the sides that get production statistics, fleets
// and construction.
var TrackedFactions = []Faction{FactionRepublic, FactionSeparatists}

var AllFactions = []Faction{FactionRepublic, FactionSeparatists, FactionMandalore, FactionIndependent}

// Older map data spells the separatist side several ways.
var factionAliases = map[string]Faction{
	"CIS":         FactionSeparatists,
	"Seperatists": FactionSeparatists,
}

// ParseFaction resolves s to a known faction, accepting legacy aliases.
func ParseFaction(s string) (Faction, bool) {
	for _, f := range AllFactions {
		if string(f) == s {
			return f, true
		}
	}
	if f, ok := factionAliases[s]; ok {
		return f, true
	}
	return "", false
}

func (f Faction) Tracked() bool {
	for _, t := range TrackedFactions {
		if t == f {
			return true
		}
	}
	return false
}

// CanConstruct reports whether planets of this faction may start buildings.
func (f Faction) CanConstruct() bool {
	return f.Tracked()
}
