package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

const DefaultTravelDays = 5

const day = 24 * time.Hour

// DefaultDistanceTable holds the hyperlane routes out of Coruscant.
func DefaultDistanceTable() map[string]int {
	return map[string]int{
		"Coruscant-Kamino":   2,
		"Coruscant-Naboo":    1,
		"Coruscant-Alderaan": 1,
		"Coruscant-Kashyyyk": 3,
		"Coruscant-Onderon":  4,
		"Coruscant-Geonosis": 5,
		"Coruscant-Ryloth":   6,
		"Coruscant-Tatooine": 7,
		"Coruscant-Mustafar": 7,
	}
}

// LoadDistanceTable reads a JSON object of "From-To": days entries.
func LoadDistanceTable(path string) (map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read distance table: %w", err)
	}
	table := make(map[string]int)
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse distance table %s: %w", path, err)
	}
	for key, days := range table {
		if days < 0 {
			return nil, fmt.Errorf("distance table %s: negative days for %q", path, key)
		}
	}
	return table, nil
}

// TravelPlanner answers how long a hop between two planets takes.
type TravelPlanner struct {
	distances   map[string]int
	defaultDays int
}

func NewTravelPlanner(distances map[string]int, defaultDays int) *TravelPlanner {
	if defaultDays < 0 {
		defaultDays = DefaultTravelDays
	}
	table := make(map[string]int, len(distances))
	for key, days := range distances {
		table[key] = days
	}
	return &TravelPlanner{distances: table, defaultDays: defaultDays}
}

// TravelDays is symmetric: "A-B" and "B-A" resolve to the same entry.
// Unlisted pairs take the default.
func (p *TravelPlanner) TravelDays(from, to string) int {
	if from == to {
		return 0
	}
	if days, ok := p.distances[from+"-"+to]; ok {
		return days
	}
	if days, ok := p.distances[to+"-"+from]; ok {
		return days
	}
	return p.defaultDays
}

func (p *TravelPlanner) Arrival(departure time.Time, days int) time.Time {
	return departure.Add(time.Duration(days) * day)
}

// CheckColocated requires every fleet to sit where the first one does.
func CheckColocated(fleets []*models.Fleet) error {
	if len(fleets) == 0 {
		return errors.New(errors.ErrCodeValidation, "no fleets selected")
	}
	origin := fleets[0].CurrentPlanet
	for _, f := range fleets[1:] {
		if f.CurrentPlanet != origin {
			return errors.Newf(errors.ErrCodeConflict,
				"all selected fleets must be at the same planet: %s is at %s, %s is at %s",
				fleets[0].ID, origin, f.ID, f.CurrentPlanet)
		}
	}
	return nil
}
