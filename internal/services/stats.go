package services

import (
	"context"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
)

type PlanetCounts struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Inactive    int `json:"inactive"`
	Contested   int `json:"contested"`
	Republic    int `json:"republic"`
	Separatists int `json:"separatists"`
}

type SupplySummary struct {
	TotalSupply float64            `json:"totalSupply"`
	ItemCount   int                `json:"itemCount"`
	Items       map[string]float64 `json:"items"`
}

type ProductionSummary struct {
	Republic        models.FactionStat `json:"republic"`
	Separatists     models.FactionStat `json:"separatists"`
	TotalProduction map[string]float64 `json:"totalProduction"`
}

type Dashboard struct {
	Planets          PlanetCounts           `json:"planets"`
	Supplies         SupplySummary          `json:"supplies"`
	Production       ProductionSummary      `json:"production"`
	CapitalShips     models.CapitalShipPool `json:"capitalShips"`
	ProductionCycles int                    `json:"productionCycles"`
	LastUpdated      time.Time              `json:"lastUpdated"`
}

type FactionPlanetCounts struct {
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Contested int `json:"contested"`
	Total     int `json:"total"`
}

type FactionComparison struct {
	Planets       FactionPlanetCounts     `json:"planets"`
	Production    models.ProductionVector `json:"production"`
	ActivePlanets int                     `json:"activePlanets"`
}

type ResourceComparison struct {
	Republic    float64 `json:"republic"`
	Separatists float64 `json:"separatists"`
	Total       float64 `json:"total"`
	Advantage   string  `json:"advantage"`
	Difference  float64 `json:"difference"`
}

type ComparisonSummary struct {
	RepublicPlanets    int `json:"republicPlanets"`
	SeparatistsPlanets int `json:"separatistsPlanets"`
	RepublicActive     int `json:"republicActive"`
	SeparatistsActive  int `json:"separatistsActive"`
	TotalPlanets       int `json:"totalPlanets"`
}

type FactionReport struct {
	FactionComparison    map[models.Faction]*FactionComparison `json:"factionComparison"`
	ProductionComparison map[string]ResourceComparison          `json:"productionComparison"`
	Summary              ComparisonSummary                      `json:"summary"`
}

type HealthReport struct {
	Server        string    `json:"server"`
	Store         string    `json:"store"`
	StoreError    string    `json:"storeError,omitempty"`
	DataIntegrity string    `json:"dataIntegrity"`
	DataIssues    []string  `json:"dataIssues,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (h *HealthReport) Healthy() bool {
	return h.Store == "online" && h.DataIntegrity == "good"
}

// StatsService builds the read-only dashboard views.
type StatsService struct {
	maps     *repositories.MapRepository
	supply   *repositories.SupplyRepository
	fleets   *FleetService
	factions *FactionService
	now      func() time.Time
}

func NewStatsService(maps *repositories.MapRepository, supply *repositories.SupplyRepository, fleets *FleetService, factions *FactionService) *StatsService {
	return &StatsService{maps: maps, supply: supply, fleets: fleets, factions: factions, now: time.Now}
}

// cachedStats reads the faction cache and rebuilds it when it was never written.
func (s *StatsService) cachedStats(ctx context.Context) (models.FactionStats, error) {
	stats, err := s.factions.Cached(ctx)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return s.factions.Recompute(ctx)
	}
	return stats, nil
}

func factionStat(stats models.FactionStats, f models.Faction) models.FactionStat {
	stat := stats[f]
	if stat.WeeklyProduction == nil {
		stat.WeeklyProduction = models.NewProductionVector()
	}
	return stat
}

func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	data, err := s.maps.GetMapData(ctx)
	if err != nil {
		return nil, err
	}
	supply, _, err := s.supply.GetSupply(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.cachedStats(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := s.fleets.Pool(ctx)
	if err != nil {
		return nil, err
	}

	var counts PlanetCounts
	for _, p := range data.Planets {
		counts.Total++
		switch models.PlanetStatus(p.Status) {
		case models.PlanetStatusActive:
			counts.Active++
		case models.PlanetStatusInactive:
			counts.Inactive++
		case models.PlanetStatusContested:
			counts.Contested++
		}
		switch f, _ := p.OwnedBy(); f {
		case models.FactionRepublic:
			counts.Republic++
		case models.FactionSeparatists:
			counts.Separatists++
		}
	}

	production := ProductionSummary{
		Republic:        factionStat(stats, models.FactionRepublic),
		Separatists:     factionStat(stats, models.FactionSeparatists),
		TotalProduction: make(map[string]float64, len(models.ProductionResources)),
	}
	for _, r := range models.ProductionResources {
		production.TotalProduction[r] = production.Republic.WeeklyProduction[r] + production.Separatists.WeeklyProduction[r]
	}

	return &Dashboard{
		Planets: counts,
		Supplies: SupplySummary{
			TotalSupply: supply.TotalSupply,
			ItemCount:   len(supply.Items),
			Items:       supply.Items,
		},
		Production:       production,
		CapitalShips:     pool,
		ProductionCycles: data.ProductionCycles,
		LastUpdated:      s.now().UTC(),
	}, nil
}

func (s *StatsService) Factions(ctx context.Context) (*FactionReport, error) {
	planets, err := s.maps.ListPlanets(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.cachedStats(ctx)
	if err != nil {
		return nil, err
	}

	comparison := make(map[models.Faction]*FactionComparison, len(models.TrackedFactions))
	for _, f := range models.TrackedFactions {
		stat := factionStat(stats, f)
		comparison[f] = &FactionComparison{Production: stat.WeeklyProduction, ActivePlanets: stat.ActivePlanets}
	}
	for _, p := range planets {
		f, _ := p.OwnedBy()
		c, ok := comparison[f]
		if !ok {
			continue
		}
		c.Planets.Total++
		switch models.PlanetStatus(p.Status) {
		case models.PlanetStatusActive:
			c.Planets.Active++
		case models.PlanetStatusInactive:
			c.Planets.Inactive++
		case models.PlanetStatusContested:
			c.Planets.Contested++
		}
	}

	rep, sep := comparison[models.FactionRepublic], comparison[models.FactionSeparatists]
	resources := make(map[string]ResourceComparison, len(models.ProductionResources))
	for _, r := range models.ProductionResources {
		a, b := rep.Production[r], sep.Production[r]
		rc := ResourceComparison{Republic: a, Separatists: b, Total: a + b, Advantage: "Tied"}
		switch {
		case a > b:
			rc.Advantage = string(models.FactionRepublic)
			rc.Difference = a - b
		case b > a:
			rc.Advantage = string(models.FactionSeparatists)
			rc.Difference = b - a
		}
		resources[r] = rc
	}

	return &FactionReport{
		FactionComparison:    comparison,
		ProductionComparison: resources,
		Summary: ComparisonSummary{
			RepublicPlanets:    rep.Planets.Total,
			SeparatistsPlanets: sep.Planets.Total,
			RepublicActive:     rep.Planets.Active,
			SeparatistsActive:  sep.Planets.Active,
			TotalPlanets:       rep.Planets.Total + sep.Planets.Total,
		},
	}, nil
}

// Health probes the store and checks that the core documents exist.
func (s *StatsService) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{Server: "online", Store: "online", DataIntegrity: "good", Timestamp: s.now().UTC()}

	if _, err := s.maps.GetProductionCycles(ctx); err != nil {
		report.Store = "error"
		report.StoreError = err.Error()
		report.DataIntegrity = "unknown"
		return report
	}

	planets, err := s.maps.ListPlanets(ctx)
	if err != nil {
		report.DataIntegrity = "error"
		return report
	}
	_, found, err := s.supply.GetSupply(ctx)
	if err != nil {
		report.DataIntegrity = "error"
		return report
	}
	if len(planets) == 0 {
		report.DataIssues = append(report.DataIssues, "No planetary data found")
	}
	if !found {
		report.DataIssues = append(report.DataIssues, "No supply data found")
	}
	if len(report.DataIssues) > 0 {
		report.DataIntegrity = "issues"
	}
	return report
}
