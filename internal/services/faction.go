package services

import (
	"context"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

// ComputeFactionStats tallies active planets and weekly production for the
// tracked factions. Planets that are not Active, belong to an untracked
// faction, or list unknown resources contribute nothing for those parts.
func ComputeFactionStats(planets map[string]*models.Planet) models.FactionStats {
	stats := make(models.FactionStats, len(models.TrackedFactions))
	for _, f := range models.TrackedFactions {
		stats[f] = models.FactionStat{WeeklyProduction: models.NewProductionVector()}
	}

	for _, planet := range planets {
		if !planet.IsActive() {
			continue
		}
		faction, ok := planet.OwnedBy()
		if !ok || !faction.Tracked() {
			continue
		}
		stat := stats[faction]
		stat.ActivePlanets++
		for resource, amount := range planet.WeeklyProduction {
			if models.IsProductionResource(resource) {
				stat.WeeklyProduction[resource] += amount
			}
		}
		stats[faction] = stat
	}
	return stats
}

type FactionService struct {
	maps  *repositories.MapRepository
	stats *repositories.StatsRepository
}

func NewFactionService(maps *repositories.MapRepository, stats *repositories.StatsRepository) *FactionService {
	return &FactionService{maps: maps, stats: stats}
}

// Recompute rebuilds the cached stats from the current planets and
// replaces whatever was cached before.
func (s *FactionService) Recompute(ctx context.Context) (models.FactionStats, error) {
	planets, err := s.maps.ListPlanets(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeFactionStats(planets)
	if err := s.stats.SaveFactionStats(ctx, stats); err != nil {
		return nil, err
	}
	logger.Debug("Faction stats recalculated", "planets", len(planets))
	return stats, nil
}

func (s *FactionService) Cached(ctx context.Context) (models.FactionStats, error) {
	return s.stats.GetFactionStats(ctx)
}
