package repositories

import (
	"context"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

const factionStatsPath = "factionStats"

type StatsRepository struct {
	store store.Store
}

func NewStatsRepository(s store.Store) *StatsRepository {
	return &StatsRepository{store: s}
}

func (r *StatsRepository) GetFactionStats(ctx context.Context) (models.FactionStats, error) {
	stats := make(models.FactionStats)
	if _, err := r.store.Get(ctx, factionStatsPath, &stats); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch faction stats")
	}
	return stats, nil
}

// SaveFactionStats replaces the cached stats outright.
func (r *StatsRepository) SaveFactionStats(ctx context.Context, stats models.FactionStats) error {
	if err := r.store.Set(ctx, factionStatsPath, stats); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save faction stats")
	}
	return nil
}
