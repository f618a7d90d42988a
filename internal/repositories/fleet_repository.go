package repositories

import (
	"context"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

const fleetsPath = "fleets"

type FleetRepository struct {
	store store.Store
}

func NewFleetRepository(s store.Store) *FleetRepository {
	return &FleetRepository{store: s}
}

func FleetPath(id string) string {
	return fleetsPath + "/" + id
}

func (r *FleetRepository) ListFleets(ctx context.Context) (map[string]*models.Fleet, error) {
	fleets := make(map[string]*models.Fleet)
	if _, err := r.store.Get(ctx, fleetsPath, &fleets); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch fleets")
	}
	for id, f := range fleets {
		if f == nil {
			delete(fleets, id)
			continue
		}
		f.ID = id
	}
	return fleets, nil
}

func (r *FleetRepository) GetFleet(ctx context.Context, id string) (*models.Fleet, error) {
	if err := checkKey("fleet", id); err != nil {
		return nil, err
	}
	var fleet models.Fleet
	found, err := r.store.Get(ctx, FleetPath(id), &fleet)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get fleet")
	}
	if !found {
		return nil, errors.Newf(errors.ErrCodeNotFound, "fleet %s not found", id)
	}
	fleet.ID = id
	return &fleet, nil
}

func (r *FleetRepository) SaveFleet(ctx context.Context, fleet *models.Fleet) error {
	if err := checkKey("fleet", fleet.ID); err != nil {
		return err
	}
	if err := r.store.Set(ctx, FleetPath(fleet.ID), fleet); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save fleet")
	}
	return nil
}

func (r *FleetRepository) StageSave(b *Batch, fleet *models.Fleet) {
	b.Set(FleetPath(fleet.ID), fleet)
}

func (r *FleetRepository) StageRemove(b *Batch, id string) {
	b.Remove(FleetPath(id))
}
