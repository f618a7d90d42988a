package repositories

import (
	"context"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

const (
	mapDataPath          = "mapData"
	planetsPath          = mapDataPath + "/planets"
	sectorsPath          = mapDataPath + "/sectors"
	productionCyclesPath = mapDataPath + "/productionCycles"
	lastUpdatePath       = mapDataPath + "/lastUpdate"
)

type MapRepository struct {
	store store.Store
}

func NewMapRepository(s store.Store) *MapRepository {
	return &MapRepository{store: s}
}

func PlanetPath(name string) string {
	return planetsPath + "/" + name
}

func BuildingPath(planet string) string {
	return PlanetPath(planet) + "/currentBuilding"
}

func SectorPath(name string) string {
	return sectorsPath + "/" + name
}

// GetMapData reads the whole map. Efficiency is mirrored into Reputation,
// the name the dashboard edits it under.
func (r *MapRepository) GetMapData(ctx context.Context) (*models.MapData, error) {
	var data models.MapData
	if _, err := r.store.Get(ctx, mapDataPath, &data); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch map data")
	}
	if data.Planets == nil {
		data.Planets = make(map[string]*models.Planet)
	}
	if data.Sectors == nil {
		data.Sectors = make(map[string]*models.Sector)
	}
	for name, p := range data.Planets {
		if p == nil {
			delete(data.Planets, name)
			continue
		}
		p.Reputation = p.Efficiency
	}
	return &data, nil
}

func (r *MapRepository) ListPlanets(ctx context.Context) (map[string]*models.Planet, error) {
	data, err := r.GetMapData(ctx)
	if err != nil {
		return nil, err
	}
	return data.Planets, nil
}

func (r *MapRepository) GetPlanet(ctx context.Context, name string) (*models.Planet, error) {
	if err := checkKey("planet", name); err != nil {
		return nil, err
	}
	var planet models.Planet
	found, err := r.store.Get(ctx, PlanetPath(name), &planet)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch planet")
	}
	if !found {
		return nil, errors.Newf(errors.ErrCodeNotFound, "planet %s not found", name)
	}
	planet.Reputation = planet.Efficiency
	return &planet, nil
}

// SavePlanet overwrites one planet and stamps the map's lastUpdate.
func (r *MapRepository) SavePlanet(ctx context.Context, name string, planet *models.Planet, now time.Time) error {
	if err := checkKey("planet", name); err != nil {
		return err
	}
	stored := *planet
	stored.Reputation = nil
	err := r.store.Update(ctx, "", map[string]interface{}{
		PlanetPath(name): &stored,
		lastUpdatePath:   now,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save planet")
	}
	return nil
}

// MergePlanet shallow-merges fields into a planet.
func (r *MapRepository) MergePlanet(ctx context.Context, name string, fields map[string]interface{}, now time.Time) error {
	if err := checkKey("planet", name); err != nil {
		return err
	}
	writes := make(map[string]interface{}, len(fields)+1)
	for key, value := range fields {
		writes[PlanetPath(name)+"/"+key] = value
	}
	writes[lastUpdatePath] = now
	if err := r.store.Update(ctx, "", writes); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update planet map data")
	}
	return nil
}

func (r *MapRepository) RemovePlanet(ctx context.Context, name string, now time.Time) error {
	if err := checkKey("planet", name); err != nil {
		return err
	}
	err := r.store.Update(ctx, "", map[string]interface{}{
		PlanetPath(name): nil,
		lastUpdatePath:   now,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to delete planet")
	}
	return nil
}

// ReplacePlanets swaps the whole planet set in one write.
func (r *MapRepository) ReplacePlanets(ctx context.Context, planets map[string]*models.Planet, now time.Time) error {
	stored := make(map[string]*models.Planet, len(planets))
	for name, p := range planets {
		if err := checkKey("planet", name); err != nil {
			return err
		}
		cp := *p
		cp.Reputation = nil
		stored[name] = &cp
	}
	err := r.store.Update(ctx, "", map[string]interface{}{
		planetsPath:    stored,
		lastUpdatePath: now,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to bulk update planets")
	}
	return nil
}

func (r *MapRepository) StageBuilding(b *Batch, planet string, building *models.Building) {
	b.Set(BuildingPath(planet), building)
}

func (r *MapRepository) ClearBuilding(ctx context.Context, planet string) error {
	if err := r.store.Remove(ctx, BuildingPath(planet)); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to cancel building")
	}
	return nil
}

func (r *MapRepository) MergeSector(ctx context.Context, name string, fields map[string]interface{}, now time.Time) error {
	if err := checkKey("sector", name); err != nil {
		return err
	}
	writes := make(map[string]interface{}, len(fields)+1)
	for key, value := range fields {
		writes[SectorPath(name)+"/"+key] = value
	}
	writes[lastUpdatePath] = now
	if err := r.store.Update(ctx, "", writes); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update sector")
	}
	return nil
}

func (r *MapRepository) GetSector(ctx context.Context, name string) (*models.Sector, error) {
	if err := checkKey("sector", name); err != nil {
		return nil, err
	}
	var sector models.Sector
	found, err := r.store.Get(ctx, SectorPath(name), &sector)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch sector")
	}
	if !found {
		return nil, errors.Newf(errors.ErrCodeNotFound, "sector %s not found", name)
	}
	return &sector, nil
}

func (r *MapRepository) GetProductionCycles(ctx context.Context) (int, error) {
	var cycles int
	if _, err := r.store.Get(ctx, productionCyclesPath, &cycles); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch production cycles")
	}
	return cycles, nil
}

func (r *MapRepository) SetProductionCycles(ctx context.Context, cycles int) error {
	if err := r.store.Set(ctx, productionCyclesPath, cycles); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update production cycles")
	}
	return nil
}
