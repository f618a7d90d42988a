package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/internal/security"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
	"github.com/EzraBr1dger/space-map-admin/pkg/utils"
)

// Fields the map editor may merge into a planet. Construction goes
// through BuildingService.
var planetMapFields = map[string]bool{
	"faction":            true,
	"status":             true,
	"sector":             true,
	"efficiency":         true,
	"reputation":         true,
	"accessibleTo":       true,
	"weeklyProduction":   true,
	"monthlyProduction":  true,
	"productionOutput":   true,
	"description":        true,
	"customFactionImage": true,
}

var sectorFields = map[string]bool{
	"controllingFaction": true,
	"description":        true,
	"color":              true,
}

type SectorControlResult struct {
	SectorsUpdated int                       `json:"sectorsUpdated"`
	Sectors        map[string]*models.Sector `json:"sectors"`
}

type MapService struct {
	maps     *repositories.MapRepository
	factions *FactionService
	now      func() time.Time
}

func NewMapService(maps *repositories.MapRepository, factions *FactionService) *MapService {
	return &MapService{maps: maps, factions: factions, now: time.Now}
}

func (s *MapService) GetMapData(ctx context.Context) (*models.MapData, error) {
	return s.maps.GetMapData(ctx)
}

// checkPlanetMerge decodes the merged fields into the stored planet shape and
// validates them, so a merge can never leave a planet that reads back as
// garbage.
func checkPlanetMerge(merge map[string]interface{}) (*models.Planet, error) {
	raw, err := json.Marshal(merge)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "planet fields must be plain JSON values")
	}
	var p models.Planet
	if err := json.Unmarshal(raw, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, errors.Newf(errors.ErrCodeValidation, "invalid value for %s", typeErr.Field)
		}
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid planet fields")
	}

	if err := checkEfficiency(p.Efficiency); err != nil {
		return nil, err
	}
	if err := checkProduction("weekly production", p.WeeklyProduction); err != nil {
		return nil, err
	}
	if err := checkProduction("monthly production", p.MonthlyProduction); err != nil {
		return nil, err
	}
	if p.ProductionOutput < 0 {
		return nil, errors.New(errors.ErrCodeValidation, "production output must not be negative")
	}
	if p.Sector != "" && !utils.ValidKey(p.Sector) {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid sector name %q", p.Sector)
	}
	for key := range p.AccessibleTo {
		if !utils.ValidKey(key) {
			return nil, errors.Newf(errors.ErrCodeValidation, "invalid faction name %q in accessibleTo", key)
		}
	}
	return &p, nil
}

// UpdatePlanet shallow-merges map editor fields into an existing planet.
func (s *MapService) UpdatePlanet(ctx context.Context, actor models.Principal, name string, fields map[string]interface{}) (*models.Planet, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, ok := fields["faction"]; !ok {
		return nil, errors.New(errors.ErrCodeValidation, "planet must have faction")
	}

	merge := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if !planetMapFields[key] {
			return nil, errors.Newf(errors.ErrCodeValidation, "unknown planet field %q", key)
		}
		merge[key] = value
	}

	if rep, ok := merge["reputation"]; ok {
		merge["efficiency"] = rep
		delete(merge, "reputation")
	}
	faction, _ := merge["faction"].(string)
	f, ok := models.ParseFaction(faction)
	if !ok {
		return nil, errors.New(errors.ErrCodeValidation, "faction must be Republic, Separatists, Mandalore, or Independent")
	}
	merge["faction"] = string(f)
	if status, ok := merge["status"]; ok {
		str, _ := status.(string)
		if _, ok := models.ParsePlanetStatus(str); !ok {
			return nil, errors.New(errors.ErrCodeValidation, "status must be Active, Inactive, or Contested")
		}
	}

	checked, err := checkPlanetMerge(merge)
	if err != nil {
		return nil, err
	}
	if _, ok := merge["description"]; ok && merge["description"] != nil {
		merge["description"] = security.SanitizeText(checked.Description)
	}

	if _, err := s.maps.GetPlanet(ctx, name); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	merge["lastModified"] = now
	if err := s.maps.MergePlanet(ctx, name, merge, now); err != nil {
		return nil, err
	}
	logger.Info("Planet map data updated", "planet", name, "username", actor.Username)

	planet, err := s.maps.GetPlanet(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.factions.Recompute(ctx); err != nil {
		return planet, errors.Wrap(err, errors.ErrCodeInternalError, "planet saved but faction stats were not recalculated")
	}
	return planet, nil
}

func (s *MapService) UpdateSector(ctx context.Context, actor models.Principal, name string, fields map[string]interface{}) (*models.Sector, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	merge := make(map[string]interface{}, len(fields)+1)
	for key, value := range fields {
		if !sectorFields[key] {
			return nil, errors.Newf(errors.ErrCodeValidation, "unknown sector field %q", key)
		}
		if value == nil {
			merge[key] = nil
			continue
		}
		str, ok := value.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeValidation, "sector %s must be a string", key)
		}
		merge[key] = security.SanitizeText(str)
	}

	now := s.now().UTC()
	merge["lastModified"] = now
	if err := s.maps.MergeSector(ctx, name, merge, now); err != nil {
		return nil, err
	}
	logger.Info("Sector updated", "sector", name, "username", actor.Username)
	return s.maps.GetSector(ctx, name)
}

// ComputeSectorControl assigns each sector to the faction holding the most
// of its planets. A tie for first place leaves the sector Contested.
func ComputeSectorControl(planets map[string]*models.Planet) map[string]*models.Sector {
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)
	for _, p := range planets {
		if p.Sector == "" || p.Sector == defaultSector {
			continue
		}
		owner := p.Faction
		if f, ok := p.OwnedBy(); ok {
			owner = string(f)
		}
		if counts[p.Sector] == nil {
			counts[p.Sector] = make(map[string]int)
		}
		counts[p.Sector][owner]++
		totals[p.Sector]++
	}

	sectors := make(map[string]*models.Sector, len(counts))
	for sector, byFaction := range counts {
		factions := make([]string, 0, len(byFaction))
		for f := range byFaction {
			factions = append(factions, f)
		}
		sort.Slice(factions, func(i, j int) bool {
			if byFaction[factions[i]] == byFaction[factions[j]] {
				return factions[i] < factions[j]
			}
			return byFaction[factions[i]] > byFaction[factions[j]]
		})

		controller := factions[0]
		if len(factions) > 1 && byFaction[factions[0]] == byFaction[factions[1]] {
			controller = models.SectorContested
		}
		sectors[sector] = &models.Sector{ControllingFaction: controller, PlanetCount: totals[sector]}
	}
	return sectors
}

func (s *MapService) RecalculateSectors(ctx context.Context, actor models.Principal) (*SectorControlResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	planets, err := s.maps.ListPlanets(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	control := ComputeSectorControl(planets)
	for name, sector := range control {
		fields := map[string]interface{}{
			"controllingFaction": sector.ControllingFaction,
			"planetCount":        sector.PlanetCount,
			"lastModified":       now,
		}
		if err := s.maps.MergeSector(ctx, name, fields, now); err != nil {
			return nil, err
		}
		sector.LastModified = &now
	}

	logger.Info("Sector control recalculated", "sectors", len(control), "username", actor.Username)
	return &SectorControlResult{SectorsUpdated: len(control), Sectors: control}, nil
}

func (s *MapService) ProductionCycles(ctx context.Context) (int, error) {
	return s.maps.GetProductionCycles(ctx)
}

func (s *MapService) IncrementProductionCycles(ctx context.Context, actor models.Principal) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	cycles, err := s.maps.GetProductionCycles(ctx)
	if err != nil {
		return 0, err
	}
	cycles++
	if err := s.maps.SetProductionCycles(ctx, cycles); err != nil {
		return 0, err
	}
	logger.Info("Production cycle incremented", "cycles", cycles, "username", actor.Username)
	return cycles, nil
}
