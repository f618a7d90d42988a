package services

import (
	"context"
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

const defaultSector = "Unknown"

type PlanetService struct {
	maps     *repositories.MapRepository
	factions *FactionService
	now      func() time.Time
}

func NewPlanetService(maps *repositories.MapRepository, factions *FactionService) *PlanetService {
	return &PlanetService{maps: maps, factions: factions, now: time.Now}
}

func requireAdmin(actor models.Principal) error {
	if !actor.IsAdmin() {
		return errors.New(errors.ErrCodeForbidden, "admin access required")
	}
	return nil
}

func checkEfficiency(v *float64) error {
	if v != nil && (*v < models.MinEfficiency || *v > models.MaxEfficiency) {
		return errors.Newf(errors.ErrCodeValidation, "reputation must be between %.1f and %.1f", models.MinEfficiency, models.MaxEfficiency)
	}
	return nil
}

func checkProduction(kind string, v models.ProductionVector) error {
	for resource, amount := range v {
		if !utils.ValidKey(resource) {
			return errors.Newf(errors.ErrCodeValidation, "invalid resource name %q", resource)
		}
		if amount < 0 {
			return errors.Newf(errors.ErrCodeValidation, "%s %s must not be negative", kind, resource)
		}
	}
	return nil
}

// normalizePlanet validates a planet and rewrites it into stored form:
// canonical faction name and reputation folded into efficiency.
func normalizePlanet(p *models.Planet) error {
	if p == nil || p.Faction == "" || p.Status == "" {
		return errors.New(errors.ErrCodeValidation, "planet must have faction and status")
	}
	faction, ok := models.ParseFaction(p.Faction)
	if !ok {
		return errors.New(errors.ErrCodeValidation, "faction must be Republic, Separatists, Mandalore, or Independent")
	}
	p.Faction = string(faction)
	if _, ok := models.ParsePlanetStatus(p.Status); !ok {
		return errors.New(errors.ErrCodeValidation, "status must be Active, Inactive, or Contested")
	}
	if p.Reputation != nil {
		p.Efficiency = p.Reputation
		p.Reputation = nil
	}
	if err := checkEfficiency(p.Efficiency); err != nil {
		return err
	}
	if err := checkProduction("weekly production", p.WeeklyProduction); err != nil {
		return err
	}
	if err := checkProduction("monthly production", p.MonthlyProduction); err != nil {
		return err
	}
	if p.ProductionOutput < 0 {
		return errors.New(errors.ErrCodeValidation, "production output must not be negative")
	}
	for key := range p.AccessibleTo {
		if !utils.ValidKey(key) {
			return errors.Newf(errors.ErrCodeValidation, "invalid faction name %q in accessibleTo", key)
		}
	}
	p.Description = security.SanitizeText(p.Description)
	return nil
}

// recompute refreshes faction stats after a planet write. The write has
// already landed when this fails, so the error says so.
func (s *PlanetService) recompute(ctx context.Context) error {
	if _, err := s.factions.Recompute(ctx); err != nil {
		logger.Error("Faction stats recalculation failed after planet write", "error", err)
		return errors.Wrap(err, errors.ErrCodeInternalError, "planet saved but faction stats were not recalculated")
	}
	return nil
}

func (s *PlanetService) List(ctx context.Context) (map[string]*models.Planet, error) {
	return s.maps.ListPlanets(ctx)
}

func (s *PlanetService) Get(ctx context.Context, name string) (*models.Planet, error) {
	return s.maps.GetPlanet(ctx, name)
}

// ByFaction lists planets owned by faction, legacy spellings included.
func (s *PlanetService) ByFaction(ctx context.Context, faction string) (map[string]*models.Planet, error) {
	f, ok := models.ParseFaction(faction)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown faction %q", faction)
	}
	planets, err := s.maps.ListPlanets(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.Planet)
	for name, p := range planets {
		if owner, ok := p.OwnedBy(); ok && owner == f {
			out[name] = p
		}
	}
	return out, nil
}

func (s *PlanetService) Create(ctx context.Context, actor models.Principal, name string, planet *models.Planet) (*models.Planet, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.ErrCodeValidation, "planet name is required")
	}
	if err := normalizePlanet(planet); err != nil {
		return nil, err
	}

	if _, err := s.maps.GetPlanet(ctx, name); err == nil {
		return nil, errors.New(errors.ErrCodeAlreadyExists, "planet already exists")
	} else if !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	if planet.Sector == "" {
		planet.Sector = defaultSector
	}
	if planet.MonthlyProduction == nil {
		planet.MonthlyProduction = models.NewProductionVector()
	}
	now := s.now().UTC()
	planet.LastModified = &now

	if err := s.maps.SavePlanet(ctx, name, planet, now); err != nil {
		return nil, err
	}
	logger.Info("Planet created", "planet", name, "faction", planet.Faction, "username", actor.Username)

	planet.Reputation = planet.Efficiency
	return planet, s.recompute(ctx)
}

// Replace overwrites an existing planet wholesale.
func (s *PlanetService) Replace(ctx context.Context, actor models.Principal, name string, planet *models.Planet) (*models.Planet, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := normalizePlanet(planet); err != nil {
		return nil, err
	}
	existing, err := s.maps.GetPlanet(ctx, name)
	if err != nil {
		return nil, err
	}
	if planet.CurrentBuilding == nil {
		planet.CurrentBuilding = existing.CurrentBuilding
	}
	now := s.now().UTC()
	planet.LastModified = &now

	if err := s.maps.SavePlanet(ctx, name, planet, now); err != nil {
		return nil, err
	}
	logger.Info("Planet updated", "planet", name, "username", actor.Username)

	planet.Reputation = planet.Efficiency
	return planet, s.recompute(ctx)
}

func (s *PlanetService) Delete(ctx context.Context, actor models.Principal, name string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.maps.GetPlanet(ctx, name); err != nil {
		return err
	}
	if err := s.maps.RemovePlanet(ctx, name, s.now().UTC()); err != nil {
		return err
	}
	logger.Info("Planet deleted", "planet", name, "username", actor.Username)
	return s.recompute(ctx)
}

// BulkReplace swaps the whole planet set. Every planet is validated before
// anything is written.
func (s *PlanetService) BulkReplace(ctx context.Context, actor models.Principal, planets map[string]*models.Planet) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	if planets == nil {
		return 0, errors.New(errors.ErrCodeValidation, "planets data must be an object")
	}

	names := make([]string, 0, len(planets))
	for name := range planets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !utils.ValidKey(name) {
			return 0, errors.Newf(errors.ErrCodeValidation, "invalid planet name %q", name)
		}
		if err := normalizePlanet(planets[name]); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeValidation, name+": "+errors.MessageOf(err))
		}
	}

	if err := s.maps.ReplacePlanets(ctx, planets, s.now().UTC()); err != nil {
		return 0, err
	}
	logger.Info("Bulk planet update completed", "count", len(planets), "username", actor.Username)
	return len(planets), s.recompute(ctx)
}
