package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/internal/security"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
	"github.com/EzraBr1dger/space-map-admin/pkg/utils"
)

const fleetIDPrefix = "fleet"

type FleetInput struct {
	Name           string         `json:"name"`
	Commander      string         `json:"commander"`
	Faction        string         `json:"faction"`
	Group          string         `json:"group"`
	StartingPlanet string         `json:"startingPlanet"`
	Composition    map[string]int `json:"composition"`
	Description    string         `json:"description"`
}

// FleetUpdate carries the non-relocation fields. Nil fields are left alone.
type FleetUpdate struct {
	Name        *string        `json:"name"`
	Commander   *string        `json:"commander"`
	Group       *string        `json:"group"`
	Description *string        `json:"description"`
	Composition map[string]int `json:"composition"`
}

type MoveRequest struct {
	UnitIDs     []string `json:"unitIds"`
	Destination string   `json:"destination"`
	TravelDays  *int     `json:"travelDays"`
	InstantMove bool     `json:"instantMove"`
}

type MoveResult struct {
	Message     string     `json:"message"`
	Count       int        `json:"count"`
	Destination string     `json:"destination"`
	TravelDays  int        `json:"travelDays"`
	ArrivalDate *time.Time `json:"arrivalDate,omitempty"`
}

type FleetList struct {
	Fleets map[string]*models.Fleet `json:"fleets"`
	Pool   models.CapitalShipPool   `json:"pool"`
}

// FleetService is the fleet ledger. Every write that reads the capital
// ship pool holds writer for the whole read-check-commit sequence.
type FleetService struct {
	store   store.Store
	fleets  *repositories.FleetRepository
	supply  *repositories.SupplyRepository
	planner *TravelPlanner
	writer  *sync.Mutex
	now     func() time.Time
}

func NewFleetService(s store.Store, fleets *repositories.FleetRepository, supply *repositories.SupplyRepository, planner *TravelPlanner, writer *sync.Mutex) *FleetService {
	return &FleetService{
		store:   s,
		fleets:  fleets,
		supply:  supply,
		planner: planner,
		writer:  writer,
		now:     time.Now,
	}
}

// computePool derives the capital ship pool. It is never stored.
func computePool(supply *models.Supply, fleets map[string]*models.Fleet) models.CapitalShipPool {
	pool := models.CapitalShipPool{Total: int(supply.Items[models.ResourceCapitalShips])}
	for _, f := range fleets {
		pool.Assigned += f.CapitalShips()
	}
	pool.Available = pool.Total - pool.Assigned
	return pool
}

func (s *FleetService) load(ctx context.Context) (*models.Supply, map[string]*models.Fleet, error) {
	supply, _, err := s.supply.GetSupply(ctx)
	if err != nil {
		return nil, nil, err
	}
	fleets, err := s.fleets.ListFleets(ctx)
	if err != nil {
		return nil, nil, err
	}
	return supply, fleets, nil
}

func (s *FleetService) List(ctx context.Context, actor models.Principal, faction string) (*FleetList, error) {
	if !actor.CanCommandFleets() {
		return nil, errors.New(errors.ErrCodeForbidden, "admiral or admin access required")
	}
	supply, fleets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pool := computePool(supply, fleets)

	if faction != "" {
		f, ok := models.ParseFaction(faction)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeValidation, "unknown faction %q", faction)
		}
		for id, fleet := range fleets {
			if fleet.Faction != f {
				delete(fleets, id)
			}
		}
	}
	return &FleetList{Fleets: fleets, Pool: pool}, nil
}

func (s *FleetService) Pool(ctx context.Context) (models.CapitalShipPool, error) {
	supply, fleets, err := s.load(ctx)
	if err != nil {
		return models.CapitalShipPool{}, err
	}
	return computePool(supply, fleets), nil
}

func (s *FleetService) GetFleet(ctx context.Context, actor models.Principal, id string) (*models.Fleet, error) {
	if !actor.CanCommandFleets() {
		return nil, errors.New(errors.ErrCodeForbidden, "admiral or admin access required")
	}
	return s.fleets.GetFleet(ctx, id)
}

func validateComposition(faction models.Faction, composition map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(composition))
	for class, count := range composition {
		if !models.ValidShipClass(faction, class) {
			return nil, errors.Newf(errors.ErrCodeValidation, "%s is not a %s ship class", class, faction)
		}
		if count < 0 {
			return nil, errors.Newf(errors.ErrCodeValidation, "%s count must not be negative", class)
		}
		out[class] = count
	}
	for _, class := range models.ShipClassesFor(faction) {
		if _, ok := out[class]; !ok {
			out[class] = 0
		}
	}
	return out, nil
}

func insufficientCapitalShips(requested, available int) error {
	return errors.Newf(errors.ErrCodeInsufficientCapacity,
		"not enough capital ships: requested %d, available %d", requested, available)
}

func (s *FleetService) Create(ctx context.Context, actor models.Principal, in FleetInput) (*models.Fleet, error) {
	if !actor.CanCommandFleets() {
		return nil, errors.New(errors.ErrCodeForbidden, "admiral or admin access required")
	}

	name := security.SanitizeText(in.Name)
	if name == "" {
		return nil, errors.New(errors.ErrCodeValidation, "fleet name is required")
	}
	faction, ok := models.ParseFaction(in.Faction)
	if !ok || !faction.Tracked() {
		return nil, errors.New(errors.ErrCodeValidation, "fleet faction must be Republic or Separatists")
	}
	group := strings.TrimSpace(in.Group)
	if group == "" {
		group = models.GroupUnassigned
	}
	if !models.ValidGroup(faction, group) {
		return nil, errors.Newf(errors.ErrCodeValidation, "%s is not a %s group", group, faction)
	}
	planet := strings.TrimSpace(in.StartingPlanet)
	if planet == "" {
		return nil, errors.New(errors.ErrCodeValidation, "starting planet is required")
	}
	composition, err := validateComposition(faction, in.Composition)
	if err != nil {
		return nil, err
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	supply, fleets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	pool := computePool(supply, fleets)
	requested := composition[models.CapitalShipClass]
	if requested > 0 && requested > pool.Available {
		return nil, insufficientCapitalShips(requested, pool.Available)
	}

	ids := make([]string, 0, len(fleets))
	for id := range fleets {
		ids = append(ids, id)
	}
	fleet := &models.Fleet{
		ID:            utils.NextSequentialID(fleetIDPrefix, ids),
		Name:          name,
		Commander:     security.SanitizeText(in.Commander),
		Faction:       faction,
		Group:         group,
		CurrentPlanet: planet,
		Composition:   composition,
		Description:   security.SanitizeText(in.Description),
		Created:       s.now().UTC(),
	}
	if err := s.fleets.SaveFleet(ctx, fleet); err != nil {
		return nil, err
	}

	logger.Info("Fleet created",
		"fleet_id", fleet.ID,
		"faction", faction,
		"capital_ships", requested,
		"username", actor.Username,
	)
	return fleet, nil
}

func (s *FleetService) Update(ctx context.Context, actor models.Principal, id string, upd FleetUpdate) (*models.Fleet, error) {
	if !actor.CanCommandFleets() {
		return nil, errors.New(errors.ErrCodeForbidden, "admiral or admin access required")
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	fleet, err := s.fleets.GetFleet(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := security.SanitizeText(*upd.Name)
		if name == "" {
			return nil, errors.New(errors.ErrCodeValidation, "fleet name is required")
		}
		fleet.Name = name
	}
	if upd.Commander != nil {
		fleet.Commander = security.SanitizeText(*upd.Commander)
	}
	if upd.Group != nil {
		group := strings.TrimSpace(*upd.Group)
		if group == "" {
			group = models.GroupUnassigned
		}
		if !models.ValidGroup(fleet.Faction, group) {
			return nil, errors.Newf(errors.ErrCodeValidation, "%s is not a %s group", group, fleet.Faction)
		}
		fleet.Group = group
	}
	if upd.Description != nil {
		fleet.Description = security.SanitizeText(*upd.Description)
	}

	if upd.Composition != nil {
		composition, err := validateComposition(fleet.Faction, upd.Composition)
		if err != nil {
			return nil, err
		}
		delta := composition[models.CapitalShipClass] - fleet.CapitalShips()
		if delta > 0 {
			supply, fleets, err := s.load(ctx)
			if err != nil {
				return nil, err
			}
			pool := computePool(supply, fleets)
			if delta > pool.Available {
				return nil, insufficientCapitalShips(delta, pool.Available)
			}
		}
		fleet.Composition = composition
	}

	if err := s.fleets.SaveFleet(ctx, fleet); err != nil {
		return nil, err
	}

	logger.Info("Fleet updated", "fleet_id", id, "username", actor.Username)
	return fleet, nil
}

// Move relocates a co-located batch. A missing id rejects the whole batch
// and all fleets are written in one update.
func (s *FleetService) Move(ctx context.Context, actor models.Principal, req MoveRequest) (*MoveResult, error) {
	if !actor.CanCommandFleets() {
		return nil, errors.New(errors.ErrCodeForbidden, "admiral or admin access required")
	}
	if req.InstantMove && !actor.IsAdmin() {
		return nil, errors.New(errors.ErrCodeForbidden, "only admins can instant move")
	}

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return nil, errors.New(errors.ErrCodeValidation, "destination is required")
	}
	ids := dedupe(req.UnitIDs)
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "no fleets selected")
	}
	if req.TravelDays != nil && *req.TravelDays < 0 {
		return nil, errors.New(errors.ErrCodeValidation, "travel days must not be negative")
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	selected := make([]*models.Fleet, 0, len(ids))
	for _, id := range ids {
		fleet, err := s.fleets.GetFleet(ctx, id)
		if err != nil {
			return nil, err
		}
		selected = append(selected, fleet)
	}
	if err := CheckColocated(selected); err != nil {
		return nil, err
	}
	origin := selected[0].CurrentPlanet
	if origin == destination && !selected[0].InTransit() {
		return nil, errors.Newf(errors.ErrCodeValidation, "fleets are already at %s", destination)
	}

	days := s.planner.TravelDays(origin, destination)
	if req.TravelDays != nil {
		days = *req.TravelDays
	}

	now := s.now().UTC()
	arrival := s.planner.Arrival(now, days)
	batch := repositories.NewBatch()
	for _, fleet := range selected {
		if req.InstantMove {
			fleet.CurrentPlanet = destination
			fleet.TravelingTo = ""
			fleet.DepartureDate = nil
			fleet.ArrivalDate = nil
		} else {
			dep, arr := now, arrival
			fleet.TravelingTo = destination
			fleet.DepartureDate = &dep
			fleet.ArrivalDate = &arr
		}
		s.fleets.StageSave(batch, fleet)
	}
	if err := repositories.CommitBatch(ctx, s.store, batch); err != nil {
		return nil, err
	}

	result := &MoveResult{Count: len(selected), Destination: destination}
	if req.InstantMove {
		result.Message = fmt.Sprintf("%d fleet(s) moved instantly to %s", len(selected), destination)
	} else {
		result.TravelDays = days
		result.ArrivalDate = &arrival
		result.Message = fmt.Sprintf("%d fleet(s) en route to %s (%d days)", len(selected), destination, days)
	}

	logger.Info("Fleets moved",
		"fleet_ids", ids,
		"destination", destination,
		"instant", req.InstantMove,
		"days", days,
		"username", actor.Username,
	)
	return result, nil
}

// Delete removes a fleet. A fleet carrying capital ships returns one hull
// to the void: the Capital Ships supply drops by one in the same update.
func (s *FleetService) Delete(ctx context.Context, actor models.Principal, id string) error {
	if !actor.CanCommandFleets() {
		return errors.New(errors.ErrCodeForbidden, "admiral or admin access required")
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	fleet, err := s.fleets.GetFleet(ctx, id)
	if err != nil {
		return err
	}

	batch := repositories.NewBatch()
	s.fleets.StageRemove(batch, id)

	decremented := false
	if fleet.CapitalShips() > 0 {
		supply, _, err := s.supply.GetSupply(ctx)
		if err != nil {
			return err
		}
		if supply.Items[models.ResourceCapitalShips] > 0 {
			supply.Items[models.ResourceCapitalShips] = max(0, supply.Items[models.ResourceCapitalShips]-1)
			supply.Recalculate()
			now := s.now().UTC()
			supply.LastUpdated = &now
			s.supply.StageSave(batch, supply)
			decremented = true
		}
	}

	if err := repositories.CommitBatch(ctx, s.store, batch); err != nil {
		return err
	}

	logger.Info("Fleet deleted",
		"fleet_id", id,
		"capital_ships_reduced", decremented,
		"username", actor.Username,
	)
	return nil
}

// SettleArrivals lands every fleet whose arrival date has passed.
func (s *FleetService) SettleArrivals(ctx context.Context, actor models.Principal) ([]string, error) {
	if !actor.IsAdmin() {
		return nil, errors.New(errors.ErrCodeForbidden, "admin access required")
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	fleets, err := s.fleets.ListFleets(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	batch := repositories.NewBatch()
	settled := make([]string, 0)
	for id, fleet := range fleets {
		if !fleet.Arrived(now) {
			continue
		}
		fleet.CurrentPlanet = fleet.TravelingTo
		fleet.TravelingTo = ""
		fleet.DepartureDate = nil
		fleet.ArrivalDate = nil
		s.fleets.StageSave(batch, fleet)
		settled = append(settled, id)
	}
	sort.Strings(settled)

	if err := repositories.CommitBatch(ctx, s.store, batch); err != nil {
		return nil, err
	}
	if len(settled) > 0 {
		logger.Info("Fleet arrivals settled", "fleet_ids", settled, "username", actor.Username)
	}
	return settled, nil
}

// TravelEstimate reports the default day count for a hop.
func (s *FleetService) TravelEstimate(from, to string) int {
	return s.planner.TravelDays(from, to)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
