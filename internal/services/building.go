package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/internal/security"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

type BuildingRequest struct {
	BuildingType string `json:"buildingType"`
	Cost         int64  `json:"cost"`
	Days         int    `json:"days"`
}

type BuildingResult struct {
	Message          string           `json:"message"`
	Building         *models.Building `json:"building"`
	Faction          models.Faction   `json:"faction"`
	CreditsRemaining int64            `json:"creditsRemaining"`
	CreditsDeducted  bool             `json:"creditsDeducted"`
}

// BuildingService runs the one-project-per-planet construction flow.
type BuildingService struct {
	store         store.Store
	maps          *repositories.MapRepository
	supply        *repositories.SupplyRepository
	writer        *sync.Mutex
	deductCredits bool
	now           func() time.Time
}

func NewBuildingService(s store.Store, maps *repositories.MapRepository, supply *repositories.SupplyRepository, writer *sync.Mutex, deductCredits bool) *BuildingService {
	return &BuildingService{
		store:         s,
		maps:          maps,
		supply:        supply,
		writer:        writer,
		deductCredits: deductCredits,
		now:           time.Now,
	}
}

// Start begins construction. With deduction enabled the credits leave the
// supply in the same update that records the project.
func (s *BuildingService) Start(ctx context.Context, actor models.Principal, planetName string, req BuildingRequest) (*BuildingResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	buildingType := security.SanitizeText(req.BuildingType)
	if buildingType == "" {
		return nil, errors.New(errors.ErrCodeValidation, "building type is required")
	}
	if req.Cost < 0 {
		return nil, errors.New(errors.ErrCodeValidation, "cost must not be negative")
	}
	if req.Days < 0 {
		return nil, errors.New(errors.ErrCodeValidation, "days must not be negative")
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	planet, err := s.maps.GetPlanet(ctx, planetName)
	if err != nil {
		return nil, err
	}
	if planet.CurrentBuilding != nil {
		return nil, errors.Newf(errors.ErrCodeValidation, "%s already has %s under construction", planetName, planet.CurrentBuilding.Type)
	}
	faction, ok := planet.OwnedBy()
	if !ok || !faction.CanConstruct() {
		return nil, errors.New(errors.ErrCodeValidation, "only Republic and Separatist planets can construct buildings")
	}

	credits, err := s.supply.GetFactionCredits(ctx, faction)
	if err != nil {
		return nil, err
	}
	if credits < req.Cost {
		return nil, errors.Newf(errors.ErrCodeInsufficientFunds, "insufficient credits: %s has %s, needs %s",
			faction, humanize.Comma(credits), humanize.Comma(req.Cost))
	}

	now := s.now().UTC()
	building := &models.Building{
		Type:           buildingType,
		StartDate:      now,
		CompletionDate: now.AddDate(0, 0, req.Days),
		Cost:           req.Cost,
	}

	batch := repositories.NewBatch()
	s.maps.StageBuilding(batch, planetName, building)

	remaining := credits
	deducted := false
	if s.deductCredits && req.Cost > 0 {
		supply, _, err := s.supply.GetSupply(ctx)
		if err != nil {
			return nil, err
		}
		remaining = credits - req.Cost
		supply.Items[models.ResourceCredits] = float64(remaining)
		supply.Recalculate()
		supply.LastUpdated = &now
		s.supply.StageSave(batch, supply)
		deducted = true
	}

	if err := repositories.CommitBatch(ctx, s.store, batch); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s construction started on %s", buildingType, planetName)
	if !deducted && req.Cost > 0 {
		msg += " (credits checked, not deducted)"
	}

	logger.Info("Building started",
		"planet", planetName,
		"type", buildingType,
		"cost", req.Cost,
		"deducted", deducted,
		"username", actor.Username,
	)
	return &BuildingResult{
		Message:          msg,
		Building:         building,
		Faction:          faction,
		CreditsRemaining: remaining,
		CreditsDeducted:  deducted,
	}, nil
}

// Cancel drops the project outright. Nothing is refunded.
func (s *BuildingService) Cancel(ctx context.Context, actor models.Principal, planetName string) (*models.Building, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	planet, err := s.maps.GetPlanet(ctx, planetName)
	if err != nil {
		return nil, err
	}
	if planet.CurrentBuilding == nil {
		return nil, errors.Newf(errors.ErrCodeValidation, "%s has no building under construction", strings.TrimSpace(planetName))
	}
	if err := s.maps.ClearBuilding(ctx, planetName); err != nil {
		return nil, err
	}

	logger.Info("Building cancelled", "planet", planetName, "type", planet.CurrentBuilding.Type, "username", actor.Username)
	return planet.CurrentBuilding, nil
}
