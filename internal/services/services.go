package services

import (
	"sync"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
)

type Options struct {
	Distances         map[string]int
	DefaultTravelDays int
	DeductCredits     bool
	JWTSecret         string
	TokenTTL          time.Duration
	Notifier          AnnouncementNotifier
}

// Services is every domain service wired over one store.
type Services struct {
	Travel        *TravelPlanner
	Fleets        *FleetService
	Factions      *FactionService
	Planets       *PlanetService
	Maps          *MapService
	Buildings     *BuildingService
	Supplies      *SupplyService
	Announcements *AnnouncementService
	Stats         *StatsService
	Auth          *AuthService
}

func New(s store.Store, opts Options) *Services {
	fleetRepo := repositories.NewFleetRepository(s)
	supplyRepo := repositories.NewSupplyRepository(s)
	mapRepo := repositories.NewMapRepository(s)
	announcementRepo := repositories.NewAnnouncementRepository(s)
	statsRepo := repositories.NewStatsRepository(s)
	userRepo := repositories.NewUserRepository(s)

	if opts.Distances == nil {
		opts.Distances = DefaultDistanceTable()
	}

	// Fleets, supplies and construction all read-modify-write globalSupply,
	// so they share one writer.
	writer := &sync.Mutex{}

	travel := NewTravelPlanner(opts.Distances, opts.DefaultTravelDays)
	factions := NewFactionService(mapRepo, statsRepo)
	fleets := NewFleetService(s, fleetRepo, supplyRepo, travel, writer)

	return &Services{
		Travel:        travel,
		Fleets:        fleets,
		Factions:      factions,
		Planets:       NewPlanetService(mapRepo, factions),
		Maps:          NewMapService(mapRepo, factions),
		Buildings:     NewBuildingService(s, mapRepo, supplyRepo, writer, opts.DeductCredits),
		Supplies:      NewSupplyService(supplyRepo, writer),
		Announcements: NewAnnouncementService(announcementRepo, opts.Notifier),
		Stats:         NewStatsService(mapRepo, supplyRepo, fleets, factions),
		Auth:          NewAuthService(userRepo, opts.JWTSecret, opts.TokenTTL),
	}
}

// SetClock swaps the time source of every service.
func (s *Services) SetClock(now func() time.Time) {
	s.Fleets.now = now
	s.Planets.now = now
	s.Maps.now = now
	s.Buildings.now = now
	s.Supplies.now = now
	s.Announcements.now = now
	s.Stats.now = now
	s.Auth.now = now
}
