package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
	"github.com/EzraBr1dger/space-map-admin/pkg/utils"
)

type ItemAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type SupplyChange struct {
	Message     string     `json:"message"`
	Item        ItemAmount `json:"item"`
	Change      float64    `json:"change"`
	TotalSupply float64    `json:"totalSupply"`
}

type SupplyStats struct {
	TotalItems     int         `json:"totalItems"`
	TotalSupply    float64     `json:"totalSupply"`
	ItemCount      int         `json:"itemCount"`
	NonZeroItems   int         `json:"nonZeroItems"`
	AveragePerItem float64     `json:"averagePerItem"`
	Highest        *ItemAmount `json:"highest"`
	Lowest         *ItemAmount `json:"lowest"`
	LastUpdated    *time.Time  `json:"lastUpdated"`
}

// SupplyService keeps the global stockpile. Every mutation recomputes
// totalSupply from the items, so the two can never drift.
type SupplyService struct {
	supply *repositories.SupplyRepository
	writer *sync.Mutex
	now    func() time.Time
}

func NewSupplyService(supply *repositories.SupplyRepository, writer *sync.Mutex) *SupplyService {
	return &SupplyService{supply: supply, writer: writer, now: time.Now}
}

func (s *SupplyService) Get(ctx context.Context) (*models.Supply, error) {
	supply, _, err := s.supply.GetSupply(ctx)
	return supply, err
}

func (s *SupplyService) save(ctx context.Context, supply *models.Supply) error {
	supply.Recalculate()
	now := s.now().UTC()
	supply.LastUpdated = &now
	return s.supply.SaveSupply(ctx, supply)
}

func checkItemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !utils.ValidKey(name) {
		return "", errors.Newf(errors.ErrCodeValidation, "invalid supply item name %q", name)
	}
	return name, nil
}

// Replace swaps in a whole new inventory.
func (s *SupplyService) Replace(ctx context.Context, actor models.Principal, items map[string]float64) (*models.Supply, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, errors.New(errors.ErrCodeValidation, "items must be provided as an object")
	}
	supply := models.NewSupply()
	for name, amount := range items {
		clean, err := checkItemName(name)
		if err != nil {
			return nil, err
		}
		if amount < 0 || math.IsNaN(amount) {
			return nil, errors.Newf(errors.ErrCodeValidation, "%s amount must be a non-negative number", clean)
		}
		supply.Items[clean] = amount
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	if err := s.save(ctx, supply); err != nil {
		return nil, err
	}
	logger.Info("Supply data replaced", "items", len(supply.Items), "username", actor.Username)
	return supply, nil
}

// SetItem sets one item to an absolute, non-negative amount.
func (s *SupplyService) SetItem(ctx context.Context, actor models.Principal, name string, amount float64) (*SupplyChange, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := checkItemName(name)
	if err != nil {
		return nil, err
	}
	if amount < 0 || math.IsNaN(amount) {
		return nil, errors.New(errors.ErrCodeValidation, "amount must be a non-negative number")
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	supply, _, err := s.supply.GetSupply(ctx)
	if err != nil {
		return nil, err
	}
	old := supply.Items[name]
	supply.Items[name] = amount
	if err := s.save(ctx, supply); err != nil {
		return nil, err
	}

	logger.Info("Supply item set", "item", name, "amount", amount, "username", actor.Username)
	return &SupplyChange{
		Message:     fmt.Sprintf("%s supply updated successfully", name),
		Item:        ItemAmount{Name: name, Amount: amount},
		Change:      amount - old,
		TotalSupply: supply.TotalSupply,
	}, nil
}

// AddItem applies a relative change. The item is floored at zero, so a
// removal larger than the stock only removes what is there.
func (s *SupplyService) AddItem(ctx context.Context, actor models.Principal, name string, amount float64) (*SupplyChange, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := checkItemName(name)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, errors.New(errors.ErrCodeValidation, "amount must be a number")
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	supply, _, err := s.supply.GetSupply(ctx)
	if err != nil {
		return nil, err
	}
	next := math.Max(0, supply.Items[name]+amount)
	supply.Items[name] = next
	if err := s.save(ctx, supply); err != nil {
		return nil, err
	}

	verb := "Added"
	if amount < 0 {
		verb = "Removed"
	}
	msg := fmt.Sprintf("%s %v %s", verb, math.Abs(amount), name)
	logger.Info("Supply item changed", "item", name, "change", amount, "amount", next, "username", actor.Username)
	return &SupplyChange{
		Message:     msg,
		Item:        ItemAmount{Name: name, Amount: next},
		Change:      amount,
		TotalSupply: supply.TotalSupply,
	}, nil
}

func (s *SupplyService) DeleteItem(ctx context.Context, actor models.Principal, name string) (*SupplyChange, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := checkItemName(name)
	if err != nil {
		return nil, err
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	supply, _, err := s.supply.GetSupply(ctx)
	if err != nil {
		return nil, err
	}
	removed, ok := supply.Items[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "supply item not found")
	}
	delete(supply.Items, name)
	if err := s.save(ctx, supply); err != nil {
		return nil, err
	}

	logger.Info("Supply item removed", "item", name, "username", actor.Username)
	return &SupplyChange{
		Message:     fmt.Sprintf("%s removed from supply inventory", name),
		Item:        ItemAmount{Name: name, Amount: 0},
		Change:      -removed,
		TotalSupply: supply.TotalSupply,
	}, nil
}

// Reset zeroes the standard inventory and drops everything else.
func (s *SupplyService) Reset(ctx context.Context, actor models.Principal) (*models.Supply, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	supply := models.NewSupply()
	for _, item := range models.DefaultSupplyItems {
		supply.Items[item] = 0
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	if err := s.save(ctx, supply); err != nil {
		return nil, err
	}
	logger.Warn("All supplies reset to zero", "username", actor.Username)
	return supply, nil
}

func (s *SupplyService) Stats(ctx context.Context) (*SupplyStats, error) {
	supply, _, err := s.supply.GetSupply(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ItemAmount, 0, len(supply.Items))
	for name, amount := range supply.Items {
		items = append(items, ItemAmount{Name: name, Amount: amount})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Amount == items[j].Amount {
			return items[i].Name < items[j].Name
		}
		return items[i].Amount > items[j].Amount
	})

	stats := &SupplyStats{
		TotalItems:  len(items),
		TotalSupply: supply.TotalSupply,
		ItemCount:   len(items),
		LastUpdated: supply.LastUpdated,
	}
	for _, item := range items {
		if item.Amount > 0 {
			stats.NonZeroItems++
		}
	}
	if len(items) > 0 {
		stats.AveragePerItem = math.Round(supply.TotalSupply/float64(len(items))*100) / 100
		highest, lowest := items[0], items[len(items)-1]
		stats.Highest = &highest
		stats.Lowest = &lowest
	}
	return stats, nil
}
