package repositories

import (
	"context"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

const supplyPath = "globalSupply"

type SupplyRepository struct {
	store store.Store
}

func NewSupplyRepository(s store.Store) *SupplyRepository {
	return &SupplyRepository{store: s}
}

// GetSupply returns the global supply, or an empty one when none is stored.
func (r *SupplyRepository) GetSupply(ctx context.Context) (*models.Supply, bool, error) {
	supply := models.NewSupply()
	found, err := r.store.Get(ctx, supplyPath, supply)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch supply data")
	}
	if supply.Items == nil {
		supply.Items = make(map[string]float64)
	}
	return supply, found, nil
}

func (r *SupplyRepository) SaveSupply(ctx context.Context, supply *models.Supply) error {
	if err := r.store.Set(ctx, supplyPath, supply); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update supply data")
	}
	return nil
}

func (r *SupplyRepository) StageSave(b *Batch, supply *models.Supply) {
	b.Set(supplyPath, supply)
}

// GetFactionCredits reads a faction's spendable credits. Only the Republic
// banks credits, in the Credits supply item; every other faction has none.
func (r *SupplyRepository) GetFactionCredits(ctx context.Context, faction models.Faction) (int64, error) {
	if faction != models.FactionRepublic {
		return 0, nil
	}
	var credits float64
	if _, err := r.store.Get(ctx, supplyPath+"/items/"+models.ResourceCredits, &credits); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get credits")
	}
	return int64(credits), nil
}
