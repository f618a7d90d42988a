package repositories

import (
	"context"

	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/utils"
)

// Batch collects writes across collections so they commit as one
// multi-path update.
type Batch struct {
	writes map[string]interface{}
}

func NewBatch() *Batch {
	return &Batch{writes: make(map[string]interface{})}
}

func (b *Batch) Set(path string, value interface{}) {
	b.writes[path] = value
}

func (b *Batch) Remove(path string) {
	b.writes[path] = nil
}

func (b *Batch) Len() int {
	return len(b.writes)
}

func CommitBatch(ctx context.Context, s store.Store, b *Batch) error {
	if b.Len() == 0 {
		return nil
	}
	if err := s.Update(ctx, "", b.writes); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to commit changes")
	}
	return nil
}

func checkKey(kind, key string) error {
	if !utils.ValidKey(key) {
		return errors.Newf(errors.ErrCodeValidation, "invalid %s name %q", kind, key)
	}
	return nil
}
