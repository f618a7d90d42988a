package repositories

import (
	"context"
	"sort"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

const announcementsPath = "announcements"

type AnnouncementRepository struct {
	store store.Store
}

func NewAnnouncementRepository(s store.Store) *AnnouncementRepository {
	return &AnnouncementRepository{store: s}
}

func announcementPath(id string) string {
	return announcementsPath + "/" + id
}

// ListAnnouncements returns every announcement, newest first.
func (r *AnnouncementRepository) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	byID := make(map[string]*models.Announcement)
	if _, err := r.store.Get(ctx, announcementsPath, &byID); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch announcements")
	}

	list := make([]*models.Announcement, 0, len(byID))
	for id, a := range byID {
		if a == nil {
			continue
		}
		a.ID = id
		list = append(list, a)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].ID > list[j].ID
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

func (r *AnnouncementRepository) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	if err := checkKey("announcement", id); err != nil {
		return nil, err
	}
	var a models.Announcement
	found, err := r.store.Get(ctx, announcementPath(id), &a)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch announcement")
	}
	if !found {
		return nil, errors.New(errors.ErrCodeNotFound, "announcement not found")
	}
	a.ID = id
	return &a, nil
}

func (r *AnnouncementRepository) Exists(ctx context.Context, id string) (bool, error) {
	found, err := r.store.Get(ctx, announcementPath(id)+"/timestamp", nil)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to fetch announcement")
	}
	return found, nil
}

func (r *AnnouncementRepository) SaveAnnouncement(ctx context.Context, a *models.Announcement) error {
	if err := checkKey("announcement", a.ID); err != nil {
		return err
	}
	if err := r.store.Set(ctx, announcementPath(a.ID), a); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save announcement")
	}
	return nil
}

func (r *AnnouncementRepository) MergeAnnouncement(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, announcementPath(id), fields); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to update announcement")
	}
	return nil
}

func (r *AnnouncementRepository) RemoveAnnouncement(ctx context.Context, id string) error {
	if err := r.store.Remove(ctx, announcementPath(id)); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to delete announcement")
	}
	return nil
}
