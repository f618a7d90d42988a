package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/repositories"
	"github.com/EzraBr1dger/space-map-admin/internal/security"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

const (
	DefaultLatestAnnouncements = 10
	maxLatestAnnouncements     = 100
)

type AnnouncementInput struct {
	RobloxImageID    string `json:"robloxImageId"`
	AnnouncementType string `json:"announcementType"`
	AnnouncementText string `json:"announcementText"`
}

// AnnouncementNotifier is told about every new announcement.
type AnnouncementNotifier interface {
	NotifyAnnouncement(ctx context.Context, a *models.Announcement) error
}

type AnnouncementService struct {
	repo     *repositories.AnnouncementRepository
	notifier AnnouncementNotifier
	now      func() time.Time
}

func NewAnnouncementService(repo *repositories.AnnouncementRepository, notifier AnnouncementNotifier) *AnnouncementService {
	return &AnnouncementService{repo: repo, notifier: notifier, now: time.Now}
}

func (in AnnouncementInput) validate() (AnnouncementInput, models.AnnouncementType, error) {
	in.RobloxImageID = strings.TrimSpace(in.RobloxImageID)
	in.AnnouncementText = security.SanitizeText(in.AnnouncementText)
	if in.RobloxImageID == "" || in.AnnouncementType == "" || in.AnnouncementText == "" {
		return in, "", errors.New(errors.ErrCodeValidation,
			"missing required fields: robloxImageId, announcementType, and announcementText are required")
	}
	kind, ok := models.ParseAnnouncementType(in.AnnouncementType)
	if !ok {
		return in, "", errors.New(errors.ErrCodeValidation, "invalid announcement type, must be Success, News, or Failure")
	}
	if !security.ValidateImageRef(in.RobloxImageID) {
		return in, "", errors.New(errors.ErrCodeValidation, "invalid Roblox image id, must be numeric or start with rbxasset://")
	}
	return in, kind, nil
}

func (s *AnnouncementService) List(ctx context.Context) ([]*models.Announcement, error) {
	return s.repo.ListAnnouncements(ctx)
}

func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	return s.repo.GetAnnouncement(ctx, id)
}

// Latest returns the newest announcements for the game client.
func (s *AnnouncementService) Latest(ctx context.Context, limit int) ([]*models.Announcement, error) {
	if limit <= 0 {
		limit = DefaultLatestAnnouncements
	}
	if limit > maxLatestAnnouncements {
		limit = maxLatestAnnouncements
	}
	list, err := s.repo.ListAnnouncements(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *AnnouncementService) Create(ctx context.Context, actor models.Principal, in AnnouncementInput) (*models.Announcement, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in, kind, err := in.validate()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id, err := s.nextID(ctx, now)
	if err != nil {
		return nil, err
	}
	a := &models.Announcement{
		ID:               id,
		RobloxImageID:    in.RobloxImageID,
		AnnouncementType: kind,
		AnnouncementText: in.AnnouncementText,
		CreatedBy:        actor.Username,
		Timestamp:        now,
	}
	if err := s.repo.SaveAnnouncement(ctx, a); err != nil {
		return nil, err
	}
	logger.Info("Announcement created", "announcement_id", id, "type", kind, "username", actor.Username)

	if s.notifier != nil {
		if err := s.notifier.NotifyAnnouncement(ctx, a); err != nil {
			logger.Warn("Failed to broadcast announcement", "announcement_id", id, "error", err)
		}
	}
	return a, nil
}

// nextID derives announcement_<unix millis>, stepping past any id already taken.
func (s *AnnouncementService) nextID(ctx context.Context, now time.Time) (string, error) {
	ms := now.UnixMilli()
	for {
		id := fmt.Sprintf("announcement_%d", ms)
		taken, err := s.repo.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
		ms++
	}
}

func (s *AnnouncementService) Update(ctx context.Context, actor models.Principal, id string, in AnnouncementInput) (*models.Announcement, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return nil, err
	}
	in, kind, err := in.validate()
	if err != nil {
		return nil, err
	}

	modified := s.now().UTC()
	if !modified.After(existing.Timestamp) {
		modified = existing.Timestamp.Add(time.Millisecond)
	}
	err = s.repo.MergeAnnouncement(ctx, id, map[string]interface{}{
		"robloxImageId":    in.RobloxImageID,
		"announcementType": kind,
		"announcementText": in.AnnouncementText,
		"modifiedBy":       actor.Username,
		"lastModified":     modified,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Announcement updated", "announcement_id", id, "username", actor.Username)

	existing.RobloxImageID = in.RobloxImageID
	existing.AnnouncementType = kind
	existing.AnnouncementText = in.AnnouncementText
	existing.ModifiedBy = actor.Username
	existing.LastModified = &modified
	return existing, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, actor models.Principal, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.repo.GetAnnouncement(ctx, id); err != nil {
		return err
	}
	if err := s.repo.RemoveAnnouncement(ctx, id); err != nil {
		return err
	}
	logger.Info("Announcement deleted", "announcement_id", id, "username", actor.Username)
	return nil
}
