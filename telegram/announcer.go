package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/EzraBr1dger/space-map-admin/internal/config"
	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

// Sender is the part of tgbotapi.BotAPI the announcer uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Announcer posts new announcements to a Telegram channel.
type Announcer struct {
	api       Sender
	channelID int64
}

func NewAnnouncer(api Sender, channelID int64) *Announcer {
	return &Announcer{api: api, channelID: channelID}
}

// InitAnnouncer connects to the Bot API with the configured token.
func InitAnnouncer(cfg *config.Config) (*Announcer, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	logger.Info("Authorized on account", "username", api.Self.UserName)
	return NewAnnouncer(api, cfg.TelegramChannelID), nil
}

var typeBadges = map[models.AnnouncementType]string{
	models.AnnouncementSuccess: "✅",
	models.AnnouncementNews:    "📰",
	models.AnnouncementFailure: "❌",
}

func formatAnnouncement(a *models.Announcement) string {
	var b strings.Builder
	badge := typeBadges[a.AnnouncementType]
	if badge == "" {
		badge = "📢"
	}
	fmt.Fprintf(&b, "%s %s\n\n", badge, a.AnnouncementType)
	b.WriteString(a.AnnouncementText)
	if a.CreatedBy != "" {
		fmt.Fprintf(&b, "\n\nPosted by %s", a.CreatedBy)
	}
	return b.String()
}

func (a *Announcer) NotifyAnnouncement(ctx context.Context, ann *models.Announcement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(a.channelID, formatAnnouncement(ann))
	msg.DisableWebPagePreview = true
	if _, err := a.api.Send(msg); err != nil {
		return fmt.Errorf("send announcement %s: %w", ann.ID, err)
	}
	logger.Debug("Announcement broadcast", "id", ann.ID, "channel", a.channelID)
	return nil
}
