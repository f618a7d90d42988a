package telegram

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestAnnouncer_Notify(t *testing.T) {
	sender := &fakeSender{}
	a := NewAnnouncer(sender, -100123)

	err := a.NotifyAnnouncement(context.Background(), &models.Announcement{
		ID:               "announcement_1",
		AnnouncementType: models.AnnouncementSuccess,
		AnnouncementText: "Kamino held",
		CreatedBy:        "admin",
	})
	if err != nil {
		t.Fatalf("NotifyAnnouncement() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.ChatID != -100123 {
		t.Errorf("ChatID = %d, want -100123", msg.ChatID)
	}
	for _, want := range []string{"✅ Success", "Kamino held", "admin"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("text %q missing %q", msg.Text, want)
		}
	}
}

func TestAnnouncer_SendError(t *testing.T) {
	a := NewAnnouncer(&fakeSender{err: stderrors.New("telegram down")}, 1)
	if err := a.NotifyAnnouncement(context.Background(), &models.Announcement{ID: "announcement_2"}); err == nil {
		t.Error("NotifyAnnouncement() error = nil, want send failure")
	}
}
