package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"crewdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier tells the hiring team about a new applicant worth a quick call.
type Notifier interface {
	NotifyApplicant(ctx context.Context, a *models.Applicant) error
}

type NopNotifier struct{}

func (NopNotifier) NotifyApplicant(context.Context, *models.Applicant) error { return nil }

type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	adminURL string
}

func NewTelegramNotifier(token string, chatID int64, adminURL string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, adminURL: adminURL}, nil
}

// NotifyApplicant sends the alert. The bot client has no context support,
// so the send runs aside and ctx bounds how long the caller waits.
func (t *TelegramNotifier) NotifyApplicant(ctx context.Context, a *models.Applicant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, ApplicantAlert(a, t.adminURL))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ApplicantAlert renders the alert text in Telegram's HTML subset.
func ApplicantAlert(a *models.Applicant, adminURL string) string {
	esc := func(s string) string { return html.EscapeString(models.OrPlaceholder(s)) }
	var b strings.Builder
	fmt.Fprintf(&b, "⭐ <b>%s applicant</b>: %s\n", a.Status, esc(a.Name))
	fmt.Fprintf(&b, "📞 %s\n", esc(a.Phone))
	fmt.Fprintf(&b, "📍 %s (%s), %d mi\n", esc(a.State), esc(a.Counties), a.Radius)
	fmt.Fprintf(&b, "🛠 %s\n", esc(a.ExpTypes))
	fmt.Fprintf(&b, "🚚 %s", esc(a.VehicleType))
	if adminURL = strings.TrimRight(adminURL, "/"); adminURL != "" {
		fmt.Fprintf(&b, "\n🔗 <a href=\"%s/admin/applicants/%s\">Open record</a>", html.EscapeString(adminURL), a.ID)
	}
	return b.String()
}
