package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts paid and confirmed registrations to the organizers' chat.
type TelegramNotifier struct {
	bot    telegramSender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, e Event) error {
	text, ok := telegramText(e)
	if !ok {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func telegramText(e Event) (string, bool) {
	var title string
	switch e.Type {
	case RegistrationPaid:
		title = "💳 Оплачена регистрация"
	case RegistrationConfirmed:
		title = "✅ Регистрация подтверждена"
	default:
		return "", false
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Лагерь: %s\n", nonEmpty(e.CampName, e.CampID))
	fmt.Fprintf(&b, "Участник: %s <%s>\n", e.ParticipantName, e.ParticipantEmail)
	fmt.Fprintf(&b, "Статус: %s / %s", e.ConfirmationStatus, e.PaymentStatus)
	if e.TransactionID != "" {
		fmt.Fprintf(&b, "\nПлатеж: %s", e.TransactionID)
	}
	return b.String(), true
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
