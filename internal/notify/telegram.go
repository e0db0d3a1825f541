package notify

import (
	"encoding/json"
	"fmt"

	"shutterdesk/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the slice of the Telegram API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes ledger events into the studio chat. It is a
// plain bus subscriber; a send failure never propagates back into the
// operation that produced the event.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(bot Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

// SubscribeAll registers the notifier on every event type it reports on.
func (n *TelegramNotifier) SubscribeAll(bus *events.EventBus) {
	bus.Subscribe(events.EventProjectCreated, n.handleProjectCreated)
	bus.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	bus.Subscribe(events.EventPaymentPosted, n.handlePaymentPosted)
	bus.Subscribe(events.EventPaymentReversed, n.handlePaymentReversed)
	bus.Subscribe(events.EventRevisionRecorded, n.handleRevisionRecorded)
}

func (n *TelegramNotifier) handleProjectCreated(event *events.Event) error {
	var payload events.ProjectEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode event payload error")
		return err
	}
	return n.send(formatProjectCreated(&payload))
}

func (n *TelegramNotifier) handleStatusChanged(event *events.Event) error {
	var payload events.ProjectEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode event payload error")
		return err
	}
	return n.send(formatStatusChanged(&payload))
}

func (n *TelegramNotifier) handlePaymentPosted(event *events.Event) error {
	var payload events.PaymentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode event payload error")
		return err
	}
	return n.send(formatPaymentPosted(&payload))
}

func (n *TelegramNotifier) handlePaymentReversed(event *events.Event) error {
	var payload events.PaymentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode event payload error")
		return err
	}
	return n.send(formatPaymentReversed(&payload))
}

func (n *TelegramNotifier) handleRevisionRecorded(event *events.Event) error {
	var payload events.RevisionEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode event payload error")
		return err
	}

	// Шумим только при превышении лимита
	if !payload.OverLimit {
		return nil
	}
	return n.send(formatRevisionOverLimit(&payload))
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("telegram send error")
		return err
	}
	return nil
}

func formatProjectCreated(p *events.ProjectEventPayload) string {
	return fmt.Sprintf("📸 Новый проект №%d\nКлиент: %s\nТип: %s\nДата: %s\nЦена: %d ₽",
		p.ProjectID, p.ClientName, p.EventType, p.EventDate.Format("02.01.2006"), p.Price)
}

func formatStatusChanged(p *events.ProjectEventPayload) string {
	return fmt.Sprintf("🔄 Проект №%d: %s → %s", p.ProjectID, p.OldStatus, p.Status)
}

func formatPaymentPosted(p *events.PaymentEventPayload) string {
	return fmt.Sprintf("💰 Платеж №%d по проекту №%d\nСумма: %d ₽ (%s)\nОплачено: %d ₽, остаток: %d ₽",
		p.PaymentID, p.ProjectID, p.Amount, p.Method, p.AmountPaid, p.BalanceAmount)
}

func formatPaymentReversed(p *events.PaymentEventPayload) string {
	return fmt.Sprintf("↩️ Сторнирован платеж №%d по проекту №%d\nОплачено: %d ₽, остаток: %d ₽",
		p.PaymentID, p.ProjectID, p.AmountPaid, p.BalanceAmount)
}

func formatRevisionOverLimit(p *events.RevisionEventPayload) string {
	return fmt.Sprintf("⚠️ Проект №%d: правка %d при лимите %d", p.ProjectID, p.RevisionsUsed, p.RevisionLimit)
}
