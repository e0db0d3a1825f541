package notify

import (
	"strings"
	"testing"
	"time"

	"shutterdesk/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func newTestNotifier(sender *fakeSender) (*TelegramNotifier, *events.EventBus) {
	logger := zerolog.Nop()
	n := NewTelegramNotifier(sender, 42, &logger)
	bus := events.NewEventBus()
	n.SubscribeAll(bus)
	return n, bus
}

func lastMessage(t *testing.T, sender *fakeSender) tgbotapi.MessageConfig {
	t.Helper()
	if len(sender.sent) == 0 {
		t.Fatalf("expected a message to be sent")
	}
	msg, ok := sender.sent[len(sender.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", sender.sent[len(sender.sent)-1])
	}
	return msg
}

func TestNotifyProjectCreated(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newTestNotifier(sender)

	err := bus.PublishJSON(events.EventProjectCreated, events.ProjectEventPayload{
		ProjectID:  7,
		ClientName: "Anna Petrova",
		EventType:  "Wedding",
		EventDate:  time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
		Status:     "New",
		Price:      20000,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg := lastMessage(t, sender)
	if msg.ChatID != 42 {
		t.Errorf("expected chat 42, got %d", msg.ChatID)
	}
	for _, want := range []string{"№7", "Anna Petrova", "Wedding", "12.06.2026", "20000"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message missing %q: %s", want, msg.Text)
		}
	}
}

func TestNotifyStatusChanged(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newTestNotifier(sender)

	err := bus.PublishJSON(events.EventStatusChanged, events.ProjectEventPayload{
		ProjectID: 5,
		OldStatus: "New",
		Status:    "Confirmed",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg := lastMessage(t, sender)
	if !strings.Contains(msg.Text, "New → Confirmed") {
		t.Errorf("unexpected message: %s", msg.Text)
	}
}

func TestNotifyPaymentPosted(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newTestNotifier(sender)

	err := bus.PublishJSON(events.EventPaymentPosted, events.PaymentEventPayload{
		PaymentID:     9,
		ProjectID:     5,
		Amount:        5000,
		Method:        "Cash",
		AmountPaid:    5000,
		BalanceAmount: 15000,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg := lastMessage(t, sender)
	for _, want := range []string{"№9", "№5", "5000", "Cash", "15000"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message missing %q: %s", want, msg.Text)
		}
	}
}

func TestNotifyPaymentReversed(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newTestNotifier(sender)

	err := bus.PublishJSON(events.EventPaymentReversed, events.PaymentEventPayload{
		PaymentID:     9,
		ProjectID:     5,
		Amount:        5000,
		AmountPaid:    0,
		BalanceAmount: 20000,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg := lastMessage(t, sender)
	if !strings.Contains(msg.Text, "Сторнирован") {
		t.Errorf("unexpected message: %s", msg.Text)
	}
	if !strings.Contains(msg.Text, "20000") {
		t.Errorf("message missing restored balance: %s", msg.Text)
	}
}

func TestNotifyRevisionWithinLimit(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newTestNotifier(sender)

	err := bus.PublishJSON(events.EventRevisionRecorded, events.RevisionEventPayload{
		ProjectID:     5,
		RevisionsUsed: 1,
		RevisionLimit: 2,
		OverLimit:     false,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("expected no message within limit, got %d", len(sender.sent))
	}
}

func TestNotifyRevisionOverLimit(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newTestNotifier(sender)

	err := bus.PublishJSON(events.EventRevisionRecorded, events.RevisionEventPayload{
		ProjectID:     5,
		RevisionsUsed: 3,
		RevisionLimit: 2,
		OverLimit:     true,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg := lastMessage(t, sender)
	if !strings.Contains(msg.Text, "№5") || !strings.Contains(msg.Text, "лимите 2") {
		t.Errorf("unexpected message: %s", msg.Text)
	}
}

func TestNotifyBadPayload(t *testing.T) {
	sender := &fakeSender{}
	n, _ := newTestNotifier(sender)

	err := n.handleProjectCreated(&events.Event{Type: events.EventProjectCreated, Payload: []byte("not json")})
	if err == nil {
		t.Error("expected decode error")
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no message on bad payload, got %d", len(sender.sent))
	}
}
