package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventProjectCreated   = "project_created"
	EventProjectUpdated   = "project_updated"
	EventProjectDeleted   = "project_deleted"
	EventStatusChanged    = "status_changed"
	EventPaymentPosted    = "payment_posted"
	EventPaymentReversed  = "payment_reversed"
	EventRevisionRecorded = "revision_recorded"
	EventRevisionsReset   = "revisions_reset"
)

// ProjectEventPayload describes the minimal project snapshot for event consumers.
type ProjectEventPayload struct {
	ProjectID  int64     `json:"project_id"`
	ClientID   int64     `json:"client_id"`
	ClientName string    `json:"client_name,omitempty"`
	EventType  string    `json:"event_type"`
	EventDate  time.Time `json:"event_date"`
	Status     string    `json:"status"`
	OldStatus  string    `json:"old_status,omitempty"`
	Price      int64     `json:"price"`
}

// PaymentEventPayload carries the posted or reversed payment together with
// the totals it left behind.
type PaymentEventPayload struct {
	PaymentID     int64  `json:"payment_id"`
	ProjectID     int64  `json:"project_id"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	AmountPaid    int64  `json:"amount_paid"`
	BalanceAmount int64  `json:"balance_amount"`
}

// RevisionEventPayload reports the counter after a revision operation.
type RevisionEventPayload struct {
	ProjectID     int64 `json:"project_id"`
	RevisionsUsed int64 `json:"revisions_used"`
	RevisionLimit int64 `json:"revision_limit"`
	OverLimit     bool  `json:"over_limit"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
