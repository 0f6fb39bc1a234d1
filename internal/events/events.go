package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventRentalCreated    = "rental_created"
	EventRentalExtended   = "rental_extended"
	EventRentalReleased   = "rental_released"
	EventRentalDeleted    = "rental_deleted"
	EventRentalExpiring   = "rental_expiring"
	EventCustomerCreated  = "customer_created"
	EventCustomerLinked   = "customer_linked"
	EventCustomerModified = "customer_modified"
)

// RentalEventPayload describes the minimal rental snapshot for event consumers.
type RentalEventPayload struct {
	RentalID     int64     `json:"rental_id"`
	CellID       int64     `json:"cell_id"`
	CellNumber   string    `json:"cell_number"`
	CustomerID   int64     `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Months       int64     `json:"months"`
	TotalAmount  int64     `json:"total_amount"`
}

// CustomerEventPayload describes a customer change for event consumers.
type CustomerEventPayload struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	TelegramID int64  `json:"telegram_id,omitempty"`
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
