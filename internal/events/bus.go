package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives published events. Handlers run on the emitting goroutine
// and must not block.
type Handler func(event *Event)

// SubscriptionID identifies a handler for Unsubscribe
type SubscriptionID uint64

// Bus is a typed publish/subscribe fan-out.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[SubscriptionID]Handler
	nextID   SubscriptionID
	log      zerolog.Logger
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType]map[SubscriptionID]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers handler for eventType
func (b *Bus) Subscribe(eventType EventType, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[SubscriptionID]Handler)
	}
	b.handlers[eventType][id] = handler
	return id
}

// Unsubscribe removes a handler. Unknown ids are ignored.
func (b *Bus) Unsubscribe(eventType EventType, id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if hs, ok := b.handlers[eventType]; ok {
		delete(hs, id)
		if len(hs) == 0 {
			delete(b.handlers, eventType)
		}
	}
}

// Emit publishes an event to every handler subscribed to its type
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[eventType]))
	for _, h := range b.handlers[eventType] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		b.dispatch(h, event)
	}
}

func (b *Bus) dispatch(h Handler, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Msg("Event handler panicked")
		}
	}()
	h(event)
}

// SubscriberCount returns the number of handlers for eventType
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}
