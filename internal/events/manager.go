package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// GetTypedData converts the Data map to the typed payload for the event type.
// Returns nil when the type has no typed payload or conversion fails.
func (e *Event) GetTypedData() EventData {
	if e.Data == nil {
		return nil
	}

	var target EventData
	switch e.Type {
	case SelectionChanged:
		target = &SelectionChangedData{}
	case RefreshStarted:
		target = &RefreshStartedData{}
	case SnapshotReady:
		target = &SnapshotReadyData{}
	case RefreshSuperseded:
		target = &RefreshSupersededData{}
	case ScheduledRefresh:
		target = &ScheduledRefreshData{}
	case ErrorOccurred:
		target = &ErrorEventData{}
	default:
		return nil
	}

	if err := convertMapToStruct(e.Data, target); err != nil {
		return nil
	}
	return target
}

func convertMapToStruct(m map[string]interface{}, v interface{}) error {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, v)
}

func convertStructToMap(v interface{}) (map[string]interface{}, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Manager handles event emission and logging
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("service", "events").Logger(),
	}
}

// Bus returns the underlying bus for subscribers
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Emit publishes an untyped event and logs it at debug level
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	m.bus.Emit(eventType, module, data)

	m.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Interface("data", data).
		Msg("Event emitted")
}

// EmitTyped publishes a typed payload
func (m *Manager) EmitTyped(module string, data EventData) {
	payload, err := convertStructToMap(data)
	if err != nil {
		m.log.Error().Err(err).Str("event_type", string(data.EventType())).Msg("Failed to encode event data")
		return
	}
	m.Emit(data.EventType(), module, payload)
}

// EmitError publishes an ErrorOccurred event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	m.EmitTyped(module, &ErrorEventData{
		Error:   err.Error(),
		Context: context,
	})
}
