// Package events provides the in-process event bus used to fan dashboard
// lifecycle changes out to renderers and logs.
package events

// EventType represents different event types
type EventType string

const (
	// SelectionChanged fires when the renderer picks a new crop or region
	SelectionChanged EventType = "SELECTION_CHANGED"
	// RefreshStarted fires when a refresh generation enters the computing state
	RefreshStarted EventType = "REFRESH_STARTED"
	// SnapshotReady fires when a refresh becomes the visible snapshot
	SnapshotReady EventType = "SNAPSHOT_READY"
	// RefreshSuperseded fires when a finished refresh is discarded as stale
	RefreshSuperseded EventType = "REFRESH_SUPERSEDED"
	// ScheduledRefresh fires when a cron job triggers a refresh
	ScheduledRefresh EventType = "SCHEDULED_REFRESH"
	// ErrorOccurred fires on any reported failure
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every event type in emission-relevant order
var AllEventTypes = []EventType{
	SelectionChanged,
	RefreshStarted,
	SnapshotReady,
	RefreshSuperseded,
	ScheduledRefresh,
	ErrorOccurred,
}
