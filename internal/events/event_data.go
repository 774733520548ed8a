package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// SelectionChangedData contains data for SelectionChanged events
type SelectionChangedData struct {
	Crop   string `json:"crop"`
	Region string `json:"region"`
	Source string `json:"source"` // "crop" or "location"
}

// EventType returns the event type for SelectionChangedData
func (d *SelectionChangedData) EventType() EventType {
	return SelectionChanged
}

// RefreshStartedData contains data for RefreshStarted events
type RefreshStartedData struct {
	Generation uint64 `json:"generation"`
	Crop       string `json:"crop"`
	Region     string `json:"region"`
}

// EventType returns the event type for RefreshStartedData
func (d *RefreshStartedData) EventType() EventType {
	return RefreshStarted
}

// SnapshotReadyData contains data for SnapshotReady events
type SnapshotReadyData struct {
	SnapshotID         string  `json:"snapshot_id"`
	Generation         uint64  `json:"generation"`
	Crop               string  `json:"crop"`
	Region             string  `json:"region"`
	CurrentPrice       int     `json:"current_price"`
	PriceChangePercent float64 `json:"price_change_percent"`
	Trend              string  `json:"trend"`
	BestMonth          string  `json:"best_month"`
}

// EventType returns the event type for SnapshotReadyData
func (d *SnapshotReadyData) EventType() EventType {
	return SnapshotReady
}

// RefreshSupersededData contains data for RefreshSuperseded events
type RefreshSupersededData struct {
	Generation uint64 `json:"generation"`
	Latest     uint64 `json:"latest"`
	Crop       string `json:"crop"`
	Region     string `json:"region"`
}

// EventType returns the event type for RefreshSupersededData
func (d *RefreshSupersededData) EventType() EventType {
	return RefreshSuperseded
}

// ScheduledRefreshData contains data for ScheduledRefresh events
type ScheduledRefreshData struct {
	Job string `json:"job"`
}

// EventType returns the event type for ScheduledRefreshData
func (d *ScheduledRefreshData) EventType() EventType {
	return ScheduledRefresh
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
