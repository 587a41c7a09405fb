package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// TrackedInfo describes a window the daemon is tracking.
type TrackedInfo struct {
	WindowID uint32 `json:"window_id"`
	Key      string `json:"key"`
	Title    string `json:"title,omitempty"`
}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	DaemonRunning bool          `json:"daemon_running"`
	UptimeSeconds int64         `json:"uptime_seconds,omitempty"`
	QuietPeriodMS int64         `json:"quiet_period_ms,omitempty"`
	StoreFile     string        `json:"store_file"`
	StoredCount   int           `json:"stored_count"`
	Tracked       []TrackedInfo `json:"tracked"`
}

// ListGeometryInput is the input for the list_geometry tool.
type ListGeometryInput struct {
	Key string `json:"key,omitempty" jsonschema:"Only return the entry for this window key"`
}

// GeometryInfo is one stored geometry.
type GeometryInfo struct {
	Key       string `json:"key"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     uint   `json:"width"`
	Height    uint   `json:"height"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ListGeometryOutput is the output for the list_geometry tool.
type ListGeometryOutput struct {
	Source  string         `json:"source"` // "daemon" or "file"
	Entries []GeometryInfo `json:"entries"`
}

// ForgetGeometryInput is the input for the forget_geometry tool.
type ForgetGeometryInput struct {
	Key string `json:"key" jsonschema:"required,Window key to forget (see list_geometry)"`
}

// ForgetGeometryOutput is the output for the forget_geometry tool.
type ForgetGeometryOutput struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}
