package archive

import (
	"time"

	"backend-navtelemetry/internal/feedback"
	"backend-navtelemetry/internal/nav"
	"backend-navtelemetry/internal/telemetry"
)

// ReportRequest carries one reporting call's worth of client state: the
// session accumulator, the progress view, one device read batch, and the
// optional feedback overlay.
type ReportRequest struct {
	Session  nav.SessionState         `json:"session"`
	Progress nav.ProgressState        `json:"progress"`
	Device   telemetry.DeviceSnapshot `json:"device"`
	Feedback *feedback.Details        `json:"feedback,omitempty"`
}

// Record is one archived event: the serialized mapping plus storage
// metadata.
type Record struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	EventName string         `json:"event_name"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
