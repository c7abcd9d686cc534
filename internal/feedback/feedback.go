package feedback

import (
	"time"

	"backend-navtelemetry/internal/telemetry"
)

// Details is the caller-supplied overlay for a feedback-class event. All
// fields are optional; absent ones never reach the serialized mapping.
type Details struct {
	EventName               string     `json:"event_name"`
	FeedbackType            string     `json:"feedback_type,omitempty"`
	Description             string     `json:"description,omitempty"`
	Rating                  *int       `json:"rating,omitempty"`
	Comment                 string     `json:"comment,omitempty"`
	UserIdentifier          string     `json:"user_identifier,omitempty"`
	Screenshot              string     `json:"screenshot,omitempty"`
	ArrivalTimestamp        *time.Time `json:"arrival_timestamp,omitempty"`
	SecondsSinceLastReroute *int       `json:"seconds_since_last_reroute,omitempty"`
	NewDistanceRemainingM   *float64   `json:"new_distance_remaining_m,omitempty"`
	NewDurationRemainingS   *float64   `json:"new_duration_remaining_s,omitempty"`
	NewGeometry             string     `json:"new_geometry,omitempty"`
}

// Event is a base snapshot enriched with feedback details. Both halves are
// immutable once constructed; the overlay is applied here instead of
// mutating the snapshot after the fact.
type Event struct {
	Snapshot telemetry.EventSnapshot
	Details  Details
	Step     *telemetry.StepSnapshot
}

func New(snapshot telemetry.EventSnapshot, details Details, step *telemetry.StepSnapshot) Event {
	return Event{Snapshot: snapshot, Details: details, Step: step}
}

// Serialize extends the base snapshot mapping with the overlay fields and
// the nested step snapshot.
func Serialize(ev Event) (map[string]any, error) {
	fields, err := telemetry.Serialize(ev.Snapshot)
	if err != nil {
		return nil, err
	}

	d := ev.Details
	putNonEmpty(fields, "eventName", d.EventName)
	putNonEmpty(fields, "feedbackType", d.FeedbackType)
	putNonEmpty(fields, "description", d.Description)
	putNonEmpty(fields, "comment", d.Comment)
	putNonEmpty(fields, "userId", d.UserIdentifier)
	putNonEmpty(fields, "screenshot", d.Screenshot)
	putNonEmpty(fields, "newGeometry", d.NewGeometry)

	if d.Rating != nil {
		fields["rating"] = *d.Rating
	}
	if d.ArrivalTimestamp != nil {
		fields["arrivalTimestamp"] = d.ArrivalTimestamp.UTC().Format(time.RFC3339)
	}
	if d.SecondsSinceLastReroute != nil {
		fields["secondsSinceLastReroute"] = *d.SecondsSinceLastReroute
	}
	if d.NewDistanceRemainingM != nil {
		fields["newDistanceRemaining"] = *d.NewDistanceRemainingM
	}
	if d.NewDurationRemainingS != nil {
		fields["newDurationRemaining"] = *d.NewDurationRemainingS
	}

	if ev.Step != nil {
		fields["step"] = telemetry.SerializeStep(*ev.Step)
	}
	return fields, nil
}

func putNonEmpty(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
