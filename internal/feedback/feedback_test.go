package feedback

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"backend-navtelemetry/internal/telemetry"
)

func baseSnapshot() telemetry.EventSnapshot {
	return telemetry.EventSnapshot{
		SessionIdentifier: "session-1",
		AudioType:         telemetry.AudioTypeSpeaker,
		ApplicationState:  telemetry.AppStateForeground,
		Created:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSerializeOverlayFields(t *testing.T) {
	rating := 4
	seconds := 90
	arrival := time.Date(2025, 6, 1, 12, 45, 0, 0, time.UTC)
	step := telemetry.StepSnapshot{PreviousInstruction: "Turn left", Distance: 12}

	ev := New(baseSnapshot(), Details{
		EventName:               "navigation.feedback",
		FeedbackType:            "road_closed",
		Description:             "closed for construction",
		Rating:                  &rating,
		Comment:                 "had to detour",
		UserIdentifier:          "user-1",
		ArrivalTimestamp:        &arrival,
		SecondsSinceLastReroute: &seconds,
	}, &step)

	fields, err := Serialize(ev)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	if fields["eventName"] != "navigation.feedback" {
		t.Fatalf("missing event name")
	}
	if fields["feedbackType"] != "road_closed" || fields["rating"] != 4 {
		t.Fatalf("missing feedback fields")
	}
	if fields["userId"] != "user-1" {
		t.Fatalf("missing user id")
	}
	if fields["arrivalTimestamp"] != "2025-06-01T12:45:00Z" {
		t.Fatalf("unexpected arrival: %v", fields["arrivalTimestamp"])
	}
	if fields["secondsSinceLastReroute"] != 90 {
		t.Fatalf("missing seconds since last reroute")
	}

	nested, ok := fields["step"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested step mapping")
	}
	if nested["previousInstruction"] != "Turn left" || nested["distance"] != 12 {
		t.Fatalf("unexpected step mapping: %v", nested)
	}

	// the composed mapping must stay JSON-encodable
	if _, err := json.Marshal(fields); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestSerializeOmitsAbsentOverlay(t *testing.T) {
	fields, err := Serialize(New(baseSnapshot(), Details{EventName: "navigation.arrive"}, nil))
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	for _, key := range []string{"rating", "comment", "userId", "feedbackType", "description",
		"screenshot", "arrivalTimestamp", "secondsSinceLastReroute",
		"newDistanceRemaining", "newDurationRemaining", "newGeometry", "step"} {
		if _, ok := fields[key]; ok {
			t.Fatalf("expected %s omitted", key)
		}
	}
	if fields["eventName"] != "navigation.arrive" {
		t.Fatalf("missing event name")
	}
}

func TestSerializeRerouteDeltas(t *testing.T) {
	newDist := 1520.5
	newDur := 310.0
	ev := New(baseSnapshot(), Details{
		EventName:             "navigation.reroute",
		NewDistanceRemainingM: &newDist,
		NewDurationRemainingS: &newDur,
		NewGeometry:           "_p~iF~ps|U",
	}, nil)

	fields, err := Serialize(ev)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if fields["newDistanceRemaining"] != 1520.5 || fields["newDurationRemaining"] != 310.0 {
		t.Fatalf("missing reroute deltas")
	}
	if fields["newGeometry"] != "_p~iF~ps|U" {
		t.Fatalf("missing new geometry")
	}
}

func TestSerializePropagatesEncodingError(t *testing.T) {
	snap := baseSnapshot()
	bad := math.NaN()
	snap.DistanceToDestination = &bad

	if _, err := Serialize(New(snap, Details{EventName: "navigation.feedback"}, nil)); err == nil {
		t.Fatalf("expected encoding error to surface")
	}
}
