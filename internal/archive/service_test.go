package archive

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"backend-navtelemetry/internal/feedback"
	"backend-navtelemetry/internal/nav"
	"backend-navtelemetry/internal/stream"
	"backend-navtelemetry/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

var errArchive = errors.New("archive error")

func testBuilder() *telemetry.Builder {
	return telemetry.NewBuilder("navsdk-go", "1.0.0", "driving-traffic")
}

func testRequest() ReportRequest {
	return ReportRequest{
		Session: nav.SessionState{
			Identifier: "session-1",
			Current: &nav.Route{
				RequestIdentifier:   "req-1",
				Coordinates:         []nav.Coordinate{{Lat: 38.5, Lng: -120.2}, {Lat: 40.7, Lng: -120.95}},
				DistanceM:           1234.6,
				ExpectedTravelTimeS: 89.4,
				Legs:                []nav.Leg{{Steps: []nav.Step{{}, {}, {}, {}, {}}}},
			},
		},
		Progress: nav.ProgressState{
			LegCount:      1,
			LegStepCount:  5,
			LegStepCounts: []int{5},
		},
		Device: telemetry.DeviceSnapshot{
			Volume:            40,
			Battery:           55,
			AppState:          telemetry.AppStateForeground,
			DeviceOrientation: telemetry.OrientationPortrait,
			Outputs:           []telemetry.AudioPort{telemetry.AudioPortBuiltInSpeaker},
			Source:            telemetry.LocationSource{Kind: telemetry.SourceLive},
		},
	}
}

func TestReportStoresCachesAndBroadcasts(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	s := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer redisClient.Close()

	hub := stream.NewHub(nil)
	subscriber := hub.Register("session-1")
	defer hub.Unregister(subscriber)

	mock.ExpectQuery(`INSERT INTO telemetry_events`).
		WithArgs(pgxmock.AnyArg(), "session-1", "navigation.status", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	svc := NewService(mock, redisClient, hub, testBuilder())
	rec, err := svc.Report(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rec.ID == "" || rec.EventName != "navigation.status" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Payload["distance"] != 1235 {
		t.Fatalf("expected rounded route distance in payload, got %v", rec.Payload["distance"])
	}

	select {
	case msg := <-subscriber.Send:
		var decoded map[string]any
		if err := json.Unmarshal(msg, &decoded); err != nil {
			t.Fatalf("broadcast payload: %v", err)
		}
		if decoded["sessionIdentifier"] != "session-1" {
			t.Fatalf("unexpected broadcast payload")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("expected broadcast")
	}

	if !s.Exists("telemetry:session-1:latest") {
		t.Fatalf("expected latest event cached")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportFeedbackEvent(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	oldNow := nowFn
	nowFn = func() time.Time { return now }
	defer func() { nowFn = oldNow }()

	req := testRequest()
	lastReroute := now.Add(-90 * time.Second)
	req.Session.LastRerouteAt = &lastReroute
	rating := 2
	req.Feedback = &feedback.Details{
		FeedbackType: "road_closed",
		Rating:       &rating,
	}
	req.Progress.CurrentManeuver = &nav.Maneuver{Instruction: "Turn left", Type: "turn", Modifier: "left"}

	mock.ExpectQuery(`INSERT INTO telemetry_events`).
		WithArgs(pgxmock.AnyArg(), "session-1", "navigation.feedback", pgxmock.AnyArg(), now).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	svc := NewService(mock, nil, nil, testBuilder())
	rec, err := svc.Report(context.Background(), req)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rec.EventName != "navigation.feedback" {
		t.Fatalf("expected feedback event name, got %s", rec.EventName)
	}
	if rec.Payload["secondsSinceLastReroute"] != 90 {
		t.Fatalf("expected derived seconds since reroute, got %v", rec.Payload["secondsSinceLastReroute"])
	}
	step, ok := rec.Payload["step"].(map[string]any)
	if !ok || step["previousInstruction"] != "Turn left" {
		t.Fatalf("expected nested step snapshot, got %v", rec.Payload["step"])
	}
}

func TestReportInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO telemetry_events`).
		WithArgs(pgxmock.AnyArg(), "session-1", "navigation.status", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errArchive)

	svc := NewService(mock, nil, nil, testBuilder())
	if _, err := svc.Report(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEvents(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, session_id, event_name, payload, created_at`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "event_name", "payload", "created_at"}).
			AddRow("evt-1", "session-1", "navigation.status", []byte(`{"distanceRemaining":588}`), time.Now()).
			AddRow("evt-2", "session-1", "navigation.feedback", []byte(`{"rating":4}`), time.Now()))

	svc := NewService(mock, nil, nil, testBuilder())
	records, err := svc.Events(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records")
	}
	if records[0].Payload["distanceRemaining"] != 588.0 {
		t.Fatalf("unexpected payload: %v", records[0].Payload)
	}
}

func TestEventsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, session_id, event_name, payload, created_at`).
		WithArgs("session-1").
		WillReturnError(errArchive)

	svc := NewService(mock, nil, nil, testBuilder())
	if _, err := svc.Events(context.Background(), "session-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLatestCacheHit(t *testing.T) {
	s := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer redisClient.Close()

	cached, _ := json.Marshal(Record{ID: "evt-1", SessionID: "session-1", EventName: "navigation.status"})
	s.Set("telemetry:session-1:latest", string(cached))

	// nil querier: a cache hit must not touch the database
	svc := NewService(nil, redisClient, nil, testBuilder())
	rec, err := svc.Latest(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec.ID != "evt-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestLatestFallsBackToDatabase(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, session_id, event_name, payload, created_at`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "event_name", "payload", "created_at"}).
			AddRow("evt-9", "session-1", "navigation.status", []byte(`{"stepIndex":3}`), time.Now()))

	svc := NewService(mock, nil, nil, testBuilder())
	rec, err := svc.Latest(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec.ID != "evt-9" || rec.Payload["stepIndex"] != 3.0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestLatestNoRows(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, session_id, event_name, payload, created_at`).
		WithArgs("session-empty").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService(mock, nil, nil, testBuilder())
	if _, err := svc.Latest(context.Background(), "session-empty"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected no rows error, got %v", err)
	}
}
