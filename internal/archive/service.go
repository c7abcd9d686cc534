package archive

import (
	"context"
	"encoding/json"
	"time"

	"backend-navtelemetry/internal/db"
	"backend-navtelemetry/internal/feedback"
	"backend-navtelemetry/internal/stream"
	"backend-navtelemetry/internal/telemetry"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	statusEventName   = "navigation.status"
	feedbackEventName = "navigation.feedback"

	latestTTL = 24 * time.Hour
)

var nowFn = time.Now

type Service struct {
	db      db.Querier
	redis   *redis.Client
	hub     *stream.Hub
	builder *telemetry.Builder
}

func NewService(querier db.Querier, redisClient *redis.Client, hub *stream.Hub, builder *telemetry.Builder) *Service {
	return &Service{db: querier, redis: redisClient, hub: hub, builder: builder}
}

// Report assembles a snapshot from the request state, serializes it, stores
// it, caches it as the session's latest event and broadcasts it to live
// subscribers.
func (s *Service) Report(ctx context.Context, req ReportRequest) (Record, error) {
	now := nowFn()
	snap := s.builder.Build(req.Session, req.Progress, req.Device, now)

	eventName := statusEventName
	var payload map[string]any
	var err error
	if req.Feedback != nil {
		details := *req.Feedback
		if details.EventName == "" {
			details.EventName = feedbackEventName
		}
		if details.SecondsSinceLastReroute == nil && req.Session.LastRerouteAt != nil {
			if secs := int(now.Sub(*req.Session.LastRerouteAt).Seconds()); secs >= 0 {
				details.SecondsSinceLastReroute = &secs
			}
		}
		step := telemetry.BuildStepSnapshot(req.Progress)
		payload, err = feedback.Serialize(feedback.New(snap, details, &step))
		eventName = details.EventName
	} else {
		payload, err = telemetry.Serialize(snap)
	}
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:        uuid.NewString(),
		SessionID: snap.SessionIdentifier,
		EventName: eventName,
		Payload:   payload,
		CreatedAt: now,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Record{}, &telemetry.EncodingError{}
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO telemetry_events (id, session_id, event_name, payload, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, rec.ID, rec.SessionID, rec.EventName, raw, rec.CreatedAt)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}

	s.cacheLatest(ctx, rec)
	if s.hub != nil {
		s.hub.Broadcast(rec.SessionID, raw)
	}
	return rec, nil
}

// Events lists a session's archived events, oldest first.
func (s *Service) Events(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, event_name, payload, created_at
		FROM telemetry_events WHERE session_id=$1
		ORDER BY created_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.EventName, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Payload); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Latest returns the session's most recent event, answering from the redis
// cache when it can.
func (s *Service) Latest(ctx context.Context, sessionID string) (Record, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, latestKey(sessionID)).Bytes()
		if err == nil {
			var rec Record
			if err := json.Unmarshal(cached, &rec); err == nil {
				return rec, nil
			}
		}
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, session_id, event_name, payload, created_at
		FROM telemetry_events WHERE session_id=$1
		ORDER BY created_at DESC
		LIMIT 1
	`, sessionID)

	var rec Record
	var raw []byte
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.EventName, &raw, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(raw, &rec.Payload); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) cacheLatest(ctx context.Context, rec Record) {
	if s.redis == nil {
		return
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, latestKey(rec.SessionID), encoded, latestTTL).Err()
}

func latestKey(sessionID string) string {
	return "telemetry:" + sessionID + ":latest"
}
