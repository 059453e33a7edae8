package calls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/app/service/auditlog"
	"github.com/ronsystem/fcpdigital-backend/internal/models"
	"github.com/ronsystem/fcpdigital-backend/pkg/logctx"
	"github.com/ronsystem/fcpdigital-backend/pkg/tool"
	"github.com/ronsystem/fcpdigital-backend/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAssistantNotFound means the inbound call references an assistant id no
// client owns, usually a webhook misconfiguration on the Vapi side.
var ErrAssistantNotFound = errors.New("no client for assistant")

type Service struct {
	db    *gorm.DB
	audit *auditlog.Service
	log   *zap.SugaredLogger

	now func() time.Time
}

func New(db *gorm.DB, audit *auditlog.Service, log *zap.SugaredLogger) *Service {
	return &Service{db: db, audit: audit, log: log, now: time.Now}
}

// CallCompletedRequest is the call-end webhook body Vapi posts after each
// answered call.
type CallCompletedRequest struct {
	Call struct {
		ID          string  `json:"id"`
		PhoneNumber string  `json:"phoneNumber"`
		EndedReason string  `json:"endedReason"`
		Duration    float64 `json:"duration"`
		Analysis    struct {
			Summary       string            `json:"summary"`
			ExtractedData map[string]string `json:"extractedData"`
		} `json:"analysis"`
		RecordingURL string `json:"recordingUrl"`
	} `json:"call"`
	Assistant struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"assistant"`
}

func (r *CallCompletedRequest) Validate() error {
	if r.Call.ID == "" || r.Assistant.ID == "" {
		return errors.New("payload must carry call.id and assistant.id")
	}
	return nil
}

type CallCompletedResponse struct {
	CallID      string `json:"call_id"`
	ClientID    string `json:"client_id"`
	DurationSec int64  `json:"duration_seconds"`
	CallMinutes int64  `json:"call_minutes"`
}

// HandleCallCompleted ingests one finished call: it resolves the owning
// client by assistant id, stores the call record, rolls the per-day usage
// counters forward, and bumps the client's metered minutes.
func (s *Service) HandleCallCompleted(ctx context.Context, req *CallCompletedRequest) (*CallCompletedResponse, error) {
	log := logctx.FromCtx(ctx, s.log)

	var client models.Client
	err := s.db.WithContext(ctx).
		Where("vapi_assistant_id = ?", req.Assistant.ID).
		First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnw("call_webhook_unknown_assistant", "assistant_id", req.Assistant.ID, "vapi_call_id", req.Call.ID)
		return nil, fmt.Errorf("%w: %s", ErrAssistantNotFound, req.Assistant.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client for assistant %s: %w", req.Assistant.ID, err)
	}

	summary := req.Call.Analysis.Summary
	extracted := req.Call.Analysis.ExtractedData
	urgency := parseUrgency(summary)
	durationSec := int64(req.Call.Duration)

	meta, _ := json.Marshal(map[string]any{
		"vapi_call_id":      req.Call.ID,
		"vapi_assistant_id": req.Assistant.ID,
		"ended_reason":      req.Call.EndedReason,
		"extracted_data":    extracted,
	})
	call := &models.Call{
		ID:              tool.GenerateUUIDV7(),
		ClientID:        client.ID,
		CallerPhone:     nilIfEmpty(req.Call.PhoneNumber),
		CallerName:      nilIfEmpty(extractCallerName(summary, extracted)),
		ServiceNeeded:   nilIfEmpty(extractServiceNeeded(summary, extracted)),
		Urgency:         lo.ToPtr(urgency),
		DurationSeconds: durationSec,
		RecordingURL:    nilIfEmpty(req.Call.RecordingURL),
		Transcript:      nilIfEmpty(summary),
		Metadata:        datatypes.JSON(meta),
	}
	if err := s.db.WithContext(ctx).Create(call).Error; err != nil {
		return nil, fmt.Errorf("failed to insert call: %w", err)
	}

	minutes := call.BilledMinutes()
	if err := s.rollUsage(ctx, client.ID, minutes); err != nil {
		// The call record exists; a usage rollup gap is a reporting problem,
		// not an ingestion failure.
		log.Errorw("usage_rollup_failed", "client_id", client.ID, "error", err.Error())
	}
	if err := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", client.ID).
		Update("call_minutes_used", gorm.Expr("call_minutes_used + ?", minutes)).Error; err != nil {
		log.Errorw("client_minutes_update_failed", "client_id", client.ID, "error", err.Error())
	}

	auditMeta, _ := json.Marshal(map[string]any{
		"caller_phone":   req.Call.PhoneNumber,
		"service_needed": lo.FromPtr(call.ServiceNeeded),
		"duration":       durationSec,
		"urgency":        urgency,
	})
	s.audit.Record(ctx, &models.AuditLog{
		ActorType:    types.ActorTypeSystem,
		Action:       "ingest_call",
		ResourceType: "call",
		ResourceID:   lo.ToPtr(call.ID),
		Success:      true,
		Metadata:     datatypes.JSON(auditMeta),
	})

	log.Infow("call_ingested",
		"call_id", call.ID,
		"client_id", client.ID,
		"duration_seconds", durationSec,
		"urgency", urgency,
	)
	return &CallCompletedResponse{
		CallID:      call.ID,
		ClientID:    client.ID,
		DurationSec: durationSec,
		CallMinutes: minutes,
	}, nil
}

// rollUsage upserts today's usage_tracking row; the (client_id, date) unique
// key lets concurrent ingests land as increments instead of conflicts.
func (s *Service) rollUsage(ctx context.Context, clientID string, minutes int64) error {
	row := &models.UsageTracking{
		ID:          tool.GenerateUUIDV7(),
		ClientID:    clientID,
		Date:        s.now().UTC().Format(time.DateOnly),
		CallsCount:  1,
		CallMinutes: minutes,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"calls_count":  gorm.Expr("usage_tracking.calls_count + 1"),
			"call_minutes": gorm.Expr("usage_tracking.call_minutes + ?", minutes),
			"updated_at":   s.now(),
		}),
	}).Create(row).Error
}

// Recent returns up to limit calls for a client, newest first.
func (s *Service) Recent(ctx context.Context, clientID string, limit int) ([]*models.Call, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var items []*models.Call
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	return items, nil
}

type CallStats struct {
	TotalCalls   int64   `json:"total_calls"`
	TotalMinutes int64   `json:"total_minutes"`
	AvgDuration  float64 `json:"avg_duration"`
}

// Stats aggregates call volume for a client. AvgDuration is in minutes,
// rounded to one decimal.
func (s *Service) Stats(ctx context.Context, clientID string) (*CallStats, error) {
	var agg struct {
		TotalCalls   int64
		TotalSeconds int64
	}
	err := s.db.WithContext(ctx).Model(&models.Call{}).
		Select("COUNT(*) AS total_calls, COALESCE(SUM(duration_seconds), 0) AS total_seconds").
		Where("client_id = ?", clientID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate calls: %w", err)
	}
	return computeCallStats(agg.TotalCalls, agg.TotalSeconds), nil
}

func computeCallStats(totalCalls, totalSeconds int64) *CallStats {
	stats := &CallStats{
		TotalCalls:   totalCalls,
		TotalMinutes: (totalSeconds + 30) / 60,
	}
	if totalCalls > 0 {
		avg := float64(totalSeconds) / float64(totalCalls) / 60
		stats.AvgDuration = float64(int64(avg*10+0.5)) / 10
	}
	return stats
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return lo.ToPtr(s)
}
