package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	auditlogerrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
)

// Recorder writes audit entries. Failures are logged and swallowed so an
// audit outage never fails the business operation.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

//go:generate mockgen -source=auditlog_service.go -destination=mock/auditlog_service_mock.go -package=mock
type Service interface {
	Recorder
	List(ctx context.Context, storeID string, filter ListFilter, page, pageSize int) ([]AuditLogResponse, int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auditlog.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auditlog.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Record(ctx context.Context, entry Entry) {
	log := contextutil.GetLogger(ctx, s.logger)

	// entries recorded inside a request inherit the caller from the context
	md := contextutil.ExtractMetadata(ctx)
	row := &AuditLog{
		ID:         uuid.New(),
		StoreID:    parseOptionalUUID(firstNonEmpty(entry.StoreID, md.StoreID)),
		ActorID:    parseOptionalUUID(firstNonEmpty(entry.ActorID, md.UserID)),
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		RequestID:  md.RequestID,
		CreatedAt:  time.Now().UTC(),
	}

	if len(entry.Meta) > 0 {
		raw, err := json.Marshal(entry.Meta)
		if err != nil {
			log.Warn("audit meta marshal failed", zap.String("action", entry.Action), zap.Error(err))
		} else {
			row.Meta = datatypes.JSON(raw)
		}
	}

	// the request context may already be cancelled once the response is written
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := s.repo.Create(writeCtx, row); err != nil {
		log.Error("audit log persist failed",
			zap.String("action", entry.Action),
			zap.String("target_type", entry.TargetType),
			zap.String("target_id", entry.TargetID),
			zap.Error(err),
		)
		return
	}

	log.Debug("audit log recorded", zap.String("action", entry.Action), zap.String("target_id", entry.TargetID))
}

func (s *service) List(ctx context.Context, storeID string, filter ListFilter, page, pageSize int) ([]AuditLogResponse, int64, error) {
	if _, err := uuid.Parse(storeID); err != nil {
		return nil, 0, auditlogerrors.ErrInvalidStoreID
	}

	rows, total, err := s.repo.List(ctx, storeID, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("list audit logs failed", zap.String("store_id", storeID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]AuditLogResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp, total, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseOptionalUUID(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func mapToResponse(l AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         l.ID.String(),
		Action:     l.Action,
		TargetType: l.TargetType,
		TargetID:   l.TargetID,
		RequestID:  l.RequestID,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.StoreID != nil {
		resp.StoreID = l.StoreID.String()
	}
	if l.ActorID != nil {
		resp.ActorID = l.ActorID.String()
	}
	if len(l.Meta) > 0 {
		resp.Meta = json.RawMessage(l.Meta)
	}
	return resp
}

// NopRecorder discards entries.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) {}
