package bootstrap

import (
	"context"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
)

// AuditLog is a process-level event that belongs to no store.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

// RecorderAuditLogger persists process events through the audit trail.
type RecorderAuditLogger struct {
	recorder auditlog.Recorder
}

func NewRecorderAuditLogger(recorder auditlog.Recorder) *RecorderAuditLogger {
	return &RecorderAuditLogger{recorder: recorder}
}

func (l *RecorderAuditLogger) Log(ctx context.Context, entry AuditLog) {
	meta := make(map[string]any, len(entry.Meta)+1)
	for k, v := range entry.Meta {
		meta[k] = v
	}
	if entry.Message != "" {
		meta["message"] = entry.Message
	}
	l.recorder.Record(ctx, auditlog.Entry{
		Action:     entry.Action,
		TargetType: "server",
		Meta:       meta,
	})
}

// MultiAuditLogger fans an entry out to every logger in order.
type MultiAuditLogger []AuditLogger

func (m MultiAuditLogger) Log(ctx context.Context, entry AuditLog) {
	for _, l := range m {
		if l != nil {
			l.Log(ctx, entry)
		}
	}
}
