package bootstrap

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
)

type captureRecorder struct {
	entries []auditlog.Entry
}

func (c *captureRecorder) Record(_ context.Context, e auditlog.Entry) {
	c.entries = append(c.entries, e)
}

type countingLogger struct{ n int }

func (c *countingLogger) Log(context.Context, AuditLog) { c.n++ }

func TestRecorderAuditLogger(t *testing.T) {
	rec := &captureRecorder{}
	NewRecorderAuditLogger(rec).Log(context.Background(), AuditLog{
		Action:  "SERVER_SHUTDOWN",
		Message: "Server is shutting down",
		Meta:    map[string]any{"signal": "terminated"},
	})

	if assert.Len(t, rec.entries, 1) {
		e := rec.entries[0]
		assert.Equal(t, auditlog.ActionServerShutdown, e.Action)
		assert.Empty(t, e.StoreID)
		assert.Equal(t, "server", e.TargetType)
		assert.Equal(t, "terminated", e.Meta["signal"])
		assert.Equal(t, "Server is shutting down", e.Meta["message"])
	}
}

func TestMultiAuditLogger(t *testing.T) {
	a, b := &countingLogger{}, &countingLogger{}
	MultiAuditLogger{a, nil, b}.Log(context.Background(), AuditLog{Action: "SERVER_STARTED"})

	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	rec := &captureRecorder{}
	ctx, cancel := context.WithCancel(context.Background())

	srv := newServer(http.NewServeMux(), ServerConfig{Port: "0", ReadTimeout: time.Second})
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, NewRecorderAuditLogger(rec)) }()

	cancel()
	assert.NoError(t, <-done)

	if assert.Len(t, rec.entries, 2) {
		assert.Equal(t, auditlog.ActionServerStarted, rec.entries[0].Action)
		assert.Equal(t, auditlog.ActionServerShutdown, rec.entries[1].Action)
		assert.Equal(t, "signal", rec.entries[1].Meta["reason"])
	}
}
