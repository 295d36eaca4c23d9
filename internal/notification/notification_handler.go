package notification

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/pagination"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
)

type Handler struct {
	service  Service
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler builds the HTTP and websocket handlers. Browser origins outside
// allowedOrigins are refused the upgrade; an empty list only admits same-host.
func NewHandler(service Service, hub *Hub, allowedOrigins []string, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("notification.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.handler")
	}
	return &Handler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: l,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

func (h *Handler) writeServiceError(c *gin.Context, op string, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn(op+" failed",
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) List(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	p := pagination.FromQuery(c)
	items, total, err := h.service.List(c.Request.Context(), id.UserID, filter, p.Page, p.PageSize)
	if err != nil {
		h.writeServiceError(c, "list notifications", err)
		return
	}

	meta := response.NewPaginationMeta(total, p.Page, p.PageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	n, err := h.service.UnreadCount(c.Request.Context(), id.UserID)
	if err != nil {
		h.writeServiceError(c, "unread count", err)
		return
	}
	response.Success(c, http.StatusOK, UnreadCountResponse{Count: n}, nil)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	if err := h.service.MarkRead(c.Request.Context(), id.UserID, c.Param("id")); err != nil {
		h.writeServiceError(c, "mark notification read", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id"), "is_read": true}, nil)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	n, err := h.service.MarkAllRead(c.Request.Context(), id.UserID)
	if err != nil {
		h.writeServiceError(c, "mark all notifications read", err)
		return
	}
	response.Success(c, http.StatusOK, MarkAllReadResponse{Updated: n}, nil)
}

func (h *Handler) GetPreferences(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	prefs, err := h.service.GetPreferences(c.Request.Context(), id.UserID)
	if err != nil {
		h.writeServiceError(c, "get notification preferences", err)
		return
	}
	response.Success(c, http.StatusOK, prefs, nil)
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	prefs, err := h.service.UpdatePreferences(c.Request.Context(), id.UserID, req)
	if err != nil {
		h.writeServiceError(c, "update notification preferences", err)
		return
	}
	response.Success(c, http.StatusOK, prefs, nil)
}

// WebSocket upgrades the request and streams the caller's notifications.
func (h *Handler) WebSocket(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warn("ws upgrade failed", zap.String("user_id", id.UserID), zap.Error(err))
		return
	}
	h.hub.Serve(c.Request.Context(), id.UserID, conn)
}
