package store

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/pagination"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("store.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("store.handler")
	}
	return &Handler{service: service, logger: l}
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

func (h *Handler) GetSettings(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	resp, err := h.service.GetSettings(c.Request.Context(), id.StoreID)
	if err != nil {
		h.writeServiceError(c, "get settings", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	resp, err := h.service.UpdateSettings(c.Request.Context(), id.StoreID, id.UserID, req)
	if err != nil {
		h.writeServiceError(c, "update settings", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CreateStore(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	resp, err := h.service.CreateStore(c.Request.Context(), id.UserID, req)
	if err != nil {
		h.writeServiceError(c, "create store", err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListStores(c *gin.Context) {
	p := pagination.FromQuery(c)

	stores, total, err := h.service.ListStores(c.Request.Context(), p.Page, p.PageSize)
	if err != nil {
		h.writeServiceError(c, "list stores", err)
		return
	}

	meta := response.NewPaginationMeta(total, p.Page, p.PageSize)
	response.Success(c, http.StatusOK, stores, &meta)
}
