package auditlog

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
	l := zap.L().Named("auditlog.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auditlog.handler")
	}
	return &Handler{service: service, logger: l}
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
	logs, total, err := h.service.List(c.Request.Context(), id.StoreID, filter, p.Page, p.PageSize)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("list audit logs failed", zap.Int("status", httpErr.Status), zap.String("code", httpErr.Code))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	meta := response.NewPaginationMeta(total, p.Page, p.PageSize)
	response.Success(c, http.StatusOK, logs, &meta)
}
