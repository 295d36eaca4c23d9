package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
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
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
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

func writeBindError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func actorFrom(c *gin.Context) domain.Actor {
	id, _ := middleware.GetIdentity(c)
	return domain.Actor{UserID: id.UserID, StoreID: id.StoreID, IsAdmin: id.IsAdmin()}
}

func (h *Handler) ClockIn(c *gin.Context) {
	var req ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.ClockIn(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		h.writeServiceError(c, "clock in", err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ClockOut(c *gin.Context) {
	var req ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.ClockOut(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		h.writeServiceError(c, "clock out", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeBindError(c, err)
		return
	}

	p := pagination.FromQuery(c)
	rows, total, err := h.service.List(c.Request.Context(), actorFrom(c), filter, p.Page, p.PageSize)
	if err != nil {
		h.writeServiceError(c, "list attendance", err)
		return
	}

	meta := response.NewPaginationMeta(total, p.Page, p.PageSize)
	response.Success(c, http.StatusOK, rows, &meta)
}

func (h *Handler) Correct(c *gin.Context) {
	var req CorrectAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.Correct(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, "correct attendance", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Summary(c *gin.Context) {
	var filter SummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.Summary(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.writeServiceError(c, "attendance summary", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
