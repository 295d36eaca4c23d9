package staff

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
	l := zap.L().Named("staff.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("staff.handler")
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

func (h *Handler) writeBindError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) List(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var filter ListStaffFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.writeBindError(c, err)
		return
	}

	p := pagination.FromQuery(c)
	staff, total, err := h.service.List(c.Request.Context(), id.StoreID, filter, p.Page, p.PageSize)
	if err != nil {
		h.writeServiceError(c, "list staff", err)
		return
	}

	meta := response.NewPaginationMeta(total, p.Page, p.PageSize)
	response.Success(c, http.StatusOK, staff, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)
	targetID := c.Param("id")

	if !id.IsAdmin() && id.UserID != targetID {
		h.writeServiceError(c, "get staff", apperror.ErrForbidden)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id.StoreID, targetID)
	if err != nil {
		h.writeServiceError(c, "get staff", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Invite(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req InviteStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Invite(c.Request.Context(), id.StoreID, id.UserID, req)
	if err != nil {
		h.writeServiceError(c, "invite staff", err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id.StoreID, id.UserID, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, "update staff", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	if err := h.service.Delete(c.Request.Context(), id.StoreID, id.UserID, c.Param("id")); err != nil {
		h.writeServiceError(c, "delete staff", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
