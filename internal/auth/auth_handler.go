package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	autherrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/auth/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	platform "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/request"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
)

// CookieConfig controls the session cookies handed to web clients.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Handler struct {
	service Service
	cookies CookieConfig
	logger  *zap.Logger
}

func NewHandler(s Service, cookies CookieConfig, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, cookies: cookies, logger: l}
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

func isWeb(c *gin.Context) bool {
	return platform.IsWebClient(platform.ResolveClientType(c.GetHeader("X-Client-Type"), c.GetHeader("User-Agent")))
}

func (h *Handler) setSessionCookies(c *gin.Context, sess Session) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		MaxAge:   int(h.cookies.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    sess.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.cookies.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	if _, err := middleware.IssueCSRFToken(c, h.cookies.Secure, int(h.cookies.RefreshTTL.Seconds())); err != nil {
		h.logger.Error("issue csrf token failed", zap.Error(err))
	}
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie, middleware.CSRFCookie} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name != middleware.CSRFCookie,
			Secure:   h.cookies.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *Handler) respondSession(c *gin.Context, status int, sess Session) {
	if isWeb(c) {
		h.setSessionCookies(c, sess)
	}
	response.Success(c, status, SessionResponse{
		User:         sess.User,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}, nil)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, "login", err)
		return
	}
	h.respondSession(c, http.StatusOK, sess)
}

func (h *Handler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeServiceError(c, "refresh", autherrors.ErrMissingRefreshToken)
			return
		}
		refreshToken = req.RefreshToken
	}

	sess, err := h.service.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if isWeb(c) {
			h.clearSessionCookies(c)
		}
		h.writeServiceError(c, "refresh", err)
		return
	}
	h.respondSession(c, http.StatusOK, sess)
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearSessionCookies(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, nil)
}

func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		h.writeServiceError(c, "me", apperror.ErrUnauthorized)
		return
	}

	resp, err := h.service.Me(c.Request.Context(), id.UserID)
	if err != nil {
		h.writeServiceError(c, "me", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CSRF(c *gin.Context) {
	tok, err := middleware.IssueCSRFToken(c, h.cookies.Secure, int(h.cookies.RefreshTTL.Seconds()))
	if err != nil {
		h.writeServiceError(c, "issue csrf", err)
		return
	}
	response.Success(c, http.StatusOK, CSRFResponse{CSRFToken: tok}, nil)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), id.UserID, req); err != nil {
		h.writeServiceError(c, "change password", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"changed": true}, nil)
}

func (h *Handler) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	sess, err := h.service.AcceptInvite(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, "accept invite", err)
		return
	}
	h.respondSession(c, http.StatusOK, sess)
}
