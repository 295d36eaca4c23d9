package autherrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

const (
	CodeAuthFailed      = "AUTH_FAILED"
	CodeAccountInactive = "ACCOUNT_INACTIVE"
	CodeInvalidToken    = "INVALID_TOKEN"
)

var (
	ErrInvalidCredentials = apperror.New(
		CodeAuthFailed,
		"Invalid email or password",
		http.StatusUnauthorized,
	)

	ErrAccountInactive = apperror.New(
		CodeAccountInactive,
		"This account is not active",
		http.StatusUnauthorized,
	)

	ErrInvalidRefreshToken = apperror.New(
		CodeInvalidToken,
		"Refresh token is invalid or expired",
		http.StatusUnauthorized,
	)

	ErrMissingRefreshToken = apperror.New(
		apperror.CodeUnauthorized,
		"Missing refresh token",
		http.StatusUnauthorized,
	)

	ErrUserNotFound = apperror.New(
		apperror.CodeUnauthorized,
		"User no longer exists",
		http.StatusUnauthorized,
	)

	ErrWrongCurrentPassword = apperror.New(
		apperror.CodeInvalidInput,
		"Current password is incorrect",
		http.StatusBadRequest,
	)

	ErrSamePassword = apperror.New(
		apperror.CodeInvalidInput,
		"New password must differ from the current one",
		http.StatusBadRequest,
	)

	ErrInviteInvalid = apperror.New(
		apperror.CodeNotFound,
		"Invitation is invalid or has expired",
		http.StatusNotFound,
	)

	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Could not issue session tokens",
		http.StatusInternalServerError,
	)
)
