package stafferrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

var (
	ErrStaffNotFound = apperror.New(
		apperror.CodeNotFound,
		"Staff member not found",
		http.StatusNotFound,
	)

	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"A user with the same email already exists",
		http.StatusConflict,
	)

	ErrInvalidStaffID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid staff ID",
		http.StatusBadRequest,
	)

	ErrInvalidStoreID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid store ID",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Role must be ADMIN or STAFF",
		http.StatusBadRequest,
	)

	ErrCannotModifySelf = apperror.New(
		apperror.CodeInvalidInput,
		"You cannot demote, deactivate or delete your own account",
		http.StatusBadRequest,
	)

	ErrInviteNotFound = apperror.New(
		apperror.CodeNotFound,
		"Invitation is invalid or has expired",
		http.StatusNotFound,
	)
)
