package storeerrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

var (
	ErrStoreNotFound = apperror.New(
		apperror.CodeNotFound,
		"Store not found",
		http.StatusNotFound,
	)

	ErrInvalidStoreID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid store ID",
		http.StatusBadRequest,
	)

	ErrInvalidBusinessHours = apperror.New(
		apperror.CodeInvalidInput,
		"Business hours must be HH:MM with opening before closing",
		http.StatusBadRequest,
	)

	ErrInvalidTimezone = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown timezone",
		http.StatusBadRequest,
	)

	ErrInvalidShiftBounds = apperror.New(
		apperror.CodeInvalidInput,
		"Minimum shift length must not exceed the maximum",
		http.StatusBadRequest,
	)
)
