package shiftrequesterrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift request not found",
		http.StatusNotFound,
	)

	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid shift request ID",
		http.StatusBadRequest,
	)

	ErrInvalidTimeRange = apperror.New(
		apperror.CodeInvalidInput,
		"Start time must be before end time",
		http.StatusBadRequest,
	)

	ErrStartInPast = apperror.New(
		apperror.CodeInvalidInput,
		"Start time must be in the future",
		http.StatusBadRequest,
	)

	ErrLeadTimeNotMet = apperror.New(
		apperror.CodeInvalidInput,
		"Shift requests must be submitted further in advance",
		http.StatusBadRequest,
	)

	ErrRequestOverlap = apperror.New(
		apperror.CodeConflict,
		"A pending request already covers this period",
		http.StatusConflict,
	)

	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"You can only manage your own shift requests",
		http.StatusForbidden,
	)

	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending shift requests can be changed",
		http.StatusBadRequest,
	)

	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Rejection reason is required",
		http.StatusBadRequest,
	)

	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid status filter",
		http.StatusBadRequest,
	)
)
