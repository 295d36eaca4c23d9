package shifterrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

var (
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift not found",
		http.StatusNotFound,
	)

	ErrInvalidShiftID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid shift ID",
		http.StatusBadRequest,
	)

	ErrInvalidTimeRange = apperror.New(
		apperror.CodeInvalidInput,
		"Start time must be before end time",
		http.StatusBadRequest,
	)

	ErrInvalidDuration = apperror.New(
		apperror.CodeInvalidInput,
		"Shift length is outside the store limits",
		http.StatusBadRequest,
	)

	ErrStaffNotInStore = apperror.New(
		apperror.CodeInvalidInput,
		"Staff member is not an active member of this store",
		http.StatusBadRequest,
	)

	ErrShiftOverlap = apperror.New(
		apperror.CodeConflict,
		"Shift overlaps another shift of the same staff member",
		http.StatusConflict,
	)

	ErrShiftHasAttendance = apperror.New(
		apperror.CodeConflict,
		"Shift already has attendance",
		http.StatusConflict,
	)

	ErrInvalidShiftState = apperror.New(
		apperror.CodeInvalidState,
		"Shift is not in a state that allows this action",
		http.StatusBadRequest,
	)

	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown shift status",
		http.StatusBadRequest,
	)

	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date range",
		http.StatusBadRequest,
	)
)
