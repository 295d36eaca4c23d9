package attendanceerrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

var (
	ErrAttendanceNotFound = apperror.New(apperror.CodeNotFound, "Attendance not found", http.StatusNotFound)

	ErrInvalidAttendanceID = apperror.New(apperror.CodeInvalidInput, "Invalid attendance ID", http.StatusBadRequest)

	ErrShiftNotFound = apperror.New(apperror.CodeNotFound, "Shift not found", http.StatusNotFound)

	ErrNotShiftOwner = apperror.New(apperror.CodeForbidden, "You can only clock your own shifts", http.StatusForbidden)

	ErrSelfClockDisabled = apperror.New(apperror.CodeForbidden, "Self clock-in is disabled for this store", http.StatusForbidden)

	ErrShiftCancelled = apperror.New(apperror.CodeInvalidState, "Shift is cancelled", http.StatusBadRequest)

	ErrOutsideClockWindow = apperror.New(apperror.CodeInvalidInput, "Clock-in is only possible from one hour before the shift until its end", http.StatusBadRequest)

	ErrAlreadyClockedIn = apperror.New(apperror.CodeConflict, "Already clocked in for this shift", http.StatusConflict)

	ErrNotClockedIn = apperror.New(apperror.CodeConflict, "Not clocked in for this shift", http.StatusConflict)

	ErrAlreadyClockedOut = apperror.New(apperror.CodeConflict, "Already clocked out for this shift", http.StatusConflict)

	ErrInvalidClockRange = apperror.New(apperror.CodeInvalidInput, "Clock-out must be after clock-in", http.StatusBadRequest)

	ErrInvalidDateRange = apperror.New(apperror.CodeInvalidInput, "Invalid date range", http.StatusBadRequest)

	ErrInvalidMonth = apperror.New(apperror.CodeInvalidInput, "Month must be YYYY-MM", http.StatusBadRequest)
)
