package notificationerrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

var (
	ErrNotificationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Notification not found",
		http.StatusNotFound,
	)

	ErrInvalidNotificationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid notification ID",
		http.StatusBadRequest,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidStoreID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid store ID",
		http.StatusBadRequest,
	)

	ErrInvalidNotificationType = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown notification type",
		http.StatusBadRequest,
	)

	ErrDuplicatePreference = apperror.New(
		apperror.CodeInvalidInput,
		"Each notification type may appear only once",
		http.StatusBadRequest,
	)
)
